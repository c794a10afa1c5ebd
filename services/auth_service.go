package services

import (
	"errors"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/token"

	"golang.org/x/crypto/bcrypt"
)

// Use the JWTClaims from token package
type JWTClaims = token.JWTClaims

type RegisterInput struct {
	Email     string  `json:"email" binding:"required,email"`
	Username  string  `json:"username" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

type AuthServiceInterface interface {
	Register(db *database.Database, input RegisterInput) (AuthResult, error)
	Login(db *database.Database, email, password string) (AuthResult, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) error
}

type AuthService struct {
	jwtSecret     []byte
	jwtExpiration time.Duration
	users         UserServiceInterface
}

func NewAuthService(jwtSecret string, jwtExpirationHours int, users UserServiceInterface) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: time.Duration(jwtExpirationHours) * time.Hour,
		users:         users,
	}
}

func (s *AuthService) Register(db *database.Database, input RegisterInput) (AuthResult, error) {
	if err := validateEmail(input.Email); err != nil {
		return AuthResult{}, err
	}
	if err := validateUsername(input.Username); err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.CreateUser(db, models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    sanitizePtr(input.FirstName),
		LastName:     sanitizePtr(input.LastName),
	})
	if err != nil {
		return AuthResult{}, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(db *database.Database, email, password string) (AuthResult, error) {
	user, err := s.users.GetUserByEmail(db, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	tokenString, err := token.GenerateToken(user.ID, user.Email, user.Username, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, AccessToken: tokenString}, nil
}

// ValidateToken uses the token utility to validate tokens
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := token.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var AuthServiceInstance AuthServiceInterface
