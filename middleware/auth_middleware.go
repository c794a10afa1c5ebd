package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts only "Bearer <jwt>" tokens whose user still exists.
func AuthMiddleware(db *database.Database, authService services.AuthServiceInterface, users services.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			return
		}

		// Extract token from Bearer schema
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		authenticate(c, db, authService, users, parts[1])
	}
}

// authenticate validates tokenString and stores the caller on the context.
func authenticate(c *gin.Context, db *database.Database, authService services.AuthServiceInterface, users services.UserServiceInterface, tokenString string) {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Invalid or expired token")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "Invalid JWT payload.")
		return
	}

	user, err := users.GetUserById(db, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.Unauthorized(c, "User not found.")
			return
		}
		log.Printf("Error loading user %s: %v", userID, err)
		response.InternalError(c)
		return
	}

	// Store user info in the context for later use
	c.Set("userID", user.ID)
	c.Set("email", user.Email)
	c.Set("user", user)

	c.Next()
}
