package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	usernameChars    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	usernameEdge     = regexp.MustCompile(`^[._-]|[._-]$`)
	usernameRepeated = regexp.MustCompile(`[._-]{2,}`)
)

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewError(ErrValidation, "Invalid email format.")
	}
	return nil
}

func validateUsername(username string) error {
	var problems []string
	switch {
	case strings.TrimSpace(username) == "":
		return NewError(ErrValidation, "Username is required")
	case len(username) < 3:
		problems = append(problems, "Username must be at least 3 characters long")
	case len(username) > 30:
		problems = append(problems, "Username must not exceed 30 characters")
	}
	if !usernameChars.MatchString(username) {
		problems = append(problems, "Username can only contain letters, numbers, dots, hyphens, and underscores")
	}
	if usernameEdge.MatchString(username) {
		problems = append(problems, "Username cannot start or end with dots, hyphens, or underscores")
	}
	if usernameRepeated.MatchString(username) {
		problems = append(problems, "Username cannot contain consecutive dots, hyphens, or underscores")
	}
	if len(problems) > 0 {
		return NewError(ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}

func validatePassword(password string) error {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !lower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !digit {
		problems = append(problems, "Password must contain at least one number")
	}
	if len(problems) > 0 {
		return NewError(ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}

// sanitize trims input and strips angle brackets.
func sanitize(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize(*s)
	if v == "" {
		return nil
	}
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns search into a lowercase LIKE pattern matching it as a
// literal substring. Use it with ESCAPE '\'.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
