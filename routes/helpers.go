package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func init() {
	// Report JSON/form field names in binding errors instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	}
}

type errorMapping struct {
	kind   error
	status int
	name   string
}

var errorMappings = []errorMapping{
	{services.ErrNotFound, http.StatusNotFound, "NotFoundError"},
	{services.ErrForbidden, http.StatusForbidden, "ForbiddenError"},
	{services.ErrValidation, http.StatusBadRequest, "ValidationError"},
	{services.ErrBadRequest, http.StatusBadRequest, "BadRequestError"},
	{services.ErrConflict, http.StatusConflict, "ConflictError"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "UnauthorizedError"},
}

// handleError maps service errors to the error envelope. Anything unclassified
// is logged and answered with a generic 500.
func handleError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			response.Fail(c, m.status, m.name, err.Error())
			return
		}
	}
	log.Printf("Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	response.InternalError(c)
}

// handleBindError answers malformed request bodies and query strings with 400.
func handleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.Fail(c, http.StatusBadRequest, "BadRequestError", "Invalid request payload")
		return
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	response.Fail(c, http.StatusBadRequest, "ValidationError", strings.Join(messages, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// currentUserID returns the caller set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "BadRequestError", message)
		return uuid.Nil, false
	}
	return id, true
}
