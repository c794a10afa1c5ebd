package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// DefaultErrorMessage is the only text clients see for unclassified failures.
	DefaultErrorMessage = "An unexpected error occurred"
)

type ErrorDetail struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
}

// Envelope wraps every API response body.
type Envelope struct {
	Message    string       `json:"message"`
	Status     string       `json:"status"`
	StatusCode int          `json:"statusCode"`
	Data       interface{}  `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Message:    message,
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Data:       data,
	})
}

func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// Fail aborts the request with an error envelope.
func Fail(c *gin.Context, statusCode int, name, message string) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Message:    message,
		Status:     StatusError,
		StatusCode: statusCode,
		Error: &ErrorDetail{
			Name:       name,
			Path:       c.Request.URL.Path,
			StatusCode: statusCode,
		},
	})
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "UnauthorizedError", message)
}

func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "InternalServerError", DefaultErrorMessage)
}
