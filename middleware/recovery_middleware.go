package middleware

import (
	"log"
	"runtime/debug"

	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware turns panics into the standard 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic on %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		response.InternalError(c)
	})
}
