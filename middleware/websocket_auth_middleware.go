package middleware

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/token"
	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware validates JWT tokens for WebSocket connections. Browsers
// cannot set headers on the upgrade request, so ?token= is accepted as well.
func WebSocketAuthMiddleware(db *database.Database, authService services.AuthServiceInterface, users services.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			response.Unauthorized(c, "Authentication required")
			return
		}

		authenticate(c, db, authService, users, tokenString)
	}
}
