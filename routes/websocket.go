package routes

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes mounts the realtime endpoint. requireAuth must accept
// the token from the query string since browsers cannot set headers on upgrades.
func RegisterWebSocketRoutes(group *gin.RouterGroup, requireAuth gin.HandlerFunc, wsService services.WebSocketServiceInterface) {
	group.GET("/ws", requireAuth, func(c *gin.Context) {
		wsService.HandleConnection(c)
	})
}
