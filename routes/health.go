package routes

import (
	"log"
	"net/http"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
)

func RegisterHealthRoutes(group *gin.RouterGroup, db *database.Database) {
	group.GET("/health", func(c *gin.Context) { Health(c, db) })
}

func Health(c *gin.Context, db *database.Database) {
	if err := db.Ping(); err != nil {
		log.Printf("Health check failed: %v", err)
		response.Fail(c, http.StatusServiceUnavailable, "ServiceUnavailableError", "Database is unreachable")
		return
	}
	response.OK(c, "Service is healthy", gin.H{"database": "up"})
}
