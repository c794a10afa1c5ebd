package routes

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes mounts register and login publicly; /auth/me runs behind requireAuth.
func RegisterAuthRoutes(group *gin.RouterGroup, db *database.Database, authService services.AuthServiceInterface, requireAuth gin.HandlerFunc) {
	auth := group.Group("/auth")
	{
		auth.POST("/register", func(c *gin.Context) { Register(c, db, authService) })
		auth.POST("/login", func(c *gin.Context) { Login(c, db, authService) })
		auth.GET("/me", requireAuth, GetProfile)
	}
}

func Register(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := authService.Register(db, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "User registered successfully.", result)
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := authService.Login(db, input.Email, input.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Login successful.", result)
}

func GetProfile(c *gin.Context) {
	value, exists := c.Get("user")
	user, ok := value.(models.User)
	if !exists || !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	response.OK(c, "Profile retrieved successfully.", user)
}
