package routes

import (
	"strconv"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
)

func RegisterTaskRoutes(group *gin.RouterGroup, db *database.Database, taskService services.TaskServiceInterface) {
	group.POST("/tasks", func(c *gin.Context) { CreateTask(c, db, taskService) })
	group.GET("/tasks", func(c *gin.Context) { GetTasks(c, db, taskService) })
	group.GET("/tasks/dashboard", func(c *gin.Context) { GetDashboard(c, db, taskService) })
	group.GET("/tasks/stats/:teamId", func(c *gin.Context) { GetTaskStats(c, db, taskService) })
	group.GET("/tasks/:id", func(c *gin.Context) { GetTaskById(c, db, taskService) })
	group.PUT("/tasks/:id", func(c *gin.Context) { UpdateTask(c, db, taskService) })
	group.PUT("/tasks/:id/reorder", func(c *gin.Context) { ReorderTask(c, db, taskService) })
	group.DELETE("/tasks/:id", func(c *gin.Context) { DeleteTask(c, db, taskService) })
}

func CreateTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	task, err := taskService.CreateTask(db, userID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Task created successfully", task.Response())
}

func GetTasks(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query services.TaskQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}

	tasks, err := taskService.GetTasks(db, userID, query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Tasks retrieved successfully", tasks)
}

func GetDashboard(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("importantTasksLimit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleError(c, services.NewError(services.ErrBadRequest, "importantTasksLimit must be an integer"))
			return
		}
		limit = parsed
	}

	dashboard, err := taskService.GetDashboard(db, userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Dashboard statistics retrieved successfully", dashboard)
}

func GetTaskStats(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := uuidParam(c, "teamId", "Invalid team ID")
	if !ok {
		return
	}

	stats, err := taskService.GetTaskStats(db, userID, teamID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Task statistics retrieved successfully", stats)
}

func GetTaskById(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	task, err := taskService.GetTaskById(db, userID, taskID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Task retrieved successfully", task.Response())
}

func UpdateTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	var input services.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	task, err := taskService.UpdateTask(db, userID, taskID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Task updated successfully", task.Response())
}

func ReorderTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	var input services.ReorderTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	task, err := taskService.ReorderTask(db, userID, taskID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Task reordered successfully", task.Response())
}

func DeleteTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	if err := taskService.DeleteTask(db, userID, taskID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Task deleted successfully", nil)
}
