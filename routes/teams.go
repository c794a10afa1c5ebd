package routes

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterTeamRoutes(group *gin.RouterGroup, db *database.Database, teamService services.TeamServiceInterface) {
	group.POST("/teams", func(c *gin.Context) { CreateTeam(c, db, teamService) })
	group.GET("/teams", func(c *gin.Context) { GetPublicTeams(c, db, teamService) })
	group.GET("/teams/my-teams", func(c *gin.Context) { GetUserTeams(c, db, teamService) })
	group.GET("/teams/user/team-ids", func(c *gin.Context) { GetUserTeamIds(c, db, teamService) })
	group.POST("/teams/join", func(c *gin.Context) { JoinTeam(c, db, teamService) })
	group.GET("/teams/:id", func(c *gin.Context) { GetTeamById(c, db, teamService) })
	group.PUT("/teams/:id", func(c *gin.Context) { UpdateTeam(c, db, teamService) })
	group.DELETE("/teams/:id", func(c *gin.Context) { DeleteTeam(c, db, teamService) })
	group.POST("/teams/:id/leave", func(c *gin.Context) { LeaveTeam(c, db, teamService) })
	group.POST("/teams/:id/regenerate-join-code", func(c *gin.Context) { RegenerateJoinCode(c, db, teamService) })
	group.GET("/teams/:id/members", func(c *gin.Context) { GetTeamMembers(c, db, teamService) })
	group.POST("/teams/:id/members", func(c *gin.Context) { InviteUser(c, db, teamService) })
	group.DELETE("/teams/:id/members/:userId", func(c *gin.Context) { RemoveMember(c, db, teamService) })
	group.GET("/teams/:id/stats", func(c *gin.Context) { GetTeamStats(c, db, teamService) })
}

// teamRequest resolves the caller and the :id team for team-scoped handlers.
func teamRequest(c *gin.Context) (userID, teamID uuid.UUID, ok bool) {
	if userID, ok = currentUserID(c); !ok {
		return
	}
	teamID, ok = uuidParam(c, "id", "Invalid team ID")
	return
}

func CreateTeam(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.CreateTeamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	team, err := teamService.CreateTeam(db, userID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Team created successfully", team)
}

func GetPublicTeams(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	var query services.TeamQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}

	teams, err := teamService.GetPublicTeams(db, query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Public teams retrieved successfully", teams)
}

func GetUserTeams(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query services.TeamQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}

	teams, err := teamService.GetUserTeams(db, userID, query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "User teams retrieved successfully", teams)
}

func GetUserTeamIds(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := teamService.GetUserTeamIds(db, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "User team IDs retrieved successfully", ids)
}

func GetTeamById(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	team, err := teamService.GetTeamById(db, userID, teamID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Team retrieved successfully", team)
}

func JoinTeam(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.JoinTeamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	member, err := teamService.JoinTeam(db, userID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Successfully joined the team", member)
}

func LeaveTeam(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	if err := teamService.LeaveTeam(db, userID, teamID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Successfully left the team", nil)
}

func UpdateTeam(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	var input services.UpdateTeamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	team, err := teamService.UpdateTeam(db, userID, teamID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Team updated successfully", team)
}

func RegenerateJoinCode(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	code, err := teamService.RegenerateJoinCode(db, userID, teamID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Join code regenerated successfully", gin.H{"joinCode": code})
}

func GetTeamMembers(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	members, err := teamService.GetTeamMembers(db, userID, teamID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Team members retrieved successfully", members)
}

func InviteUser(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	var input services.InviteUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handleBindError(c, err)
		return
	}

	member, err := teamService.InviteUser(db, userID, teamID, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "User invited successfully", member)
}

func RemoveMember(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	if err := teamService.RemoveMember(db, userID, teamID, memberID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "User removed successfully", nil)
}

func DeleteTeam(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	if err := teamService.DeleteTeam(db, userID, teamID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Team deleted successfully", nil)
}

func GetTeamStats(c *gin.Context, db *database.Database, teamService services.TeamServiceInterface) {
	userID, teamID, ok := teamRequest(c)
	if !ok {
		return
	}

	stats, err := teamService.GetTeamStats(db, userID, teamID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "Team statistics retrieved successfully", stats)
}
