package authz

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

// A nil member means the caller has no membership in the team.

func CanViewTeam(member *models.TeamMember) bool {
	return member != nil
}

func IsAdmin(member *models.TeamMember) bool {
	return member != nil && member.IsAdmin()
}

// CanMutateTask covers update and reorder: creator, assignee or team admin.
func CanMutateTask(userID uuid.UUID, task *models.Task, member *models.TeamMember) bool {
	if member == nil || task == nil {
		return false
	}
	if task.CreatorID == userID || IsAdmin(member) {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == userID
}

func CanDeleteTask(userID uuid.UUID, task *models.Task, member *models.TeamMember) bool {
	if member == nil || task == nil {
		return false
	}
	return task.CreatorID == userID || IsAdmin(member)
}

func IsTeamOwner(userID uuid.UUID, team *models.Team) bool {
	return team != nil && team.OwnerID == userID
}

func CanManageMembers(member *models.TeamMember) bool {
	return IsAdmin(member)
}

// CanSeeJoinCode hides private join codes from non-members.
func CanSeeJoinCode(member *models.TeamMember) bool {
	return member != nil
}
