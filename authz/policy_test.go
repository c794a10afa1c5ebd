package authz

import (
	"testing"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskPermissions(t *testing.T) {
	creator := uuid.New()
	assignee := uuid.New()
	admin := uuid.New()
	other := uuid.New()

	task := &models.Task{ID: uuid.New(), CreatorID: creator, AssigneeID: &assignee}
	memberRole := &models.TeamMember{Role: models.RoleMember}
	adminRole := &models.TeamMember{Role: models.RoleAdmin}

	testCases := []struct {
		name      string
		userID    uuid.UUID
		member    *models.TeamMember
		canMutate bool
		canDelete bool
	}{
		{"creator", creator, memberRole, true, true},
		{"assignee", assignee, memberRole, true, false},
		{"admin", admin, adminRole, true, true},
		{"plain member", other, memberRole, false, false},
		{"non member", creator, nil, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.canMutate, CanMutateTask(tc.userID, task, tc.member))
			assert.Equal(t, tc.canDelete, CanDeleteTask(tc.userID, task, tc.member))
		})
	}
}

func TestTeamPermissions(t *testing.T) {
	owner := uuid.New()
	team := &models.Team{ID: uuid.New(), OwnerID: owner}

	assert.True(t, IsTeamOwner(owner, team))
	assert.False(t, IsTeamOwner(uuid.New(), team))
	assert.False(t, CanViewTeam(nil))
	assert.True(t, CanViewTeam(&models.TeamMember{Role: models.RoleMember}))
	assert.True(t, CanManageMembers(&models.TeamMember{Role: models.RoleAdmin}))
	assert.False(t, CanManageMembers(&models.TeamMember{Role: models.RoleMember}))
}
