package testutils

import (
	"fmt"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

// CreateUser inserts a user whose email and username derive from name.
func CreateUser(db *database.Database, name string) models.User {
	user := models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		panic(err)
	}
	return user
}

// CreateTeam inserts a team owned by owner, with owner as its admin.
func CreateTeam(db *database.Database, owner models.User, name string, teamType models.TeamType) models.Team {
	team := models.Team{
		ID:      uuid.New(),
		Name:    name,
		Type:    teamType,
		OwnerID: owner.ID,
	}
	if teamType == models.PrivateTeam {
		code := uuid.NewString()[:10]
		team.JoinCode = &code
	}
	if err := db.DB.Create(&team).Error; err != nil {
		panic(err)
	}
	AddMember(db, team, owner, models.RoleAdmin)
	return team
}

func AddMember(db *database.Database, team models.Team, user models.User, role models.MemberRole) models.TeamMember {
	member := models.TeamMember{
		ID:     uuid.New(),
		TeamID: team.ID,
		UserID: user.ID,
		Role:   role,
	}
	if err := db.DB.Create(&member).Error; err != nil {
		panic(err)
	}
	return member
}

// CreateTask inserts a task directly, bypassing ordering rules, so tests can
// arrange buckets with duplicate or sparse orders.
func CreateTask(db *database.Database, team models.Team, creator models.User, title string, status models.TaskStatus, order int) models.Task {
	task := models.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
		Order:     order,
		TeamID:    team.ID,
		CreatorID: creator.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.DB.Create(&task).Error; err != nil {
		panic(err)
	}
	return task
}
