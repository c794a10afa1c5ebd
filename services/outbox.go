package services

import (
	"errors"

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordEvent writes an outbox row in tx so it commits or rolls back with the change.
func recordEvent(tx *gorm.DB, eventType broker.EventType, entity, operation string, actorID uuid.UUID, teamID uuid.UUID, data interface{}) error {
	event, err := models.NewEvent(string(eventType), entity, operation, actorID.String(), data)
	if err != nil {
		return err
	}
	if teamID != uuid.Nil {
		event.ForTeam(teamID)
	}
	return tx.Create(event).Error
}

// findMembership returns nil, nil when userID is not a member of teamID.
func findMembership(tx *gorm.DB, userID, teamID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := tx.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func requireMembership(tx *gorm.DB, userID, teamID uuid.UUID) (*models.TeamMember, error) {
	member, err := findMembership(tx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotTeamMember
	}
	return member, nil
}

// teamIDsOf lists the teams userID belongs to.
func teamIDsOf(tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, err
}

func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
