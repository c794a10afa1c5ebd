package database

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockTeam takes a row lock on the team inside tx. Every write that changes a
// bucket's order values holds it until commit. The SQLite driver drops the
// FOR UPDATE clause and relies on its single writer instead.
func LockTeam(tx *gorm.DB, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", teamID).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}
