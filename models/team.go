package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamType string

const (
	PublicTeam  TeamType = "PUBLIC"
	PrivateTeam TeamType = "PRIVATE"
)

// TeamTypeFromString converts a string to a TeamType
func TeamTypeFromString(s string) (TeamType, error) {
	switch TeamType(s) {
	case PublicTeam, PrivateTeam:
		return TeamType(s), nil
	default:
		return "", errors.New("invalid team type")
	}
}

type Team struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description,omitempty"`
	Type        TeamType  `gorm:"type:varchar(16);not null;default:'PUBLIC'" json:"type"`
	// JoinCode is set iff Type is PRIVATE.
	JoinCode  *string      `gorm:"uniqueIndex" json:"joinCode,omitempty"`
	OwnerID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner     *User        `gorm:"foreignKey:OwnerID" json:"-"`
	Members   []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks     []Task       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TeamSummary is the {id, name} projection embedded in task responses.
type TeamSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TeamResponse is what the team endpoints return.
type TeamResponse struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Type        TeamType     `json:"type"`
	JoinCode    *string      `json:"joinCode,omitempty"`
	OwnerID     uuid.UUID    `json:"ownerId"`
	Owner       *UserSummary `json:"owner,omitempty"`
	MemberCount int64        `json:"memberCount"`
	TaskCount   int64        `json:"taskCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type TasksByStatus struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Done       int64 `json:"done"`
}

type TeamStats struct {
	TotalMembers   int64         `json:"totalMembers"`
	TotalTasks     int64         `json:"totalTasks"`
	TasksByStatus  TasksByStatus `json:"tasksByStatus"`
	RecentActivity int64         `json:"recentActivity"`
}

// TeamList is one page of a team listing.
type TeamList struct {
	Teams      []TeamResponse `json:"teams"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}
