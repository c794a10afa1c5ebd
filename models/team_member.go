package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRole is a user's role inside one team.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"  // Can edit and delete any task, manage members
	RoleMember MemberRole = "MEMBER" // Can work on own and assigned tasks
)

// MemberRoleFromString converts a string to a MemberRole
func MemberRoleFromString(roleStr string) (MemberRole, error) {
	switch roleStr {
	case "ADMIN":
		return RoleAdmin, nil
	case "MEMBER":
		return RoleMember, nil
	default:
		return "", errors.New("invalid role type")
	}
}

// TeamMember links a user to a team. (UserID, TeamID) is unique.
type TeamMember struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_team" json:"userId"`
	TeamID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_team;index" json:"teamId"`
	User     *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role     MemberRole `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`
	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joinedAt"`
}

// BeforeCreate is a GORM hook that runs before creating a new membership
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m TeamMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}

type TeamMemberResponse struct {
	ID       uuid.UUID    `json:"id"`
	Role     MemberRole   `json:"role"`
	JoinedAt time.Time    `json:"joinedAt"`
	User     *UserSummary `json:"user"`
}

func (m TeamMember) Response() TeamMemberResponse {
	resp := TeamMemberResponse{ID: m.ID, Role: m.Role, JoinedAt: m.JoinedAt}
	if m.User != nil {
		resp.User = m.User.Summary(true)
	}
	return resp
}
