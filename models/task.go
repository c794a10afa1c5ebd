package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Statuses lists the board columns left to right.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func TaskStatusFromString(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return TaskStatus(s), nil
	default:
		return "", errors.New("invalid task status")
	}
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func TaskPriorityFromString(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), nil
	default:
		return "", errors.New("invalid task priority")
	}
}

// Rank orders priorities LOW < MEDIUM < HIGH.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Task is a card on a team board. Order is its position inside the
// (TeamID, Status) bucket.
type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description *string      `gorm:"size:2000" json:"description,omitempty"`
	Priority    TaskPriority `gorm:"type:varchar(16);not null;default:'MEDIUM'" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(16);not null;default:'TODO';index:idx_task_bucket,priority:2" json:"status"`
	Order       int          `gorm:"column:order;not null;default:0;index:idx_task_bucket,priority:3" json:"order"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	TeamID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_task_bucket,priority:1" json:"teamId"`
	Team        *Team        `gorm:"foreignKey:TeamID" json:"-"`
	CreatorID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"creatorId"`
	Creator     *User        `gorm:"foreignKey:CreatorID" json:"-"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;index" json:"assigneeId,omitempty"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskResponse is the wire shape of a task, with its creator, assignee and team embedded.
type TaskResponse struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Order       int          `json:"order"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	TeamID      uuid.UUID    `json:"teamId"`
	CreatorID   uuid.UUID    `json:"creatorId"`
	AssigneeID  *uuid.UUID   `json:"assigneeId,omitempty"`
	Creator     *UserSummary `json:"creator,omitempty"`
	Assignee    *UserSummary `json:"assignee,omitempty"`
	Team        *TeamSummary `json:"team,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t Task) Response() TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Order:       t.Order,
		DueDate:     t.DueDate,
		TeamID:      t.TeamID,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Creator != nil {
		resp.Creator = t.Creator.Summary(false)
	}
	if t.Assignee != nil {
		resp.Assignee = t.Assignee.Summary(false)
	}
	if t.Team != nil {
		resp.Team = &TeamSummary{ID: t.Team.ID, Name: t.Team.Name}
	}
	return resp
}

// TaskList is one page of a filtered task listing.
type TaskList struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type Dashboard struct {
	TotalTasks     int64          `json:"totalTasks"`
	CompletedTasks int64          `json:"completedTasks"`
	ActiveTeams    int            `json:"activeTeams"`
	ImportantTasks []TaskResponse `json:"importantTasks"`
}

type TaskStats struct {
	Total        int64 `json:"total"`
	Todo         int64 `json:"todo"`
	InProgress   int64 `json:"inProgress"`
	Done         int64 `json:"done"`
	Overdue      int64 `json:"overdue"`
	HighPriority int64 `json:"highPriority"`
	MyTasks      int64 `json:"myTasks"`
}
