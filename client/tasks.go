package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	Status      models.TaskStatus   `json:"status,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	TeamID      uuid.UUID           `json:"teamId"`
	AssigneeID  *uuid.UUID          `json:"assigneeId,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left alone.
// AssigneeID set to "" unassigns the task.
type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	Status      *models.TaskStatus   `json:"status,omitempty"`
	Order       *int                 `json:"order,omitempty"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
	AssigneeID  *string              `json:"assigneeId,omitempty"`
}

type TaskFilter struct {
	TeamID     *uuid.UUID
	Status     models.TaskStatus
	Priority   models.TaskPriority
	AssigneeID *uuid.UUID
	CreatorID  *uuid.UUID
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

func (f TaskFilter) values() url.Values {
	q := url.Values{}
	if f.TeamID != nil {
		q.Set("teamId", f.TeamID.String())
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.AssigneeID != nil {
		q.Set("assigneeId", f.AssigneeID.String())
	}
	if f.CreatorID != nil {
		q.Set("creatorId", f.CreatorID.String())
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (models.TaskResponse, error) {
	var task models.TaskResponse
	err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task)
	return task, err
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (models.TaskResponse, error) {
	var task models.TaskResponse
	err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, nil, &task)
	return task, err
}

func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) (models.TaskList, error) {
	var list models.TaskList
	err := c.do(ctx, http.MethodGet, "/tasks", filter.values(), nil, &list)
	return list, err
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (models.TaskResponse, error) {
	var task models.TaskResponse
	err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), nil, req, &task)
	return task, err
}

// ReorderTask moves a task to index newOrder of its column, or of newStatus
// when that is set.
func (c *Client) ReorderTask(ctx context.Context, id uuid.UUID, newOrder int, newStatus *models.TaskStatus) (models.TaskResponse, error) {
	body := struct {
		NewOrder  int                `json:"newOrder"`
		NewStatus *models.TaskStatus `json:"newStatus,omitempty"`
	}{NewOrder: newOrder, NewStatus: newStatus}

	var task models.TaskResponse
	err := c.do(ctx, http.MethodPut, "/tasks/"+id.String()+"/reorder", nil, body, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil, nil)
}

func (c *Client) Dashboard(ctx context.Context, importantTasksLimit int) (models.Dashboard, error) {
	q := url.Values{}
	if importantTasksLimit > 0 {
		q.Set("importantTasksLimit", strconv.Itoa(importantTasksLimit))
	}
	var dashboard models.Dashboard
	err := c.do(ctx, http.MethodGet, "/tasks/dashboard", q, nil, &dashboard)
	return dashboard, err
}

func (c *Client) TaskStats(ctx context.Context, teamID uuid.UUID) (models.TaskStats, error) {
	var stats models.TaskStats
	err := c.do(ctx, http.MethodGet, "/tasks/stats/"+teamID.String(), nil, nil, &stats)
	return stats, err
}

// LoadBoard fetches every task of a team, following pagination.
func (c *Client) LoadBoard(ctx context.Context, teamID uuid.UUID) ([]models.TaskResponse, error) {
	var tasks []models.TaskResponse
	filter := TaskFilter{TeamID: &teamID, Limit: 100, Page: 1}
	for {
		page, err := c.ListTasks(ctx, filter)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, page.Tasks...)
		if filter.Page >= page.TotalPages || len(page.Tasks) == 0 {
			return tasks, nil
		}
		filter.Page++
	}
}
