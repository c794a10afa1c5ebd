package services

import (
	"log"
	"math"
	"strings"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/authz"
	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"

	"gorm.io/gorm"
)

const (
	defaultTaskPage            = 1
	defaultTaskLimit           = 20
	maxTaskLimit               = 100
	defaultImportantTasksLimit = 5
	maxImportantTasksLimit     = 20
	maxTitleLength             = 200
	maxDescriptionLength       = 2000

	// endOfBucket clamps to the bucket length, i.e. appends.
	endOfBucket = math.MaxInt32
)

var (
	errCannotEditTask    = NewError(ErrForbidden, "You do not have permission to edit this task")
	errCannotDeleteTask  = NewError(ErrForbidden, "You do not have permission to delete this task")
	errCannotReorderTask = NewError(ErrForbidden, "You do not have permission to reorder this task")
	errAssigneeNotMember = NewError(ErrBadRequest, "Assignee is not a member of this team")
)

type CreateTaskInput struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=2000"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	DueDate     *time.Time          `json:"dueDate"`
	TeamID      uuid.UUID           `json:"teamId" binding:"required"`
	AssigneeID  *uuid.UUID          `json:"assigneeId"`
}

// UpdateTaskInput is a partial update. AssigneeID "" unassigns the task. Order,
// when present, is a placement index like ReorderTaskInput.NewOrder.
type UpdateTaskInput struct {
	Title       *string              `json:"title" binding:"omitempty,max=200"`
	Description *string              `json:"description" binding:"omitempty,max=2000"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Order       *int                 `json:"order"`
	DueDate     *time.Time           `json:"dueDate"`
	AssigneeID  *string              `json:"assigneeId"`
}

type ReorderTaskInput struct {
	NewOrder  *int               `json:"newOrder" binding:"required"`
	NewStatus *models.TaskStatus `json:"newStatus" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

type TaskQuery struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	AssigneeID string `form:"assigneeId"`
	CreatorID  string `form:"creatorId"`
	TeamID     string `form:"teamId"`
	DueFrom    string `form:"dueFrom"`
	DueTo      string `form:"dueTo"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type TaskServiceInterface interface {
	CreateTask(db *database.Database, userID uuid.UUID, input CreateTaskInput) (models.Task, error)
	GetTaskById(db *database.Database, userID, taskID uuid.UUID) (models.Task, error)
	GetTasks(db *database.Database, userID uuid.UUID, query TaskQuery) (models.TaskList, error)
	UpdateTask(db *database.Database, userID, taskID uuid.UUID, input UpdateTaskInput) (models.Task, error)
	DeleteTask(db *database.Database, userID, taskID uuid.UUID) error
	ReorderTask(db *database.Database, userID, taskID uuid.UUID, input ReorderTaskInput) (models.Task, error)
	GetDashboard(db *database.Database, userID uuid.UUID, importantTasksLimit int) (models.Dashboard, error)
	GetTaskStats(db *database.Database, userID, teamID uuid.UUID) (models.TaskStats, error)
}

type TaskService struct{}

func validateTitle(title string) (string, error) {
	title = sanitize(title)
	if title == "" {
		return "", NewError(ErrValidation, "Task title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", NewError(ErrValidation, "Task title must not exceed 200 characters")
	}
	return title, nil
}

func validateDescription(description *string) (*string, error) {
	description = sanitizePtr(description)
	if description != nil && len([]rune(*description)) > maxDescriptionLength {
		return nil, NewError(ErrValidation, "Task description must not exceed 2000 characters")
	}
	return description, nil
}

func loadTask(tx *gorm.DB, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := tx.Preload("Creator").
		Preload("Assignee").
		Preload("Team").
		First(&task, "id = ?", id).Error
	if err != nil {
		return models.Task{}, translateNotFound(err, ErrTaskNotFound)
	}
	return task, nil
}

// lockTask loads a task, takes its team lock and reloads it so status and
// order reflect every write committed before the lock was granted.
func lockTask(tx *gorm.DB, id uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, translateNotFound(err, ErrTaskNotFound)
	}
	if _, err := database.LockTeam(tx, task.TeamID); err != nil {
		return models.Task{}, translateNotFound(err, ErrTeamNotFound)
	}
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, translateNotFound(err, ErrTaskNotFound)
	}
	return task, nil
}

func taskEventData(task models.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":     task.ID.String(),
		"teamId": task.TeamID.String(),
		"title":  task.Title,
		"status": task.Status,
		"order":  task.Order,
	}
}

func (s *TaskService) CreateTask(db *database.Database, userID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return models.Task{}, err
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return models.Task{}, err
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		if priority, err = models.TaskPriorityFromString(string(input.Priority)); err != nil {
			return models.Task{}, NewError(ErrValidation, "Invalid task priority")
		}
	}
	status := models.StatusTodo
	if input.Status != "" {
		if status, err = models.TaskStatusFromString(string(input.Status)); err != nil {
			return models.Task{}, NewError(ErrValidation, "Invalid task status")
		}
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	if _, err := database.LockTeam(tx, input.TeamID); err != nil {
		tx.Rollback()
		return models.Task{}, translateNotFound(err, ErrTeamNotFound)
	}

	if _, err := requireMembership(tx, userID, input.TeamID); err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if input.AssigneeID != nil {
		assignee, err := findMembership(tx, *input.AssigneeID, input.TeamID)
		if err != nil {
			tx.Rollback()
			return models.Task{}, err
		}
		if assignee == nil {
			tx.Rollback()
			return models.Task{}, errAssigneeNotMember
		}
	}

	order, err := nextOrder(tx, input.TeamID, status)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	task := models.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
		Order:       order,
		DueDate:     input.DueDate,
		TeamID:      input.TeamID,
		CreatorID:   userID,
		AssigneeID:  input.AssigneeID,
	}

	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := recordEvent(tx, broker.TaskCreated, "task", "create", userID, task.TeamID, taskEventData(task)); err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Task{}, err
	}

	log.Printf("Task %s created in team %s at %s/%d", task.ID, task.TeamID, task.Status, task.Order)
	return loadTask(db.DB, task.ID)
}

func (s *TaskService) GetTaskById(db *database.Database, userID, taskID uuid.UUID) (models.Task, error) {
	task, err := loadTask(db.DB, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if _, err := requireMembership(db.DB, userID, task.TeamID); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) UpdateTask(db *database.Database, userID, taskID uuid.UUID, input UpdateTaskInput) (models.Task, error) {
	updates := map[string]interface{}{}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return models.Task{}, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description, err := validateDescription(input.Description)
		if err != nil {
			return models.Task{}, err
		}
		updates["description"] = description
	}
	if input.Priority != nil {
		priority, err := models.TaskPriorityFromString(string(*input.Priority))
		if err != nil {
			return models.Task{}, NewError(ErrValidation, "Invalid task priority")
		}
		updates["priority"] = priority
	}
	if input.DueDate != nil {
		updates["due_date"] = input.DueDate
	}
	if input.Order != nil && *input.Order < 0 {
		return models.Task{}, NewError(ErrBadRequest, "order must be a non-negative integer")
	}

	var newStatus *models.TaskStatus
	if input.Status != nil {
		status, err := models.TaskStatusFromString(string(*input.Status))
		if err != nil {
			return models.Task{}, NewError(ErrValidation, "Invalid task status")
		}
		newStatus = &status
	}

	var newAssignee *uuid.UUID
	if input.AssigneeID != nil && *input.AssigneeID != "" {
		id, err := uuid.Parse(*input.AssigneeID)
		if err != nil {
			return models.Task{}, NewError(ErrBadRequest, "Invalid assignee id")
		}
		newAssignee = &id
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	task, err := lockTask(tx, taskID)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	member, err := requireMembership(tx, userID, task.TeamID)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}
	if !authz.CanMutateTask(userID, &task, member) {
		tx.Rollback()
		return models.Task{}, errCannotEditTask
	}

	if input.AssigneeID != nil {
		if newAssignee != nil {
			assignee, err := findMembership(tx, *newAssignee, task.TeamID)
			if err != nil {
				tx.Rollback()
				return models.Task{}, err
			}
			if assignee == nil {
				tx.Rollback()
				return models.Task{}, errAssigneeNotMember
			}
		}
		updates["assignee_id"] = newAssignee
	}

	status := task.Status
	if newStatus != nil {
		status = *newStatus
	}
	switch {
	case input.Order != nil:
		err = placeTask(tx, &task, status, *input.Order)
	case status != task.Status:
		err = placeTask(tx, &task, status, endOfBucket)
	}
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if len(updates) > 0 {
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			tx.Rollback()
			return models.Task{}, err
		}
	}

	if err := recordEvent(tx, broker.TaskUpdated, "task", "update", userID, task.TeamID, taskEventData(task)); err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Task{}, err
	}

	return loadTask(db.DB, task.ID)
}

func (s *TaskService) DeleteTask(db *database.Database, userID, taskID uuid.UUID) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	task, err := lockTask(tx, taskID)
	if err != nil {
		tx.Rollback()
		return err
	}

	member, err := requireMembership(tx, userID, task.TeamID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if !authz.CanDeleteTask(userID, &task, member) {
		tx.Rollback()
		return errCannotDeleteTask
	}

	if err := tx.Delete(&task).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := compactBucket(tx, task.TeamID, task.Status, task.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := recordEvent(tx, broker.TaskDeleted, "task", "delete", userID, task.TeamID, taskEventData(task)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *TaskService) ReorderTask(db *database.Database, userID, taskID uuid.UUID, input ReorderTaskInput) (models.Task, error) {
	if input.NewOrder == nil {
		return models.Task{}, NewError(ErrBadRequest, "newOrder is required")
	}
	if *input.NewOrder < 0 {
		return models.Task{}, NewError(ErrBadRequest, "newOrder must be a non-negative integer")
	}
	var newStatus *models.TaskStatus
	if input.NewStatus != nil {
		status, err := models.TaskStatusFromString(string(*input.NewStatus))
		if err != nil {
			return models.Task{}, NewError(ErrBadRequest, "Invalid task status")
		}
		newStatus = &status
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	task, err := lockTask(tx, taskID)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	member, err := requireMembership(tx, userID, task.TeamID)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}
	if !authz.CanMutateTask(userID, &task, member) {
		tx.Rollback()
		return models.Task{}, errCannotReorderTask
	}

	fromStatus := task.Status
	status := task.Status
	if newStatus != nil {
		status = *newStatus
	}

	if err := placeTask(tx, &task, status, *input.NewOrder); err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	data := taskEventData(task)
	data["fromStatus"] = fromStatus
	if err := recordEvent(tx, broker.TaskReordered, "task", "reorder", userID, task.TeamID, data); err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Task{}, err
	}

	return loadTask(db.DB, task.ID)
}

// parseDueBound accepts RFC3339 or YYYY-MM-DD. A date-only upper bound covers the whole day.
func parseDueBound(value string, upper bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, NewError(ErrBadRequest, "Invalid date: "+value)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func taskSortExpression(sortBy, sortOrder string) (string, error) {
	dir := "ASC"
	switch strings.ToLower(sortOrder) {
	case "", "asc":
	case "desc":
		dir = "DESC"
	default:
		return "", NewError(ErrBadRequest, "sortOrder must be asc or desc")
	}

	var column string
	switch sortBy {
	case "", "order":
		column = `"order"`
	case "createdAt":
		column = "created_at"
	case "updatedAt":
		column = "updated_at"
	case "title":
		column = "title"
	case "dueDate":
		column = "due_date"
	case "priority":
		column = priorityRankSQL
	default:
		return "", NewError(ErrBadRequest, "Invalid sortBy field: "+sortBy)
	}
	return column + " " + dir + ", created_at ASC, id ASC", nil
}

// priorityRankSQL ranks LOW < MEDIUM < HIGH.
const priorityRankSQL = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END"

func (s *TaskService) GetTasks(db *database.Database, userID uuid.UUID, query TaskQuery) (models.TaskList, error) {
	page := query.Page
	if page == 0 {
		page = defaultTaskPage
	}
	limit := query.Limit
	if limit == 0 {
		limit = defaultTaskLimit
	}
	if page < 1 {
		return models.TaskList{}, NewError(ErrBadRequest, "page must be at least 1")
	}
	if limit < 1 || limit > maxTaskLimit {
		return models.TaskList{}, NewError(ErrBadRequest, "limit must be between 1 and 100")
	}

	orderBy, err := taskSortExpression(query.SortBy, query.SortOrder)
	if err != nil {
		return models.TaskList{}, err
	}

	q := db.DB.Model(&models.Task{})

	if query.TeamID != "" {
		teamID, err := uuid.Parse(query.TeamID)
		if err != nil {
			return models.TaskList{}, NewError(ErrBadRequest, "Invalid team id")
		}
		if _, err := requireMembership(db.DB, userID, teamID); err != nil {
			return models.TaskList{}, err
		}
		q = q.Where("team_id = ?", teamID)
	} else {
		q = q.Where("team_id IN (?)", db.DB.Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", userID))
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := containsPattern(search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if query.Status != "" {
		status, err := models.TaskStatusFromString(query.Status)
		if err != nil {
			return models.TaskList{}, NewError(ErrBadRequest, "Invalid task status")
		}
		q = q.Where("status = ?", status)
	}
	if query.Priority != "" {
		priority, err := models.TaskPriorityFromString(query.Priority)
		if err != nil {
			return models.TaskList{}, NewError(ErrBadRequest, "Invalid task priority")
		}
		q = q.Where("priority = ?", priority)
	}
	if query.AssigneeID != "" {
		id, err := uuid.Parse(query.AssigneeID)
		if err != nil {
			return models.TaskList{}, NewError(ErrBadRequest, "Invalid assignee id")
		}
		q = q.Where("assignee_id = ?", id)
	}
	if query.CreatorID != "" {
		id, err := uuid.Parse(query.CreatorID)
		if err != nil {
			return models.TaskList{}, NewError(ErrBadRequest, "Invalid creator id")
		}
		q = q.Where("creator_id = ?", id)
	}
	dueFrom, err := parseDueBound(query.DueFrom, false)
	if err != nil {
		return models.TaskList{}, err
	}
	if dueFrom != nil {
		q = q.Where("due_date >= ?", *dueFrom)
	}
	dueTo, err := parseDueBound(query.DueTo, true)
	if err != nil {
		return models.TaskList{}, err
	}
	if dueTo != nil {
		q = q.Where("due_date <= ?", *dueTo)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.TaskList{}, err
	}

	var tasks []models.Task
	if err := q.Preload("Creator").
		Preload("Assignee").
		Preload("Team").
		Order(orderBy).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return models.TaskList{}, err
	}

	list := models.TaskList{
		Tasks:      make([]models.TaskResponse, 0, len(tasks)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	for _, t := range tasks {
		list.Tasks = append(list.Tasks, t.Response())
	}
	return list, nil
}

func (s *TaskService) GetDashboard(db *database.Database, userID uuid.UUID, importantTasksLimit int) (models.Dashboard, error) {
	if importantTasksLimit == 0 {
		importantTasksLimit = defaultImportantTasksLimit
	}
	if importantTasksLimit < 1 || importantTasksLimit > maxImportantTasksLimit {
		return models.Dashboard{}, NewError(ErrBadRequest, "importantTasksLimit must be between 1 and 20")
	}

	dashboard := models.Dashboard{ImportantTasks: []models.TaskResponse{}}

	teamIDs, err := teamIDsOf(db.DB, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	if len(teamIDs) == 0 {
		return dashboard, nil
	}
	dashboard.ActiveTeams = len(teamIDs)

	assigned := db.DB.Model(&models.Task{}).
		Where("assignee_id = ? AND team_id IN ?", userID, teamIDs).
		Session(&gorm.Session{})

	if err := assigned.Count(&dashboard.TotalTasks).Error; err != nil {
		return models.Dashboard{}, err
	}
	if err := assigned.Where("status = ?", models.StatusDone).Count(&dashboard.CompletedTasks).Error; err != nil {
		return models.Dashboard{}, err
	}

	var important []models.Task
	if err := assigned.
		Where("status IN ?", []models.TaskStatus{models.StatusTodo, models.StatusInProgress}).
		Preload("Creator").
		Preload("Assignee").
		Preload("Team").
		Order(priorityRankSQL + " DESC, " + bucketOrder).
		Limit(importantTasksLimit).
		Find(&important).Error; err != nil {
		return models.Dashboard{}, err
	}
	for _, t := range important {
		dashboard.ImportantTasks = append(dashboard.ImportantTasks, t.Response())
	}
	return dashboard, nil
}

func (s *TaskService) GetTaskStats(db *database.Database, userID, teamID uuid.UUID) (models.TaskStats, error) {
	if _, err := requireMembership(db.DB, userID, teamID); err != nil {
		return models.TaskStats{}, err
	}

	team := db.DB.Model(&models.Task{}).Where("team_id = ?", teamID).Session(&gorm.Session{})

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	if err := team.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return models.TaskStats{}, err
	}

	var stats models.TaskStats
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case models.StatusTodo:
			stats.Todo = r.Count
		case models.StatusInProgress:
			stats.InProgress = r.Count
		case models.StatusDone:
			stats.Done = r.Count
		}
	}

	if err := team.Where("due_date < ? AND status <> ?", time.Now().UTC(), models.StatusDone).
		Count(&stats.Overdue).Error; err != nil {
		return models.TaskStats{}, err
	}
	if err := team.Where("priority = ?", models.PriorityHigh).Count(&stats.HighPriority).Error; err != nil {
		return models.TaskStats{}, err
	}
	if err := team.Where("creator_id = ? OR assignee_id = ?", userID, userID).Count(&stats.MyTasks).Error; err != nil {
		return models.TaskStats{}, err
	}
	return stats, nil
}

var TaskServiceInstance TaskServiceInterface = &TaskService{}
