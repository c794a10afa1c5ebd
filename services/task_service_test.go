package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/ProsperCoded/Mini-Jira-Clone/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boardFixture struct {
	db      *database.Database
	owner   models.User
	member  models.User
	other   models.User
	team    models.Team
	service *TaskService
}

func setupBoard(t *testing.T) *boardFixture {
	t.Helper()
	db, close := testutils.SetupTestDB()
	t.Cleanup(close)

	owner := testutils.CreateUser(db, "owner")
	member := testutils.CreateUser(db, "member")
	other := testutils.CreateUser(db, "outsider")
	team := testutils.CreateTeam(db, owner, "Platform", models.PublicTeam)
	testutils.AddMember(db, team, member, models.RoleMember)

	return &boardFixture{db: db, owner: owner, member: member, other: other, team: team, service: &TaskService{}}
}

func (f *boardFixture) create(t *testing.T, userID uuid.UUID, title string, mutate ...func(*CreateTaskInput)) models.Task {
	t.Helper()
	input := CreateTaskInput{Title: title, TeamID: f.team.ID}
	for _, m := range mutate {
		m(&input)
	}
	task, err := f.service.CreateTask(f.db, userID, input)
	require.NoError(t, err)
	return task
}

// bucket lists titles and orders of one column in canonical order.
func (f *boardFixture) bucket(t *testing.T, status models.TaskStatus) ([]string, []int) {
	t.Helper()
	var tasks []models.Task
	require.NoError(t, f.db.DB.Where("team_id = ? AND status = ?", f.team.ID, status).Order(bucketOrder).Find(&tasks).Error)
	titles := make([]string, len(tasks))
	orders := make([]int, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
		orders[i] = task.Order
	}
	return titles, orders
}

func intPtr(i int) *int { return &i }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func TestCreateTask_AssignsConsecutiveOrders(t *testing.T) {
	f := setupBoard(t)

	for i, title := range []string{"A", "B", "C"} {
		task := f.create(t, f.owner.ID, title)
		assert.Equal(t, i, task.Order)
		assert.Equal(t, models.StatusTodo, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		require.NotNil(t, task.Creator)
		assert.Equal(t, f.owner.ID, task.Creator.ID)
	}

	done := f.create(t, f.member.ID, "Shipped", func(in *CreateTaskInput) { in.Status = models.StatusDone })
	assert.Equal(t, 0, done.Order)

	var events int64
	require.NoError(t, f.db.DB.Model(&models.Event{}).Where("event = ?", string(broker.TaskCreated)).Count(&events).Error)
	assert.Equal(t, int64(4), events)
}

func TestCreateTask_Validation(t *testing.T) {
	f := setupBoard(t)
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name  string
		input CreateTaskInput
		kind  error
	}{
		{"blank title", CreateTaskInput{Title: "  <> ", TeamID: f.team.ID}, ErrValidation},
		{"long title", CreateTaskInput{Title: string(long), TeamID: f.team.ID}, ErrValidation},
		{"bad priority", CreateTaskInput{Title: "ok", Priority: "URGENT", TeamID: f.team.ID}, ErrValidation},
		{"unknown team", CreateTaskInput{Title: "ok", TeamID: uuid.New()}, ErrNotFound},
		{"assignee outside team", CreateTaskInput{Title: "ok", TeamID: f.team.ID, AssigneeID: &f.other.ID}, ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateTask(f.db, f.owner.ID, tt.input)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestReorderTask_WithinColumn(t *testing.T) {
	f := setupBoard(t)
	f.create(t, f.owner.ID, "A")
	f.create(t, f.owner.ID, "B")
	c := f.create(t, f.owner.ID, "C")

	moved, err := f.service.ReorderTask(f.db, f.owner.ID, c.ID, ReorderTaskInput{NewOrder: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Order)

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"C", "A", "B"}, titles)
	assert.Equal(t, []int{0, 1, 2}, orders)

	var events int64
	require.NoError(t, f.db.DB.Model(&models.Event{}).Where("event = ?", string(broker.TaskReordered)).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestReorderTask_AcrossColumns(t *testing.T) {
	f := setupBoard(t)
	a := f.create(t, f.owner.ID, "A")
	f.create(t, f.owner.ID, "B")
	f.create(t, f.owner.ID, "C")
	inProgress := func(in *CreateTaskInput) { in.Status = models.StatusInProgress }
	f.create(t, f.owner.ID, "X", inProgress)
	f.create(t, f.owner.ID, "Y", inProgress)

	moved, err := f.service.ReorderTask(f.db, f.owner.ID, a.ID, ReorderTaskInput{
		NewOrder:  intPtr(1),
		NewStatus: statusPtr(models.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, moved.Status)
	assert.Equal(t, 1, moved.Order)

	todo, todoOrders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"B", "C"}, todo)
	assert.Equal(t, []int{0, 1}, todoOrders)

	doing, doingOrders := f.bucket(t, models.StatusInProgress)
	assert.Equal(t, []string{"X", "A", "Y"}, doing)
	assert.Equal(t, []int{0, 1, 2}, doingOrders)
}

func TestReorderTask_ClampsPastEnd(t *testing.T) {
	f := setupBoard(t)
	a := f.create(t, f.owner.ID, "A")
	f.create(t, f.owner.ID, "B")

	moved, err := f.service.ReorderTask(f.db, f.owner.ID, a.ID, ReorderTaskInput{NewOrder: intPtr(99)})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Order)

	titles, _ := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"B", "A"}, titles)
}

func TestReorderTask_RejectsInvalidInput(t *testing.T) {
	f := setupBoard(t)
	a := f.create(t, f.owner.ID, "A")

	_, err := f.service.ReorderTask(f.db, f.owner.ID, a.ID, ReorderTaskInput{})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = f.service.ReorderTask(f.db, f.owner.ID, a.ID, ReorderTaskInput{NewOrder: intPtr(-1)})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = f.service.ReorderTask(f.db, f.owner.ID, a.ID, ReorderTaskInput{NewOrder: intPtr(0), NewStatus: statusPtr("BLOCKED")})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = f.service.ReorderTask(f.db, f.owner.ID, uuid.New(), ReorderTaskInput{NewOrder: intPtr(0)})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBucketOrder_BreaksTiesByCreationThenID(t *testing.T) {
	f := setupBoard(t)
	base := time.Now().UTC().Add(-time.Hour)

	late := testutils.CreateTask(f.db, f.team, f.owner, "late", models.StatusTodo, 0)
	early := testutils.CreateTask(f.db, f.team, f.owner, "early", models.StatusTodo, 0)
	require.NoError(t, f.db.DB.Model(&late).UpdateColumn("created_at", base.Add(time.Minute)).Error)
	require.NoError(t, f.db.DB.Model(&early).UpdateColumn("created_at", base).Error)

	list, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{TeamID: f.team.ID.String()})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "early", list.Tasks[0].Title)
	assert.Equal(t, "late", list.Tasks[1].Title)

	// The next write on the bucket makes the orders dense again.
	added := f.create(t, f.owner.ID, "new")
	_, err = f.service.ReorderTask(f.db, f.owner.ID, added.ID, ReorderTaskInput{NewOrder: intPtr(0)})
	require.NoError(t, err)

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"new", "early", "late"}, titles)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestTaskOperations_ForbiddenForNonMembers(t *testing.T) {
	f := setupBoard(t)
	task := f.create(t, f.owner.ID, "A")
	title := "changed"

	_, err := f.service.CreateTask(f.db, f.other.ID, CreateTaskInput{Title: "x", TeamID: f.team.ID})
	assert.True(t, errors.Is(err, ErrForbidden), "create: %v", err)

	_, err = f.service.GetTaskById(f.db, f.other.ID, task.ID)
	assert.True(t, errors.Is(err, ErrForbidden), "get: %v", err)

	_, err = f.service.UpdateTask(f.db, f.other.ID, task.ID, UpdateTaskInput{Title: &title})
	assert.True(t, errors.Is(err, ErrForbidden), "update: %v", err)

	err = f.service.DeleteTask(f.db, f.other.ID, task.ID)
	assert.True(t, errors.Is(err, ErrForbidden), "delete: %v", err)

	_, err = f.service.ReorderTask(f.db, f.other.ID, task.ID, ReorderTaskInput{NewOrder: intPtr(0)})
	assert.True(t, errors.Is(err, ErrForbidden), "reorder: %v", err)

	_, err = f.service.GetTasks(f.db, f.other.ID, TaskQuery{TeamID: f.team.ID.String()})
	assert.True(t, errors.Is(err, ErrForbidden), "list: %v", err)

	_, err = f.service.GetTaskStats(f.db, f.other.ID, f.team.ID)
	assert.True(t, errors.Is(err, ErrForbidden), "stats: %v", err)
}

func TestDeleteTask_Permissions(t *testing.T) {
	f := setupBoard(t)
	third := testutils.CreateUser(f.db, "third")
	testutils.AddMember(f.db, f.team, third, models.RoleMember)

	assigned := f.create(t, f.owner.ID, "assigned", func(in *CreateTaskInput) { in.AssigneeID = &f.member.ID })
	own := f.create(t, f.member.ID, "own")
	f.create(t, f.owner.ID, "tail")

	// Assignee may edit but not delete.
	title := "assigned (edited)"
	updated, err := f.service.UpdateTask(f.db, f.member.ID, assigned.ID, UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	err = f.service.DeleteTask(f.db, f.member.ID, assigned.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	// Unrelated members may do neither.
	_, err = f.service.UpdateTask(f.db, third.ID, own.ID, UpdateTaskInput{Title: &title})
	assert.True(t, errors.Is(err, ErrForbidden))

	// Creator without ADMIN can delete.
	require.NoError(t, f.service.DeleteTask(f.db, f.member.ID, own.ID))

	// ADMIN can delete anything.
	require.NoError(t, f.service.DeleteTask(f.db, f.owner.ID, assigned.ID))

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"tail"}, titles)
	assert.Equal(t, []int{0}, orders)

	_, err = f.service.GetTaskById(f.db, f.owner.ID, own.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateTask_StatusChangeAppendsToColumn(t *testing.T) {
	f := setupBoard(t)
	a := f.create(t, f.owner.ID, "A")
	f.create(t, f.owner.ID, "B")
	f.create(t, f.owner.ID, "D", func(in *CreateTaskInput) { in.Status = models.StatusDone })

	updated, err := f.service.UpdateTask(f.db, f.owner.ID, a.ID, UpdateTaskInput{Status: statusPtr(models.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.Equal(t, 1, updated.Order)

	todo, todoOrders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"B"}, todo)
	assert.Equal(t, []int{0}, todoOrders)
}

func TestUpdateTask_ExplicitOrderPlacesTask(t *testing.T) {
	f := setupBoard(t)
	f.create(t, f.owner.ID, "A")
	f.create(t, f.owner.ID, "B")
	c := f.create(t, f.owner.ID, "C")

	title := "C2"
	updated, err := f.service.UpdateTask(f.db, f.owner.ID, c.ID, UpdateTaskInput{Title: &title, Order: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "C2", updated.Title)
	assert.Equal(t, 0, updated.Order)

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"C2", "A", "B"}, titles)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestUpdateTask_FieldsOnlyKeepOrder(t *testing.T) {
	f := setupBoard(t)
	f.create(t, f.owner.ID, "A")
	b := f.create(t, f.owner.ID, "B")
	f.create(t, f.owner.ID, "C")

	title := "B2"
	high := models.PriorityHigh
	updated, err := f.service.UpdateTask(f.db, f.owner.ID, b.ID, UpdateTaskInput{Title: &title, Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Order)
	assert.Equal(t, models.StatusTodo, updated.Status)

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"A", "B2", "C"}, titles)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestReorderTask_ForbiddenForUnrelatedMember(t *testing.T) {
	f := setupBoard(t)
	f.create(t, f.owner.ID, "A")
	b := f.create(t, f.owner.ID, "B")

	_, err := f.service.ReorderTask(f.db, f.member.ID, b.ID, ReorderTaskInput{NewOrder: intPtr(0)})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "You do not have permission to reorder this task", err.Error())

	titles, orders := f.bucket(t, models.StatusTodo)
	assert.Equal(t, []string{"A", "B"}, titles)
	assert.Equal(t, []int{0, 1}, orders)
}

func TestUpdateTask_Assignee(t *testing.T) {
	f := setupBoard(t)
	task := f.create(t, f.owner.ID, "A")

	memberID := f.member.ID.String()
	updated, err := f.service.UpdateTask(f.db, f.owner.ID, task.ID, UpdateTaskInput{AssigneeID: &memberID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, f.member.ID, *updated.AssigneeID)

	outsider := f.other.ID.String()
	_, err = f.service.UpdateTask(f.db, f.owner.ID, task.ID, UpdateTaskInput{AssigneeID: &outsider})
	assert.True(t, errors.Is(err, ErrBadRequest))

	none := ""
	updated, err = f.service.UpdateTask(f.db, f.owner.ID, task.ID, UpdateTaskInput{AssigneeID: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
}

func TestGetTasks_PaginationAndFilters(t *testing.T) {
	f := setupBoard(t)
	for _, title := range []string{"Write docs", "Fix login bug", "Deploy", "Fix signup BUG", "Review"} {
		f.create(t, f.owner.ID, title)
	}
	f.create(t, f.owner.ID, "Urgent", func(in *CreateTaskInput) { in.Priority = models.PriorityHigh })
	f.create(t, f.owner.ID, "Someday", func(in *CreateTaskInput) { in.Priority = models.PriorityLow })

	list, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), list.Total)
	assert.Equal(t, 3, list.TotalPages)
	assert.Len(t, list.Tasks, 3)
	assert.Equal(t, "Write docs", list.Tasks[0].Title)

	beyond, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{Page: 4, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Tasks)
	assert.Equal(t, int64(7), beyond.Total)
	assert.Equal(t, 3, beyond.TotalPages)

	search, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{Search: "bug"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), search.Total)

	byPriority, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{SortBy: "priority", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Urgent", byPriority.Tasks[0].Title)
	assert.Equal(t, "Someday", byPriority.Tasks[len(byPriority.Tasks)-1].Title)

	high, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{Priority: "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), high.Total)

	// Non-members see nothing when no team is named.
	none, err := f.service.GetTasks(f.db, f.other.ID, TaskQuery{})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
}

func TestGetTasks_SearchIsLiteral(t *testing.T) {
	f := setupBoard(t)
	for _, title := range []string{"abc", "100 percent", "rename a_c flag", "50% done", `C:\temp`} {
		f.create(t, f.owner.ID, title)
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"a_c", []string{"rename a_c flag"}},
		{"1%t", nil},
		{"50%", []string{"50% done"}},
		{"_", []string{"rename a_c flag"}},
		{`c:\`, []string{`C:\temp`}},
		{"ABC", []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			list, err := f.service.GetTasks(f.db, f.owner.ID, TaskQuery{Search: tt.search})
			require.NoError(t, err)
			var got []string
			for _, task := range list.Tasks {
				got = append(got, task.Title)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(len(tt.want)), list.Total)
		})
	}
}

func TestGetTasks_RejectsBadQueries(t *testing.T) {
	f := setupBoard(t)

	for name, query := range map[string]TaskQuery{
		"limit too high": {Limit: 101},
		"negative page":  {Page: -1},
		"sort field":     {SortBy: "color"},
		"sort order":     {SortOrder: "sideways"},
		"status":         {Status: "BLOCKED"},
		"due date":       {DueFrom: "yesterday"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.GetTasks(f.db, f.owner.ID, query)
			assert.True(t, errors.Is(err, ErrBadRequest), "got %v", err)
		})
	}
}

func TestGetDashboard_ImportantTasks(t *testing.T) {
	f := setupBoard(t)
	assign := func(p models.TaskPriority, s models.TaskStatus) func(*CreateTaskInput) {
		return func(in *CreateTaskInput) {
			in.AssigneeID = &f.member.ID
			in.Priority = p
			in.Status = s
		}
	}
	f.create(t, f.owner.ID, "low", assign(models.PriorityLow, models.StatusTodo))
	f.create(t, f.owner.ID, "medium", assign(models.PriorityMedium, models.StatusInProgress))
	f.create(t, f.owner.ID, "high-2", assign(models.PriorityHigh, models.StatusTodo))
	f.create(t, f.owner.ID, "high-done", assign(models.PriorityHigh, models.StatusDone))
	first := f.create(t, f.owner.ID, "high-1", assign(models.PriorityHigh, models.StatusTodo))
	f.create(t, f.owner.ID, "unassigned", func(in *CreateTaskInput) { in.Priority = models.PriorityHigh })

	_, err := f.service.ReorderTask(f.db, f.owner.ID, first.ID, ReorderTaskInput{NewOrder: intPtr(0)})
	require.NoError(t, err)

	dashboard, err := f.service.GetDashboard(f.db, f.member.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), dashboard.TotalTasks)
	assert.Equal(t, int64(1), dashboard.CompletedTasks)
	assert.Equal(t, 1, dashboard.ActiveTeams)

	titles := make([]string, len(dashboard.ImportantTasks))
	for i, task := range dashboard.ImportantTasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"high-1", "high-2", "medium", "low"}, titles)

	limited, err := f.service.GetDashboard(f.db, f.member.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited.ImportantTasks, 2)

	_, err = f.service.GetDashboard(f.db, f.member.ID, 21)
	assert.True(t, errors.Is(err, ErrBadRequest))

	empty, err := f.service.GetDashboard(f.db, f.other.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.ActiveTeams)
	assert.Empty(t, empty.ImportantTasks)
}

func TestGetTaskStats(t *testing.T) {
	f := setupBoard(t)
	past := time.Now().UTC().Add(-48 * time.Hour)

	f.create(t, f.owner.ID, "overdue", func(in *CreateTaskInput) { in.DueDate = &past })
	f.create(t, f.owner.ID, "overdue but done", func(in *CreateTaskInput) {
		in.DueDate = &past
		in.Status = models.StatusDone
	})
	f.create(t, f.member.ID, "mine", func(in *CreateTaskInput) {
		in.Priority = models.PriorityHigh
		in.Status = models.StatusInProgress
	})

	stats, err := f.service.GetTaskStats(f.db, f.member.ID, f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStats{
		Total:        3,
		Todo:         1,
		InProgress:   1,
		Done:         1,
		Overdue:      1,
		HighPriority: 1,
		MyTasks:      1,
	}, stats)
}

func TestGetTaskById_NotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1 ORDER BY "tasks"."id" LIMIT \$2`).
		WithArgs(id, 1).
		WillReturnRows(mock.NewRows([]string{"id"}))

	taskService := &TaskService{}
	_, err := taskService.GetTaskById(db, uuid.New(), id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
