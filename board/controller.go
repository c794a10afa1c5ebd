package board

import (
	"context"
	"errors"
	"sync"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

var (
	ErrUnknownTask = errors.New("board: task not on board")
	ErrNoTarget    = errors.New("board: drop has no target column or task")
	// ErrSuperseded is returned when a newer move of the same task was issued
	// before this one's response arrived; the response was discarded.
	ErrSuperseded = errors.New("board: move superseded by a newer move")
)

// Reorderer persists a move. newStatus is nil when the column does not change.
type Reorderer interface {
	ReorderTask(ctx context.Context, taskID uuid.UUID, newOrder int, newStatus *models.TaskStatus) (models.TaskResponse, error)
}

// DragEnd describes a drop: onto a column, or onto another task.
type DragEnd struct {
	TaskID     uuid.UUID
	OverColumn *models.TaskStatus
	OverTaskID *uuid.UUID
}

// Controller turns drops into optimistic moves and reconciles them.
type Controller struct {
	store *Store
	api   Reorderer

	mu  sync.Mutex
	seq map[uuid.UUID]uint64
}

func NewController(store *Store, api Reorderer) *Controller {
	return &Controller{
		store: store,
		api:   api,
		seq:   make(map[uuid.UUID]uint64),
	}
}

// target resolves where a drop lands: the end of a column, or the slot of
// the task under the pointer.
func target(state State, ev DragEnd) (models.TaskStatus, int, error) {
	switch {
	case ev.OverTaskID != nil:
		status, index, ok := state.Position(*ev.OverTaskID)
		if !ok {
			return "", 0, ErrUnknownTask
		}
		return status, index, nil
	case ev.OverColumn != nil:
		n := 0
		for _, t := range state.Column(*ev.OverColumn) {
			if t.ID != ev.TaskID {
				n++
			}
		}
		return *ev.OverColumn, n, nil
	default:
		return "", 0, ErrNoTarget
	}
}

type pendingMove struct {
	seq      uint64
	before   State
	version  uint64
	clean    bool
	from     models.TaskStatus
	fromIdx  int
	status   models.TaskStatus
	index    int
	noChange bool
}

func (c *Controller) begin(ev DragEnd) (pendingMove, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before, seen := c.store.snapshotAt()
	from, fromIdx, ok := before.Position(ev.TaskID)
	if !ok {
		return pendingMove{}, ErrUnknownTask
	}
	status, index, err := target(before, ev)
	if err != nil {
		return pendingMove{}, err
	}
	if status == from && index == fromIdx {
		return pendingMove{noChange: true}, nil
	}

	c.seq[ev.TaskID]++
	version := c.store.Dispatch(MoveTask{TaskID: ev.TaskID, Status: status, Index: index})

	return pendingMove{
		seq:     c.seq[ev.TaskID],
		before:  before,
		version: version,
		clean:   version == seen+1,
		from:    from,
		fromIdx: fromIdx,
		status:  status,
		index:   index,
	}, nil
}

// DragEnd applies the drop locally, then persists it. On success the server
// copy replaces the optimistic one; on failure the board is rolled back and
// the error recorded. The store is not locked while the request runs.
func (c *Controller) DragEnd(ctx context.Context, ev DragEnd) error {
	move, err := c.begin(ev)
	if err != nil || move.noChange {
		return err
	}

	var newStatus *models.TaskStatus
	if move.status != move.from {
		status := move.status
		newStatus = &status
	}

	task, err := c.api.ReorderTask(ctx, ev.TaskID, move.index, newStatus)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq[ev.TaskID] != move.seq {
		return ErrSuperseded
	}
	if err != nil {
		c.rollback(ev.TaskID, move)
		c.store.Dispatch(SetError{Err: err})
		return err
	}
	c.store.Dispatch(UpdateTask{Task: task})
	return nil
}

// rollback restores the pre-move snapshot when nothing else touched the
// board since; otherwise it only moves this task back to where it was.
func (c *Controller) rollback(id uuid.UUID, move pendingMove) {
	if move.clean && c.store.dispatchAt(move.version, Restore{State: move.before}) {
		return
	}
	c.store.Dispatch(MoveTask{TaskID: id, Status: move.from, Index: move.fromIdx})
}
