// Package board holds Kanban board state on the client and applies
// optimistic reorders that are later reconciled with the server.
package board

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

// State is the flat task list of one board plus the last error.
type State struct {
	Tasks []models.TaskResponse
	Err   error
}

// Column returns the tasks of status in board order: order, then createdAt,
// then id, matching the server listing.
func (s State) Column(status models.TaskStatus) []models.TaskResponse {
	column := make([]models.TaskResponse, 0)
	for _, t := range s.Tasks {
		if t.Status == status {
			column = append(column, t)
		}
	}
	sort.SliceStable(column, func(i, j int) bool {
		return less(column[i], column[j])
	})
	return column
}

// Columns returns every status column, keyed by status.
func (s State) Columns() map[models.TaskStatus][]models.TaskResponse {
	columns := make(map[models.TaskStatus][]models.TaskResponse, len(models.Statuses))
	for _, status := range models.Statuses {
		columns[status] = s.Column(status)
	}
	return columns
}

// Task looks up a task by id.
func (s State) Task(id uuid.UUID) (models.TaskResponse, bool) {
	if i := s.index(id); i >= 0 {
		return s.Tasks[i], true
	}
	return models.TaskResponse{}, false
}

// Position reports the column and index a task currently occupies.
func (s State) Position(id uuid.UUID) (models.TaskStatus, int, bool) {
	task, ok := s.Task(id)
	if !ok {
		return "", 0, false
	}
	for i, t := range s.Column(task.Status) {
		if t.ID == id {
			return task.Status, i, true
		}
	}
	return "", 0, false
}

func less(a, b models.TaskResponse) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (s *State) index(id uuid.UUID) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// place moves id to index within status using the server's placement rules,
// then renumbers the destination column and, when the status changed, the
// source column.
func (s *State) place(id uuid.UUID, status models.TaskStatus, index int) {
	i := s.index(id)
	if i < 0 {
		return
	}
	from := s.Tasks[i].Status

	column := s.Column(status)
	ids := make([]uuid.UUID, len(column))
	for j, t := range column {
		ids[j] = t.ID
	}
	ids, _ = models.PlaceInBucket(ids, id, index)

	s.Tasks[i].Status = status
	for order, taskID := range ids {
		s.Tasks[s.index(taskID)].Order = order
	}
	if from != status {
		s.renumber(s.Column(from))
	}
}

// renumber writes dense orders 0..n-1 following the given column sequence.
func (s *State) renumber(column []models.TaskResponse) {
	for order, t := range column {
		if i := s.index(t.ID); i >= 0 {
			s.Tasks[i].Order = order
		}
	}
}

func (s State) clone() State {
	return State{Tasks: cloneTasks(s.Tasks), Err: s.Err}
}

func cloneTasks(tasks []models.TaskResponse) []models.TaskResponse {
	out := make([]models.TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func cloneTask(t models.TaskResponse) models.TaskResponse {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	if t.Creator != nil {
		u := *t.Creator
		t.Creator = &u
	}
	if t.Assignee != nil {
		u := *t.Assignee
		t.Assignee = &u
	}
	if t.Team != nil {
		team := *t.Team
		t.Team = &team
	}
	return t
}

// Store is a goroutine-safe board. Readers get copies; writers go through Dispatch.
type Store struct {
	mu        sync.RWMutex
	state     State
	version   uint64
	listeners []func(State)
}

func NewStore(tasks []models.TaskResponse) *Store {
	return &Store{state: State{Tasks: cloneTasks(tasks)}}
}

// Dispatch applies action, notifies listeners with the new state and returns
// the resulting version.
func (s *Store) Dispatch(action Action) uint64 {
	s.mu.Lock()
	return s.commit(action)
}

// dispatchAt applies action only if the store is still at version.
func (s *Store) dispatchAt(version uint64, action Action) bool {
	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	s.commit(action)
	return true
}

// commit must be called with s.mu held and releases it.
func (s *Store) commit(action Action) uint64 {
	action.apply(&s.state)
	s.version++
	version := s.version
	snapshot := s.state.clone()
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return version
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) snapshotAt() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone(), s.version
}

// Version counts dispatched actions.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to run after every dispatch, on the dispatching
// goroutine. fn must not dispatch or drive a Controller itself.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
