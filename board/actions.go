package board

import (
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

// Action is a board mutation. Store.Dispatch is the only way to apply one.
type Action interface {
	apply(s *State)
}

// SetTasks replaces the whole board and clears any recorded error.
type SetTasks struct {
	Tasks []models.TaskResponse
}

type AddTask struct {
	Task models.TaskResponse
}

// UpdateTask replaces a task with a newer copy and re-places it at the
// position its Order names, renumbering the affected columns.
type UpdateTask struct {
	Task models.TaskResponse
}

type DeleteTask struct {
	TaskID uuid.UUID
}

// MoveTask splices a task into Status at Index, the same way the server
// applies a reorder.
type MoveTask struct {
	TaskID uuid.UUID
	Status models.TaskStatus
	Index  int
}

// Restore rolls the board back to a snapshot.
type Restore struct {
	State State
}

type SetError struct {
	Err error
}

func (a SetTasks) apply(s *State) {
	s.Tasks = cloneTasks(a.Tasks)
	s.Err = nil
}

func (a AddTask) apply(s *State) {
	if s.index(a.Task.ID) >= 0 {
		return
	}
	s.Tasks = append(s.Tasks, cloneTask(a.Task))
}

func (a UpdateTask) apply(s *State) {
	i := s.index(a.Task.ID)
	if i < 0 {
		return
	}
	s.Tasks[i] = cloneTask(a.Task)
	s.place(a.Task.ID, a.Task.Status, a.Task.Order)
}

func (a DeleteTask) apply(s *State) {
	i := s.index(a.TaskID)
	if i < 0 {
		return
	}
	status := s.Tasks[i].Status
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	s.renumber(s.Column(status))
}

func (a MoveTask) apply(s *State) {
	s.place(a.TaskID, a.Status, a.Index)
}

func (a Restore) apply(s *State) {
	*s = a.State.clone()
}

func (a SetError) apply(s *State) {
	s.Err = a.Err
}
