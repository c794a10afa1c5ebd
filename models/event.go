package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventData stores the JSON payload of an outbox event
type EventData json.RawMessage

// Value implements the driver.Valuer interface for JSON storage
func (d EventData) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "null", nil
	}
	return string(d), nil
}

// Scan implements the sql.Scanner interface for JSON retrieval
func (d *EventData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[:0], v...)
	case string:
		*d = EventData(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return nil
}

func (d EventData) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

func (d *EventData) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

// Event is an outbox row written in the same transaction as the change it describes.
type Event struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Event        string     `gorm:"not null" json:"event"`
	Version      int        `gorm:"not null" json:"version"`
	Entity       string     `gorm:"not null" json:"entity"`
	Operation    string     `json:"operation"`
	TeamID       *uuid.UUID `gorm:"type:uuid;index" json:"teamId,omitempty"`
	ActorID      string     `json:"actorId"`
	Timestamp    time.Time  `gorm:"not null" json:"timestamp"`
	Data         EventData  `gorm:"type:text;not null" json:"data"`
	Status       string     `gorm:"not null;default:'pending'" json:"status"`
	Dispatched   bool       `gorm:"not null;default:false;index" json:"dispatched"`
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func NewEvent(event, entity, operation, actorID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Event:     event,
		Version:   1,
		Entity:    entity,
		Operation: operation,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
		Status:    "pending",
	}, nil
}

// ForTeam scopes the event to a team so it is only fanned out to that team's subscribers.
func (e *Event) ForTeam(teamID uuid.UUID) *Event {
	e.TeamID = &teamID
	return e
}
