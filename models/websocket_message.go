package models

import (
	"time"

	"github.com/google/uuid"
)

// WebSocketMessageType represents message type constants
type WebSocketMessageType string

const (
	EventMessage       WebSocketMessageType = "event"
	SubscribeMessage   WebSocketMessageType = "subscribe"
	UnsubscribeMessage WebSocketMessageType = "unsubscribe"
	SubscribedMessage  WebSocketMessageType = "subscribed"
	PingMessage        WebSocketMessageType = "ping"
	PongMessage        WebSocketMessageType = "pong"
	ErrorMessage       WebSocketMessageType = "error"
)

// StandardMessage represents a standardized WebSocket message format
type StandardMessage struct {
	ID        string                 `json:"id"`
	Type      WebSocketMessageType   `json:"type"`
	Event     string                 `json:"event,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	TeamID    string                 `json:"teamId,omitempty"`
}

// NewStandardMessage creates a new standard message
func NewStandardMessage(msgType WebSocketMessageType, event string, payload map[string]interface{}) *StandardMessage {
	return &StandardMessage{
		ID:        uuid.New().String(),
		Type:      msgType,
		Event:     event,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// WithTeam tags the message with the team channel it belongs to.
func (m *StandardMessage) WithTeam(teamID string) *StandardMessage {
	m.TeamID = teamID
	return m
}

// ClientMessage is what websocket clients send: {"type":"subscribe","channel":"team:<id>"}.
type ClientMessage struct {
	Type    WebSocketMessageType `json:"type"`
	Channel string               `json:"channel"`
}
