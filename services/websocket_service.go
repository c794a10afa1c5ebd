package services

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	teamChannelPrefix = "team:"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// MembershipChecker decides whether a user may listen to a team channel.
type MembershipChecker interface {
	IsMember(db *database.Database, userID, teamID uuid.UUID) (bool, error)
}

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	Start() error
	Stop()
	HandleConnection(c *gin.Context)
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID uuid.UUID
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte

	mu            sync.RWMutex
	subscriptions map[string]bool
}

func (c *Client) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[channel]
}

func (c *Client) unsubscribe(channel string) {
	c.mu.Lock()
	delete(c.subscriptions, channel)
	c.mu.Unlock()
}

// revokedUser returns who loses access to the team with this event:
// uuid.Nil for nobody, and all is true when the team itself is gone.
func revokedUser(eventType string, payload map[string]interface{}) (userID uuid.UUID, all bool) {
	switch broker.EventType(eventType) {
	case broker.TeamDeleted:
		return uuid.Nil, true
	case broker.TeamMemberLeft, broker.TeamMemberRemoved:
		data, _ := payload["data"].(map[string]interface{})
		raw, _ := data["userId"].(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return id, false
	default:
		return uuid.Nil, false
	}
}

// WebSocketService fans broker events out to websocket clients subscribed to team channels.
type WebSocketService struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	events       chan broker.Message
	clientsMutex sync.RWMutex

	upgrader   websocket.Upgrader
	db         *database.Database
	subscriber broker.Subscriber
	members    MembershipChecker

	mu          sync.Mutex
	isRunning   bool
	stopChan    chan struct{}
	unsubscribe func()
}

func NewWebSocketService(db *database.Database, subscriber broker.Subscriber, members MembershipChecker) *WebSocketService {
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan broker.Message, sendBuffer),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origins are enforced by the CORS middleware
				return true
			},
		},
		db:         db,
		subscriber: subscriber,
		members:    members,
		stopChan:   make(chan struct{}),
	}
}

// Start subscribes to every outbox subject and runs the hub.
func (ws *WebSocketService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.isRunning {
		return nil
	}

	unsubscribe, err := ws.subscriber.Subscribe(broker.AllEvents, ws.enqueue)
	if err != nil {
		return err
	}
	ws.unsubscribe = unsubscribe
	ws.isRunning = true

	go ws.run()
	log.Printf("WebSocket service listening on %s", broker.AllEvents)
	return nil
}

// Stop gracefully shuts down the WebSocket service
func (ws *WebSocketService) Stop() {
	ws.mu.Lock()
	if !ws.isRunning {
		ws.mu.Unlock()
		return
	}
	ws.isRunning = false
	if ws.unsubscribe != nil {
		ws.unsubscribe()
	}
	close(ws.stopChan)
	ws.mu.Unlock()

	ws.clientsMutex.Lock()
	for id, client := range ws.clients {
		if client != nil && client.Conn != nil {
			client.Conn.Close()
		}
		delete(ws.clients, id)
	}
	ws.clientsMutex.Unlock()

	log.Println("WebSocket service stopped")
}

// enqueue runs on the publisher's goroutine, so it never blocks.
func (ws *WebSocketService) enqueue(msg broker.Message) {
	select {
	case ws.events <- msg:
	default:
		log.Printf("Warning: websocket event queue is full, discarding %s", msg.Key)
	}
}

func (ws *WebSocketService) run() {
	for {
		select {
		case <-ws.stopChan:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			ws.clients[client.ID] = client
			ws.clientsMutex.Unlock()
			log.Printf("Client connected: %s (user: %s)", client.ID, client.UserID)

		case client := <-ws.unregister:
			ws.removeClient(client.ID)

		case msg := <-ws.events:
			ws.handleBrokerMessage(msg)
		}
	}
}

// removeClient is only reached through unregister, after the client's readPump has
// returned, so nothing else sends on client.Send.
func (ws *WebSocketService) removeClient(id string) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	if client, ok := ws.clients[id]; ok {
		delete(ws.clients, id)
		close(client.Send)
		log.Printf("Client disconnected: %s", id)
	}
}

// HandleConnection upgrades an authenticated request to a websocket.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	value, exists := c.Get("userID")
	userID, ok := value.(uuid.UUID)
	if !exists || !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Hub:           ws,
		Conn:          conn,
		Send:          make(chan []byte, sendBuffer),
		subscriptions: make(map[string]bool),
	}

	select {
	case ws.register <- client:
	case <-ws.stopChan:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// brokerEnvelope is the body the outbox dispatcher publishes.
type brokerEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func (ws *WebSocketService) handleBrokerMessage(msg broker.Message) {
	var envelope brokerEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Printf("Error parsing broker message on %s: %v", msg.Subject, err)
		return
	}

	eventType := envelope.Type
	if eventType == "" {
		eventType = msg.Key
	}
	teamID, _ := envelope.Payload["team_id"].(string)
	if teamID == "" {
		// Events outside a team have no websocket audience.
		return
	}

	out := models.NewStandardMessage(models.EventMessage, eventType, envelope.Payload).WithTeam(teamID)
	data, err := json.Marshal(out)
	if err != nil {
		log.Printf("Error serializing server message: %v", err)
		return
	}

	channel := teamChannelPrefix + teamID
	revoked, revokeAll := revokedUser(eventType, envelope.Payload)

	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	for id, client := range ws.clients {
		if !client.subscribed(channel) {
			continue
		}
		select {
		case client.Send <- data:
		default:
			// Closing the connection ends readPump, which unregisters the client.
			log.Printf("Client %s send buffer full, disconnecting", id)
			client.Conn.Close()
		}
		// The departing user still sees the event, then stops receiving the team's traffic.
		if revokeAll || (revoked != uuid.Nil && client.UserID == revoked) {
			client.unsubscribe(channel)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.stopChan:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading from WebSocket: %v", err)
			}
			break
		}
		c.processMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) processMessage(raw []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(models.ErrorMessage, map[string]interface{}{"message": "Invalid message format"})
		return
	}

	switch msg.Type {
	case models.SubscribeMessage:
		c.handleSubscribe(msg.Channel)
	case models.UnsubscribeMessage:
		c.unsubscribe(msg.Channel)
	case models.PingMessage:
		c.reply(models.PongMessage, nil)
	default:
		c.reply(models.ErrorMessage, map[string]interface{}{"message": "Unknown message type: " + string(msg.Type)})
	}
}

func (c *Client) handleSubscribe(channel string) {
	if !strings.HasPrefix(channel, teamChannelPrefix) {
		c.reply(models.ErrorMessage, map[string]interface{}{"message": "Unknown channel", "channel": channel})
		return
	}
	teamID, err := uuid.Parse(strings.TrimPrefix(channel, teamChannelPrefix))
	if err != nil {
		c.reply(models.ErrorMessage, map[string]interface{}{"message": "Invalid team ID", "channel": channel})
		return
	}

	isMember, err := c.Hub.members.IsMember(c.Hub.db, c.UserID, teamID)
	if err != nil {
		log.Printf("Error checking membership for %s on %s: %v", c.UserID, channel, err)
		c.reply(models.ErrorMessage, map[string]interface{}{"message": "An unexpected error occurred", "channel": channel})
		return
	}
	if !isMember {
		c.reply(models.ErrorMessage, map[string]interface{}{"message": ErrNotTeamMember.Message, "channel": channel})
		return
	}

	c.mu.Lock()
	c.subscriptions[channel] = true
	c.mu.Unlock()

	c.reply(models.SubscribedMessage, map[string]interface{}{"channel": channel})
}

func (c *Client) reply(msgType models.WebSocketMessageType, payload map[string]interface{}) {
	data, err := json.Marshal(models.NewStandardMessage(msgType, "", payload))
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("Client %s send buffer full, dropping %s reply", c.ID, msgType)
	}
}

var WebSocketServiceInstance WebSocketServiceInterface
