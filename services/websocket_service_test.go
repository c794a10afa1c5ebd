package services

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/ProsperCoded/Mini-Jira-Clone/testutils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFixture struct {
	db     *database.Database
	bus    *broker.LocalBroker
	ws     *WebSocketService
	server *httptest.Server
}

func setupWebSocket(t *testing.T) *wsFixture {
	t.Helper()
	db, closeDB := testutils.SetupTestDB()
	bus := broker.NewLocalBroker()

	ws := NewWebSocketService(db, bus, &TeamService{})
	require.NoError(t, ws.Start())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		if id, err := uuid.Parse(c.Query("user")); err == nil {
			c.Set("userID", id)
		}
		c.Next()
	}, ws.HandleConnection)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		ws.Stop()
		bus.Close()
		closeDB()
	})
	return &wsFixture{db: db, bus: bus, ws: ws, server: server}
}

func (f *wsFixture) dial(t *testing.T, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.StandardMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg models.StandardMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func publishTaskEvent(t *testing.T, bus broker.Publisher, teamID uuid.UUID, eventType string) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"payload": map[string]interface{}{
			"type":    eventType,
			"entity":  "task",
			"team_id": teamID.String(),
			"data":    map[string]interface{}{"title": "Ship it"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(broker.SubjectFor("task", teamID.String()), eventType, body))
}

func TestWebSocketService_ForwardsTeamEventsToSubscribers(t *testing.T) {
	f := setupWebSocket(t)
	owner := testutils.CreateUser(f.db, "owner")
	team := testutils.CreateTeam(f.db, owner, "Platform", models.PublicTeam)

	conn := f.dial(t, owner.ID)
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.SubscribeMessage, Channel: "team:" + team.ID.String()}))

	ack := readMessage(t, conn)
	assert.Equal(t, models.SubscribedMessage, ack.Type)
	assert.Equal(t, "team:"+team.ID.String(), ack.Payload["channel"])

	// Events for other teams are not delivered.
	publishTaskEvent(t, f.bus, uuid.New(), "task.created")
	publishTaskEvent(t, f.bus, team.ID, "task.reordered")

	msg := readMessage(t, conn)
	assert.Equal(t, models.EventMessage, msg.Type)
	assert.Equal(t, "task.reordered", msg.Event)
	assert.Equal(t, team.ID.String(), msg.TeamID)
	assert.Equal(t, "task", msg.Payload["entity"])
}

func TestWebSocketService_RejectsNonMemberSubscription(t *testing.T) {
	f := setupWebSocket(t)
	owner := testutils.CreateUser(f.db, "owner")
	outsider := testutils.CreateUser(f.db, "outsider")
	team := testutils.CreateTeam(f.db, owner, "Platform", models.PrivateTeam)

	conn := f.dial(t, outsider.ID)
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.SubscribeMessage, Channel: "team:" + team.ID.String()}))

	msg := readMessage(t, conn)
	assert.Equal(t, models.ErrorMessage, msg.Type)
	assert.Equal(t, "You are not a member of this team", msg.Payload["message"])
}

func TestWebSocketService_ClientMessages(t *testing.T) {
	f := setupWebSocket(t)
	user := testutils.CreateUser(f.db, "someone")
	conn := f.dial(t, user.ID)

	tests := []struct {
		name     string
		message  models.ClientMessage
		wantType models.WebSocketMessageType
	}{
		{"ping", models.ClientMessage{Type: models.PingMessage}, models.PongMessage},
		{"unknown channel", models.ClientMessage{Type: models.SubscribeMessage, Channel: "notes"}, models.ErrorMessage},
		{"invalid team id", models.ClientMessage{Type: models.SubscribeMessage, Channel: "team:nope"}, models.ErrorMessage},
		{"unknown type", models.ClientMessage{Type: "shout"}, models.ErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(tt.message))
			assert.Equal(t, tt.wantType, readMessage(t, conn).Type)
		})
	}
}

func TestWebSocketService_RequiresAuthenticatedUser(t *testing.T) {
	f := setupWebSocket(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWebSocketService_Lifecycle(t *testing.T) {
	ws := NewWebSocketService(&database.Database{}, broker.NewLocalBroker(), &TeamService{})

	require.NoError(t, ws.Start())
	assert.True(t, ws.isRunning)
	require.NoError(t, ws.Start())

	ws.Stop()
	assert.False(t, ws.isRunning)
	ws.Stop()
}

func publishMemberEvent(t *testing.T, bus broker.Publisher, teamID, userID uuid.UUID, eventType broker.EventType) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"payload": map[string]interface{}{
			"type":    eventType,
			"entity":  "team",
			"team_id": teamID.String(),
			"data":    map[string]interface{}{"teamId": teamID.String(), "userId": userID.String()},
		},
	})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(broker.SubjectFor("team", teamID.String()), string(eventType), body))
}

func TestWebSocketService_RemovedMemberStopsReceiving(t *testing.T) {
	for _, eventType := range []broker.EventType{broker.TeamMemberRemoved, broker.TeamMemberLeft} {
		t.Run(string(eventType), func(t *testing.T) {
			f := setupWebSocket(t)
			owner := testutils.CreateUser(f.db, "owner")
			member := testutils.CreateUser(f.db, "member")
			team := testutils.CreateTeam(f.db, owner, "Platform", models.PublicTeam)
			testutils.AddMember(f.db, team, member, models.RoleMember)
			channel := "team:" + team.ID.String()

			ownerConn := f.dial(t, owner.ID)
			memberConn := f.dial(t, member.ID)
			for _, conn := range []*websocket.Conn{ownerConn, memberConn} {
				require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.SubscribeMessage, Channel: channel}))
				require.Equal(t, models.SubscribedMessage, readMessage(t, conn).Type)
			}

			publishMemberEvent(t, f.bus, team.ID, member.ID, eventType)
			assert.Equal(t, string(eventType), readMessage(t, ownerConn).Event)
			assert.Equal(t, string(eventType), readMessage(t, memberConn).Event)

			publishTaskEvent(t, f.bus, team.ID, "task.created")
			assert.Equal(t, "task.created", readMessage(t, ownerConn).Event)

			// The hub has finished fanning out task.created, so the next message
			// the former member sees must be the pong.
			require.NoError(t, memberConn.WriteJSON(models.ClientMessage{Type: models.PingMessage}))
			assert.Equal(t, models.PongMessage, readMessage(t, memberConn).Type)
		})
	}
}

func TestWebSocketService_DeletedTeamDropsSubscriptions(t *testing.T) {
	f := setupWebSocket(t)
	owner := testutils.CreateUser(f.db, "owner")
	team := testutils.CreateTeam(f.db, owner, "Platform", models.PublicTeam)
	channel := "team:" + team.ID.String()

	conn := f.dial(t, owner.ID)
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.SubscribeMessage, Channel: channel}))
	require.Equal(t, models.SubscribedMessage, readMessage(t, conn).Type)

	publishMemberEvent(t, f.bus, team.ID, owner.ID, broker.TeamDeleted)
	assert.Equal(t, string(broker.TeamDeleted), readMessage(t, conn).Event)

	publishTaskEvent(t, f.bus, team.ID, "task.created")
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.PingMessage}))
	assert.Equal(t, models.PongMessage, readMessage(t, conn).Type)
}
