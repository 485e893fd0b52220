package e2e

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/UDAVALAPATISURESH/app-chat/auth"
)

// The scenario drives a deployed instance over its public surface only.
// It needs two users provisioned out of band with these ids and emails.
const (
	userAliceID    = "e2e-alice"
	userAliceEmail = "e2e-alice@example.com"
	userBobID      = "e2e-bob"
	userBobEmail   = "e2e-bob@example.com"
)

func dialAs(t *testing.T, cfg Config, userID string) *websocket.Conn {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(cfg.JWTSecret), time.Hour)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+cfg.ServerAddr+"/ws?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := sonic.Marshal(data)
	require.NoError(t, err)
	envelope, err := sonic.Marshal(map[string]any{"event": event, "data": json.RawMessage(raw)})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, envelope))
}

func await(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, sonic.Unmarshal(data, &envelope))
		if envelope.Event == event {
			return envelope.Data
		}
	}
}

func Test_Scenario_Personal_Conversation(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)
	if cfg.ServerAddr == "" {
		t.Skip("E2E_SERVER_ADDR not set")
	}

	aliceConn := dialAs(t, cfg, userAliceID)
	bobConn := dialAs(t, cfg, userBobID)

	emit(t, aliceConn, "join_room", map[string]string{"otherUserEmail": userBobEmail})
	joined := await(t, aliceConn, "room_joined")
	var room struct {
		RoomID string `json:"roomId"`
	}
	req.NoError(sonic.Unmarshal(joined, &room))
	req.NotEmpty(room.RoomID)

	emit(t, bobConn, "join_room", map[string]string{"otherUserEmail": userAliceEmail})
	await(t, bobConn, "room_joined")

	emit(t, aliceConn, "send_personal_message", map[string]string{
		"receiverId": userBobID,
		"message":    "ping from the scenario suite",
		"roomId":     room.RoomID,
	})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		data := await(t, conn, "new_message")
		var message struct {
			Body   string `json:"message"`
			RoomID string `json:"roomId"`
			Sender struct {
				ID string `json:"id"`
			} `json:"senderId"`
		}
		req.NoError(sonic.Unmarshal(data, &message))
		req.Equal("ping from the scenario suite", message.Body)
		req.Equal(room.RoomID, message.RoomID)
		req.Equal(userAliceID, message.Sender.ID)
	}
}
