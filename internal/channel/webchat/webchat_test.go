package webchat

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coach-gateway/internal/channel"
)

func dialTestSocket(t *testing.T, a *WebChatAdapter, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(a.wsHandler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user_id=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebChat_RoundTrip(t *testing.T) {
	a := NewWebChatAdapter(0, slog.Default())
	conn := dialTestSocket(t, a, "web:1")

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "message", Content: "hello"}))

	select {
	case msg := <-a.Incoming():
		assert.Equal(t, "web:1", msg.UserID)
		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, "webchat", msg.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound message")
	}

	// Outbound replies go back over the registered connection.
	require.NoError(t, a.SendMessage("web:1", &channel.Response{
		Content:     "hi!",
		Suggestions: []string{"Yes", "No"},
	}))
	var out WSMessage
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "message", out.Type)
	assert.Equal(t, "hi!", out.Content)
	assert.Equal(t, []string{"Yes", "No"}, out.Suggestions)
}

func TestWebChat_IgnoresNonMessageFrames(t *testing.T) {
	a := NewWebChatAdapter(0, slog.Default())
	conn := dialTestSocket(t, a, "web:2")

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
	require.NoError(t, conn.WriteJSON(WSMessage{Type: "message", Content: "after the ping"}))

	select {
	case msg := <-a.Incoming():
		assert.Equal(t, "after the ping", msg.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound message")
	}
}

func TestWebChat_SendToUnknownUserIsNoop(t *testing.T) {
	a := NewWebChatAdapter(0, slog.Default())
	assert.NoError(t, a.SendMessage("nobody", &channel.Response{Content: "hi"}))
}
