package webchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coachhub/coach-gateway/internal/channel"
)

type WebChatAdapter struct {
	port     int
	logger   *slog.Logger
	incoming chan *channel.Message
	upgrader websocket.Upgrader
	conns    map[string]*websocket.Conn
	connMux  sync.RWMutex
	stopCh   chan struct{}
}

// WSMessage is the wire format exchanged with the web client. Suggestions
// ride along on outbound messages for the client to render as chips.
type WSMessage struct {
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	ImageB64    string   `json:"image_b64,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

func NewWebChatAdapter(port int, logger *slog.Logger) *WebChatAdapter {
	return &WebChatAdapter{
		port:     port,
		logger:   logger,
		incoming: make(chan *channel.Message, 100),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:  make(map[string]*websocket.Conn),
		stopCh: make(chan struct{}),
	}
}

func (w *WebChatAdapter) Name() string {
	return "webchat"
}

func (w *WebChatAdapter) IsEnabled() bool {
	return w.port > 0
}

func (w *WebChatAdapter) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.wsHandler)
	server := &http.Server{Addr: ":" + strconv.Itoa(w.port), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			w.logger.Error("WebChat server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
		close(w.stopCh)
	}()

	return nil
}

func (w *WebChatAdapter) Stop() error {
	close(w.incoming)
	return nil
}

func (w *WebChatAdapter) SendMessage(userID string, resp *channel.Response) error {
	w.connMux.RLock()
	conn, exists := w.conns[userID]
	w.connMux.RUnlock()

	if !exists {
		return nil // Connection gone, nothing to deliver to.
	}

	msg := WSMessage{
		Type:        "message",
		Content:     resp.Content,
		Suggestions: resp.Suggestions,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebChatAdapter) Incoming() <-chan *channel.Message {
	return w.incoming
}

func (w *WebChatAdapter) wsHandler(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous_" + strconv.FormatInt(time.Now().Unix(), 10)
	}

	w.connMux.Lock()
	w.conns[userID] = conn
	w.connMux.Unlock()

	defer func() {
		w.connMux.Lock()
		delete(w.conns, userID)
		w.connMux.Unlock()
		conn.Close()
	}()

	for {
		select {
		case <-w.stopCh:
			return
		default:
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				w.logger.Debug("WebSocket read ended", "user_id", userID, "error", err)
				return
			}

			if msg.Type != "message" {
				continue
			}
			w.incoming <- &channel.Message{
				ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
				Channel:   "webchat",
				UserID:    userID,
				Content:   msg.Content,
				ImageB64:  msg.ImageB64,
				Metadata:  map[string]string{"connection_id": userID},
				Timestamp: time.Now().Unix(),
			}
		}
	}
}
