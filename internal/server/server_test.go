package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coach-gateway/internal/config"
	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/llm"
	"github.com/coachhub/coach-gateway/internal/orchestrator"
	"github.com/coachhub/coach-gateway/internal/profile"
)

type staticLLM struct{ reply string }

func (s staticLLM) Complete(context.Context, []llm.Message, llm.Options) (string, error) {
	return s.reply, nil
}

func (s staticLLM) DescribeImage(context.Context, string, string) (string, error) {
	return s.reply, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, pingers map[string]Pinger) *Server {
	t.Helper()
	profiles, err := profile.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { profiles.Close() })

	orch := orchestrator.New(profiles, conversation.NewMemoryStore(), staticLLM{reply: "hi"}, slog.Default())
	return New(&config.Config{}, orch, pingers, slog.Default())
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, map[string]Pinger{"database": fakePinger{}})

	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.Services["database"].Healthy)
}

func TestHealthHandler_Degraded(t *testing.T) {
	srv := newTestServer(t, map[string]Pinger{
		"database": fakePinger{},
		"redis":    fakePinger{err: errors.New("connection refused")},
	})

	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.Services["redis"].Healthy)
	assert.True(t, resp.Services["database"].Healthy)
}

func TestChatHandler_NewUserWelcome(t *testing.T) {
	srv := newTestServer(t, nil)

	body := strings.NewReader(`{"user_id": "tg:42", "message": "hi"}`)
	rec := httptest.NewRecorder()
	srv.chatHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Message, "What's your name?")
	assert.Equal(t, "onboarding", resp.Activity)
}

func TestChatHandler_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.chatHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	srv.chatHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.chatHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"user_id": "tg:42"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_UnknownInternalID(t *testing.T) {
	srv := newTestServer(t, nil)

	body := strings.NewReader(`{"user_id": "6a7f9c1e-0b9b-4a53-9f39-1d6f2f9b2c55", "message": "hi"}`)
	rec := httptest.NewRecorder()
	srv.chatHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
