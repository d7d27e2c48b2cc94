// Package server exposes the gateway's HTTP surface: health, metrics and a
// direct JSON chat endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coachhub/coach-gateway/internal/config"
	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/orchestrator"
	"github.com/coachhub/coach-gateway/internal/profile"
)

// Pinger is anything whose availability can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	cfg        *config.Config
	orch       *orchestrator.Orchestrator
	httpServer *http.Server
	startTime  time.Time
	logger     *slog.Logger
	pingers    map[string]Pinger
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services"`
	Timestamp string                   `json:"timestamp"`
}

// ServiceHealth reports one collaborator's availability.
type ServiceHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// ChatRequest is the direct chat endpoint's input.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse is the direct chat endpoint's output.
type ChatResponse struct {
	Message     string   `json:"message"`
	Activity    string   `json:"activity"`
	Suggestions []string `json:"suggestions,omitempty"`
}

const version = "1.0.0"

func New(cfg *config.Config, orch *orchestrator.Orchestrator, pingers map[string]Pinger, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		orch:      orch,
		startTime: time.Now(),
		logger:    logger,
		pingers:   pingers,
	}
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/chat", s.chatHandler)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("HTTP server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	services := make(map[string]ServiceHealth, len(s.pingers))
	status := "healthy"
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			services[name] = ServiceHealth{Healthy: false, Message: err.Error()}
			status = "degraded"
			continue
		}
		services[name] = ServiceHealth{Healthy: true}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Version:   version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Services:  services,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Message == "" {
		http.Error(w, "user_id and message are required", http.StatusBadRequest)
		return
	}

	turn, err := s.orch.Process(r.Context(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		s.logger.Error("Chat turn failed", "user_id", req.UserID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{
		Message:     turn.Message,
		Activity:    string(activityOrNone(turn.Context.Activity)),
		Suggestions: turn.Suggestions,
	})
}

func activityOrNone(a conversation.Activity) conversation.Activity {
	if a == conversation.ActivityUnset {
		return conversation.ActivityNone
	}
	return a
}
