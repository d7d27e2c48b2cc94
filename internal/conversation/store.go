package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coachhub/coach-gateway/internal/metrics"
)

// Store is the conversation persistence contract. FindLatestByUser returns
// (nil, nil) when the user has no conversation yet.
type Store interface {
	FindLatestByUser(ctx context.Context, userID string) (*Conversation, error)
	Upsert(ctx context.Context, conv *Conversation) error
}

// MemoryStore keeps conversations in process memory. It backs tests and the
// degraded ephemeral mode when Redis is unavailable.
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string]*Conversation)}
}

func (s *MemoryStore) FindLatestByUser(_ context.Context, userID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	clone := *conv
	clone.Messages = append([]Message(nil), conv.Messages...)
	return &clone, nil
}

func (s *MemoryStore) Upsert(_ context.Context, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *conv
	clone.Messages = append([]Message(nil), conv.Messages...)
	s.byUser[conv.UserID] = &clone
	return nil
}

// FallbackStore tries the primary store and degrades to an in-memory one
// when it fails, so a turn never dies on persistence. Availability over
// durability.
type FallbackStore struct {
	primary  Store
	fallback *MemoryStore
	logger   *slog.Logger
}

func NewFallbackStore(primary Store, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: NewMemoryStore(),
		logger:   logger,
	}
}

func (s *FallbackStore) FindLatestByUser(ctx context.Context, userID string) (*Conversation, error) {
	conv, err := s.primary.FindLatestByUser(ctx, userID)
	if err == nil {
		return conv, nil
	}
	s.logger.Warn("Conversation store unavailable, serving from memory", "user_id", userID, "error", err)
	metrics.StoreErrors.WithLabelValues("conversation").Inc()
	return s.fallback.FindLatestByUser(ctx, userID)
}

func (s *FallbackStore) Upsert(ctx context.Context, conv *Conversation) error {
	if err := s.primary.Upsert(ctx, conv); err != nil {
		s.logger.Warn("Conversation store unavailable, writing to memory", "user_id", conv.UserID, "error", err)
		metrics.StoreErrors.WithLabelValues("conversation").Inc()
		return s.fallback.Upsert(ctx, conv)
	}
	// Keep the shadow copy fresh so a later outage resumes from recent state.
	s.fallback.Upsert(ctx, conv)
	return nil
}
