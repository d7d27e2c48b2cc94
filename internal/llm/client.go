// Package llm wraps the external completion service. The orchestrator only
// sees the Client interface and the two error classes.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited signals the service pushed back; the user should retry
// shortly.
var ErrRateLimited = errors.New("completion service rate limited")

// ErrUnreachable signals a transport-level failure reaching the service.
var ErrUnreachable = errors.New("completion service unreachable")

// Message is one chat turn sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values fall back to the
// client's configured defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

// Client is the completion service contract.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	DescribeImage(ctx context.Context, imageB64, prompt string) (string, error)
}
