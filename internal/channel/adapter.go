package channel

import "context"

// Message represents an inbound message from a channel. ImageB64 is set
// instead of Content when the user sent a photo.
type Message struct {
	ID        string
	Channel   string
	UserID    string
	Content   string
	ImageB64  string
	Metadata  map[string]string
	Timestamp int64
}

// Response is what the gateway sends back: plain text plus optional short
// suggestion strings the front-end renders as selectable replies.
type Response struct {
	Content     string
	Suggestions []string
	Metadata    map[string]string
}

// Adapter is the interface channel implementations satisfy.
type Adapter interface {
	// Start starts the channel adapter.
	Start(ctx context.Context) error

	// Stop stops the channel adapter.
	Stop() error

	// SendMessage sends a response to a user on the channel.
	SendMessage(userID string, resp *Response) error

	// Incoming returns a channel of incoming messages.
	Incoming() <-chan *Message

	// Name returns the name of the channel adapter.
	Name() string

	// IsEnabled returns whether the channel is enabled.
	IsEnabled() bool
}
