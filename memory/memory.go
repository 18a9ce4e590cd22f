// Package memory stores session transcripts: every user message and
// agent reply of a consultation, keyed by session ID. The chat and
// serve modes use it to keep conversation history across turns.
package memory

import (
	"context"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/google/uuid"
)

// Store persists session transcripts.
type Store interface {
	// Append adds a message to the end of a session's transcript.
	Append(ctx context.Context, sessionID string, message *fitkit.Message) error

	// History returns a session's transcript in chronological order.
	// limit <= 0 returns the full transcript; otherwise the most
	// recent limit messages.
	History(ctx context.Context, sessionID string, limit int) ([]*fitkit.Message, error)

	// Clear removes a session's transcript.
	Clear(ctx context.Context, sessionID string) error

	// Sessions lists known session IDs.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases any backing resources.
	Close() error
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
