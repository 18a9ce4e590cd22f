package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fitforge/fitkit/fitkit"
)

// InMemoryStore keeps transcripts in process memory. Suitable for the
// demos, tests, and single-instance chat sessions.
type InMemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string][]*fitkit.Message
	maxMessages int
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an in-process store. maxMessages bounds each
// session's transcript; older messages are evicted first (0 = unbounded).
func NewInMemoryStore(maxMessages int) *InMemoryStore {
	return &InMemoryStore{
		sessions:    make(map[string][]*fitkit.Message),
		maxMessages: maxMessages,
	}
}

// Append adds a message to the end of a session's transcript.
func (s *InMemoryStore) Append(ctx context.Context, sessionID string, message *fitkit.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := message.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transcript := append(s.sessions[sessionID], message)
	if s.maxMessages > 0 && len(transcript) > s.maxMessages {
		transcript = transcript[len(transcript)-s.maxMessages:]
	}
	s.sessions[sessionID] = transcript
	return nil
}

// History returns a session's transcript in chronological order.
func (s *InMemoryStore) History(ctx context.Context, sessionID string, limit int) ([]*fitkit.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := s.sessions[sessionID]
	if limit > 0 && len(transcript) > limit {
		transcript = transcript[len(transcript)-limit:]
	}
	out := make([]*fitkit.Message, len(transcript))
	copy(out, transcript)
	return out, nil
}

// Clear removes a session's transcript.
func (s *InMemoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions lists known session IDs, sorted.
func (s *InMemoryStore) Sessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the in-process store.
func (s *InMemoryStore) Close() error {
	return nil
}
