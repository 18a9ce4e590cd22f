package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists transcripts in Redis so sessions survive restarts
// and can be shared across instances.
//
// Data layout:
//   - Key: "<prefix>:<session_id>:messages"
//   - Type: sorted set, scored by append timestamp
//   - Value: JSON-encoded message
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL expires idle sessions (0 = no expiry).
	TTL time.Duration
	// KeyPrefix namespaces the store's keys (default "fitkit:sessions").
	KeyPrefix string
}

// NewRedisStore creates a Redis-backed transcript store.
func NewRedisStore(opts RedisOptions) *RedisStore {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "fitkit:sessions"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{
		client:    client,
		ttl:       opts.TTL,
		keyPrefix: prefix,
	}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:messages", s.keyPrefix, sessionID)
}

// Append adds a message to the end of a session's transcript.
func (s *RedisStore) Append(ctx context.Context, sessionID string, message *fitkit.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	key := s.sessionKey(sessionID)
	score := float64(time.Now().UnixNano()) / 1e9
	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: string(value)}).Err(); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set TTL: %w", err)
		}
	}
	return nil
}

// History returns a session's transcript in chronological order.
func (s *RedisStore) History(ctx context.Context, sessionID string, limit int) ([]*fitkit.Message, error) {
	key := s.sessionKey(sessionID)

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	values, err := s.client.ZRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	messages := make([]*fitkit.Message, 0, len(values))
	for _, value := range values {
		var msg fitkit.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			continue // skip malformed entries
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// Clear removes a session's transcript.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Sessions lists known session IDs.
func (s *RedisStore) Sessions(ctx context.Context) ([]string, error) {
	pattern := fmt.Sprintf("%s:*:messages", s.keyPrefix)
	sessions := make([]string, 0)

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		// Key format: "<prefix>:<session_id>:messages".
		parts := strings.Split(iter.Val(), ":")
		if len(parts) >= 3 {
			sessions = append(sessions, parts[len(parts)-2])
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
