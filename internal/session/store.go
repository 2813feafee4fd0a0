// internal/session/store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-os/internal/common/config"
	"trip-os/internal/common/database"
	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

const keyPrefix = "chat:session:"

// Store persists the per-user assistant identity in Redis so a user
// resumes the same conversation across requests. Entries expire after
// the configured TTL; an expired session just means a fresh
// conversation is created on the next message.
type Store struct {
	client *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *database.RedisClient, cfg config.RedisConfig, log logger.Logger) *Store {
	return &Store{
		client: client,
		ttl:    config.GetDuration(cfg.SessionTTL),
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

// Get returns the stored session for a user, or nil when none exists.
func (s *Store) Get(ctx context.Context, userID string) (*models.ChatSession, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// Corrupt entry; drop it and start over.
		s.logger.Warn("discarding unreadable session", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		_ = s.client.Del(ctx, keyPrefix+userID)
		return nil, nil
	}
	return &session, nil
}

// Save stores the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, userID string, session *models.ChatSession) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session encode failed: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+userID, encoded, s.ttl); err != nil {
		return fmt.Errorf("session save failed: %w", err)
	}
	return nil
}

// Delete removes the stored session for a user.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}
