package redis

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

const suppressTTL = 5 * time.Minute

// NotificationSuppressor drops repeat lifecycle notifications backed by
// Redis. Key format: notify:<recipient>:<fnv32a(subject+body)>. Identical
// messages to the same recipient are suppressed within suppressTTL, while a
// fresh reset link (different body) always goes out.
type NotificationSuppressor struct {
	client *redis.Client
}

// NewNotificationSuppressor wraps the given Redis client.
func NewNotificationSuppressor(client *redis.Client) *NotificationSuppressor {
	return &NotificationSuppressor{client: client}
}

// AlreadySent reports whether this exact message was delivered recently.
func (s *NotificationSuppressor) AlreadySent(ctx context.Context, to, subject, body string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(to, subject, body)).Result()
	if err != nil {
		return false, fmt.Errorf("suppressor check: %w", err)
	}
	return n > 0, nil
}

// Mark records a delivered message (expires after suppressTTL).
func (s *NotificationSuppressor) Mark(ctx context.Context, to, subject, body string) error {
	return s.client.Set(ctx, s.key(to, subject, body), "1", suppressTTL).Err()
}

func (s *NotificationSuppressor) key(to, subject, body string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	_, _ = h.Write([]byte(body))
	return fmt.Sprintf("notify:%s:%08x", to, h.Sum32())
}
