package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const mailboxKeyPrefix = "mailbox:"

// RedisMailbox stores per-user mailboxes as Redis lists. Delivery is
// best effort: a failed append is logged and dropped, matching the
// in-memory sink's fire-and-forget contract.
type RedisMailbox struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisMailbox wraps a connected client.
func NewRedisMailbox(client *redis.Client, logger *zap.Logger) *RedisMailbox {
	return &RedisMailbox{client: client, logger: logger}
}

// Notify appends a message to the user's list.
func (m *RedisMailbox) Notify(username, message string) {
	if err := m.client.RPush(context.Background(), mailboxKeyPrefix+username, message).Err(); err != nil {
		m.logger.Warn("notification delivery failed",
			zap.String("username", username), zap.Error(err))
	}
}

// Messages returns the user's mailbox, oldest first.
func (m *RedisMailbox) Messages(username string) []string {
	msgs, err := m.client.LRange(context.Background(), mailboxKeyPrefix+username, 0, -1).Result()
	if err != nil {
		m.logger.Warn("mailbox read failed",
			zap.String("username", username), zap.Error(err))
		return nil
	}
	return msgs
}

// Ping checks connectivity for readiness probes.
func (m *RedisMailbox) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Clear empties the user's mailbox.
func (m *RedisMailbox) Clear(username string) {
	if err := m.client.Del(context.Background(), mailboxKeyPrefix+username).Err(); err != nil {
		m.logger.Warn("mailbox clear failed",
			zap.String("username", username), zap.Error(err))
	}
}
