package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/config"
)

// Publisher pushes notification events to an external channel after they
// have been materialized as in-app notifications
type Publisher interface {
	Publish(ctx context.Context, n *database.Notification) error
	Close() error
}

// RedisPublisher publishes notification events to a Redis stream so other
// services (mailers, websocket fan-out) can consume them
type RedisPublisher struct {
	logger *zap.Logger
	client redis.UniversalClient
	stream string
}

// NewRedisPublisher creates a publisher and verifies the connection
func NewRedisPublisher(logger *zap.Logger, cfg config.NotifierRedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisPublisher{
		logger: logger.Named("notifier.redis"),
		client: client,
		stream: cfg.Stream,
	}, nil
}

// Publish appends one notification event to the stream
func (p *RedisPublisher) Publish(ctx context.Context, n *database.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"notification": string(payload)},
	}).Err()
}

// Close closes the underlying client
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
