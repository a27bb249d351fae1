package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds the connection settings for the Redis notifier.
type RedisConfig struct {
	Addr     string `help:"Redis address" default:"localhost:6379" env:"ADDR"`
	Password string `help:"Redis password" env:"PASSWORD"`
	DB       int    `help:"Redis database number" default:"0" env:"DB"`
	Channel  string `help:"Pub/sub channel events are published on" default:"teamhub:events" env:"CHANNEL"`
}

// RedisNotifier publishes events as JSON on a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, cfg RedisConfig) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNotifier{client: client, channel: cfg.Channel}, nil
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close releases the Redis connection pool.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
