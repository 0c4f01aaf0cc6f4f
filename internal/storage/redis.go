package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// RedisStorage implements the Storage interface using Redis for event sets
// and the filesystem for documents
type RedisStorage struct {
	client    *redis.Client
	logger    *slog.Logger
	dataDir   string
	keyPrefix string
	format    treefmt.Format
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// Options configures a RedisStorage.
type Options struct {
	RedisURL  string
	DataDir   string
	KeyPrefix string
	Format    treefmt.Format
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(opts Options, logger *slog.Logger) (*RedisStorage, error) {
	redisOpts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if opts.DataDir == "" {
		opts.DataDir = "./data"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "eventset"
	}
	if opts.Format == "" {
		opts.Format = treefmt.FormatXML
	}

	return &RedisStorage{
		client:    redis.NewClient(redisOpts),
		logger:    logger,
		dataDir:   opts.DataDir,
		keyPrefix: opts.KeyPrefix,
		format:    opts.Format,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Client exposes the underlying connection for pub/sub.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
