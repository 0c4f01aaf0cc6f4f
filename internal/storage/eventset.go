package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-editor/pkg/eventset"
)

// Event set operations (Redis-backed)

func (r *RedisStorage) redisKey(key Key) string {
	return r.keyPrefix + ":" + key.String()
}

func (r *RedisStorage) SaveEventSet(ctx context.Context, key Key, set *eventset.EventSet) error {
	data, err := eventset.Marshal(r.format, set)
	if err != nil {
		r.logger.Error("Failed to marshal event set", "key", key, "error", err)
		return err
	}

	cmd := r.client.Set(ctx, r.redisKey(key), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save event set", "key", key, "error", err)
		return fmt.Errorf("failed to save event set: %w", err)
	}

	r.logger.Debug("Saved event set", "key", key, "bytes", len(data))
	return nil
}

func (r *RedisStorage) LoadEventSet(ctx context.Context, key Key) (*eventset.EventSet, error) {
	cmd := r.client.Get(ctx, r.redisKey(key))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Event set not found", "key", key)
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to load event set", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load event set: %w", err)
	}

	set, warnings, err := eventset.Unmarshal(r.format, []byte(cmd.Val()))
	if err != nil {
		r.logger.Error("Failed to unmarshal event set", "key", key, "error", err)
		return nil, err
	}
	for _, w := range warnings {
		r.logger.Warn("Event set record skipped", "key", key, "record", w)
	}

	return set, nil
}

func (r *RedisStorage) DeleteEventSet(ctx context.Context, key Key) error {
	cmd := r.client.Del(ctx, r.redisKey(key))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete event set", "key", key, "error", err)
		return fmt.Errorf("failed to delete event set: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListEventSets(ctx context.Context, mapID uuid.UUID) ([]Key, error) {
	match := fmt.Sprintf("%s:%s:*", r.keyPrefix, mapID)
	prefixLen := len(r.keyPrefix) + 1

	var keys []Key
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		raw := iter.Val()
		key, err := ParseKey(raw[prefixLen:])
		if err != nil {
			r.logger.Warn("Skipping malformed event set key", "key", raw, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan event sets", "map_id", mapID, "error", err)
		return nil, fmt.Errorf("failed to list event sets: %w", err)
	}

	sortKeys(keys)
	return keys, nil
}
