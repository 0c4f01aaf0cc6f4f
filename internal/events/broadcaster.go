package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-editor/internal/storage"
)

// EventType represents the kind of change being broadcast
type EventType string

const (
	EventTypeEventSetSaved   EventType = "eventset.saved"
	EventTypeEventSetDeleted EventType = "eventset.deleted"
)

// Event describes a change to one published event set.
type Event struct {
	Type    EventType `json:"type"`
	MapID   string    `json:"map_id"`
	Host    string    `json:"host"`
	ThingID int       `json:"id"`
	Summary []string  `json:"summary,omitempty"`
}

// Key returns the storage key the event refers to.
func (e Event) Key() (storage.Key, error) {
	return storage.ParseKey(fmt.Sprintf("%s:%s:%d", e.MapID, e.Host, e.ThingID))
}

// Broadcaster publishes event set changes to Redis Pub/Sub, one channel per map
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new change broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

func channelFor(mapID uuid.UUID) string {
	return fmt.Sprintf("eventset-events:%s", mapID.String())
}

// EventSetSaved publishes an eventset.saved event carrying the set's summary lines
func (b *Broadcaster) EventSetSaved(ctx context.Context, key storage.Key, summary []string) error {
	return b.publish(ctx, key.MapID, Event{
		Type:    EventTypeEventSetSaved,
		MapID:   key.MapID.String(),
		Host:    string(key.Host),
		ThingID: key.ThingID,
		Summary: summary,
	})
}

// EventSetDeleted publishes an eventset.deleted event
func (b *Broadcaster) EventSetDeleted(ctx context.Context, key storage.Key) error {
	return b.publish(ctx, key.MapID, Event{
		Type:    EventTypeEventSetDeleted,
		MapID:   key.MapID.String(),
		Host:    string(key.Host),
		ThingID: key.ThingID,
	})
}

func (b *Broadcaster) publish(ctx context.Context, mapID uuid.UUID, event Event) error {
	channel := channelFor(mapID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"host", event.Host,
		"id", event.ThingID,
	)

	return nil
}

// Subscription receives the changes published for one map.
type Subscription struct {
	pubsub *redis.PubSub
	logger *slog.Logger
}

// Subscribe listens on a map's channel. The subscription is confirmed
// before Subscribe returns, so nothing published afterwards is missed.
func (b *Broadcaster) Subscribe(ctx context.Context, mapID uuid.UUID) (*Subscription, error) {
	pubsub := b.redisClient.Subscribe(ctx, channelFor(mapID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return &Subscription{pubsub: pubsub, logger: b.logger}, nil
}

// Next blocks until the next well-formed event arrives or ctx ends.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		msg, err := s.pubsub.ReceiveMessage(ctx)
		if err != nil {
			return Event{}, err
		}
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			s.logger.Warn("Ignoring malformed event", "error", err, "channel", msg.Channel)
			continue
		}
		return event, nil
	}
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
