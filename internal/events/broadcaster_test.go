package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-editor/internal/storage"
	"github.com/jwebster45206/story-editor/pkg/document"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger), mr
}

func TestBroadcaster_SavedAndDeleted(t *testing.T) {
	b, _ := setupBroadcaster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mapID := uuid.New()
	sub, err := b.Subscribe(ctx, mapID)
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	key := storage.Key{MapID: mapID, Host: document.HostNPC, ThingID: 4}
	require.NoError(t, b.EventSetSaved(ctx, key, []string{"Lock: No Lock"}))
	require.NoError(t, b.EventSetDeleted(ctx, key))

	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventTypeEventSetSaved, ev.Type)
	assert.Equal(t, []string{"Lock: No Lock"}, ev.Summary)
	got, err := ev.Key()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	ev, err = sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventTypeEventSetDeleted, ev.Type)
	assert.Empty(t, ev.Summary)
}

func TestBroadcaster_ChannelsArePerMap(t *testing.T) {
	b, mr := setupBroadcaster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mapID := uuid.New()
	sub, err := b.Subscribe(ctx, mapID)
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	other := storage.Key{MapID: uuid.New(), Host: document.HostThing, ThingID: 1}
	require.NoError(t, b.EventSetDeleted(ctx, other))

	// malformed payloads on the channel are skipped
	mr.Publish(channelFor(mapID), "not json")

	mine := storage.Key{MapID: mapID, Host: document.HostThing, ThingID: 2}
	require.NoError(t, b.EventSetDeleted(ctx, mine))

	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, mapID.String(), ev.MapID)
	assert.Equal(t, 2, ev.ThingID)
}

func TestSubscription_NextHonoursContext(t *testing.T) {
	b, _ := setupBroadcaster(t)
	sub, err := b.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = sub.Next(ctx)
	assert.Error(t, err)
}
