package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-editor/internal/config"
	"github.com/jwebster45206/story-editor/internal/editor"
	"github.com/jwebster45206/story-editor/internal/events"
	"github.com/jwebster45206/story-editor/internal/logger"
	"github.com/jwebster45206/story-editor/internal/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  %[1]s push <document> <map-id>   publish a document's event sets to Redis
  %[1]s pull <map-id> <document>   write every event set stored for a map into a document
  %[1]s list <map-id>              list event sets stored for a map
  %[1]s watch <map-id>             print changes to a map's event sets as they happen
`, os.Args[0])
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log := logger.Setup(cfg)

	store, err := storage.NewRedisStorage(storage.Options{
		RedisURL:  cfg.RedisURL,
		DataDir:   cfg.DataDir,
		KeyPrefix: cfg.KeyPrefix,
		Format:    cfg.Format,
	}, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := store.WaitForConnection(ctx, 5, time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "push":
		err = push(ctx, store, log, os.Args[2:])
	case "pull":
		err = pull(ctx, store, log, os.Args[2:])
	case "list":
		err = list(ctx, store, os.Args[2:])
	case "watch":
		err = watch(store, log, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		logger.WithError(log, err).Error("Sync failed", "command", os.Args[1])
		os.Exit(1)
	}
}

func push(ctx context.Context, store *storage.RedisStorage, log *slog.Logger, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("push expects <document> <map-id>")
	}
	mapID, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid map id: %w", err)
	}
	ws, err := editor.Open(ctx, store, args[0], log)
	if err != nil {
		return err
	}
	n, err := ws.Publish(ctx, mapID)
	if err != nil {
		return err
	}
	fmt.Printf("Published %d event sets to map %s\n", n, mapID)
	return nil
}

func pull(ctx context.Context, store *storage.RedisStorage, log *slog.Logger, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("pull expects <map-id> <document>")
	}
	mapID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid map id: %w", err)
	}
	ws, err := editor.Open(ctx, store, args[1], log)
	if err != nil {
		return err
	}
	n, err := ws.Pull(ctx, mapID)
	if err != nil {
		return err
	}
	if err := ws.Save(ctx); err != nil {
		return err
	}
	fmt.Printf("Pulled %d event sets into %s\n", n, args[1])
	return nil
}

func list(ctx context.Context, store *storage.RedisStorage, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("list expects <map-id>")
	}
	mapID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid map id: %w", err)
	}
	keys, err := store.ListEventSets(ctx, mapID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		set, err := store.LoadEventSet(ctx, key)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d\n", key.Host, key.ThingID)
		for _, line := range set.Summarize() {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}

func watch(store *storage.RedisStorage, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("watch expects <map-id>")
	}
	mapID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid map id: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := events.NewBroadcaster(store.Client(), log).Subscribe(ctx, mapID)
	if err != nil {
		return err
	}
	defer func() {
		_ = sub.Close()
	}()

	fmt.Printf("Watching map %s\n", mapID)
	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Printf("%s %s %d\n", ev.Type, ev.Host, ev.ThingID)
		for _, line := range ev.Summary {
			fmt.Printf("  %s\n", line)
		}
	}
}
