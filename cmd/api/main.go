package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/story-editor/internal/config"
	"github.com/jwebster45206/story-editor/internal/events"
	"github.com/jwebster45206/story-editor/internal/handlers"
	"github.com/jwebster45206/story-editor/internal/logger"
	"github.com/jwebster45206/story-editor/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Story Editor API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"format", cfg.Format)

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

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	broadcaster := events.NewBroadcaster(store.Client(), log)
	eventSetHandler := handlers.NewEventSetHandler(log, store, cfg.Format).WithNotifier(broadcaster)
	mux.Handle("/v1/maps/", eventSetHandler)

	documentHandler := handlers.NewDocumentHandler(log, store)
	mux.Handle("/v1/documents", documentHandler)
	mux.Handle("/v1/documents/", documentHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.RequestLogger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
