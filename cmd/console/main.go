package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/story-editor/internal/config"
	"github.com/jwebster45206/story-editor/internal/editor"
	"github.com/jwebster45206/story-editor/internal/logger"
	"github.com/jwebster45206/story-editor/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <document>\n\nDocuments are read from and saved to $DATA_DIR/documents.\n", os.Args[0])
		os.Exit(1)
	}
	filename := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// The UI owns the terminal, so logs go to a file.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal(err)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "console.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.SetupWriter(cfg, logFile)

	store, err := storage.NewRedisStorage(storage.Options{
		RedisURL:  cfg.RedisURL,
		DataDir:   cfg.DataDir,
		KeyPrefix: cfg.KeyPrefix,
		Format:    cfg.Format,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	ws, err := editor.Open(context.Background(), store, filename, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", filename, err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(ws), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
