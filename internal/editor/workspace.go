package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-editor/internal/storage"
	"github.com/jwebster45206/story-editor/pkg/document"
)

// Workspace is an open document with per-entry edit sessions.
type Workspace struct {
	filename string
	doc      *document.Document
	store    storage.Storage
	sessions map[*document.Entry]*Session
	logger   *slog.Logger
}

// Open loads filename from store, starting an empty document when it does
// not exist yet.
func Open(ctx context.Context, store storage.Storage, filename string, logger *slog.Logger) (*Workspace, error) {
	doc, err := store.LoadDocument(ctx, filename)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Info("Starting new document", "filename", filename)
		doc = document.New()
	} else if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	doc.Sort()

	return &Workspace{
		filename: filename,
		doc:      doc,
		store:    store,
		sessions: make(map[*document.Entry]*Session),
		logger:   logger.With("filename", filename),
	}, nil
}

func (w *Workspace) Filename() string {
	return w.filename
}

// Document returns the committed document.
func (w *Workspace) Document() *document.Document {
	return w.doc
}

// Edit returns the open session for entry, beginning one if needed.
func (w *Workspace) Edit(entry *document.Entry) *Session {
	if s, ok := w.sessions[entry]; ok && !s.Closed() {
		return s
	}
	s := Begin(entry.Set, w.logger)
	w.sessions[entry] = s
	w.logger.Debug("Editing event set", "entry", entry.Label(), "session_id", s.ID)
	return s
}

// Session returns the open session for entry, or nil.
func (w *Workspace) Session(entry *document.Entry) *Session {
	if s, ok := w.sessions[entry]; ok && !s.Closed() {
		return s
	}
	return nil
}

// Commit commits the open session for entry.
func (w *Workspace) Commit(entry *document.Entry) bool {
	s := w.Session(entry)
	if s == nil {
		return false
	}
	delete(w.sessions, entry)
	return s.Commit()
}

// Cancel discards the open session for entry.
func (w *Workspace) Cancel(entry *document.Entry) bool {
	s := w.Session(entry)
	if s == nil {
		return false
	}
	delete(w.sessions, entry)
	return s.Cancel()
}

// Dirty reports whether any open session has uncommitted changes.
func (w *Workspace) Dirty() bool {
	for _, s := range w.sessions {
		if s.Dirty() {
			return true
		}
	}
	return false
}

// Save writes the committed document. Open sessions are not included.
func (w *Workspace) Save(ctx context.Context) error {
	if err := w.store.SaveDocument(ctx, w.filename, w.doc); err != nil {
		w.logger.Error("Failed to save document", "error", err)
		return err
	}
	w.logger.Info("Saved document", "entries", len(w.doc.Entries))
	return nil
}

// Publish stores every committed entry under mapID. Empty sets are
// stored too, so a cleared set replaces an older published one.
func (w *Workspace) Publish(ctx context.Context, mapID uuid.UUID) (int, error) {
	for i, e := range w.doc.Entries {
		key := storage.Key{MapID: mapID, Host: e.Host, ThingID: e.ThingID}
		if err := w.store.SaveEventSet(ctx, key, e.Set); err != nil {
			return i, fmt.Errorf("failed to publish %s: %w", e.Label(), err)
		}
	}
	w.logger.Info("Published document", "map_id", mapID, "entries", len(w.doc.Entries))
	return len(w.doc.Entries), nil
}

// Pull replaces committed entries with every event set stored under mapID.
// Entries with an open session are skipped.
func (w *Workspace) Pull(ctx context.Context, mapID uuid.UUID) (int, error) {
	keys, err := w.store.ListEventSets(ctx, mapID)
	if err != nil {
		return 0, err
	}

	pulled := 0
	for _, key := range keys {
		set, err := w.store.LoadEventSet(ctx, key)
		if err != nil {
			return pulled, fmt.Errorf("failed to pull %s: %w", key, err)
		}
		entry := w.doc.Entry(key.Host, key.ThingID)
		if w.Session(entry) != nil {
			w.logger.Warn("Skipping entry with open session", "entry", entry.Label())
			continue
		}
		entry.Set = set
		pulled++
	}
	w.doc.Sort()
	w.logger.Info("Pulled event sets", "map_id", mapID, "count", pulled)
	return pulled, nil
}
