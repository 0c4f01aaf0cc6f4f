// Package editor implements working-copy editing of event sets: every
// edit happens on a deep copy that replaces the original only on commit.
package editor

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-editor/internal/logger"
	"github.com/jwebster45206/story-editor/pkg/eventset"
)

// Session is one open edit of an event set.
type Session struct {
	ID       uuid.UUID
	original *eventset.EventSet
	working  *eventset.EventSet
	closed   bool
	logger   *slog.Logger
}

// Begin opens a session on original. original is not touched until Commit.
func Begin(original *eventset.EventSet, log *slog.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:       id,
		original: original,
		working:  original.Clone(),
		logger:   logger.WithSession(log, id.String()),
	}
}

// Working returns the copy to edit.
func (s *Session) Working() *eventset.EventSet {
	return s.working
}

// Dirty reports whether the working copy differs from the original.
func (s *Session) Dirty() bool {
	return !s.closed && !s.working.Equal(s.original)
}

// Closed reports whether the session was committed or cancelled.
func (s *Session) Closed() bool {
	return s.closed
}

// Commit copies the working copy into the original and closes the session.
func (s *Session) Commit() bool {
	if s.closed {
		return false
	}
	s.original.CopyFrom(s.working)
	s.closed = true
	s.logger.Debug("Committed event set edit")
	return true
}

// Cancel discards the working copy and closes the session.
func (s *Session) Cancel() bool {
	if s.closed {
		return false
	}
	s.closed = true
	s.logger.Debug("Cancelled event set edit")
	return true
}
