package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/eventset"
)

// ErrNotFound is returned when a requested event set or document does not exist.
var ErrNotFound = errors.New("not found")

// Key identifies the event set of one map object.
type Key struct {
	MapID   uuid.UUID
	Host    document.HostKind
	ThingID int
}

// String renders the key as "<map>:<host>:<id>".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.MapID, k.Host, k.ThingID)
}

// ParseKey parses the form produced by Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid event set key %q", s)
	}
	mapID, err := uuid.Parse(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("invalid map id in key %q: %w", s, err)
	}
	host, ok := document.ParseHostKind(parts[1])
	if !ok {
		return Key{}, fmt.Errorf("invalid host kind in key %q", s)
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil || id < 0 {
		return Key{}, fmt.Errorf("invalid thing id in key %q", s)
	}
	return Key{MapID: mapID, Host: host, ThingID: id}, nil
}

// Storage defines a unified interface for all storage operations
// This interface combines event set persistence (Redis) with document files (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Event set operations (Redis-backed)
	SaveEventSet(ctx context.Context, key Key, set *eventset.EventSet) error
	LoadEventSet(ctx context.Context, key Key) (*eventset.EventSet, error)
	DeleteEventSet(ctx context.Context, key Key) error
	ListEventSets(ctx context.Context, mapID uuid.UUID) ([]Key, error)

	// Document operations (filesystem-backed)
	ListDocuments(ctx context.Context) ([]string, error)
	LoadDocument(ctx context.Context, filename string) (*document.Document, error)
	SaveDocument(ctx context.Context, filename string, doc *document.Document) error
}

// sortKeys orders keys by host kind then thing id.
func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Host != keys[j].Host {
			return keys[i].Host < keys[j].Host
		}
		return keys[i].ThingID < keys[j].ThingID
	})
}
