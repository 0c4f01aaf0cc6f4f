package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/eventset"
)

// MockStorage is a mock implementation of Storage for testing.
// It keeps deep copies, so callers can keep editing what they saved.
type MockStorage struct {
	mu        sync.RWMutex
	eventSets map[Key]*eventset.EventSet
	documents map[string]*document.Document
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		eventSets: make(map[Key]*eventset.EventSet),
		documents: make(map[string]*document.Document),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveEventSet(ctx context.Context, key Key, set *eventset.EventSet) error {
	if set == nil {
		return errors.New("event set cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventSets[key] = set.Clone()
	return nil
}

func (m *MockStorage) LoadEventSet(ctx context.Context, key Key) (*eventset.EventSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, exists := m.eventSets[key]
	if !exists {
		return nil, ErrNotFound
	}
	return set.Clone(), nil
}

func (m *MockStorage) DeleteEventSet(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.eventSets, key)
	return nil
}

func (m *MockStorage) ListEventSets(ctx context.Context, mapID uuid.UUID) ([]Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []Key
	for key := range m.eventSets {
		if key.MapID == mapID {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys, nil
}

func (m *MockStorage) ListDocuments(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.documents))
	for name := range m.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockStorage) LoadDocument(ctx context.Context, filename string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.documents[filename]
	if !exists {
		return nil, fmt.Errorf("document %s: %w", filename, ErrNotFound)
	}
	return doc.Clone(), nil
}

func (m *MockStorage) SaveDocument(ctx context.Context, filename string, doc *document.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[filename] = doc.Clone()
	return nil
}
