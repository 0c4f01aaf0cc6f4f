package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-editor/internal/storage"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/eventset"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

func seededStorage(t *testing.T, mapID uuid.UUID) *storage.MockStorage {
	t.Helper()
	mockStorage := storage.NewMockStorage()

	s := eventset.New()
	hello, _ := event.NewNotification("Hello")
	s.AddUnlocked(hello)
	key := storage.Key{MapID: mapID, Host: document.HostNPC, ThingID: 4}
	require.NoError(t, mockStorage.SaveEventSet(context.Background(), key, s))
	return mockStorage
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEventSetHandler_List(t *testing.T) {
	mapID := uuid.New()
	handler := NewEventSetHandler(testLogger(), seededStorage(t, mapID), treefmt.FormatXML)

	w := serve(handler, http.MethodGet, "/v1/maps/"+mapID.String()+"/eventsets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summaries []EventSetSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "npc", summaries[0].Host)
	assert.Equal(t, 4, summaries[0].ThingID)
	assert.Equal(t, "Unlock Events (1): Notification: Hello", summaries[0].Summary[2])

	// an unknown map lists as an empty array
	w = serve(handler, http.MethodGet, "/v1/maps/"+uuid.New().String()+"/eventsets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestEventSetHandler_Get(t *testing.T) {
	mapID := uuid.New()
	handler := NewEventSetHandler(testLogger(), seededStorage(t, mapID), treefmt.FormatXML)
	base := "/v1/maps/" + mapID.String() + "/eventsets/"

	w := serve(handler, http.MethodGet, base+"npc/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<notification>Hello</notification>")

	w = serve(handler, http.MethodGet, base+"npc/4?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "notification: Hello")

	w = serve(handler, http.MethodGet, base+"npc/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventSetHandler_PutAndDelete(t *testing.T) {
	mapID := uuid.New()
	mockStorage := storage.NewMockStorage()
	handler := NewEventSetHandler(testLogger(), mockStorage, treefmt.FormatXML)
	target := "/v1/maps/" + mapID.String() + "/eventsets/thing/2"

	body := []byte(`<eventset><lockevent><startmap><id>3</id></startmap></lockevent></eventset>`)
	w := serve(handler, http.MethodPut, target, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	key := storage.Key{MapID: mapID, Host: document.HostThing, ThingID: 2}
	stored, err := mockStorage.LoadEventSet(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.LockedEvent().StartMapID())

	w = serve(handler, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = mockStorage.LoadEventSet(context.Background(), key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type recordingNotifier struct {
	saved   []storage.Key
	deleted []storage.Key
	summary []string
	err     error
}

func (n *recordingNotifier) EventSetSaved(ctx context.Context, key storage.Key, summary []string) error {
	n.saved = append(n.saved, key)
	n.summary = summary
	return n.err
}

func (n *recordingNotifier) EventSetDeleted(ctx context.Context, key storage.Key) error {
	n.deleted = append(n.deleted, key)
	return n.err
}

func TestEventSetHandler_NotifiesChanges(t *testing.T) {
	mapID := uuid.New()
	notifier := &recordingNotifier{}
	handler := NewEventSetHandler(testLogger(), storage.NewMockStorage(), treefmt.FormatXML).WithNotifier(notifier)
	target := "/v1/maps/" + mapID.String() + "/eventsets/thing/2"
	key := storage.Key{MapID: mapID, Host: document.HostThing, ThingID: 2}

	body := []byte(`<eventset><lockevent><startmap><id>3</id></startmap></lockevent></eventset>`)
	w := serve(handler, http.MethodPut, target, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []storage.Key{key}, notifier.saved)
	assert.NotEmpty(t, notifier.summary)

	// a rejected write is not broadcast
	w = serve(handler, http.MethodPut, target, []byte(`<eventset><lock>`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, notifier.saved, 1)

	// broadcast failures do not fail the request
	notifier.err = assert.AnError
	w = serve(handler, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []storage.Key{key}, notifier.deleted)
}

func TestEventSetHandler_PutRejectsInvalidSets(t *testing.T) {
	mapID := uuid.New()
	handler := NewEventSetHandler(testLogger(), storage.NewMockStorage(), treefmt.FormatXML)
	target := "/v1/maps/" + mapID.String() + "/eventsets/thing/2"

	w := serve(handler, http.MethodPut, target, []byte(`<eventset><lockevent><startmap><id>-3</id></startmap></lockevent></eventset>`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "ignored"), w.Body.String())

	w = serve(handler, http.MethodPut, target, []byte(`<eventset><lock>`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(handler, http.MethodPut, target+"?format=json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventSetHandler_BadPaths(t *testing.T) {
	mapID := uuid.New().String()
	handler := NewEventSetHandler(testLogger(), storage.NewMockStorage(), treefmt.FormatXML)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/v1/maps/not-a-uuid/eventsets", http.StatusBadRequest},
		{http.MethodGet, "/v1/maps/" + mapID + "/scenes", http.StatusBadRequest},
		{http.MethodGet, "/v1/maps/" + mapID + "/eventsets/npc", http.StatusBadRequest},
		{http.MethodGet, "/v1/maps/" + mapID + "/eventsets/dragon/1", http.StatusBadRequest},
		{http.MethodGet, "/v1/maps/" + mapID + "/eventsets/npc/-1", http.StatusBadRequest},
		{http.MethodPost, "/v1/maps/" + mapID + "/eventsets", http.StatusMethodNotAllowed},
		{http.MethodPatch, "/v1/maps/" + mapID + "/eventsets/npc/1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := serve(handler, tt.method, tt.target, nil)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.target)
	}
}

func TestRequestLogger(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	w := serve(RequestLogger(testLogger(), inner), http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
