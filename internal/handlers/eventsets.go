package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-editor/internal/storage"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/eventset"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// MaxEventSetBytes bounds the body of a PUT.
const MaxEventSetBytes = 1 << 20

// EventSetSummary is one item of a map listing.
type EventSetSummary struct {
	Host    string   `json:"host"`
	ThingID int      `json:"id"`
	Empty   bool     `json:"empty"`
	Summary []string `json:"summary"`
}

// EventSetHandler serves published event sets:
//
//	GET    /v1/maps/{map}/eventsets
//	GET    /v1/maps/{map}/eventsets/{host}/{id}
//	PUT    /v1/maps/{map}/eventsets/{host}/{id}
//	DELETE /v1/maps/{map}/eventsets/{host}/{id}
//
// Single sets travel in the document format, chosen by ?format= and
// defaulting to the configured one.
type EventSetHandler struct {
	log      *slog.Logger
	storage  storage.Storage
	format   treefmt.Format
	notifier ChangeNotifier
}

// ChangeNotifier is told about every successful write.
type ChangeNotifier interface {
	EventSetSaved(ctx context.Context, key storage.Key, summary []string) error
	EventSetDeleted(ctx context.Context, key storage.Key) error
}

func NewEventSetHandler(log *slog.Logger, storage storage.Storage, format treefmt.Format) *EventSetHandler {
	return &EventSetHandler{
		log:     log,
		storage: storage,
		format:  format,
	}
}

// WithNotifier attaches a ChangeNotifier. Notification failures are
// logged and never fail the request.
func (h *EventSetHandler) WithNotifier(n ChangeNotifier) *EventSetHandler {
	h.notifier = n
	return h
}

func (h *EventSetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mapID, rest, err := parseMapPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if rest == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r, mapID)
		return
	}

	key, err := parseHostPath(mapID, rest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, key)
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseMapPath splits /v1/maps/{map}/eventsets[/rest].
func parseMapPath(path string) (uuid.UUID, string, error) {
	trimmed, ok := strings.CutPrefix(path, "/v1/maps/")
	if !ok {
		return uuid.Nil, "", errors.New("invalid path")
	}
	mapPart, rest, _ := strings.Cut(trimmed, "/")
	mapID, err := uuid.Parse(mapPart)
	if err != nil {
		return uuid.Nil, "", errors.New("invalid map ID")
	}
	rest, ok = strings.CutPrefix(rest, "eventsets")
	if !ok {
		return uuid.Nil, "", errors.New("invalid path")
	}
	return mapID, strings.Trim(rest, "/"), nil
}

func parseHostPath(mapID uuid.UUID, rest string) (storage.Key, error) {
	hostPart, idPart, ok := strings.Cut(rest, "/")
	if !ok {
		return storage.Key{}, errors.New("event set path must be {host}/{id}")
	}
	host, ok := document.ParseHostKind(hostPart)
	if !ok {
		return storage.Key{}, errors.New("invalid host kind")
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 0 {
		return storage.Key{}, errors.New("invalid thing ID")
	}
	return storage.Key{MapID: mapID, Host: host, ThingID: id}, nil
}

func (h *EventSetHandler) requestFormat(r *http.Request) (treefmt.Format, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		return h.format, nil
	}
	return treefmt.ParseFormat(name)
}

func contentType(format treefmt.Format) string {
	if format == treefmt.FormatYAML {
		return "application/yaml"
	}
	return "application/xml"
}

func (h *EventSetHandler) list(w http.ResponseWriter, r *http.Request, mapID uuid.UUID) {
	keys, err := h.storage.ListEventSets(r.Context(), mapID)
	if err != nil {
		h.log.Error("Failed to list event sets", "error", err, "map_id", mapID)
		http.Error(w, "Failed to list event sets", http.StatusInternalServerError)
		return
	}

	// Initialize as empty slice instead of nil
	summaries := make([]EventSetSummary, 0, len(keys))
	for _, key := range keys {
		set, err := h.storage.LoadEventSet(r.Context(), key)
		if err != nil {
			h.log.Warn("Failed to load event set", "error", err, "key", key)
			continue
		}
		summaries = append(summaries, EventSetSummary{
			Host:    string(key.Host),
			ThingID: key.ThingID,
			Empty:   set.IsEmpty(),
			Summary: set.Summarize(),
		})
	}

	writeJSON(w, h.log, http.StatusOK, summaries)
}

func (h *EventSetHandler) get(w http.ResponseWriter, r *http.Request, key storage.Key) {
	format, err := h.requestFormat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	set, err := h.storage.LoadEventSet(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Event set not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to load event set", "error", err, "key", key)
		http.Error(w, "Failed to load event set", http.StatusInternalServerError)
		return
	}

	data, err := eventset.Marshal(format, set)
	if err != nil {
		h.log.Error("Failed to marshal event set", "error", err, "key", key)
		http.Error(w, "Failed to process event set", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error("Failed to write response", "error", err, "key", key)
	}
}

func (h *EventSetHandler) put(w http.ResponseWriter, r *http.Request, key storage.Key) {
	format, err := h.requestFormat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxEventSetBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	set, warnings, err := eventset.Unmarshal(format, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(warnings) > 0 {
		http.Error(w, "Invalid event set:\n"+strings.Join(warnings, "\n"), http.StatusBadRequest)
		return
	}

	if err := h.storage.SaveEventSet(r.Context(), key, set); err != nil {
		h.log.Error("Failed to save event set", "error", err, "key", key)
		http.Error(w, "Failed to save event set", http.StatusInternalServerError)
		return
	}

	h.log.Info("Event set stored", "key", key)
	summary := set.Summarize()
	if h.notifier != nil {
		if err := h.notifier.EventSetSaved(r.Context(), key, summary); err != nil {
			h.log.Warn("Failed to broadcast change", "error", err, "key", key)
		}
	}
	writeJSON(w, h.log, http.StatusOK, EventSetSummary{
		Host:    string(key.Host),
		ThingID: key.ThingID,
		Empty:   set.IsEmpty(),
		Summary: summary,
	})
}

func (h *EventSetHandler) delete(w http.ResponseWriter, r *http.Request, key storage.Key) {
	if err := h.storage.DeleteEventSet(r.Context(), key); err != nil {
		h.log.Error("Failed to delete event set", "error", err, "key", key)
		http.Error(w, "Failed to delete event set", http.StatusInternalServerError)
		return
	}
	if h.notifier != nil {
		if err := h.notifier.EventSetDeleted(r.Context(), key); err != nil {
			h.log.Warn("Failed to broadcast change", "error", err, "key", key)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to process response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
