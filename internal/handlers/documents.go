package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/story-editor/internal/storage"
	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// DocumentHandler exposes the document directory read-only:
// GET /v1/documents and GET /v1/documents/{name}.
type DocumentHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewDocumentHandler(log *slog.Logger, storage storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		log:     log,
		storage: storage,
	}
}

func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/v1/documents" || r.URL.Path == "/v1/documents/" {
		h.list(w, r)
		return
	}
	h.get(w, r)
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	names, err := h.storage.ListDocuments(r.Context())
	if err != nil {
		h.log.Error("Failed to list documents", "error", err)
		http.Error(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, names)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/documents/"))

	// Security: prevent directory traversal
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
		http.Error(w, "Invalid document name", http.StatusBadRequest)
		return
	}
	format, err := treefmt.ParseFormat(filepath.Ext(name))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.storage.LoadDocument(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to load document", "error", err, "name", name)
		http.Error(w, "Failed to load document", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := document.Write(format, &buf, doc); err != nil {
		h.log.Error("Failed to encode document", "error", err, "name", name)
		http.Error(w, "Failed to process document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error("Failed to write response", "error", err, "name", name)
	}
}
