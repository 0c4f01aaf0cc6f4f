package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// Document operations (filesystem-backed)

func (r *RedisStorage) documentsDir() string {
	return filepath.Join(r.dataDir, "documents")
}

func (r *RedisStorage) ListDocuments(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.documentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := treefmt.ParseFormat(filepath.Ext(entry.Name())); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStorage) LoadDocument(ctx context.Context, filename string) (*document.Document, error) {
	path, format, err := r.documentPath(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()

	doc, warnings, err := document.Read(format, f)
	if err != nil {
		r.logger.Error("Failed to read document", "path", path, "error", err)
		return nil, err
	}
	for _, w := range warnings {
		r.logger.Warn("Document record skipped", "path", path, "record", w)
	}
	return doc, nil
}

func (r *RedisStorage) SaveDocument(ctx context.Context, filename string, doc *document.Document) error {
	path, format, err := r.documentPath(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	return WriteDocumentFile(path, format, doc)
}

func (r *RedisStorage) documentPath(filename string) (string, treefmt.Format, error) {
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return "", "", fmt.Errorf("invalid document filename %q", filename)
	}
	format, err := treefmt.ParseFormat(filepath.Ext(filename))
	if err != nil {
		return "", "", err
	}
	return filepath.Join(r.documentsDir(), filename), format, nil
}

// WriteDocumentFile writes doc to a temporary file next to path and
// renames it into place.
func WriteDocumentFile(path string, format treefmt.Format, doc *document.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := document.Write(format, tmp, doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
