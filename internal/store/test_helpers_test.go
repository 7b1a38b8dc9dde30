package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/medivault/internal/record"
)

// baseTime anchors test timestamps.
var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// createTestStore creates a new opened store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates an event with minimal required fields.
func createTestEvent(id, title string, date time.Time, typ record.EventType) record.Event {
	return record.Event{
		ID:    id,
		Title: title,
		Date:  date,
		Type:  typ,
	}
}

// createTestDocument creates a completed document with minimal required fields.
func createTestDocument(id, category string, uploaded time.Time) record.Document {
	return record.Document{
		ID:         id,
		URI:        "file:///scans/" + id + ".jpg",
		Name:       "Upload " + id,
		UploadDate: uploaded,
		Status:     record.DocumentCompleted,
		Category:   category,
	}
}
