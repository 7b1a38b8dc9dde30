package record

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies a calendar event.
type EventType string

const (
	EventAppointment EventType = "appointment"
	EventMedication  EventType = "medication"
	EventReminder    EventType = "reminder"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventAppointment, EventMedication, EventReminder:
		return true
	}
	return false
}

// EventStatus tracks whether an event still needs attention.
type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known event statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DocumentStatus tracks the analysis state of a document.
type DocumentStatus string

const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// Valid reports whether s is one of the known document statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentProcessing, DocumentCompleted, DocumentFailed:
		return true
	}
	return false
}

// Event is a scheduled medical occurrence.
//
// Date is the sole ordering key. An empty Status is stored as pending.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	Type        EventType   `json:"type"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Status      EventStatus `json:"status"`
}

// Validate checks the fields required before an event can be written.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event %s: title is required", e.ID)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event %s: date is required", e.ID)
	}
	if err := checkYear(e.Date); err != nil {
		return fmt.Errorf("event %s: date: %w", e.ID, err)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("event %s: unknown type %q", e.ID, e.Type)
	}
	if e.Status != "" && !e.Status.Valid() {
		return fmt.Errorf("event %s: unknown status %q", e.ID, e.Status)
	}
	return nil
}

// Document is a stored reference to a medical image and its derived metadata.
//
// The vault never reads or copies the bytes behind URI. Embedding is opaque
// and persisted verbatim; an absent embedding reads back as an empty slice.
type Document struct {
	ID         string         `json:"id"`
	URI        string         `json:"uri"`
	Name       string         `json:"name"`
	UploadDate time.Time      `json:"upload_date"`
	Status     DocumentStatus `json:"status"`
	Summary    string         `json:"summary,omitempty"`
	Category   string         `json:"category,omitempty"`
	Context    string         `json:"context,omitempty"`
	Embedding  []float64      `json:"embedding"`
}

// Validate checks the fields required before a document can be written.
func (d Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if d.URI == "" {
		return fmt.Errorf("document %s: uri is required", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("document %s: name is required", d.ID)
	}
	if d.UploadDate.IsZero() {
		return fmt.Errorf("document %s: upload date is required", d.ID)
	}
	if err := checkYear(d.UploadDate); err != nil {
		return fmt.Errorf("document %s: upload date: %w", d.ID, err)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("document %s: unknown status %q", d.ID, d.Status)
	}
	return nil
}

// Categorized reports whether the document carries a category tag.
func (d Document) Categorized() bool {
	return strings.TrimSpace(d.Category) != ""
}

// CategoryCount is one row of the category aggregate.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
