package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_Valid(t *testing.T) {
	assert.True(t, EventAppointment.Valid())
	assert.True(t, EventMedication.Valid())
	assert.True(t, EventReminder.Valid())
	assert.False(t, EventType("surgery").Valid())
	assert.False(t, EventType("").Valid())
}

func TestEventStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, EventStatus("done").Valid())
}

func TestEvent_Validate(t *testing.T) {
	base := Event{
		ID:    "e1",
		Title: "Checkup",
		Date:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Type:  EventAppointment,
	}

	tests := []struct {
		name    string
		mutate  func(e *Event)
		wantErr string
	}{
		{"valid", func(e *Event) {}, ""},
		{"empty status allowed", func(e *Event) { e.Status = "" }, ""},
		{"missing id", func(e *Event) { e.ID = "" }, "id is required"},
		{"blank title", func(e *Event) { e.Title = "   " }, "title is required"},
		{"zero date", func(e *Event) { e.Date = time.Time{} }, "date is required"},
		{"year 9999", func(e *Event) { e.Date = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC) }, ""},
		{"year 0000", func(e *Event) { e.Date = time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC) }, ""},
		{"year 10000", func(e *Event) { e.Date = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC) }, "year 10000 out of range"},
		{"negative year", func(e *Event) { e.Date = time.Date(-1, 12, 31, 0, 0, 0, 0, time.UTC) }, "year -1 out of range"},
		{"bad type", func(e *Event) { e.Type = "surgery" }, "unknown type"},
		{"bad status", func(e *Event) { e.Status = "done" }, "unknown status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDocument_Validate(t *testing.T) {
	d := Document{
		ID:         "d1",
		URI:        "file:///tmp/scan.jpg",
		Name:       "Scan",
		UploadDate: time.Now().UTC(),
		Status:     DocumentCompleted,
	}
	assert.NoError(t, d.Validate())

	d.Status = "archived"
	assert.ErrorContains(t, d.Validate(), "unknown status")

	d.Status = DocumentProcessing
	d.URI = ""
	assert.ErrorContains(t, d.Validate(), "uri is required")

	d.URI = "file:///tmp/scan.jpg"
	d.UploadDate = time.Date(12026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.ErrorContains(t, d.Validate(), "upload date: year 12026 out of range")
}

func TestEvent_Validate_OffsetCrossesYearBound(t *testing.T) {
	// Parses fine, but lands in year 10000 once converted to UTC.
	date, err := ParseDate("9999-12-31T23:00:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, 10000, date.Year())

	e := Event{ID: "e1", Title: "Late", Date: date, Type: EventReminder}
	assert.ErrorContains(t, e.Validate(), "out of range")
}

func TestDocument_Categorized(t *testing.T) {
	assert.False(t, Document{}.Categorized())
	assert.False(t, Document{Category: "  "}.Categorized())
	assert.True(t, Document{Category: "Lab Results"}.Categorized())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2026-03-15T10:00:00Z", want: want},
		{in: "2026-03-15T12:00:00+02:00", want: want},
		{in: "2026-03-15T10:00:00", want: want},
		{in: "2026-03-15T10:00", want: want},
		{in: " 2026-03-15 10:00 ", want: want},
		{in: "2026-03-15", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseDate("next Tuesday")
	assert.ErrorContains(t, err, "next Tuesday")
}
