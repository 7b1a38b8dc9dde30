package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/medivault/internal/record"
)

func TestDecodeResult_Full(t *testing.T) {
	body := []byte(`{
		"category": "  Lab Results ",
		"summary": "Cholesterol slightly elevated.",
		"context_text": "Lipid panel, fasting",
		"embedding": [0.125, -1, 3e-7],
		"extracted_events": [
			{"title": "Follow-up", "date": "2026-04-02T10:30:00Z", "type": "appointment", "location": "Clinic B"},
			{"title": "Statin", "date": "2026-04-01T08:00", "type": "medication", "description": null}
		]
	}`)

	res, err := DecodeResult(body)
	require.NoError(t, err)

	assert.Equal(t, "Lab Results", res.Category)
	assert.Equal(t, "Cholesterol slightly elevated.", res.Summary)
	assert.Equal(t, "Lipid panel, fasting", res.ContextText)
	assert.Equal(t, []float64{0.125, -1, 3e-7}, res.Embedding)
	require.Len(t, res.ExtractedEvents, 2)

	first := res.ExtractedEvents[0]
	assert.Equal(t, "Follow-up", first.Title)
	assert.Equal(t, record.EventAppointment, first.Type)
	assert.Equal(t, "Clinic B", first.Location)
	assert.True(t, time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC).Equal(first.Date))

	second := res.ExtractedEvents[1]
	assert.Equal(t, record.EventMedication, second.Type)
	assert.Empty(t, second.Description)
	assert.True(t, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC).Equal(second.Date))
}

func TestDecodeResult_MinimalBody(t *testing.T) {
	res, err := DecodeResult([]byte(`{}`))
	require.NoError(t, err)

	assert.Empty(t, res.Category)
	assert.NotNil(t, res.Embedding)
	assert.Empty(t, res.Embedding)
	assert.NotNil(t, res.ExtractedEvents)
	assert.Empty(t, res.ExtractedEvents)
}

func TestDecodeResult_NullFields(t *testing.T) {
	res, err := DecodeResult([]byte(`{"category": null, "embedding": null, "extracted_events": null}`))
	require.NoError(t, err)
	assert.Empty(t, res.Category)
	assert.Empty(t, res.ExtractedEvents)
}

func TestDecodeResult_ExtraFieldsAllowed(t *testing.T) {
	res, err := DecodeResult([]byte(`{
		"category": "Imaging",
		"model": "vision-2",
		"extracted_events": [{"id": "x", "title": "MRI", "date": "2026-05-01", "type": "appointment", "status": "pending"}]
	}`))
	require.NoError(t, err)
	require.Len(t, res.ExtractedEvents, 1)
	assert.Equal(t, "MRI", res.ExtractedEvents[0].Title)
}

func TestDecodeResult_UnparseableDateKeptRaw(t *testing.T) {
	res, err := DecodeResult([]byte(`{"extracted_events": [{"title": "Refill", "date": "next tuesday", "type": "reminder"}]}`))
	require.NoError(t, err)
	require.Len(t, res.ExtractedEvents, 1)
	assert.True(t, res.ExtractedEvents[0].Date.IsZero())
	assert.Equal(t, "next tuesday", res.ExtractedEvents[0].RawDate)
}

func TestDecodeResult_MalformedEventsKept(t *testing.T) {
	res, err := DecodeResult([]byte(`{
		"category": "Lab Results",
		"extracted_events": [
			{"title": "Lab follow-up", "date": "2026-03-09", "type": "lab"},
			{"title": "Take pill", "date": null, "type": "medication"},
			{"title": "", "date": "2026-03-10", "type": "reminder"},
			{"date": "2026-03-11"},
			{"title": "Refill", "date": "2026-03-12", "type": "reminder"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, res.ExtractedEvents, 5)

	lab := res.ExtractedEvents[0]
	assert.Equal(t, record.EventType("lab"), lab.Type)
	assert.False(t, lab.Type.Valid())
	assert.True(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Equal(lab.Date))

	pill := res.ExtractedEvents[1]
	assert.True(t, pill.Date.IsZero())
	assert.Empty(t, pill.RawDate)

	assert.Empty(t, res.ExtractedEvents[2].Title)
	assert.Empty(t, res.ExtractedEvents[3].Type)
	assert.Equal(t, "Refill", res.ExtractedEvents[4].Title)
}

func TestDecodeResult_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"event not an object", `{"extracted_events": ["Lab follow-up"]}`},
		{"event title not string", `{"extracted_events": [{"title": 7, "date": "2026-01-01", "type": "reminder"}]}`},
		{"embedding not numeric", `{"embedding": ["a", "b"]}`},
		{"category not string", `{"category": 7}`},
		{"top-level array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResult([]byte(tt.body))
			require.Error(t, err)

			var ae *Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, KindSchema, ae.Kind)
		})
	}
}

func TestDecodeResult_InvalidJSON(t *testing.T) {
	_, err := DecodeResult([]byte(`{"category":`))
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindDecode, ae.Kind)
	assert.True(t, IsFailure(err))
}

func TestNormalizeLabel_NFC(t *testing.T) {
	decomposed := "Cafe\u0301 notes"
	assert.Equal(t, "Caf\u00e9 notes", NormalizeLabel(decomposed))
	assert.Equal(t, "Imaging", NormalizeLabel("\tImaging \n"))
}

func TestNormalizeLabels_Dedupes(t *testing.T) {
	got := NormalizeLabels([]string{"Caf\u00e9", "Cafe\u0301", " ", "Imaging", "Imaging "})
	assert.Equal(t, []string{"Caf\u00e9", "Imaging"}, got)
}
