package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/medivault/internal/record"
)

// timeLayout is fixed-width so that TEXT comparison orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// formatTime converts t to the stored UTC text form.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp. Rows written by other tools in plain
// RFC 3339 are accepted too.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// marshalEmbedding encodes the vector as a JSON array. A nil vector is
// stored as "[]". strconv's shortest float formatting makes this lossless
// for every finite float64; NaN and Inf are rejected.
func marshalEmbedding(v []float64) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal embedding: %w", err)
	}
	return string(data), nil
}

// unmarshalEmbedding decodes a stored vector. NULL, empty text and JSON null
// all read back as an empty, non-nil slice.
func unmarshalEmbedding(data sql.NullString) ([]float64, error) {
	if !data.Valid || data.String == "" {
		return []float64{}, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(data.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshal embedding: %w", err)
	}
	if v == nil {
		v = []float64{}
	}
	return v, nil
}

// eventStatus defaults a missing status to pending. Rows created before the
// events.status migration carry NULL.
func eventStatus(s sql.NullString) record.EventStatus {
	if !s.Valid || s.String == "" {
		return record.StatusPending
	}
	return record.EventStatus(s.String)
}
