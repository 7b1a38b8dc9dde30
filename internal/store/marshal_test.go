package store

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime_FixedWidth(t *testing.T) {
	a := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC))
	b := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 500_000_000, time.UTC))

	assert.Equal(t, len(a), len(b))
	assert.Less(t, a, b, "lexical order must match chronological order")
}

func TestFormatTime_NormalizesToUTC(t *testing.T) {
	tz := time.FixedZone("CET", 3600)
	got := formatTime(time.Date(2026, 1, 1, 1, 0, 0, 0, tz))
	assert.Equal(t, "2026-01-01T00:00:00.000000000Z", got)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := parseTime("2026-01-01T00:00:00.000000000Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTime("2026-01-01T01:00:00+01:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, time.UTC, got.Location())

	_, err = parseTime("tomorrow")
	assert.Error(t, err)
}

func TestMarshalEmbedding(t *testing.T) {
	got, err := marshalEmbedding(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = marshalEmbedding([]float64{1, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "[1,0.5]", got)

	_, err = marshalEmbedding([]float64{math.NaN()})
	assert.Error(t, err)
}

func TestUnmarshalEmbedding(t *testing.T) {
	for _, in := range []sql.NullString{
		{},
		{Valid: true, String: ""},
		{Valid: true, String: "null"},
		{Valid: true, String: "[]"},
	} {
		got, err := unmarshalEmbedding(in)
		require.NoError(t, err)
		assert.Equal(t, []float64{}, got, "input %+v", in)
	}

	got, err := unmarshalEmbedding(sql.NullString{Valid: true, String: "[0.25,-1]"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -1}, got)

	_, err = unmarshalEmbedding(sql.NullString{Valid: true, String: "{"})
	assert.Error(t, err)
}

func TestEventStatus_DefaultsToPending(t *testing.T) {
	assert.Equal(t, "pending", string(eventStatus(sql.NullString{})))
	assert.Equal(t, "pending", string(eventStatus(sql.NullString{Valid: true})))
	assert.Equal(t, "completed", string(eventStatus(sql.NullString{Valid: true, String: "completed"})))
}
