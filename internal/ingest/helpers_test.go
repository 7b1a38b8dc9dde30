package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/ids"
	"github.com/roach88/medivault/internal/record"
	"github.com/roach88/medivault/internal/store"
	"github.com/roach88/medivault/internal/testutil"
)

var baseTime = time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)

var errInjected = errors.New("injected write failure")

// flakyStore fails AddEvent for candidates whose title is listed.
type flakyStore struct {
	*store.Store
	failTitles map[string]bool
	failDocs   bool
}

func (f *flakyStore) AddDocument(ctx context.Context, d record.Document) error {
	if f.failDocs {
		return errInjected
	}
	return f.Store.AddDocument(ctx, d)
}

func (f *flakyStore) AddEvent(ctx context.Context, e record.Event) error {
	if f.failTitles[e.Title] {
		return errInjected
	}
	return f.Store.AddEvent(ctx, e)
}

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "vault.db"))
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestPipeline(st RecordStore, an analysis.Analyzer, idList ...string) (*Pipeline, *testutil.Clock) {
	clock := testutil.NewClock(baseTime)
	if len(idList) == 0 {
		idList = []string{"doc-1", "evt-1", "evt-2", "evt-3", "evt-4"}
	}
	p := New(st, an,
		WithIDs(ids.NewFixed(idList...)),
		WithClock(clock.Now),
		WithCategories([]string{"Lab Results", "Prescriptions"}, true),
	)
	return p, clock
}

func labResult(events ...analysis.EventCandidate) *analysis.Result {
	return &analysis.Result{
		Category:        "Lab Results",
		Summary:         "CBC within normal range",
		ContextText:     "Hemoglobin 14.1 g/dL",
		Embedding:       []float64{0.12, -0.5, 3},
		ExtractedEvents: events,
	}
}

func candidate(title string, date time.Time, typ record.EventType) analysis.EventCandidate {
	return analysis.EventCandidate{Title: title, Date: date, Type: typ}
}

func requireCounts(t *testing.T, s *store.Store, docs, events int) {
	t.Helper()
	ctx := context.Background()
	gotDocs, err := s.GetDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, gotDocs, docs)
	gotEvents, err := s.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, gotEvents, events)
}
