package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/ids"
	"github.com/roach88/medivault/internal/record"
)

// RecordStore is the subset of the store the pipeline writes through.
type RecordStore interface {
	AddDocument(ctx context.Context, d record.Document) error
	AddEvent(ctx context.Context, e record.Event) error
}

// Confirmer decides whether extracted events should be saved. It may block
// for as long as the user takes. Returning an error abandons the attempt.
type Confirmer interface {
	ConfirmEvents(ctx context.Context, doc record.Document, candidates []analysis.EventCandidate) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, doc record.Document, candidates []analysis.EventCandidate) (bool, error)

// ConfirmEvents calls f.
func (f ConfirmFunc) ConfirmEvents(ctx context.Context, doc record.Document, candidates []analysis.EventCandidate) (bool, error) {
	return f(ctx, doc, candidates)
}

// Pipeline runs ingestion attempts. It holds no store resources between
// calls; the store opens lazily on each write.
type Pipeline struct {
	store    RecordStore
	analyzer analysis.Analyzer
	ids      ids.Generator
	now      func() time.Time
	log      zerolog.Logger

	categories []string
	allowNew   bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIDs sets the id generator. Defaults to UUIDv7.
func WithIDs(g ids.Generator) Option {
	return func(p *Pipeline) { p.ids = g }
}

// WithClock sets the time source for upload dates and default names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithCategories passes known labels and the new-category flag through to
// the analysis service. The returned category is not checked against them.
func WithCategories(labels []string, allowNew bool) Option {
	return func(p *Pipeline) {
		p.categories = analysis.NormalizeLabels(labels)
		p.allowNew = allowNew
	}
}

// New creates a pipeline writing to st and analyzing with an.
func New(st RecordStore, an analysis.Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    st,
		analyzer: an,
		ids:      ids.UUIDv7{},
		now:      time.Now,
		log:      zerolog.Nop(),
		allowNew: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request identifies the image to ingest.
type Request struct {
	ImageURI string
	// Name is the display label; defaults to "Upload_<HH:MM:SS>".
	Name string
}

// Attempt is one ingestion in progress or finished.
type Attempt struct {
	p *Pipeline

	mu         sync.Mutex
	state      State
	doc        record.Document
	candidates []analysis.EventCandidate
	report     *Report
}

// Ingest analyzes the image, persists the document and offers any extracted
// events.
//
// The returned attempt is non-nil even when err is non-nil so callers can
// inspect its State. On ErrAnalysisFailed nothing was written. On
// ErrDocumentPersist nothing was written either.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*Attempt, error) {
	a := &Attempt{p: p, state: StateIdle}

	a.setState(StateAnalyzing)
	res, err := p.analyzer.Analyze(ctx, analysis.Request{
		ImageURI:           req.ImageURI,
		Categories:         p.categories,
		AllowNewCategories: p.allowNew,
	})
	if err != nil {
		a.setState(StateAnalysisFailed)
		p.log.Error().Err(err).Str("uri", req.ImageURI).Msg("analysis failed")
		return a, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	a.setState(StateAnalyzed)

	now := p.now().UTC()
	name := req.Name
	if name == "" {
		name = "Upload_" + now.Format("15:04:05")
	}
	a.doc = record.Document{
		ID:         p.ids.NewID(),
		URI:        req.ImageURI,
		Name:       name,
		UploadDate: now,
		Status:     record.DocumentCompleted,
		Summary:    res.Summary,
		Category:   res.Category,
		Context:    res.ContextText,
		Embedding:  res.Embedding,
	}

	if err := p.store.AddDocument(ctx, a.doc); err != nil {
		a.setState(StatePersistFailed)
		p.log.Error().Err(err).Str("document_id", a.doc.ID).Msg("document not saved")
		return a, fmt.Errorf("%w: %w", ErrDocumentPersist, err)
	}
	a.setState(StateDocumentPersisted)
	p.log.Info().
		Str("document_id", a.doc.ID).
		Str("category", a.doc.Category).
		Int("events_found", len(res.ExtractedEvents)).
		Msg("document saved")

	if len(res.ExtractedEvents) == 0 {
		a.setState(StateNoEventsFound)
		return a, nil
	}

	a.candidates = res.ExtractedEvents
	a.setState(StateEventsOffered)
	return a, nil
}

// Run drives a full attempt, asking c when events are offered.
//
// If c returns an error the attempt is abandoned like a decline; the
// document stays and the error is returned.
func (p *Pipeline) Run(ctx context.Context, req Request, c Confirmer) (*Attempt, error) {
	a, err := p.Ingest(ctx, req)
	if err != nil || a.State() != StateEventsOffered {
		return a, err
	}

	ok, err := c.ConfirmEvents(ctx, a.Document(), a.Candidates())
	if err != nil {
		_ = a.Decline()
		return a, fmt.Errorf("confirm events: %w", err)
	}
	if !ok {
		return a, a.Decline()
	}

	if _, err := a.Confirm(ctx); err != nil {
		return a, err
	}
	return a, nil
}

// State returns the current state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Document returns the document built for this attempt. It is the zero
// value if analysis failed.
func (a *Attempt) Document() record.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc
}

// Candidates returns a copy of the offered events.
func (a *Attempt) Candidates() []analysis.EventCandidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]analysis.EventCandidate(nil), a.candidates...)
}

// Report returns the batch report, or nil before Confirm ran.
func (a *Attempt) Report() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report
}

// Decline ends an offered attempt without writing any event.
func (a *Attempt) Decline() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateEventsOffered {
		return fmt.Errorf("decline in state %s: %w", a.state, ErrNotOffered)
	}
	a.state = StateEventsDeclined
	a.p.log.Info().Str("document_id", a.doc.ID).Int("events", len(a.candidates)).Msg("events declined")
	return nil
}

// Confirm writes every offered candidate as a new event with a fresh id.
//
// Each row is attempted regardless of earlier failures; failures are
// collected in the report rather than returned. The error is non-nil only
// when the attempt was not awaiting confirmation.
func (a *Attempt) Confirm(ctx context.Context) (*Report, error) {
	a.mu.Lock()
	if a.state != StateEventsOffered {
		state := a.state
		a.mu.Unlock()
		return nil, fmt.Errorf("confirm in state %s: %w", state, ErrNotOffered)
	}
	a.state = StateEventsConfirmed
	candidates := a.candidates
	a.mu.Unlock()

	p := a.p
	report := &Report{Persisted: []string{}, Failures: []RowFailure{}}

	for i, c := range candidates {
		e, err := eventFromCandidate(p.ids.NewID(), c)
		if err == nil {
			err = p.store.AddEvent(ctx, e)
		}
		if err != nil {
			p.log.Warn().Err(err).Int("index", i).Str("title", c.Title).Msg("event not saved")
			report.Failures = append(report.Failures, newRowFailure(i, c.Title, err))
			continue
		}
		report.Persisted = append(report.Persisted, e.ID)
	}

	p.log.Info().
		Int("saved", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("events persisted")

	a.mu.Lock()
	a.state = StateEventsPersisted
	a.report = report
	a.mu.Unlock()

	return report, nil
}

func (a *Attempt) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// eventFromCandidate assigns an id and the pending status.
func eventFromCandidate(id string, c analysis.EventCandidate) (record.Event, error) {
	if c.Date.IsZero() && c.RawDate != "" {
		return record.Event{}, fmt.Errorf("unparseable date %q", c.RawDate)
	}
	e := record.Event{
		ID:          id,
		Title:       c.Title,
		Date:        c.Date,
		Type:        c.Type,
		Description: c.Description,
		Location:    c.Location,
		Status:      record.StatusPending,
	}
	if err := e.Validate(); err != nil {
		return record.Event{}, err
	}
	return e, nil
}
