package testutil

import (
	"context"
	"sync"

	"github.com/roach88/medivault/internal/analysis"
)

// StubAnalyzer returns a canned result or error and records every request.
//
// Thread-safety: safe for concurrent use.
type StubAnalyzer struct {
	mu       sync.Mutex
	result   *analysis.Result
	err      error
	requests []analysis.Request
}

// NewStubAnalyzer creates an analyzer that always returns res.
func NewStubAnalyzer(res *analysis.Result) *StubAnalyzer {
	return &StubAnalyzer{result: res}
}

// NewFailingAnalyzer creates an analyzer that always returns err.
func NewFailingAnalyzer(err error) *StubAnalyzer {
	return &StubAnalyzer{err: err}
}

// Analyze implements analysis.Analyzer.
func (a *StubAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	res := *a.result
	res.ExtractedEvents = append([]analysis.EventCandidate(nil), a.result.ExtractedEvents...)
	return &res, nil
}

// Requests returns a copy of the requests seen so far.
func (a *StubAnalyzer) Requests() []analysis.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]analysis.Request(nil), a.requests...)
}
