package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrAnalysisFailed wraps collaborator failures. Nothing was written.
	ErrAnalysisFailed = errors.New("could not analyze image")

	// ErrDocumentPersist wraps a failed document write. No events were offered.
	ErrDocumentPersist = errors.New("could not save document")

	// ErrNotOffered is returned by Confirm and Decline outside EventsOffered.
	ErrNotOffered = errors.New("no events awaiting confirmation")
)

// RowFailure records one candidate that could not be persisted.
type RowFailure struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func newRowFailure(index int, title string, err error) RowFailure {
	return RowFailure{Index: index, Title: title, Message: err.Error(), Err: err}
}

// Error implements the error interface.
func (f RowFailure) Error() string {
	return fmt.Sprintf("event %d (%q): %v", f.Index, f.Title, f.Err)
}

func (f RowFailure) Unwrap() error {
	return f.Err
}

// Report summarizes the persistence of a confirmed batch.
type Report struct {
	// Persisted holds the ids of the events written, in candidate order.
	Persisted []string     `json:"persisted"`
	Failures  []RowFailure `json:"failures"`
}

// Succeeded returns the number of events written.
func (r *Report) Succeeded() int {
	return len(r.Persisted)
}

// Failed returns the number of candidates that could not be written.
func (r *Report) Failed() int {
	return len(r.Failures)
}
