// Package analysis is the client side of the image-analysis collaborator.
//
// The collaborator inspects one image and returns a category, a summary,
// free-text context, an embedding and zero or more event candidates. The
// vault treats it as an opaque function with its own failure modes; every
// failure is reported as an *Error.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/medivault/internal/record"
)

// Analyzer inspects one image.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Request identifies the image and passes optional categorization hints.
// The service may return a category outside Categories; the vault does not
// constrain it.
type Request struct {
	ImageURI           string
	Categories         []string
	AllowNewCategories bool
}

// Result is the structured metadata extracted from an image.
type Result struct {
	Category        string
	Summary         string
	ContextText     string
	Embedding       []float64
	ExtractedEvents []EventCandidate
}

// EventCandidate is an extracted event still missing an id.
//
// Date is zero when the service returned a date the vault could not parse;
// RawDate keeps the original text for diagnostics.
type EventCandidate struct {
	Title       string           `json:"title"`
	Date        time.Time        `json:"date"`
	RawDate     string           `json:"raw_date,omitempty"`
	Type        record.EventType `json:"type"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
}

// ErrorKind categorizes analysis failures.
type ErrorKind string

const (
	// KindInput indicates the image could not be read locally.
	KindInput ErrorKind = "input"

	// KindTransport indicates the request never produced a response.
	KindTransport ErrorKind = "transport"

	// KindStatus indicates the service answered with a non-2xx status.
	KindStatus ErrorKind = "status"

	// KindSchema indicates the response body violated the result schema.
	KindSchema ErrorKind = "schema"

	// KindDecode indicates the response body was not valid JSON.
	KindDecode ErrorKind = "decode"
)

// Error is an analysis failure.
type Error struct {
	Kind   ErrorKind
	Status int    // HTTP status for KindStatus
	Body   string // response text for KindStatus
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("analysis %s: status %d: %s", e.Kind, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("analysis %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsFailure returns true if err is an analysis failure.
func IsFailure(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
