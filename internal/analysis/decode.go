package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/medivault/internal/record"
)

// wireResult is the JSON body of a successful analysis.
type wireResult struct {
	Category        *string     `json:"category"`
	Summary         *string     `json:"summary"`
	ContextText     *string     `json:"context_text"`
	Embedding       []float64   `json:"embedding"`
	ExtractedEvents []wireEvent `json:"extracted_events"`
}

type wireEvent struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

// DecodeResult validates and decodes a response body.
func DecodeResult(body []byte) (*Result, error) {
	if !json.Valid(body) {
		return nil, &Error{Kind: KindDecode, Err: fmt.Errorf("response is not valid JSON")}
	}
	if err := validateResponse(body); err != nil {
		return nil, &Error{Kind: KindSchema, Err: err}
	}

	var w wireResult
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}

	res := &Result{
		Category:        NormalizeLabel(deref(w.Category)),
		Summary:         deref(w.Summary),
		ContextText:     deref(w.ContextText),
		Embedding:       w.Embedding,
		ExtractedEvents: make([]EventCandidate, 0, len(w.ExtractedEvents)),
	}
	if res.Embedding == nil {
		res.Embedding = []float64{}
	}

	for _, we := range w.ExtractedEvents {
		c := EventCandidate{
			Title:       strings.TrimSpace(we.Title),
			Type:        record.EventType(we.Type),
			Description: deref(we.Description),
			Location:    deref(we.Location),
		}
		if t, err := record.ParseDate(we.Date); err == nil {
			c.Date = t
		} else {
			c.RawDate = we.Date
		}
		res.ExtractedEvents = append(res.ExtractedEvents, c)
	}

	return res, nil
}

// NormalizeLabel trims a category label and converts it to NFC so that
// visually identical labels produce one category.
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeLabels normalizes every label and drops empty and duplicate ones,
// keeping first-seen order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		n := NormalizeLabel(l)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
