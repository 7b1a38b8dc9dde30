package ingest

// State is the position of an attempt in the ingestion state machine.
type State string

const (
	StateIdle              State = "idle"
	StateAnalyzing         State = "analyzing"
	StateAnalysisFailed    State = "analysis_failed"
	StateAnalyzed          State = "analyzed"
	StatePersistFailed     State = "persist_failed"
	StateDocumentPersisted State = "document_persisted"
	StateNoEventsFound     State = "no_events_found"
	StateEventsOffered     State = "events_offered"
	StateEventsDeclined    State = "events_declined"
	StateEventsConfirmed   State = "events_confirmed"
	StateEventsPersisted   State = "events_persisted"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	switch s {
	case StateAnalysisFailed, StatePersistFailed, StateNoEventsFound, StateEventsDeclined, StateEventsPersisted:
		return true
	}
	return false
}
