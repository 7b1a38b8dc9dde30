// Package ingest turns one captured image into persisted records.
//
// An attempt moves through these states:
//
//	Idle → Analyzing → AnalysisFailed
//	                 → Analyzed → PersistFailed
//	                            → DocumentPersisted → NoEventsFound
//	                                                → EventsOffered → EventsDeclined
//	                                                                → EventsConfirmed → EventsPersisted
//
// The document is written before any event handling begins, so an attempt
// abandoned while events are offered still leaves the document recorded.
// Extracted events are only written after the caller confirms them; each is
// an independent row and one failed write never stops the rest of the batch.
package ingest
