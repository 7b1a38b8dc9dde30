// Package record defines the entities kept by the medical record vault.
//
// Three kinds of rows exist:
//   - Event: a scheduled appointment, medication or reminder
//   - Document: a reference to a captured image plus the metadata derived from it
//   - Category tag: a denormalized (category, document) link used for counting
//
// All timestamps are UTC instants. Ids are opaque strings assigned by the
// caller before insertion (see internal/ids).
package record
