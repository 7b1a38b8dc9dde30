// Package store provides SQLite-backed durable storage for the medical record vault.
//
// The store owns three tables:
//   - events: scheduled appointments, medications and reminders
//   - documents: references to captured images with their derived metadata
//   - categories: denormalized (category, image_id) tags used for counting
//
// # Lifecycle
//
// A Store is constructed unopened by New and opens itself lazily on the first
// operation. Open is idempotent: once the handle exists, later calls return
// immediately without touching the schema. Close releases the handle and a
// later operation reopens it.
//
// # Schema evolution
//
// Every open runs schema.sql (CREATE TABLE IF NOT EXISTS) followed by an
// ordered list of additive migration steps. A step whose effect already
// exists (SQLite "duplicate column name") is logged and skipped; any other
// failure aborts the open. PRAGMA user_version records the number of steps.
//
// # Ordering
//
//   - Events: ORDER BY date ASC, id ASC
//   - Documents: ORDER BY uploadDate DESC, id ASC
//
// Timestamps are stored as fixed-width UTC text so lexical order equals
// chronological order. That holds for years 0000-9999 only; writes with a
// timestamp outside that range fail as invalid.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: categories.image_id cascades on document delete
package store
