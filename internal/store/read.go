package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/medivault/internal/record"
)

const eventColumns = `id, title, date, type, description, location, status`

const documentColumns = `id, uri, name, uploadDate, status, summary, category, context, embedding`

// GetEvents returns all events ordered by date ascending.
//
// Returns an empty slice (not nil) if no events exist.
func (s *Store) GetEvents(ctx context.Context) ([]record.Event, error) {
	return s.queryEvents(ctx, "get events", `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY date ASC, id ASC
	`)
}

// GetUpcomingEvents returns pending events dated at or after from, ordered
// by date ascending. A limit of zero or less returns every match.
func (s *Store) GetUpcomingEvents(ctx context.Context, from time.Time, limit int) ([]record.Event, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.queryEvents(ctx, "get upcoming events", `
		SELECT `+eventColumns+`
		FROM events
		WHERE date >= ? AND COALESCE(NULLIF(status, ''), 'pending') = 'pending'
		ORDER BY date ASC, id ASC
		LIMIT ?
	`, formatTime(from), limit)
}

// GetEvent retrieves a single event by id.
// Returns a CodeNotFound error if absent.
func (s *Store) GetEvent(ctx context.Context, id string) (record.Event, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.Event{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Event{}, &Error{Code: CodeNotFound, Op: "get event", ID: id, Err: err}
	}
	if err != nil {
		return record.Event{}, &Error{Code: CodePersistence, Op: "get event", ID: id, Err: err}
	}
	return e, nil
}

func (s *Store) queryEvents(ctx context.Context, op, query string, args ...any) ([]record.Event, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Code: CodePersistence, Op: op, Err: err}
	}
	defer rows.Close()

	events := []record.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, &Error{Code: CodePersistence, Op: op, Err: err}
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Code: CodePersistence, Op: op, Err: fmt.Errorf("iterate events: %w", err)}
	}
	return events, nil
}

// GetDocuments returns all documents ordered by upload date descending.
//
// Returns an empty slice (not nil) if no documents exist.
func (s *Store) GetDocuments(ctx context.Context) ([]record.Document, error) {
	return s.queryDocuments(ctx, "get documents", `
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY uploadDate DESC, id ASC
	`)
}

// GetDocumentsByCategory returns the documents whose category equals
// category, ordered by upload date descending.
func (s *Store) GetDocumentsByCategory(ctx context.Context, category string) ([]record.Document, error) {
	return s.queryDocuments(ctx, "get documents by category", `
		SELECT `+documentColumns+`
		FROM documents
		WHERE category = ?
		ORDER BY uploadDate DESC, id ASC
	`, category)
}

// GetDocument retrieves a single document by id.
// Returns a CodeNotFound error if absent.
func (s *Store) GetDocument(ctx context.Context, id string) (record.Document, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.Document{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Document{}, &Error{Code: CodeNotFound, Op: "get document", ID: id, Err: err}
	}
	if err != nil {
		return record.Document{}, &Error{Code: CodePersistence, Op: "get document", ID: id, Err: err}
	}
	return d, nil
}

func (s *Store) queryDocuments(ctx context.Context, op, query string, args ...any) ([]record.Document, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Code: CodePersistence, Op: op, Err: err}
	}
	defer rows.Close()

	docs := []record.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, &Error{Code: CodePersistence, Op: op, Err: err}
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Code: CodePersistence, Op: op, Err: fmt.Errorf("iterate documents: %w", err)}
	}
	return docs, nil
}

// GetCategories returns each category with its number of tags, ordered by
// category. Categories whose tags were all removed do not appear.
func (s *Store) GetCategories(ctx context.Context) ([]record.CategoryCount, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM categories
		GROUP BY category
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, &Error{Code: CodePersistence, Op: "get categories", Err: err}
	}
	defer rows.Close()

	counts := []record.CategoryCount{}
	for rows.Next() {
		var c record.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, &Error{Code: CodePersistence, Op: "get categories", Err: fmt.Errorf("scan category: %w", err)}
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Code: CodePersistence, Op: "get categories", Err: fmt.Errorf("iterate categories: %w", err)}
	}
	return counts, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (record.Event, error) {
	var (
		e                     record.Event
		date, eventType       string
		description, location sql.NullString
		status                sql.NullString
	)
	if err := sc.Scan(&e.ID, &e.Title, &date, &eventType, &description, &location, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Event{}, err
		}
		return record.Event{}, fmt.Errorf("scan event: %w", err)
	}

	t, err := parseTime(date)
	if err != nil {
		return record.Event{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	e.Date = t
	e.Type = record.EventType(eventType)
	e.Description = description.String
	e.Location = location.String
	e.Status = eventStatus(status)
	return e, nil
}

func scanDocument(sc scanner) (record.Document, error) {
	var (
		d                          record.Document
		uploadDate, status         string
		summary, category, ctxText sql.NullString
		embedding                  sql.NullString
	)
	if err := sc.Scan(&d.ID, &d.URI, &d.Name, &uploadDate, &status, &summary, &category, &ctxText, &embedding); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Document{}, err
		}
		return record.Document{}, fmt.Errorf("scan document: %w", err)
	}

	t, err := parseTime(uploadDate)
	if err != nil {
		return record.Document{}, fmt.Errorf("document %s: %w", d.ID, err)
	}
	vec, err := unmarshalEmbedding(embedding)
	if err != nil {
		return record.Document{}, fmt.Errorf("document %s: %w", d.ID, err)
	}

	d.UploadDate = t
	d.Status = record.DocumentStatus(status)
	d.Summary = summary.String
	d.Category = category.String
	d.Context = ctxText.String
	d.Embedding = vec
	return d, nil
}
