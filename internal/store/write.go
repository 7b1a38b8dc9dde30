package store

import (
	"context"
	"fmt"

	"github.com/roach88/medivault/internal/record"
)

// AddEvent inserts a new event row.
//
// Returns a CodeConflict error if the id already exists. An empty status is
// stored as pending.
func (s *Store) AddEvent(ctx context.Context, e record.Event) error {
	if err := e.Validate(); err != nil {
		return &Error{Code: CodeInvalid, Op: "add event", ID: e.ID, Err: err}
	}
	if e.Status == "" {
		e.Status = record.StatusPending
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO events (id, title, date, type, description, location, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Title,
		formatTime(e.Date),
		string(e.Type),
		e.Description,
		e.Location,
		string(e.Status),
	)
	return classify("add event", e.ID, err)
}

// UpdateEvent replaces every mutable column of the event with the given id.
//
// Returns false with a nil error when no row has that id; callers treat this
// as a silent miss.
func (s *Store) UpdateEvent(ctx context.Context, e record.Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, &Error{Code: CodeInvalid, Op: "update event", ID: e.ID, Err: err}
	}
	if e.Status == "" {
		e.Status = record.StatusPending
	}

	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, date = ?, type = ?, description = ?, location = ?, status = ?
		WHERE id = ?
	`,
		e.Title,
		formatTime(e.Date),
		string(e.Type),
		e.Description,
		e.Location,
		string(e.Status),
		e.ID,
	)
	if err != nil {
		return false, classify("update event", e.ID, err)
	}
	return affected(result, "update event", e.ID)
}

// UpdateEventStatus changes only the status of an event.
// Returns false with a nil error when no row has that id.
func (s *Store) UpdateEventStatus(ctx context.Context, id string, status record.EventStatus) (bool, error) {
	if !status.Valid() {
		return false, &Error{Code: CodeInvalid, Op: "update event status", ID: id, Err: fmt.Errorf("unknown status %q", status)}
	}

	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx, `UPDATE events SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, classify("update event status", id, err)
	}
	return affected(result, "update event status", id)
}

// DeleteEvent removes the event if present. Deleting a missing id is not an error.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return classify("delete event", id, err)
}

// AddDocument inserts the document row and, when the document has a
// category, one category tag referencing it.
//
// The two writes are independent. A failed document insert is returned; a
// failed tag insert is logged and swallowed. AddCategoryTag can re-add it.
func (s *Store) AddDocument(ctx context.Context, d record.Document) error {
	if err := d.Validate(); err != nil {
		return &Error{Code: CodeInvalid, Op: "add document", ID: d.ID, Err: err}
	}

	embeddingJSON, err := marshalEmbedding(d.Embedding)
	if err != nil {
		return &Error{Code: CodeInvalid, Op: "add document", ID: d.ID, Err: err}
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (id, uri, name, uploadDate, status, summary, category, context, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.URI,
		d.Name,
		formatTime(d.UploadDate),
		string(d.Status),
		d.Summary,
		d.Category,
		d.Context,
		embeddingJSON,
	)
	if err != nil {
		return classify("add document", d.ID, err)
	}

	if d.Categorized() {
		if err := s.AddCategoryTag(ctx, d.ID, d.Category); err != nil {
			s.log.Warn().Err(err).
				Str("document_id", d.ID).
				Str("category", d.Category).
				Msg("category tag not written; document kept")
		}
	}

	return nil
}

// AddCategoryTag links a document to a category.
//
// Tags are not unique per document: each call adds a row, and every row
// counts toward the category total. The document must exist (foreign key).
func (s *Store) AddCategoryTag(ctx context.Context, documentID, category string) error {
	if category == "" {
		return &Error{Code: CodeInvalid, Op: "add category tag", ID: documentID, Err: fmt.Errorf("category is required")}
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO categories (category, image_id) VALUES (?, ?)
	`, category, documentID); err != nil {
		return classify("add category tag", documentID, err)
	}
	return nil
}

// DeleteDocument removes the document and every category tag that
// references it, in one transaction. Deleting a missing id is not an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("delete document: begin tx", id, err)
	}
	defer tx.Rollback() // No-op if committed

	// The foreign key cascade covers this when enforcement is on; the explicit
	// delete keeps the tag invariant for databases opened without it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE image_id = ?`, id); err != nil {
		return classify("delete document: tags", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return classify("delete document", id, err)
	}

	if err := tx.Commit(); err != nil {
		return classify("delete document: commit", id, err)
	}
	return nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affected(result rowsAffecter, op, id string) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, classify(op+": rows affected", id, err)
	}
	return n > 0, nil
}
