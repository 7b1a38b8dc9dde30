package store

import (
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// ErrNotInitialized is returned by DB before the store has been opened.
// Regular operations never return it; they open the store lazily.
var ErrNotInitialized = errors.New("store not initialized")

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// CodeConflict indicates an insert collided with an existing id.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeNotFound indicates a single-row read found nothing.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodePersistence indicates a write or read failed for a single row.
	CodePersistence ErrorCode = "PERSISTENCE"

	// CodeInvalid indicates the record failed validation before any write.
	CodeInvalid ErrorCode = "INVALID"

	// CodeMigration indicates a schema step failed for a reason other than
	// its effect already existing.
	CodeMigration ErrorCode = "MIGRATION"
)

// Error is a store failure tied to one operation and, when known, one record id.
type Error struct {
	Code ErrorCode
	Op   string
	ID   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Op)
	if e.ID != "" {
		fmt.Fprintf(&b, " (id=%s)", e.ID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsNotInitialized returns true if err came from DB before the store was opened.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsConflict returns true if err is a duplicate-id insert.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

// IsNotFound returns true if err is a missing single-row read.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInvalid returns true if err is a validation failure.
func IsInvalid(err error) bool {
	return hasCode(err, CodeInvalid)
}

// classify wraps a driver error from a write, mapping primary key and unique
// violations to CodeConflict.
func classify(op, id string, err error) error {
	if err == nil {
		return nil
	}
	code := CodePersistence
	if isConstraintConflict(err) {
		code = CodeConflict
	}
	return &Error{Code: code, Op: op, ID: id, Err: err}
}

func isConstraintConflict(err error) bool {
	if conflict, ok := cgoConstraintConflict(err); ok {
		return conflict
	}
	var pureErr *moderncsqlite.Error
	if errors.As(err, &pureErr) {
		return pureErr.Code() == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY ||
			pureErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
