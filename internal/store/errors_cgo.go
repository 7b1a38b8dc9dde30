//go:build cgo

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// cgoConstraintConflict reports whether err is a mattn/go-sqlite3 error and,
// if so, whether it is a primary key or unique violation.
func cgoConstraintConflict(err error) (conflict, ok bool) {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique, true
	}
	return false, false
}
