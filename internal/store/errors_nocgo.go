//go:build !cgo

package store

// cgoConstraintConflict never matches without cgo: mattn/go-sqlite3 is a stub
// in that build and cannot produce sqlite3.Error values.
func cgoConstraintConflict(err error) (conflict, ok bool) {
	return false, false
}
