package restaurant

import "errors"

var (
	ErrInvalidDocument = errors.New("invalid JSON document")
	ErrNotFound        = errors.New("restaurant not found")
	// ErrNotModified means a document matched but the update changed nothing.
	ErrNotModified = errors.New("restaurant not modified")
	// ErrImmutableField is returned for change sets that try to rewrite _id.
	ErrImmutableField = errors.New("field _id cannot be modified")
	// ErrInvalidField is returned for change-set keys that are not plain
	// top-level field names (dotted paths, $-operators).
	ErrInvalidField = errors.New("only top-level field names can be updated")
)

// DatabaseError wraps a failure reported by the driver (timeout, connectivity, server fault).
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DatabaseError) Unwrap() error { return e.Err }
