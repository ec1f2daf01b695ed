package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound = errors.New("db: document not found")
)

// Op constants name the store operations for error context.
const (
	OpIndex      = "index"
	OpGetSource  = "get_source"
	OpDelete     = "delete"
	OpSearch     = "search"
	OpRefresh    = "refresh"
	OpGetMapping = "get_mapping"
	OpPing       = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
