// Package request models a validated search request.
package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fernhollow/searchsync/internal/domain"
)

const (
	// DefaultLimit is the result size applied when the caller passes none.
	DefaultLimit = 20
	// MaxLimit is the hard result size bound.
	MaxLimit = 100
	// MinQueryLength is the shortest trimmed query worth sending to the
	// store; anything shorter yields an empty result set, not an error.
	MinQueryLength = 2
)

// Limits bounds the result size. Zero or negative values fall back to the
// package defaults, so the zero Limits is usable.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) orDefaults() Limits {
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Max <= 0 {
		l.Max = MaxLimit
	}
	return l
}

// Request is a visibility-scoped search request.
type Request struct {
	query     string
	userEmail string
	limit     int
	debug     bool
}

// New validates and creates a Request. The caller identity is mandatory; the
// limit is defaulted and clamped against the given bounds.
func New(query, userEmail string, limit int, debug bool, limits Limits) (Request, error) {
	if strings.TrimSpace(userEmail) == "" {
		return Request{}, fmt.Errorf("search request: %w", domain.ErrMissingUserEmail)
	}
	limits = limits.orDefaults()
	if limit <= 0 {
		limit = limits.Default
	}
	if limit > limits.Max {
		limit = limits.Max
	}
	return Request{
		query:     strings.TrimSpace(query),
		userEmail: userEmail,
		limit:     limit,
		debug:     debug,
	}, nil
}

// Query returns the trimmed query text.
func (r Request) Query() string { return r.query }

// UserEmail returns the caller identity.
func (r Request) UserEmail() string { return r.userEmail }

// Limit returns the clamped result size.
func (r Request) Limit() int { return r.limit }

// Debug reports whether the caller asked for the unfiltered diagnostic run.
func (r Request) Debug() bool { return r.debug }

// TooShort reports whether the query is too sparse to match anything.
func (r Request) TooShort() bool {
	return utf8.RuneCountInString(r.query) < MinQueryLength
}
