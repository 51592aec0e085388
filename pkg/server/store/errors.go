package store

import "errors"

// ErrConstraint is returned when a write violates a database constraint
// that has no more specific sentinel.
var ErrConstraint = errors.New("database constraint violation")
