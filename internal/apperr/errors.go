package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409),
// e.g. an order that already has an active assignment.
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrFailedPrecondition indicates that the request is well-formed but the
// current state of the data cannot serve it, e.g. a restaurant without
// coordinates cannot be a dispatch origin. Needs an operator fix, not a retry.
var ErrFailedPrecondition = errors.New("failed precondition")
