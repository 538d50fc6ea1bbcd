package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails validation (e.g. a malformed
// tax_query fragment or an unknown mode name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnknownKind is returned when an address is requested for a kind other
// than case, category or procedure.
var ErrUnknownKind = errors.New("unknown kind")
