package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, malformed price).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNoResults is returned by the geocoder when the provider answers
// successfully but matches nothing. Callers must treat it as a geocoding
// failure — there is no "first result" to read.
var ErrNoResults = errors.New("no geocoding results")

// ErrExternal is returned when a collaborating service (geocoder, image
// uploader) fails or times out. Handlers should map this to HTTP 502.
var ErrExternal = errors.New("external service error")
