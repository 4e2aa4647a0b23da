package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// report does not exist (or the report archive is not configured).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when request input fails validation
// (e.g. a malformed date range, "to" before "from").
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnsupportedFormat is returned when an uploaded file is neither .xlsx nor .xls.
// Handlers should map this to HTTP 415 Unsupported Media Type.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrInvalidWorkbook is returned when the uploaded workbook cannot be read as
// a trip table at all. Row-level problems never produce this error.
// Handlers should map this to HTTP 400.
var ErrInvalidWorkbook = errors.New("invalid workbook")
