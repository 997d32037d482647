package fintrack

import "errors"

// Failure categories. Callers wrap them with fmt.Errorf("...: %w") and test
// them with errors.Is.
var (
	// ErrUnsupported is returned when no source can price an asset kind or symbol.
	ErrUnsupported = errors.New("unsupported")
	// ErrParseFailure is returned when a response was fetched but no price could be extracted.
	ErrParseFailure = errors.New("parse failure")
	// ErrNetwork covers transport errors, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("network failure")
	// ErrDecode is returned when a response body is not valid for its format.
	ErrDecode = errors.New("decode failure")
	// ErrStorage is returned when the store cannot read or commit.
	ErrStorage = errors.New("storage failure")

	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)
