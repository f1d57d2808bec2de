package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrNoAccount indicates a payment with no linked or supplied account
	ErrNoAccount = errors.New("no_account")
	// ErrNotRecurring indicates rollover/release attempted on a one-time commitment
	ErrNotRecurring = errors.New("not_recurring")
)
