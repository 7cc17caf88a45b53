package errors

import "errors"

// Sentinel errors shared across services. Services wrap these with
// fmt.Errorf("...: %w", Err...) and handlers map them to HTTP statuses
// with errors.Is.
var (
	ErrValidation            = errors.New("invalid request")
	ErrUnauthorized          = errors.New("user is not authorized")
	ErrForbidden             = errors.New("operation is forbidden for user")
	ErrNotFound              = errors.New("resource not found")
	ErrInsufficientInventory = errors.New("not enough tickets available")
	ErrInvalidTransition     = errors.New("state transition not allowed")
	ErrExpired               = errors.New("departure time has passed")
	ErrGateway               = errors.New("payment gateway failure")
)

// Is re-exports errors.Is so callers do not need both imports.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
