package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common error types for the relay
var (
	// Login correlation errors
	ErrUnknownState    = errors.New("unknown or expired state")
	ErrStateCollision  = errors.New("state already pending")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnauthenticated = errors.New("not authenticated")

	// Provider round trip errors
	ErrStateMismatch       = errors.New("state mismatch")
	ErrAckFailure          = errors.New("provider did not acknowledge the request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Storage errors
	ErrStoreUnavailable = errors.New("pending authorization store unavailable")
)

// ProviderError carries an error payload returned by the identity provider.
// The payload is kept verbatim so it can be handed back to the caller untouched.
type ProviderError struct {
	Payload json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s", string(e.Payload))
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
