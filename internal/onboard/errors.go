package onboard

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("wallet not connected")
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrInvalidContract  = errors.New("malformed contract address")
	ErrInvalidInput     = errors.New("invalid input")
	ErrResolution       = errors.New("name resolution failed")
)

// ValidationError is a precondition failure. Message is what the user sees; Err
// is one of the sentinels above.
type ValidationError struct {
	Err     error
	Message string
	cause   error
}

func invalid(kind error, message string, cause error) *ValidationError {
	return &ValidationError{Err: kind, Message: message, cause: cause}
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// UserMessage converts err into the single line shown to the user.
func UserMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return "Transaction failed: " + err.Error()
}
