package auth

import "fmt"

// Reason classifies why a credential was rejected.
type Reason string

const (
	ReasonMissingCredential Reason = "MISSING_CREDENTIAL"
	ReasonInvalid           Reason = "INVALID"
	ReasonExpired           Reason = "EXPIRED"
	ReasonNotFound          Reason = "NOT_FOUND"
)

// Error is a terminal authentication failure. Verification is never retried
// by the server; a failed attempt simply rejects that connection.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error with the given reason.
func NewError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}
