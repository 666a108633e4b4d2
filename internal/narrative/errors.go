package narrative

import "fmt"

// TimeoutError means the generator could not be reached or did not answer
// within its deadline.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("narrative timed out: %v", e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthError means the generator rejected or lacked credentials.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("narrative auth failed: %s: %v", e.Reason, e.Err)
	}
	return "narrative auth failed: " + e.Reason
}
func (e *AuthError) Unwrap() error { return e.Err }

// MalformedResponseError means the generator answered with something unusable.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed narrative response: " + e.Reason
}
