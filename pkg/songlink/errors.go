package songlink

import "fmt"

// UnavailableError is returned when the aggregation API could not be reached
// or answered with a non-2xx status. StatusCode is zero for transport
// failures.
type UnavailableError struct {
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("song.link returned a non-2xx response: %d", e.StatusCode)
	}
	return fmt.Sprintf("song.link could not be reached: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a 2xx response body failed to
// decode as the expected JSON structure.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("song.link returned a malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// MissingFieldError is returned by reconciliation when a required top-level
// field is absent from an otherwise well-formed response. It signals an
// upstream contract change and is never silently defaulted.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("song.link response is missing required field %q", e.Field)
}
