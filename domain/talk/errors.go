package talk

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required column is empty
	ErrMissingField = errors.New("required field is empty")

	// ErrUnknownTime is returned when start or end is the "???" placeholder
	ErrUnknownTime = errors.New("time is not known yet")

	// ErrInvalidTime is returned when start or end cannot be parsed
	ErrInvalidTime = errors.New("time cannot be parsed")

	// ErrEndBeforeStart is returned when a talk ends before it starts
	ErrEndBeforeStart = errors.New("end time is before start time")

	// ErrRoomNotAllowed is returned when the room is filtered out by the allowlist
	ErrRoomNotAllowed = errors.New("room is not in the configured allowlist")

	// ErrNonPositiveDuration is returned when a clip would be empty
	ErrNonPositiveDuration = errors.New("clip duration must be positive")
)

// ValidationError rejects a single talk. It never aborts sibling talks.
type ValidationError struct {
	Title string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("talk %q: %s: %v", e.Title, e.Field, e.Err)
	}
	return fmt.Sprintf("talk %q: %v", e.Title, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err rejects a single talk
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
