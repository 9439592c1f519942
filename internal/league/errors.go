package league

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a match is asked to move to a
	// state its current status does not allow, including a team trying to
	// confirm its own submission.
	ErrInvalidTransition = errors.New("invalid match transition")

	// ErrConflict is returned when a conditional update lost a race with a
	// concurrent writer. Callers should re-read the match and retry.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrNotFound is returned when a referenced team, player, or match does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientTeams is returned by schedule generation with fewer
	// than two teams.
	ErrInsufficientTeams = errors.New("at least two teams are required")
)

// ValidationError rejects bad input before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
