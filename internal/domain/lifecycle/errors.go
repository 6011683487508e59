package lifecycle

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is the sentinel matched by every disallowed
// lifecycle transition. Use errors.As with *InvariantError for the
// structured details.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// InvariantError reports a transition requested from a state outside
// its allow-list. Current and Valid let callers render a precise
// diagnosis.
type InvariantError struct {
	Current State
	Valid   []State
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invalid lifecycle transition from %s (valid from: %v)", e.Current, e.Valid)
}

// Is matches the ErrInvalidTransition sentinel.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvalidTransition
}
