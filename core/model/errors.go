package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is matched by every *InvalidRangeError.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnknownDay is returned when a day name cannot be parsed.
	ErrUnknownDay = errors.New("unknown day")
	// ErrInvalidInterval is returned for shift intervals with start >= end.
	ErrInvalidInterval = errors.New("invalid interval")
)

// InvalidRangeError reports a range that failed to parse or has end <= start.
type InvalidRangeError struct {
	Day    Day
	Input  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid range %q on %s: %s", e.Input, e.Day, e.Reason)
	}
	return fmt.Sprintf("invalid range on %s: %s", e.Day, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidRange) match.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
