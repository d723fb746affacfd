package app

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFeed is returned when no day of a schedule feed could be read.
	ErrInvalidFeed     = errors.New("invalid schedule feed")
	ErrInvalidEmployee = errors.New("employee name is required")
)

// FeedError lists the days of a feed that were dropped.
type FeedError struct {
	Days map[string]error
}

func (e *FeedError) Error() string {
	parts := make([]string, 0, len(e.Days))
	for _, k := range sortedKeys(e.Days) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Days[k]))
	}
	return "feed days rejected: " + strings.Join(parts, "; ")
}

func (e *FeedError) Unwrap() []error {
	out := make([]error, 0, len(e.Days))
	for _, k := range sortedKeys(e.Days) {
		out = append(out, e.Days[k])
	}
	return out
}
