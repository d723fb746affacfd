package availability

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kilianp07/shiftboard/core/model"
)

var (
	// ErrOverlappingRange is matched by every *OverlapError.
	ErrOverlappingRange = errors.New("overlapping range")
	ErrSlotDuration     = errors.New("invalid slot duration")
	ErrMisalignedSlot   = errors.New("misaligned slot")
)

// OverlapError reports two ranges of one day that claim the same time.
// When the categories differ, Slot holds the first contested slot.
type OverlapError struct {
	Day    model.Day
	First  model.Range
	Second model.Range
	Slot   model.ClockTime
}

func (e *OverlapError) Error() string {
	if e.First.Category() == e.Second.Category() {
		return fmt.Sprintf("%s: %s ranges %s and %s overlap", e.Day, e.First.Category(), e.First, e.Second)
	}
	return fmt.Sprintf("%s: slot %s claimed by %s %s and %s %s", e.Day, e.Slot,
		e.First.Category(), e.First, e.Second.Category(), e.Second)
}

// Is makes errors.Is(err, ErrOverlappingRange) match.
func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlappingRange
}

// DocumentError collects the days rejected while decoding. Keys are the
// day labels as they appeared in the input.
type DocumentError struct {
	Days map[string]error
}

func (e *DocumentError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Days))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Days[k]))
	}
	return "availability rejected for " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-day errors to errors.Is and errors.As.
func (e *DocumentError) Unwrap() []error {
	keys := slices.Sorted(maps.Keys(e.Days))
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, e.Days[k])
	}
	return errs
}

func (e *DocumentError) add(key string, err error) {
	if e.Days == nil {
		e.Days = map[string]error{}
	}
	e.Days[key] = err
}

func (e *DocumentError) orNil() error {
	if e == nil || len(e.Days) == 0 {
		return nil
	}
	return e
}
