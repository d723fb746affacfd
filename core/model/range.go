package model

import (
	"fmt"
	"strings"
)

// Range is a half-open interval [Start, End) of one category on one day.
// Construct it with NewRange or ParseRange so Start < End always holds.
type Range struct {
	day      Day
	category Category
	start    ClockTime
	end      ClockTime
}

// NewRange validates and builds a range.
func NewRange(day Day, category Category, start, end ClockTime) (Range, error) {
	switch {
	case !day.Valid():
		return Range{}, &InvalidRangeError{Day: day, Reason: "unknown day"}
	case category.IsBaseline():
		return Range{}, &InvalidRangeError{Day: day, Reason: "baseline category cannot be stored"}
	case !start.Valid() || !end.Valid():
		return Range{}, &InvalidRangeError{Day: day, Reason: fmt.Sprintf("bounds %d-%d outside the day", start, end)}
	case end <= start:
		return Range{}, &InvalidRangeError{Day: day, Reason: fmt.Sprintf("end %s not after start %s", end, start)}
	}
	return Range{day: day, category: category, start: start, end: end}, nil
}

// ParseRange parses the textual "HH:MM-HH:MM" form used by availability documents.
func ParseRange(day Day, category Category, s string) (Range, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return Range{}, &InvalidRangeError{Day: day, Input: s, Reason: "missing '-' separator"}
	}
	start, err := ParseClock(from)
	if err != nil {
		return Range{}, &InvalidRangeError{Day: day, Input: s, Reason: err.Error()}
	}
	end, err := ParseEndClock(to)
	if err != nil {
		return Range{}, &InvalidRangeError{Day: day, Input: s, Reason: err.Error()}
	}
	r, err := NewRange(day, category, start, end)
	if err != nil {
		if ire, ok := err.(*InvalidRangeError); ok {
			ire.Input = s
		}
		return Range{}, err
	}
	return r, nil
}

func (r Range) Day() Day              { return r.day }
func (r Range) Category() Category    { return r.category }
func (r Range) Start() ClockTime      { return r.start }
func (r Range) End() ClockTime        { return r.end }
func (r Range) Minutes() int          { return int(r.end - r.start) }
func (r Range) Overlaps(o Range) bool { return r.start < o.end && o.start < r.end }

// String formats the range as "HH:MM-HH:MM".
func (r Range) String() string {
	return r.start.String() + "-" + r.end.String()
}
