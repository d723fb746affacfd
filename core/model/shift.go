package model

import "fmt"

// RawAssignment is one worker holding one role for one feed unit,
// as produced by the external scheduler.
type RawAssignment struct {
	Day      Day       `json:"day"`
	At       ClockTime `json:"at"`
	Role     string    `json:"role"`
	Employee string    `json:"employee"`
}

// ShiftInterval is a merged run of consecutive assignments for one
// (day, role, employee). Start < End always holds.
type ShiftInterval struct {
	Employee string    `json:"employee"`
	Role     string    `json:"role"`
	Start    ClockTime `json:"start"`
	End      ClockTime `json:"end"`
}

// NewShiftInterval validates start < end.
func NewShiftInterval(employee, role string, start, end ClockTime) (ShiftInterval, error) {
	if end <= start {
		return ShiftInterval{}, fmt.Errorf("%w: %s %s %s-%s", ErrInvalidInterval, employee, role, start, end)
	}
	return ShiftInterval{Employee: employee, Role: role, Start: start, End: end}, nil
}

// Overlaps reports whether [s.Start,s.End) and [o.Start,o.End) intersect.
func (s ShiftInterval) Overlaps(o ShiftInterval) bool {
	return s.Start < o.End && o.Start < s.End
}

// Lane is a conflict-free row of shift intervals within one role and day,
// ordered by start time.
type Lane struct {
	Intervals []ShiftInterval `json:"intervals"`
}

// Fits reports whether none of the candidates overlaps an interval already in the lane.
func (l Lane) Fits(candidates []ShiftInterval) bool {
	for _, c := range candidates {
		for _, placed := range l.Intervals {
			if c.Overlaps(placed) {
				return false
			}
		}
	}
	return true
}
