package shifts

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// FillPolicy decides which grid slots an assignment occupies when the feed
// is coarser than the grid.
type FillPolicy string

const (
	// FillNone marks only the slot at the assignment's own time.
	FillNone FillPolicy = "none"
	// FillNextHalfSlot marks the slot at the assignment's hour and the
	// half-hour slot after it. Only defined for an hourly feed on a
	// 30-minute grid.
	FillNextHalfSlot FillPolicy = "fill-next-half-slot"
)

var (
	ErrFillPolicy            = errors.New("unknown fill policy")
	ErrFillPolicyGranularity = errors.New("fill policy not defined for this granularity")
)

// ParseFillPolicy validates a configured policy name. Empty means FillNone.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch FillPolicy(s) {
	case "", FillNone:
		return FillNone, nil
	case FillNextHalfSlot:
		return FillNextHalfSlot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFillPolicy, s)
	}
}

// OccupiedSlot is one grid slot taken by an assignment.
type OccupiedSlot struct {
	Day      model.Day       `json:"day"`
	Slot     model.ClockTime `json:"slot"`
	Role     string          `json:"role"`
	Employee string          `json:"employee"`
}

// Occupancy projects records of the given unit onto grid slots of the given
// duration. Output follows record order without duplicates.
func Occupancy(records []model.RawAssignment, unit, slot time.Duration, policy FillPolicy) ([]OccupiedSlot, error) {
	if slot < time.Minute || slot%time.Minute != 0 {
		return nil, fmt.Errorf("%w: slot %s", ErrFillPolicyGranularity, slot)
	}
	var offsets []model.ClockTime
	switch policy {
	case FillNone, "":
		offsets = []model.ClockTime{0}
	case FillNextHalfSlot:
		if unit != time.Hour || slot != 30*time.Minute {
			return nil, fmt.Errorf("%w: unit %s slot %s", ErrFillPolicyGranularity, unit, slot)
		}
		offsets = []model.ClockTime{0, 30}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFillPolicy, policy)
	}

	step := model.ClockTime(slot / time.Minute)
	seen := map[OccupiedSlot]bool{}
	var out []OccupiedSlot
	for _, r := range records {
		if r.At%step != 0 {
			return nil, fmt.Errorf("assignment at %s is not on the %s grid", r.At, slot)
		}
		for _, off := range offsets {
			o := OccupiedSlot{Day: r.Day, Slot: r.At + off, Role: r.Role, Employee: r.Employee}
			if o.Slot >= model.EndOfDay || seen[o] {
				continue
			}
			seen[o] = true
			out = append(out, o)
		}
	}
	return out, nil
}
