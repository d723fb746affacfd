package availability

import (
	"cmp"
	"slices"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// Encode compresses the cells of one category on one day into maximal
// ranges. Consecutive slots of the category form a run; a run is closed as
// [first slot start, last slot start + slot duration). Baseline and other
// categories end the current run. The baseline itself is never encoded.
func Encode(g *Grid, day model.Day, category model.Category) []model.Range {
	if category.IsBaseline() {
		return nil
	}
	var (
		out        []model.Range
		open       bool
		start, end model.ClockTime
	)
	flush := func() {
		if !open {
			return
		}
		// start < end by construction, NewRange cannot fail here.
		r, err := model.NewRange(day, category, start, end)
		if err == nil {
			out = append(out, r)
		}
		open = false
	}
	for _, t := range g.Slots(day) {
		if g.Get(day, t) != category {
			flush()
			continue
		}
		if open && t == end {
			end = t + g.slot
			continue
		}
		flush()
		open, start, end = true, t, t+g.slot
	}
	flush()
	return out
}

// EncodeDay encodes every category stored on day.
func EncodeDay(g *Grid, day model.Day) map[model.Category][]model.Range {
	out := map[model.Category][]model.Range{}
	for _, c := range g.Categories(day) {
		out[c] = Encode(g, day, c)
	}
	return out
}

// Decode expands ranges into a grid at the given granularity. A slot belongs
// to a range when start <= slot start < end.
//
// Days are decoded independently and atomically: a day whose ranges overlap
// contributes nothing, the others are still applied. The returned grid is
// non-nil unless the slot duration is invalid; the error is a *DocumentError
// naming the rejected days.
func Decode(ranges []model.Range, slot time.Duration) (*Grid, error) {
	g, err := NewGrid(slot)
	if err != nil {
		return nil, err
	}
	byDay := map[model.Day][]model.Range{}
	for _, r := range ranges {
		byDay[r.Day()] = append(byDay[r.Day()], r)
	}
	derr := &DocumentError{}
	for day, rs := range byDay {
		cells, err := decodeDay(day, rs, g.slot)
		if err != nil {
			derr.add(day.String(), err)
			continue
		}
		g.replaceDay(day, cells)
	}
	return g, derr.orNil()
}

// decodeDay expands one day's ranges, rejecting same-category overlaps and
// cross-category slot collisions.
func decodeDay(day model.Day, ranges []model.Range, slot model.ClockTime) (map[model.ClockTime]model.Category, error) {
	sorted := slices.Clone(ranges)
	slices.SortStableFunc(sorted, func(a, b model.Range) int {
		return cmp.Or(
			cmp.Compare(a.Category(), b.Category()),
			cmp.Compare(a.Start(), b.Start()),
			cmp.Compare(a.End(), b.End()),
		)
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Category() == cur.Category() && prev.Overlaps(cur) {
			return nil, &OverlapError{Day: day, First: prev, Second: cur, Slot: cur.Start()}
		}
	}

	cells := map[model.ClockTime]model.Category{}
	owner := map[model.ClockTime]model.Range{}
	for _, r := range sorted {
		for t := firstSlot(r.Start(), slot); t < r.End(); t += slot {
			if prev, taken := owner[t]; taken && prev.Category() != r.Category() {
				return nil, &OverlapError{Day: day, First: prev, Second: r, Slot: t}
			}
			owner[t] = r
			cells[t] = r.Category()
		}
	}
	return cells, nil
}

// firstSlot rounds t up to the next slot boundary.
func firstSlot(t, slot model.ClockTime) model.ClockTime {
	if rem := t % slot; rem != 0 {
		return t + slot - rem
	}
	return t
}
