package availability

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// Slot addresses one cell of the grid.
type Slot struct {
	Day   model.Day
	Start model.ClockTime
}

// Grid maps (day, slot start) to a status. Cells holding the baseline are
// not materialized. A Grid is not safe for concurrent mutation.
type Grid struct {
	slot  model.ClockTime
	cells map[Slot]model.Category
}

// NewGrid creates an empty grid with the given slot duration. The duration
// must be a whole number of minutes that divides the day evenly.
func NewGrid(slot time.Duration) (*Grid, error) {
	if slot < time.Minute || slot%time.Minute != 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlotDuration, slot)
	}
	minutes := int(slot / time.Minute)
	if model.MinutesPerDay%minutes != 0 {
		return nil, fmt.Errorf("%w: %s does not divide a day", ErrSlotDuration, slot)
	}
	return &Grid{slot: model.ClockTime(minutes), cells: map[Slot]model.Category{}}, nil
}

// SlotDuration returns the grid granularity.
func (g *Grid) SlotDuration() time.Duration { return g.slot.Duration() }

// Len returns the number of non-baseline cells.
func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) checkSlot(day model.Day, at model.ClockTime) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", model.ErrUnknownDay, int(day))
	}
	if at < 0 || at >= model.EndOfDay || at%g.slot != 0 {
		return fmt.Errorf("%w: %s is not a %s slot", ErrMisalignedSlot, at, g.SlotDuration())
	}
	return nil
}

// Get returns the status of a cell, the baseline when unset.
func (g *Grid) Get(day model.Day, at model.ClockTime) model.Category {
	if c, ok := g.cells[Slot{Day: day, Start: at}]; ok {
		return c
	}
	return model.Available
}

// Set assigns a status to one cell. Setting the baseline clears the cell.
func (g *Grid) Set(day model.Day, at model.ClockTime, c model.Category) error {
	if err := g.checkSlot(day, at); err != nil {
		return err
	}
	g.put(Slot{Day: day, Start: at}, c)
	return nil
}

func (g *Grid) put(s Slot, c model.Category) {
	if c.IsBaseline() {
		delete(g.cells, s)
		return
	}
	g.cells[s] = c
}

// Paint applies one status to every slot in [from, to), the way a drag across
// the grid locks in the status chosen on the first cell.
func (g *Grid) Paint(day model.Day, from, to model.ClockTime, c model.Category) error {
	if err := g.checkSlot(day, from); err != nil {
		return err
	}
	if to <= from || to > model.EndOfDay {
		return fmt.Errorf("%w: paint %s-%s", ErrMisalignedSlot, from, to)
	}
	for t := from; t < to; t += g.slot {
		g.put(Slot{Day: day, Start: t}, c)
	}
	return nil
}

// Toggle advances a cell to its next status and returns it.
func (g *Grid) Toggle(day model.Day, at model.ClockTime) (model.Category, error) {
	if err := g.checkSlot(day, at); err != nil {
		return "", err
	}
	next := g.Get(day, at).Next()
	g.put(Slot{Day: day, Start: at}, next)
	return next, nil
}

// ClearDay resets every cell of day to the baseline.
func (g *Grid) ClearDay(day model.Day) {
	maps.DeleteFunc(g.cells, func(s Slot, _ model.Category) bool { return s.Day == day })
}

// Days returns the days holding at least one non-baseline cell, in week order.
func (g *Grid) Days() []model.Day {
	seen := map[model.Day]bool{}
	for s := range g.cells {
		seen[s.Day] = true
	}
	days := slices.Collect(maps.Keys(seen))
	slices.Sort(days)
	return days
}

// Slots returns the non-baseline slot starts of day in increasing order.
func (g *Grid) Slots(day model.Day) []model.ClockTime {
	var out []model.ClockTime
	for s := range g.cells {
		if s.Day == day {
			out = append(out, s.Start)
		}
	}
	slices.Sort(out)
	return out
}

// Categories returns the distinct statuses stored for day, sorted.
func (g *Grid) Categories(day model.Day) []model.Category {
	seen := map[model.Category]bool{}
	for s, c := range g.cells {
		if s.Day == day {
			seen[c] = true
		}
	}
	cats := slices.Collect(maps.Keys(seen))
	slices.Sort(cats)
	return cats
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{slot: g.slot, cells: maps.Clone(g.cells)}
}

// Equal reports whether both grids share a granularity and every cell.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.slot == o.slot && maps.Equal(g.cells, o.cells)
}

// replaceDay swaps the cells of day for the given set. Callers guarantee the
// slots are aligned.
func (g *Grid) replaceDay(day model.Day, cells map[model.ClockTime]model.Category) {
	g.ClearDay(day)
	for t, c := range cells {
		g.put(Slot{Day: day, Start: t}, c)
	}
}
