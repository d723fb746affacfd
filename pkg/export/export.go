// Package export renders day layouts and availability grids for files and terminals.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/model"
)

// WriteJSON writes the day layout to w in JSON format.
func WriteJSON(w io.Writer, l layout.DayLayout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// WriteCSV writes one row per shift interval, in role then lane order.
func WriteCSV(w io.Writer, l layout.DayLayout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "role", "lane", "employee", "start", "end"}); err != nil {
		return err
	}
	for _, r := range l.Roles {
		for i, lane := range r.Lanes {
			for _, iv := range lane.Intervals {
				rec := []string{
					l.Day.String(),
					r.Role,
					strconv.Itoa(i),
					iv.Employee,
					iv.Start.String(),
					iv.End.String(),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConflictsCSV writes availability conflicts as CSV.
func WriteConflictsCSV(w io.Writer, conflicts []layout.Conflict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "slot", "role", "employee", "status"}); err != nil {
		return err
	}
	for _, c := range conflicts {
		if err := cw.Write([]string{c.Day.String(), c.Slot.String(), c.Role, c.Employee, c.Status.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var symbols = map[model.Category]byte{
	model.Unavailable: 'x',
	model.Preferred:   '+',
}

func symbol(c model.Category) byte {
	if c.IsBaseline() {
		return '.'
	}
	if s, ok := symbols[c]; ok {
		return s
	}
	return '?'
}

// RenderGrid draws the slots in [from,to) of each day as a text table, one
// row per slot: '.' available, 'x' unavailable, '+' preferred, '?' anything else.
func RenderGrid(w io.Writer, g *availability.Grid, days []model.Day, from, to model.ClockTime) error {
	var b strings.Builder
	b.WriteString("      ")
	for _, d := range days {
		fmt.Fprintf(&b, " %s", d.Short())
	}
	b.WriteByte('\n')
	step := g.SlotDuration()
	for t := from; t < to; t = t.Add(step) {
		b.WriteString(t.String())
		b.WriteByte(' ')
		for _, d := range days {
			b.WriteString("  ")
			b.WriteByte(symbol(g.Get(d, t)))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderLanes draws each lane of the layout as an hour ruler from 00:00 to
// 24:00 where every character is one unit of the given duration.
func RenderLanes(w io.Writer, l layout.DayLayout, unit model.ClockTime) error {
	if unit <= 0 {
		return fmt.Errorf("invalid unit %d", unit)
	}
	width := int(model.EndOfDay / unit)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", l.Day)
	for _, r := range l.Roles {
		for i, lane := range r.Lanes {
			row := []byte(strings.Repeat(".", width))
			var names []string
			for _, iv := range lane.Intervals {
				for c := int(iv.Start / unit); c < int((iv.End+unit-1)/unit) && c < width; c++ {
					row[c] = '#'
				}
				names = append(names, fmt.Sprintf("%s %s-%s", iv.Employee, iv.Start, iv.End))
			}
			fmt.Fprintf(&b, "%-12s %2d |%s| %s\n", r.Role, i, row, strings.Join(names, ", "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
