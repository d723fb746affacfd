// Package shifts turns the external scheduler's per-unit assignments into
// merged shift intervals.
package shifts

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// DefaultUnit is the time one raw assignment covers in the scheduler feed.
const DefaultUnit = time.Hour

var ErrUnit = errors.New("invalid feed unit")

// Ingestor merges raw assignments expressed in a fixed unit.
type Ingestor struct {
	unit model.ClockTime
}

// NewIngestor returns an Ingestor for records covering unit each.
func NewIngestor(unit time.Duration) (*Ingestor, error) {
	if unit < time.Minute || unit%time.Minute != 0 || unit > 24*time.Hour {
		return nil, fmt.Errorf("%w: %s", ErrUnit, unit)
	}
	return &Ingestor{unit: model.ClockTime(unit / time.Minute)}, nil
}

// Unit returns the duration covered by one record.
func (in *Ingestor) Unit() time.Duration { return in.unit.Duration() }

type groupKey struct {
	role     string
	employee string
}

// Ingest merges the records of day into shift intervals.
//
// Records are grouped by (role, employee). Within a group a record extends
// the current interval only when it starts exactly where the interval ends;
// any gap closes the interval and the next record opens a new one. Records
// off the unit grid that start inside the current interval extend it to
// cover their own unit. Duplicates collapse.
//
// Groups are emitted in the order their key first appears in records, each
// group's intervals in chronological order. Records whose unit would fall
// outside the day are ignored.
func (in *Ingestor) Ingest(records []model.RawAssignment, day model.Day) []model.ShiftInterval {
	var order []groupKey
	times := map[groupKey][]model.ClockTime{}
	for _, r := range records {
		if r.Day != day || r.At < 0 || r.At+in.unit > model.EndOfDay {
			continue
		}
		k := groupKey{role: r.Role, employee: r.Employee}
		if _, seen := times[k]; !seen {
			order = append(order, k)
		}
		times[k] = append(times[k], r.At)
	}

	var out []model.ShiftInterval
	for _, k := range order {
		ts := times[k]
		slices.Sort(ts)
		ts = slices.Compact(ts)

		cur := model.ShiftInterval{Employee: k.employee, Role: k.role, Start: ts[0], End: ts[0] + in.unit}
		for _, t := range ts[1:] {
			if t <= cur.End {
				cur.End = max(cur.End, t+in.unit)
				continue
			}
			out = append(out, cur)
			cur = model.ShiftInterval{Employee: k.employee, Role: k.role, Start: t, End: t + in.unit}
		}
		out = append(out, cur)
	}
	return out
}

var hourly = &Ingestor{unit: model.ClockTime(DefaultUnit / time.Minute)}

// Ingest merges hourly records of day; see Ingestor.Ingest.
func Ingest(records []model.RawAssignment, day model.Day) []model.ShiftInterval {
	return hourly.Ingest(records, day)
}
