// Package layout composes shift ingestion and lane packing into the
// per-day structure a schedule view renders.
package layout

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/kilianp07/shiftboard/core/lanes"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
)

// RoleLanes holds the packed lanes of one role.
type RoleLanes struct {
	Role  string       `json:"role"`
	Lanes []model.Lane `json:"lanes"`
}

// DayLayout is the render-ready schedule of one day: roles in ascending
// lexical order, each with its conflict-free lanes.
//
// It marshals to JSON as an object keyed by role name.
type DayLayout struct {
	Day   model.Day
	Roles []RoleLanes
}

// Lanes returns the lanes of role, or nil when the role is not staffed.
func (d DayLayout) Lanes(role string) []model.Lane {
	i, ok := slices.BinarySearchFunc(d.Roles, role, func(r RoleLanes, name string) int {
		return strings.Compare(r.Role, name)
	})
	if !ok {
		return nil
	}
	return d.Roles[i].Lanes
}

// LaneCount returns the number of lanes over all roles.
func (d DayLayout) LaneCount() int {
	n := 0
	for _, r := range d.Roles {
		n += len(r.Lanes)
	}
	return n
}

// IntervalCount returns the number of shift intervals over all roles.
func (d DayLayout) IntervalCount() int {
	n := 0
	for _, r := range d.Roles {
		for _, l := range r.Lanes {
			n += len(l.Intervals)
		}
	}
	return n
}

func (d DayLayout) MarshalJSON() ([]byte, error) {
	m := make(map[string][]model.Lane, len(d.Roles))
	for _, r := range d.Roles {
		m[r.Role] = r.Lanes
	}
	return json.Marshal(m)
}

// UnmarshalJSON restores the roles; Day is not part of the encoding.
func (d *DayLayout) UnmarshalJSON(b []byte) error {
	var m map[string][]model.Lane
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	d.Roles = d.Roles[:0]
	for _, role := range slices.Sorted(maps.Keys(m)) {
		d.Roles = append(d.Roles, RoleLanes{Role: role, Lanes: m[role]})
	}
	return nil
}

// BuildDay merges the hourly records of day into shifts and packs each role
// into lanes. Output order depends only on role names, never on the order
// of roles in records.
func BuildDay(records []model.RawAssignment, day model.Day) DayLayout {
	return assemble(shifts.Ingest(records, day), day)
}

func assemble(intervals []model.ShiftInterval, day model.Day) DayLayout {
	byRole := map[string][]model.ShiftInterval{}
	for _, iv := range intervals {
		byRole[iv.Role] = append(byRole[iv.Role], iv)
	}
	out := DayLayout{Day: day, Roles: make([]RoleLanes, 0, len(byRole))}
	for _, role := range slices.Sorted(maps.Keys(byRole)) {
		out.Roles = append(out.Roles, RoleLanes{Role: role, Lanes: lanes.Pack(byRole[role])})
	}
	return out
}
