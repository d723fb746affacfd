// Package lanes packs the shift intervals of one role and day into
// non-overlapping display lanes.
package lanes

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kilianp07/shiftboard/core/model"
)

// group is every interval one employee holds, kept in input order.
type group struct {
	employee  string
	intervals []model.ShiftInterval
}

// groups splits intervals by employee in first-encountered order.
func groups(intervals []model.ShiftInterval) []group {
	var out []group
	index := map[string]int{}
	for _, iv := range intervals {
		i, ok := index[iv.Employee]
		if !ok {
			i = len(out)
			index[iv.Employee] = i
			out = append(out, group{employee: iv.Employee})
		}
		out[i].intervals = append(out[i].intervals, iv)
	}
	return out
}

// Pack assigns each employee's interval group to the first lane, in creation
// order, where none of the group's intervals overlaps an interval already
// placed there, and opens a new lane when none qualifies. All intervals of
// one employee land in the same lane.
//
// Employees are visited in the order their first interval appears, so the
// layout depends on input order; callers pass intervals as shifts.Ingest
// emits them. This is first-fit interval-graph coloring: every lane is
// conflict-free but the lane count is not guaranteed minimal. Runtime is
// O(employees²) lane scans per role and day.
//
// Intervals in each returned lane are sorted by start.
func Pack(intervals []model.ShiftInterval) []model.Lane {
	var lanes []model.Lane
	for _, g := range groups(intervals) {
		placed := false
		for i := range lanes {
			if lanes[i].Fits(g.intervals) {
				lanes[i].Intervals = append(lanes[i].Intervals, g.intervals...)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, model.Lane{Intervals: slices.Clone(g.intervals)})
		}
	}
	for i := range lanes {
		slices.SortStableFunc(lanes[i].Intervals, func(a, b model.ShiftInterval) int {
			return int(a.Start - b.Start)
		})
	}
	return lanes
}

// LowerBound returns the size of the largest set of employee groups that
// pairwise conflict. No conflict-free packing that keeps groups together can
// use fewer lanes. Returns 0 for no intervals.
func LowerBound(intervals []model.ShiftInterval) int {
	gs := groups(intervals)
	if len(gs) == 0 {
		return 0
	}
	g := simple.NewUndirectedGraph()
	for i := range gs {
		g.AddNode(simple.Node(i))
	}
	for i := range gs {
		for j := i + 1; j < len(gs); j++ {
			if !(model.Lane{Intervals: gs[i].intervals}).Fits(gs[j].intervals) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	best := 0
	for _, clique := range topo.BronKerbosch(g) {
		best = max(best, len(clique))
	}
	return best
}
