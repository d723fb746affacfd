package layout

import (
	"time"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/core/storage"
)

// Conflict is an assignment on a slot its employee marked unavailable.
type Conflict struct {
	Day      model.Day       `json:"day"`
	Slot     model.ClockTime `json:"slot"`
	Role     string          `json:"role"`
	Employee string          `json:"employee"`
	Status   model.Category  `json:"status"`
}

// Conflicts projects records onto slot-sized cells with the fill policy and
// reports every cell whose employee grid says unavailable. Grids are keyed by
// storage.EmployeeKey; employees without a grid never conflict. A grid
// coarser than slot is looked up at the enclosing cell.
func Conflicts(records []model.RawAssignment, grids map[string]*availability.Grid, unit, slot time.Duration, policy shifts.FillPolicy) ([]Conflict, error) {
	occ, err := shifts.Occupancy(records, unit, slot, policy)
	if err != nil {
		return nil, err
	}
	var out []Conflict
	for _, o := range occ {
		g, ok := grids[storage.EmployeeKey(o.Employee)]
		if !ok || g == nil {
			continue
		}
		step := model.ClockTime(g.SlotDuration() / time.Minute)
		at := o.Slot - o.Slot%step
		if c := g.Get(o.Day, at); c == model.Unavailable {
			out = append(out, Conflict{Day: o.Day, Slot: o.Slot, Role: o.Role, Employee: o.Employee, Status: c})
		}
	}
	return out, nil
}
