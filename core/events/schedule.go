package events

import (
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// ScheduleUpdated is published when a schedule feed replaces the current one.
type ScheduleUpdated struct {
	Version      string
	Records      int
	Days         []model.Day
	RejectedDays int
	At           time.Time
}
