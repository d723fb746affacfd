package events

import "time"

// AvailabilitySaved is published after an availability document was
// normalized and persisted. Rejected lists the day names that failed to decode.
type AvailabilitySaved struct {
	Employee string
	Version  string
	Days     int
	Ranges   int
	Rejected []string
	At       time.Time
}
