// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - ScheduleUpdated: a new schedule feed was accepted
//   - AvailabilitySaved: an employee availability document was stored
package events
