package metrics

import (
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

// LayoutEvent describes one day layout build.
type LayoutEvent struct {
	Day       model.Day
	Version   string
	Roles     int
	Lanes     int
	Intervals int
	// LowerBound is the sum over roles of the largest set of pairwise
	// conflicting employees; Lanes minus LowerBound is the packing excess.
	LowerBound int
	Cached     bool
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records layout builds for observability purposes.
type MetricsSink interface {
	RecordLayout(ev LayoutEvent) error
}

// DecodeEvent captures one availability document decode.
type DecodeEvent struct {
	Employee     string
	Days         int
	RejectedDays int
	Ranges       int
	Duration     time.Duration
	Time         time.Time
}

// DecodeRecorder records availability decodes.
type DecodeRecorder interface {
	RecordDecode(ev DecodeEvent) error
}

// FeedEvent captures an accepted schedule feed.
type FeedEvent struct {
	Version      string
	Records      int
	Days         int
	RejectedDays int
	Time         time.Time
}

// FeedRecorder records schedule feed updates.
type FeedRecorder interface {
	RecordFeed(ev FeedEvent) error
}

// ConflictEvent counts assignments that fall on unavailable slots.
type ConflictEvent struct {
	Day   model.Day
	Slots int
	Time  time.Time
}

// ConflictRecorder records availability conflicts.
type ConflictRecorder interface {
	RecordConflicts(ev ConflictEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordLayout(LayoutEvent) error      { return nil }
func (NopSink) RecordDecode(DecodeEvent) error      { return nil }
func (NopSink) RecordFeed(FeedEvent) error          { return nil }
func (NopSink) RecordConflicts(ConflictEvent) error { return nil }
