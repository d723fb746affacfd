package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/shiftboard/core/events"
	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.ScheduleUpdated:
		if r, ok := sink.(coremetrics.FeedRecorder); ok {
			_ = r.RecordFeed(coremetrics.FeedEvent{
				Version:      e.Version,
				Records:      e.Records,
				Days:         len(e.Days),
				RejectedDays: e.RejectedDays,
				Time:         stamp(e.At),
			})
		}
	case events.AvailabilitySaved:
		if r, ok := sink.(coremetrics.DecodeRecorder); ok {
			_ = r.RecordDecode(coremetrics.DecodeEvent{
				Employee:     e.Employee,
				Days:         e.Days,
				RejectedDays: len(e.Rejected),
				Ranges:       e.Ranges,
				Time:         stamp(e.At),
			})
		}
	}
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
