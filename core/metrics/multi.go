package metrics

import "errors"

// MultiSink fans events out to multiple sinks. A failing sink does not stop
// delivery to the others; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// fanout calls record on every sink implementing R.
func fanout[R any](sinks []MetricsSink, record func(R) error) error {
	var errs []error
	for _, s := range sinks {
		if r, ok := s.(R); ok {
			if err := record(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordLayout(ev LayoutEvent) error {
	return fanout(m.Sinks, func(s MetricsSink) error { return s.RecordLayout(ev) })
}

// RecordDecode forwards to sinks that implement DecodeRecorder.
func (m *MultiSink) RecordDecode(ev DecodeEvent) error {
	return fanout(m.Sinks, func(r DecodeRecorder) error { return r.RecordDecode(ev) })
}

// RecordFeed forwards to sinks that implement FeedRecorder.
func (m *MultiSink) RecordFeed(ev FeedEvent) error {
	return fanout(m.Sinks, func(r FeedRecorder) error { return r.RecordFeed(ev) })
}

// RecordConflicts forwards to sinks that implement ConflictRecorder.
func (m *MultiSink) RecordConflicts(ev ConflictEvent) error {
	return fanout(m.Sinks, func(r ConflictRecorder) error { return r.RecordConflicts(ev) })
}
