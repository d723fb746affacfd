package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	builds    *prometheus.CounterVec
	duration  prometheus.Histogram
	lanes     *prometheus.GaugeVec
	excess    *prometheus.GaugeVec
	decodes   *prometheus.CounterVec
	feeds     prometheus.Counter
	records   prometheus.Gauge
	conflicts *prometheus.GaugeVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing an already registered equivalent collector.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.builds, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_layout_builds_total",
		Help: "Day layouts served, by day and whether they came from the memo",
	}, []string{"day", "cached"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shiftboard_layout_build_seconds",
		Help:    "Time spent building a day layout",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.lanes, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shiftboard_layout_lanes",
		Help: "Lanes in the latest layout of each day",
	}, []string{"day"})); err != nil {
		return nil, err
	}
	if s.excess, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shiftboard_layout_excess_lanes",
		Help: "Lanes above the clique lower bound in the latest fresh build of each day",
	}, []string{"day"})); err != nil {
		return nil, err
	}
	if s.decodes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftboard_availability_decodes_total",
		Help: "Availability documents decoded, by outcome",
	}, []string{"rejected"})); err != nil {
		return nil, err
	}
	if s.feeds, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shiftboard_feed_updates_total",
		Help: "Schedule feeds accepted",
	})); err != nil {
		return nil, err
	}
	if s.records, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shiftboard_feed_records",
		Help: "Raw assignments in the current schedule feed",
	})); err != nil {
		return nil, err
	}
	if s.conflicts, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shiftboard_availability_conflict_slots",
		Help: "Assigned slots marked unavailable, by day",
	}, []string{"day"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordLayout counts the build and updates the per-day lane gauges.
func (s *PromSink) RecordLayout(ev coremetrics.LayoutEvent) error {
	day := ev.Day.String()
	s.builds.WithLabelValues(day, strconv.FormatBool(ev.Cached)).Inc()
	s.lanes.WithLabelValues(day).Set(float64(ev.Lanes))
	if !ev.Cached {
		s.duration.Observe(ev.Duration.Seconds())
		s.excess.WithLabelValues(day).Set(float64(ev.Lanes - ev.LowerBound))
	}
	return nil
}

// RecordDecode counts availability decodes.
func (s *PromSink) RecordDecode(ev coremetrics.DecodeEvent) error {
	s.decodes.WithLabelValues(strconv.FormatBool(ev.RejectedDays > 0)).Inc()
	return nil
}

// RecordFeed counts accepted feeds.
func (s *PromSink) RecordFeed(ev coremetrics.FeedEvent) error {
	s.feeds.Inc()
	s.records.Set(float64(ev.Records))
	return nil
}

// RecordConflicts sets the conflict gauge of the day.
func (s *PromSink) RecordConflicts(ev coremetrics.ConflictEvent) error {
	s.conflicts.WithLabelValues(ev.Day.String()).Set(float64(ev.Slots))
	return nil
}
