package layout

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/shiftboard/core/lanes"
	"github.com/kilianp07/shiftboard/core/logger"
	"github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
)

// Memo stores built layouts keyed by day and input version. A miss or an
// error only means the layout is rebuilt.
type Memo interface {
	GetLayout(ctx context.Context, day model.Day, version string) (DayLayout, bool, error)
	SetLayout(ctx context.Context, version string, l DayLayout) error
}

// Builder builds day layouts, reporting every build to a metrics sink and
// memoizing results when the caller supplies an input version.
type Builder struct {
	ingest *shifts.Ingestor
	memo   Memo
	sink   metrics.MetricsSink
	log    logger.Logger
	now    func() time.Time
}

// NewBuilder returns a Builder. A nil ingestor uses the hourly feed unit;
// nil memo, sink or logger disable the respective concern.
func NewBuilder(ingest *shifts.Ingestor, memo Memo, sink metrics.MetricsSink, log logger.Logger) *Builder {
	if ingest == nil {
		ingest, _ = shifts.NewIngestor(shifts.DefaultUnit)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Builder{ingest: ingest, memo: memo, sink: sink, log: log, now: time.Now}
}

// Build returns the layout of day. With a non-empty version the memo is
// consulted first and filled after a build.
func (b *Builder) Build(ctx context.Context, records []model.RawAssignment, day model.Day, version string) (DayLayout, error) {
	if err := ctx.Err(); err != nil {
		return DayLayout{}, err
	}
	start := b.now()
	if b.memo != nil && version != "" {
		l, ok, err := b.memo.GetLayout(ctx, day, version)
		if err != nil {
			b.log.Warnf("layout memo get %s@%s: %v", day, version, err)
		} else if ok {
			l.Day = day
			b.record(l, version, 0, true, start)
			return l, nil
		}
	}

	intervals := b.ingest.Ingest(records, day)
	l := assemble(intervals, day)
	bound := 0
	for _, r := range l.Roles {
		var ivs []model.ShiftInterval
		for _, ln := range r.Lanes {
			ivs = append(ivs, ln.Intervals...)
		}
		bound += lanes.LowerBound(ivs)
	}
	b.record(l, version, bound, false, start)

	if b.memo != nil && version != "" {
		if err := b.memo.SetLayout(ctx, version, l); err != nil {
			b.log.Warnf("layout memo set %s@%s: %v", day, version, err)
		}
	}
	return l, nil
}

// BuildWeek builds every day present in records, in week order.
func (b *Builder) BuildWeek(ctx context.Context, records []model.RawAssignment, version string) ([]DayLayout, error) {
	days := shifts.Days(records)
	out := make([]DayLayout, 0, len(days))
	for _, d := range days {
		l, err := b.Build(ctx, records, d, version)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (b *Builder) record(l DayLayout, version string, bound int, cached bool, start time.Time) {
	ev := metrics.LayoutEvent{
		Day:        l.Day,
		Version:    version,
		Roles:      len(l.Roles),
		Lanes:      l.LaneCount(),
		Intervals:  l.IntervalCount(),
		LowerBound: bound,
		Cached:     cached,
		Duration:   b.now().Sub(start),
		Time:       b.now(),
	}
	if err := b.sink.RecordLayout(ev); err != nil {
		b.log.Warnf("record layout metrics: %v", err)
	}
	b.log.Debugw("layout built", map[string]any{
		"day":    l.Day.String(),
		"lanes":  ev.Lanes,
		"cached": cached,
	})
}

type memoKey struct {
	day     model.Day
	version string
}

// MemoryMemo keeps layouts of the most recent version only; storing a
// layout for a new version drops every older entry.
type MemoryMemo struct {
	mu      sync.RWMutex
	version string
	entries map[memoKey]DayLayout
}

// NewMemoryMemo returns an empty MemoryMemo.
func NewMemoryMemo() *MemoryMemo {
	return &MemoryMemo{entries: make(map[memoKey]DayLayout)}
}

func (m *MemoryMemo) GetLayout(_ context.Context, day model.Day, version string) (DayLayout, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.entries[memoKey{day: day, version: version}]
	return l, ok, nil
}

func (m *MemoryMemo) SetLayout(_ context.Context, version string, l DayLayout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version != m.version {
		clear(m.entries)
		m.version = version
	}
	m.entries[memoKey{day: l.Day, version: version}] = l
	return nil
}
