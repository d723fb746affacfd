package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/shiftboard/config"
	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/events"
	"github.com/kilianp07/shiftboard/core/layout"
	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/core/model"
	coremqtt "github.com/kilianp07/shiftboard/core/mqtt"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/core/storage"
	"github.com/kilianp07/shiftboard/infra/cache"
	"github.com/kilianp07/shiftboard/infra/logger"
	"github.com/kilianp07/shiftboard/infra/metrics"
	"github.com/kilianp07/shiftboard/infra/mqtt"
	_ "github.com/kilianp07/shiftboard/infra/store" // registers the sqlite backend
	"github.com/kilianp07/shiftboard/internal/eventbus"
)

// Deps are the collaborators of a Service. Nil fields fall back to
// in-memory or no-op implementations.
type Deps struct {
	Store     storage.Store
	Snapshots availability.SnapshotCache
	Memo      layout.Memo
	Sink      coremetrics.MetricsSink
	Publisher coremqtt.LayoutPublisher
	Bus       eventbus.EventBus
	Grid      config.GridConfig
	Log       logger.Logger
}

// Service keeps availability documents and the current schedule, and serves
// day layouts built from it.
type Service struct {
	store     storage.Store
	snapshots availability.SnapshotCache
	builder   *layout.Builder
	sink      coremetrics.MetricsSink
	publisher coremqtt.LayoutPublisher
	bus       eventbus.EventBus
	updates   *eventbus.TypedBus[events.ScheduleUpdated]
	grid      config.GridConfig
	log       logger.Logger
	now       func() time.Time

	promAddr string
	closers  []func() error

	mu      sync.RWMutex
	current *schedule
}

type schedule struct {
	storage.Schedule
	records []model.RawAssignment
}

// UpdateResult describes an accepted feed.
type UpdateResult struct {
	Version string      `json:"version"`
	Records int         `json:"records"`
	Days    []model.Day `json:"days"`
	// Rejected lists the feed days that were dropped, keyed as they appeared.
	Rejected map[string]string `json:"rejected,omitempty"`
}

// sharedCache backs both the availability snapshot cache and the layout memo.
type sharedCache interface {
	availability.SnapshotCache
	layout.Memo
	Close() error
}

var newCache = func(cfg cache.Config, log logger.Logger) sharedCache { return cache.New(cfg, log) }

// New builds a Service from the configuration: the configured store, the
// Redis cache when enabled, metrics sinks and the MQTT bridge.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	store, err := storage.NewStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	deps := Deps{Store: store, Sink: sink, Grid: cfg.Grid, Log: logg, Bus: eventbus.New()}
	var closers []func() error
	if cfg.Cache.Enabled {
		c := newCache(cfg.Cache, logger.New("cache"))
		deps.Snapshots, deps.Memo = c, c
		closers = append(closers, c.Close)
	}
	svc, err := NewService(deps)
	if err != nil {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		_ = store.Close()
		return nil, err
	}
	svc.promAddr = cfg.Metrics.PrometheusAddr
	svc.closers = append(svc.closers, closers...)
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, svc.HandleFeed)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.publisher = client
		svc.closers = append(svc.closers, func() error { client.Disconnect(); return nil })
	}
	return svc, nil
}

// NewService wires a Service from explicit dependencies.
func NewService(d Deps) (*Service, error) {
	if d.Grid.SlotMinutes == 0 {
		d.Grid.SetDefaults()
	}
	if err := d.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	ingest, err := shifts.NewIngestor(d.Grid.FeedUnit())
	if err != nil {
		return nil, err
	}
	if d.Store == nil {
		d.Store = storage.NewMemoryStore()
	}
	if d.Snapshots == nil {
		d.Snapshots = availability.NopSnapshotCache{}
	}
	if d.Memo == nil {
		d.Memo = layout.NewMemoryMemo()
	}
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Publisher == nil {
		d.Publisher = coremqtt.NopPublisher{}
	}
	if d.Bus == nil {
		d.Bus = eventbus.New()
	}
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	s := &Service{
		store:     d.Store,
		snapshots: d.Snapshots,
		builder:   layout.NewBuilder(ingest, d.Memo, d.Sink, d.Log),
		sink:      d.Sink,
		publisher: d.Publisher,
		bus:       d.Bus,
		updates:   eventbus.NewTyped[events.ScheduleUpdated](),
		grid:      d.Grid,
		log:       d.Log,
		now:       time.Now,
	}
	s.closers = []func() error{
		func() error { s.updates.Close(); s.bus.Close(); return nil },
		s.store.Close,
	}
	return s, nil
}

// Grid returns the grid configuration the service decodes with.
func (s *Service) Grid() config.GridConfig { return s.grid }

// Run starts the metrics collector, the layout publisher and, when
// configured, the Prometheus endpoint. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	updates := s.updates.Subscribe()
	go func() {
		defer s.updates.Unsubscribe(updates)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-updates:
				if !ok {
					return
				}
				if err := s.PublishLayouts(ctx); err != nil {
					s.log.Errorf("publish layouts for %s: %v", ev.Version, err)
				}
			}
		}
	}()
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service, last acquired first.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// GetAvailability returns the last saved availability of employee, from the
// cache when possible.
func (s *Service) GetAvailability(ctx context.Context, employee string) (availability.Snapshot, error) {
	key := storage.EmployeeKey(employee)
	if key == "" {
		return availability.Snapshot{}, ErrInvalidEmployee
	}
	snap, ok, err := s.snapshots.GetSnapshot(ctx, key)
	if err != nil {
		s.log.Warnf("snapshot cache get %s: %v", key, err)
	}
	if ok {
		return snap, nil
	}
	snap, err = s.store.GetAvailability(ctx, employee)
	if err != nil {
		return availability.Snapshot{}, err
	}
	if err := s.snapshots.SetSnapshot(ctx, snap); err != nil {
		s.log.Warnf("snapshot cache set %s: %v", key, err)
	}
	return snap, nil
}

// ListAvailability returns every stored snapshot.
func (s *Service) ListAvailability(ctx context.Context) ([]availability.Snapshot, error) {
	return s.store.ListAvailability(ctx)
}

// SaveAvailability replaces the availability of employee. The document is
// decoded at the grid granularity; any rejected day rejects the whole save
// with a *availability.DocumentError. What is stored is the normalized form.
func (s *Service) SaveAvailability(ctx context.Context, employee string, doc availability.Document) (availability.Snapshot, error) {
	if storage.EmployeeKey(employee) == "" {
		return availability.Snapshot{}, ErrInvalidEmployee
	}
	g, err := availability.DecodeDocument(doc, s.grid.Slot())
	if err != nil {
		var derr *availability.DocumentError
		if errors.As(err, &derr) {
			s.recordDecode(employee, len(doc), len(derr.Days), 0)
		}
		return availability.Snapshot{}, err
	}
	return s.saveGrid(ctx, employee, g, len(doc))
}

// ToggleSlot advances one cell of employee's availability through
// available, preferred and unavailable, then saves the result.
func (s *Service) ToggleSlot(ctx context.Context, employee string, day model.Day, at model.ClockTime) (model.Category, availability.Snapshot, error) {
	doc := availability.Document{}
	snap, err := s.GetAvailability(ctx, employee)
	switch {
	case err == nil:
		doc = snap.Document
		employee = snap.Employee
	case !errors.Is(err, storage.ErrNotFound):
		return "", availability.Snapshot{}, err
	}
	g, err := availability.DecodeDocument(doc, s.grid.Slot())
	if err != nil {
		return "", availability.Snapshot{}, err
	}
	next, err := g.Toggle(day, at)
	if err != nil {
		return "", availability.Snapshot{}, err
	}
	snap, err = s.saveGrid(ctx, employee, g, len(doc))
	return next, snap, err
}

func (s *Service) saveGrid(ctx context.Context, employee string, g *availability.Grid, days int) (availability.Snapshot, error) {
	norm := availability.EncodeDocument(g, s.grid.CategoryList())
	snap := availability.Snapshot{
		Employee: strings.TrimSpace(employee),
		Version:  uuid.NewString(),
		Document: norm,
		SavedAt:  s.now().UTC(),
	}
	if err := s.store.PutAvailability(ctx, snap); err != nil {
		return availability.Snapshot{}, fmt.Errorf("store availability: %w", err)
	}
	if err := s.snapshots.SetSnapshot(ctx, snap); err != nil {
		s.log.Warnf("snapshot cache set %s: %v", snap.Employee, err)
	}
	ranges := 0
	for _, dr := range norm {
		for _, rs := range dr {
			ranges += len(rs)
		}
	}
	s.bus.Publish(events.AvailabilitySaved{
		Employee: snap.Employee,
		Version:  snap.Version,
		Days:     days,
		Ranges:   ranges,
		At:       snap.SavedAt,
	})
	s.log.Infof("saved availability of %s (%d ranges)", snap.Employee, ranges)
	return snap, nil
}

func (s *Service) recordDecode(employee string, days, rejected, ranges int) {
	r, ok := s.sink.(coremetrics.DecodeRecorder)
	if !ok {
		return
	}
	ev := coremetrics.DecodeEvent{Employee: employee, Days: days, RejectedDays: rejected, Ranges: ranges, Time: s.now()}
	if err := r.RecordDecode(ev); err != nil {
		s.log.Warnf("record decode metrics: %v", err)
	}
}

// UpdateSchedule replaces the current schedule. Days that cannot be read are
// dropped and listed in the result; a feed with days but none readable fails
// with ErrInvalidFeed.
func (s *Service) UpdateSchedule(ctx context.Context, feed shifts.Feed) (UpdateResult, error) {
	var (
		kept    shifts.Feed
		records []model.RawAssignment
		ferr    = &FeedError{Days: map[string]error{}}
	)
	for _, fd := range feed {
		recs, err := shifts.FlattenFeed(shifts.Feed{fd})
		if err != nil {
			ferr.Days[fd.Day] = err
			continue
		}
		kept = append(kept, fd)
		records = append(records, recs...)
	}
	if len(feed) > 0 && len(kept) == 0 {
		return UpdateResult{}, fmt.Errorf("%w: %w", ErrInvalidFeed, ferr)
	}
	sc := storage.Schedule{Version: uuid.NewString(), Feed: kept, SavedAt: s.now().UTC()}
	if err := s.store.PutSchedule(ctx, sc); err != nil {
		return UpdateResult{}, fmt.Errorf("store schedule: %w", err)
	}
	s.mu.Lock()
	s.current = &schedule{Schedule: sc, records: records}
	s.mu.Unlock()

	res := UpdateResult{Version: sc.Version, Records: len(records), Days: shifts.Days(records)}
	if len(ferr.Days) > 0 {
		res.Rejected = map[string]string{}
		for k, v := range ferr.Days {
			res.Rejected[k] = v.Error()
		}
		s.log.Warnf("schedule %s: %v", sc.Version, ferr)
	}
	ev := events.ScheduleUpdated{Version: sc.Version, Records: len(records), Days: res.Days, RejectedDays: len(ferr.Days), At: sc.SavedAt}
	s.bus.Publish(ev)
	s.updates.Publish(ev)
	s.log.Infof("schedule %s accepted: %d records over %d days", sc.Version, len(records), len(res.Days))
	return res, nil
}

// HandleFeed adapts UpdateSchedule to the MQTT feed handler signature.
func (s *Service) HandleFeed(ctx context.Context, feed shifts.Feed) error {
	_, err := s.UpdateSchedule(ctx, feed)
	return err
}

func (s *Service) schedule(ctx context.Context) (*schedule, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil {
		return cur, nil
	}
	sc, err := s.store.GetSchedule(ctx)
	if err != nil {
		return nil, err
	}
	records, err := shifts.FlattenFeed(sc.Feed)
	if err != nil {
		s.log.Warnf("stored schedule %s: %v", sc.Version, err)
	}
	cur = &schedule{Schedule: sc, records: records}
	s.mu.Lock()
	if s.current == nil {
		s.current = cur
	}
	cur = s.current
	s.mu.Unlock()
	return cur, nil
}

// GetSchedule returns the current schedule or storage.ErrNotFound.
func (s *Service) GetSchedule(ctx context.Context) (storage.Schedule, error) {
	cur, err := s.schedule(ctx)
	if err != nil {
		return storage.Schedule{}, err
	}
	return cur.Schedule, nil
}

// DayLayout returns the lanes of day for the current schedule. A day without
// assignments yields an empty layout.
func (s *Service) DayLayout(ctx context.Context, day model.Day) (layout.DayLayout, error) {
	cur, err := s.schedule(ctx)
	if err != nil {
		return layout.DayLayout{}, err
	}
	return s.builder.Build(ctx, cur.records, day, cur.Version)
}

// Week returns the layout of every scheduled day.
func (s *Service) Week(ctx context.Context) ([]layout.DayLayout, error) {
	cur, err := s.schedule(ctx)
	if err != nil {
		return nil, err
	}
	return s.builder.BuildWeek(ctx, cur.records, cur.Version)
}

// PublishLayouts pushes the layout of every scheduled day to the publisher.
func (s *Service) PublishLayouts(ctx context.Context) error {
	week, err := s.Week(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, l := range week {
		if err := s.publisher.PublishLayout(ctx, l); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Day, err))
		}
	}
	return errors.Join(errs...)
}

// Conflicts reports the assignments of day that fall on slots their employee
// marked unavailable.
func (s *Service) Conflicts(ctx context.Context, day model.Day) ([]layout.Conflict, error) {
	cur, err := s.schedule(ctx)
	if err != nil {
		return nil, err
	}
	var records []model.RawAssignment
	names := map[string]string{}
	for _, r := range cur.records {
		if r.Day == day {
			records = append(records, r)
			names[storage.EmployeeKey(r.Employee)] = r.Employee
		}
	}
	grids := map[string]*availability.Grid{}
	for _, key := range slices.Sorted(maps.Keys(names)) {
		snap, err := s.GetAvailability(ctx, names[key])
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		g, err := availability.DecodeDocument(snap.Document, s.grid.Slot())
		if err != nil {
			s.log.Warnf("availability of %s: %v", snap.Employee, err)
		}
		if g != nil {
			grids[key] = g
		}
	}
	out, err := layout.Conflicts(records, grids, s.grid.FeedUnit(), s.grid.Slot(), s.grid.Policy())
	if err != nil {
		return nil, err
	}
	if r, ok := s.sink.(coremetrics.ConflictRecorder); ok {
		if err := r.RecordConflicts(coremetrics.ConflictEvent{Day: day, Slots: len(out), Time: s.now()}); err != nil {
			s.log.Warnf("record conflict metrics: %v", err)
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
