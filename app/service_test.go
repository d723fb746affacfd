package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shiftboard/config"
	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/layout"
	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/core/storage"
	"github.com/kilianp07/shiftboard/infra/cache"
	"github.com/kilianp07/shiftboard/infra/logger"
	"github.com/kilianp07/shiftboard/infra/mqtt"
)

type memSnapshots struct {
	m    map[string]availability.Snapshot
	gets int
}

func (c *memSnapshots) GetSnapshot(_ context.Context, employee string) (availability.Snapshot, bool, error) {
	c.gets++
	s, ok := c.m[storage.EmployeeKey(employee)]
	return s, ok, nil
}

func (c *memSnapshots) SetSnapshot(_ context.Context, s availability.Snapshot) error {
	c.m[storage.EmployeeKey(s.Employee)] = s
	return nil
}

type conflictSink struct {
	coremetrics.NopSink
	conflicts []coremetrics.ConflictEvent
	decodes   []coremetrics.DecodeEvent
}

func (c *conflictSink) RecordConflicts(e coremetrics.ConflictEvent) error {
	c.conflicts = append(c.conflicts, e)
	return nil
}

func (c *conflictSink) RecordDecode(e coremetrics.DecodeEvent) error {
	c.decodes = append(c.decodes, e)
	return nil
}

func newTestService(t *testing.T) (*Service, *mqtt.MockPublisher, *conflictSink) {
	t.Helper()
	pub := mqtt.NewMockPublisher()
	sink := &conflictSink{}
	svc, err := NewService(Deps{
		Snapshots: &memSnapshots{m: map[string]availability.Snapshot{}},
		Publisher: pub,
		Sink:      sink,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, pub, sink
}

func testFeed() shifts.Feed {
	return shifts.Feed{
		{Day: "Monday", Hours: []shifts.HourBlock{
			{Time: "09:00", Roles: map[string][]string{"Server": {"Alice", "Cid"}}},
			{Time: "10:00", Roles: map[string][]string{"Server": {"Alice", "Bob", "Cid"}}},
			{Time: "11:00", Roles: map[string][]string{"Server": {"Alice", "Bob"}, "Cook": {"Dee"}}},
		}},
		{Day: "Tuesday", Hours: []shifts.HourBlock{
			{Time: "08:00", Roles: map[string][]string{"Busser": {"Eve"}}},
		}},
	}
}

func TestSaveAndGetAvailability(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	doc := availability.Document{
		"mon": {model.Unavailable: {"08:00-09:00", "09:00-09:30"}},
	}
	snap, err := svc.SaveAvailability(ctx, " Alice ", doc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", snap.Employee)
	assert.NotEmpty(t, snap.Version)
	assert.Equal(t, []string{"08:00-09:30"}, snap.Document["Monday"][model.Unavailable])
	assert.Equal(t, []string{}, snap.Document["Monday"][model.Preferred])

	got, err := svc.GetAvailability(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, snap.Version, got.Version)

	_, err = svc.GetAvailability(ctx, "Bob")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.GetAvailability(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidEmployee)
}

func TestSaveAvailabilityRejectsBadDays(t *testing.T) {
	svc, _, sink := newTestService(t)
	doc := availability.Document{
		"Monday":  {model.Unavailable: {"08:00-09:00"}, model.Preferred: {"08:30-10:00"}},
		"Funday":  {model.Unavailable: {"08:00-09:00"}},
		"Tuesday": {model.Unavailable: {"10:00-11:00"}},
	}
	_, err := svc.SaveAvailability(context.Background(), "Alice", doc)
	var derr *availability.DocumentError
	require.ErrorAs(t, err, &derr)
	assert.Len(t, derr.Days, 2)
	assert.ErrorIs(t, err, availability.ErrOverlappingRange)
	assert.ErrorIs(t, err, model.ErrUnknownDay)
	require.Len(t, sink.decodes, 1)
	assert.Equal(t, 2, sink.decodes[0].RejectedDays)

	_, err = svc.GetAvailability(context.Background(), "Alice")
	assert.ErrorIs(t, err, storage.ErrNotFound, "a rejected document is not stored")
}

func TestToggleSlotCycles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	want := []model.Category{model.Preferred, model.Unavailable, model.Available}
	for _, w := range want {
		got, _, err := svc.ToggleSlot(ctx, "Alice", model.Wednesday, model.At(9, 30))
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
	snap, err := svc.GetAvailability(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, snap.Document)

	_, _, err = svc.ToggleSlot(ctx, "Alice", model.Wednesday, model.At(9, 10))
	assert.ErrorIs(t, err, availability.ErrMisalignedSlot)
}

func TestUpdateScheduleAndLayout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.DayLayout(ctx, model.Monday)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	res, err := svc.UpdateSchedule(ctx, testFeed())
	require.NoError(t, err)
	assert.Equal(t, 9, res.Records)
	assert.Equal(t, []model.Day{model.Monday, model.Tuesday}, res.Days)
	assert.Empty(t, res.Rejected)

	l, err := svc.DayLayout(ctx, model.Monday)
	require.NoError(t, err)
	assert.Len(t, l.Lanes("Server"), 3)
	assert.Len(t, l.Lanes("Cook"), 1)

	empty, err := svc.DayLayout(ctx, model.Sunday)
	require.NoError(t, err)
	assert.Empty(t, empty.Roles)

	sc, err := svc.GetSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Version, sc.Version)
}

func TestUpdateScheduleDropsBadDays(t *testing.T) {
	svc, _, _ := newTestService(t)
	feed := append(testFeed(), shifts.FeedDay{Day: "Caturday", Hours: []shifts.HourBlock{{Time: "09:00"}}})
	res, err := svc.UpdateSchedule(context.Background(), feed)
	require.NoError(t, err)
	assert.Contains(t, res.Rejected, "Caturday")

	sc, err := svc.GetSchedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, sc.Feed, 2)

	_, err = svc.UpdateSchedule(context.Background(), shifts.Feed{{Day: "Caturday"}})
	assert.ErrorIs(t, err, ErrInvalidFeed)
	assert.ErrorIs(t, err, model.ErrUnknownDay)
}

func TestScheduleReloadedFromStore(t *testing.T) {
	store := storage.NewMemoryStore()
	first, err := NewService(Deps{Store: store})
	require.NoError(t, err)
	res, err := first.UpdateSchedule(context.Background(), testFeed())
	require.NoError(t, err)

	second, err := NewService(Deps{Store: store})
	require.NoError(t, err)
	l, err := second.DayLayout(context.Background(), model.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, "Busser", l.Roles[0].Role)
	sc, err := second.GetSchedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Version, sc.Version)
}

func TestConflicts(t *testing.T) {
	svc, _, sink := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpdateSchedule(ctx, testFeed())
	require.NoError(t, err)
	_, err = svc.SaveAvailability(ctx, "bob", availability.Document{
		"Monday": {model.Unavailable: {"10:30-11:00"}},
	})
	require.NoError(t, err)
	_, err = svc.SaveAvailability(ctx, "Alice", availability.Document{
		"Monday": {model.Preferred: {"09:00-12:00"}},
	})
	require.NoError(t, err)

	out, err := svc.Conflicts(ctx, model.Monday)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bob", out[0].Employee)
	assert.Equal(t, model.At(10, 30), out[0].Slot)
	require.Len(t, sink.conflicts, 1)
	assert.Equal(t, 1, sink.conflicts[0].Slots)
}

func TestConflictsMatchPaddedFeedNames(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	feed := shifts.Feed{{Day: "Monday", Hours: []shifts.HourBlock{
		{Time: "09:00", Roles: map[string][]string{"Server": {" Alice "}}},
	}}}
	_, err := svc.UpdateSchedule(ctx, feed)
	require.NoError(t, err)
	_, err = svc.SaveAvailability(ctx, "alice", availability.Document{
		"Monday": {model.Unavailable: {"09:00-10:00"}},
	})
	require.NoError(t, err)

	out, err := svc.Conflicts(ctx, model.Monday)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, c := range out {
		assert.Equal(t, "Alice", c.Employee)
	}
}

type closingCache struct {
	memSnapshots
	layout.MemoryMemo
	closed int
}

func (c *closingCache) Close() error {
	c.closed++
	return nil
}

func TestNewClosesCacheOnInvalidGrid(t *testing.T) {
	fake := &closingCache{}
	orig := newCache
	newCache = func(cache.Config, logger.Logger) sharedCache { return fake }
	defer func() { newCache = orig }()

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Grid.SlotMinutes = 7
	cfg.Grid.FillPolicy = string(shifts.FillNone)
	_, err := New(cfg)
	require.Error(t, err)
	assert.Equal(t, 1, fake.closed)
}

func TestRunPublishesLayoutsOnUpdate(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// Run subscribes asynchronously; retry the update until layouts arrive.
	deadline := time.Now().Add(2 * time.Second)
	for pub.Count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("layouts not published, got %d", pub.Count())
		}
		_, err := svc.UpdateSchedule(ctx, testFeed())
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	l, ok := pub.Layout(model.Monday)
	require.True(t, ok)
	assert.Len(t, l.Lanes("Server"), 3)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("run did not stop")
	}
}

func TestPublishLayoutsReportsFailures(t *testing.T) {
	svc, pub, _ := newTestService(t)
	pub.FailDays[model.Tuesday] = true
	_, err := svc.UpdateSchedule(context.Background(), testFeed())
	require.NoError(t, err)
	err = svc.PublishLayouts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tuesday")
	assert.Equal(t, 1, pub.Count())
}

func TestHandleFeed(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.HandleFeed(context.Background(), testFeed()))
	err := svc.HandleFeed(context.Background(), shifts.Feed{{Day: "Nope"}})
	assert.True(t, errors.Is(err, ErrInvalidFeed))
}
