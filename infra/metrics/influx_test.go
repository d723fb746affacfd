package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/core/model"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordLayout(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.LayoutEvent{Day: model.Monday, Version: "v1", Roles: 2, Lanes: 4, Intervals: 5, LowerBound: 3, Duration: 1500 * time.Microsecond, Time: now}
	if err := sink.RecordLayout(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("layout_build").
		AddTag("day", "Monday").
		AddTag("cached", "false").
		AddTag("component", "layout_builder").
		AddField("roles", 2).
		AddField("lanes", 4).
		AddField("intervals", 5).
		AddField("duration_ms", 1.5).
		SetTime(now).
		AddField("lower_bound", 3).
		AddTag("version", "v1")
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %v\nwant %s", got, expected)
	}
}

func TestInfluxSink_RecordFeedAndDecode(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	now := time.Now()
	if err := sink.RecordFeed(coremetrics.FeedEvent{Version: "v2", Records: 12, Days: 3, Time: now}); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if err := sink.RecordDecode(coremetrics.DecodeEvent{Employee: "alice", Days: 2, RejectedDays: 1, Ranges: 4, Time: now}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := sink.RecordConflicts(coremetrics.ConflictEvent{Day: model.Friday, Slots: 2, Time: now}); err != nil {
		t.Fatalf("conflicts: %v", err)
	}
	got := bodies()
	if len(got) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(got))
	}
	for i, prefix := range []string{"schedule_feed,", "availability_decode,", "availability_conflicts,"} {
		if !strings.HasPrefix(got[i], prefix) {
			t.Errorf("write %d: %s", i, got[i])
		}
	}
	if !strings.Contains(got[0], "records=12i") || !strings.Contains(got[1], "rejected_days=1i") {
		t.Errorf("fields missing: %v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
