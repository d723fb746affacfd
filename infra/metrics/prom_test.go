package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/core/model"
)

func TestPromSink_Layout(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordLayout(coremetrics.LayoutEvent{Day: model.Monday, Lanes: 5, LowerBound: 3, Duration: time.Millisecond}))
	require.NoError(t, s.RecordLayout(coremetrics.LayoutEvent{Day: model.Monday, Lanes: 5, Cached: true}))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.builds.WithLabelValues("Monday", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.builds.WithLabelValues("Monday", "true")))
	assert.Equal(t, 5.0, testutil.ToFloat64(s.lanes.WithLabelValues("Monday")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.excess.WithLabelValues("Monday")))
}

func TestPromSink_FeedDecodeConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordFeed(coremetrics.FeedEvent{Records: 42}))
	require.NoError(t, s.RecordDecode(coremetrics.DecodeEvent{RejectedDays: 1}))
	require.NoError(t, s.RecordDecode(coremetrics.DecodeEvent{}))
	require.NoError(t, s.RecordConflicts(coremetrics.ConflictEvent{Day: model.Sunday, Slots: 3}))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.feeds))
	assert.Equal(t, 42.0, testutil.ToFloat64(s.records))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.decodes.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.decodes.WithLabelValues("false")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.conflicts.WithLabelValues("Sunday")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordFeed(coremetrics.FeedEvent{}))
	require.NoError(t, b.RecordFeed(coremetrics.FeedEvent{}))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.feeds))
}
