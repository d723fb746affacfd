package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shiftboard/core/metrics"
	"github.com/kilianp07/shiftboard/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLayout writes one layout build.
func (s *InfluxSink) RecordLayout(ev coremetrics.LayoutEvent) error {
	p := write.NewPointWithMeasurement("layout_build").
		AddTag("day", ev.Day.String()).
		AddTag("cached", strconv.FormatBool(ev.Cached)).
		AddTag("component", "layout_builder").
		AddField("roles", ev.Roles).
		AddField("lanes", ev.Lanes).
		AddField("intervals", ev.Intervals).
		AddField("duration_ms", float64(ev.Duration.Microseconds())/1000).
		SetTime(ev.Time)
	if !ev.Cached {
		p = p.AddField("lower_bound", ev.LowerBound)
	}
	if ev.Version != "" {
		p = p.AddTag("version", ev.Version)
	}
	return s.write(p)
}

// RecordDecode writes an availability decode.
func (s *InfluxSink) RecordDecode(ev coremetrics.DecodeEvent) error {
	p := write.NewPointWithMeasurement("availability_decode").
		AddTag("employee", ev.Employee).
		AddTag("component", "availability").
		AddField("days", ev.Days).
		AddField("rejected_days", ev.RejectedDays).
		AddField("ranges", ev.Ranges).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordFeed writes an accepted schedule feed.
func (s *InfluxSink) RecordFeed(ev coremetrics.FeedEvent) error {
	p := write.NewPointWithMeasurement("schedule_feed").
		AddTag("version", ev.Version).
		AddTag("component", "schedule").
		AddField("records", ev.Records).
		AddField("days", ev.Days).
		AddField("rejected_days", ev.RejectedDays).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordConflicts writes the conflict count of a day.
func (s *InfluxSink) RecordConflicts(ev coremetrics.ConflictEvent) error {
	p := write.NewPointWithMeasurement("availability_conflicts").
		AddTag("day", ev.Day.String()).
		AddField("slots", ev.Slots).
		SetTime(ev.Time)
	return s.write(p)
}
