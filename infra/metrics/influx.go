package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/infra/logger"
)

// InfluxSink writes hourly transformer health to an InfluxDB instance.
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

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
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

// RecordHour writes one transformer_hour point.
func (s *InfluxSink) RecordHour(ev coremetrics.HourEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, hourPoint(ev))
}

// RecordRun writes the run summary as a transformer_run point.
func (s *InfluxSink) RecordRun(run model.SimulationRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sum := run.Summary
	p := write.NewPointWithMeasurement("transformer_run").
		AddTag("run_id", run.ID).
		AddTag("scenario", run.Name).
		AddTag("policy", run.Policy.String()).
		AddField("fleet_size", run.FleetSize).
		AddField("peak_load_mw", round3(sum.PeakLoadMW)).
		AddField("peak_hot_spot_c", round3(sum.PeakHotSpotC)).
		AddField("aging_hours", round3(sum.TotalAgingHours)).
		AddField("aging_multiplier", round3(sum.AgingMultiplier)).
		AddField("collapsed_hours", sum.CollapsedHours).
		SetTime(pointTime(run.StartedAt))
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func hourPoint(ev coremetrics.HourEvent) *write.Point {
	r := ev.Result
	return write.NewPointWithMeasurement("transformer_hour").
		AddTag("run_id", ev.RunID).
		AddTag("scenario", ev.Scenario).
		AddTag("policy", ev.Policy.String()).
		AddTag("collapsed", strconv.FormatBool(r.PowerFlow.Collapsed)).
		AddField("hour", r.Hour).
		AddField("total_load_mw", round3(r.TotalLoadMW)).
		AddField("ev_load_mw", round3(r.EVLoadMW)).
		AddField("ambient_c", round3(r.AmbientC)).
		AddField("loading_percent", round3(r.PowerFlow.LoadingPercent)).
		AddField("voltage_pu", round3(r.PowerFlow.VoltagePU)).
		AddField("top_oil_rise_c", round3(r.TopOilRiseC)).
		AddField("hot_spot_c", round3(r.Aging.HotSpotC)).
		AddField("aging_factor", round3(r.Aging.AgingFactor)).
		SetTime(pointTime(ev.Time))
}

func pointTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
