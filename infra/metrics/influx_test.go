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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
	"github.com/kilianp07/gridwarden/core/model"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *bodyRecorder) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bodies) == 0 {
		return ""
	}
	return b.bodies[len(b.bodies)-1]
}

func TestInfluxSink_RecordHour(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	at := time.Date(2024, 7, 15, 19, 0, 0, 0, time.UTC)
	ev := coremetrics.HourEvent{
		RunID:    "run-1",
		Scenario: "evening",
		Policy:   model.PolicyDelayedTimer,
		Time:     at,
		Result: model.HourResult{
			Hour:        19,
			TotalLoadMW: 4.81234,
			EVLoadMW:    0.5,
			AmbientC:    27.25,
			TopOilRiseC: 31.0004,
			PowerFlow:   model.PowerFlowResult{LoadingPercent: 49.1, VoltagePU: 1.0123},
			Aging:       model.AgingResult{HotSpotC: 63.4567, AgingFactor: 0.0012},
		},
	}
	require.NoError(t, sink.RecordHour(ev))

	p := write.NewPointWithMeasurement("transformer_hour").
		AddTag("run_id", "run-1").
		AddTag("scenario", "evening").
		AddTag("policy", "delayed_timer").
		AddTag("collapsed", "false").
		AddField("hour", 19).
		AddField("total_load_mw", 4.812).
		AddField("ev_load_mw", 0.5).
		AddField("ambient_c", 27.25).
		AddField("loading_percent", 49.1).
		AddField("voltage_pu", 1.012).
		AddField("top_oil_rise_c", 31.0).
		AddField("hot_spot_c", 63.457).
		AddField("aging_factor", 0.001).
		SetTime(at)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	assert.Equal(t, expected, rec.last())
}

func TestInfluxSink_RecordRun(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	run := model.SimulationRun{
		ID:        "run-2",
		Name:      "peak",
		Policy:    model.PolicyCoordinatedSpread,
		FleetSize: 1000,
		StartedAt: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Summary: model.Summary{
			PeakLoadMW:      5.2,
			PeakHotSpotC:    88.1,
			TotalAgingHours: 3.5,
			AgingMultiplier: 0.146,
			CollapsedHours:  1,
		},
	}
	require.NoError(t, sink.RecordRun(run))

	body := rec.last()
	assert.True(t, strings.HasPrefix(body, "transformer_run,run_id=run-2,scenario=peak,policy=coordinated_spread "))
	assert.Contains(t, body, "fleet_size=1000i")
	assert.Contains(t, body, "peak_hot_spot_c=88.1")
	assert.Contains(t, body, "collapsed_hours=1i")
}

func TestInfluxSink_WriteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	assert.Error(t, sink.RecordHour(coremetrics.HourEvent{Scenario: "x"}))
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
	_, isInflux := sink.(*InfluxSink)
	assert.False(t, isInflux, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}
