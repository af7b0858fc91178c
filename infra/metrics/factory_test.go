package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridwarden/core/factory"
	coremetrics "github.com/kilianp07/gridwarden/core/metrics"
)

func TestNewMetricsSink_Registered(t *testing.T) {
	sink, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)

	multi, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "prometheus"}})
	require.NoError(t, err)
	require.IsType(t, &coremetrics.MultiSink{}, multi)
	assert.Len(t, multi.(*coremetrics.MultiSink).Sinks, 2)
}

func TestNewMetricsSink_Unknown(t *testing.T) {
	_, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}})
	assert.ErrorContains(t, err, "statsd")
}
