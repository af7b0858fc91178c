package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	Topic   string
	Timeout time.Duration
}

type recorderConf struct {
	Topic   string        `json:"topic"`
	Timeout time.Duration `json:"timeout"`
	QoS     int           `json:"qos"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*recorder]()
	require.NoError(t, reg.Register("mqtt", func(conf map[string]any) (*recorder, error) {
		var c recorderConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &recorder{Topic: c.Topic, Timeout: c.Timeout}, nil
	}))
	inst, err := reg.Create(ModuleConfig{Type: "mqtt", Conf: map[string]any{
		"topic":   "gridwarden/runs",
		"timeout": "5s",
		"qos":     "1",
	}})
	require.NoError(t, err)
	assert.Equal(t, "gridwarden/runs", inst.Topic)
	assert.Equal(t, 5*time.Second, inst.Timeout)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("y", nil))
	_, err := reg.Create(ModuleConfig{Type: "z"})
	assert.ErrorContains(t, err, "unknown module type")
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"prometheus", "influx", "nop"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"influx", "nop", "prometheus"}, reg.Names())
}
