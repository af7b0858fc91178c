package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChargingPolicy(t *testing.T) {
	cases := map[string]ChargingPolicy{
		"uncontrolled":       PolicyUncontrolled,
		"":                   PolicyUncontrolled,
		"delayed_timer":      PolicyDelayedTimer,
		"ulo_timer":          PolicyDelayedTimer,
		"Coordinated-Spread": PolicyCoordinatedSpread,
		"smart_managed":      PolicyCoordinatedSpread,
	}
	for in, want := range cases {
		got, err := ParseChargingPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseChargingPolicy("v2g")
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}

func TestChargingPolicy_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P ChargingPolicy `json:"p"`
	}{PolicyCoordinatedSpread})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"coordinated_spread"}`, string(b))

	var out struct {
		P ChargingPolicy `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"ulo_timer"}`), &out))
	assert.Equal(t, PolicyDelayedTimer, out.P)
	assert.Error(t, json.Unmarshal([]byte(`{"p":"nope"}`), &out))
}

func TestProfileOps(t *testing.T) {
	var p Profile
	for h := range p {
		p[h] = float64(h)
	}
	assert.Equal(t, 23.0, p.Max())
	assert.Equal(t, 23, p.ArgMax())
	assert.Equal(t, 276.0, p.Sum())

	sum := p.Add(Constant(1))
	assert.Equal(t, 24.0, sum[23])
	assert.Equal(t, 0.0, p[0], "Add must not mutate the receiver")

	half := p.Scale(0.5)
	assert.Equal(t, 11.5, half[23])
	assert.Equal(t, 23.0, p[23], "Scale must not mutate the receiver")

	s := p.Slice()
	s[0] = 42
	assert.Equal(t, 0.0, p[0])
}

func TestProfileFromSlice(t *testing.T) {
	_, err := ProfileFromSlice(make([]float64, 23))
	assert.Error(t, err)
	p, err := ProfileFromSlice(Constant(2).Slice())
	require.NoError(t, err)
	assert.Equal(t, Constant(2), p)
}

func TestSimulationRunAccessors(t *testing.T) {
	var r SimulationRun
	for h := range r.Hours {
		r.Hours[h] = HourResult{
			Hour:      h,
			PowerFlow: PowerFlowResult{LoadingPercent: float64(h), VoltagePU: 1},
			Aging:     AgingResult{HotSpotC: 50 + float64(h), AgingFactor: 1},
		}
	}
	assert.Equal(t, 73.0, r.HotSpots().Max())
	assert.Equal(t, 24.0, r.AgingFactors().Sum())
	assert.Equal(t, 23.0, r.Loadings()[23])
	assert.Equal(t, Constant(1), r.Voltages())
}
