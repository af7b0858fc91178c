package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/infra/logger"
)

func newTestNetwork(t *testing.T) *Network {
	t.Helper()
	n, err := NewNetwork(DefaultTopology(), logger.NopLogger{})
	require.NoError(t, err)
	return n
}

func TestNewNetwork_InvalidTopology(t *testing.T) {
	mutations := map[string]func(*Topology){
		"rated":      func(tp *Topology) { tp.RatedMVA = 0 },
		"vk":         func(tp *Topology) { tp.VkPercent = -1 },
		"vkr>vk":     func(tp *Topology) { tp.VkrPercent = 12 },
		"slack":      func(tp *Topology) { tp.SlackVoltagePU = 0 },
		"iterations": func(tp *Topology) { tp.MaxIterations = 0 },
		"reactive":   func(tp *Topology) { tp.ReactiveRatio = -0.1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			topo := DefaultTopology()
			mutate(&topo)
			_, err := NewNetwork(topo, logger.NopLogger{})
			if !errors.Is(err, ErrInvalidTopology) {
				t.Fatalf("expected ErrInvalidTopology, got %v", err)
			}
		})
	}
}

func TestTopology_SetDefaults(t *testing.T) {
	var topo Topology
	topo.SetDefaults()
	assert.Equal(t, DefaultTopology(), topo)
}

func TestSolve_NoLoad(t *testing.T) {
	n := newTestNetwork(t)
	res := n.Solve(0)
	require.False(t, res.Collapsed)
	assert.InDelta(t, 1.02, res.VoltagePU, 1e-9)
	// only the magnetising current flows
	assert.InDelta(t, 0.102, res.LoadingPercent, 1e-6)
}

func TestSolve_RatedLoad(t *testing.T) {
	n := newTestNetwork(t)
	res := n.Solve(9.5)
	require.False(t, res.Collapsed)
	assert.Less(t, res.VoltagePU, 1.02)
	assert.Greater(t, res.VoltagePU, 0.9)
	// 9.5 MW at pf ~0.95 is close to the 10 MVA rating
	assert.InDelta(t, 100, res.LoadingPercent, 10)
}

func TestSolve_Monotonic(t *testing.T) {
	n := newTestNetwork(t)
	prev := n.Solve(0)
	for load := 1.0; load <= 25; load++ {
		res := n.Solve(load)
		require.False(t, res.Collapsed, "load %.0f MW", load)
		assert.GreaterOrEqual(t, res.LoadingPercent, prev.LoadingPercent, "load %.0f MW", load)
		assert.LessOrEqual(t, res.VoltagePU, prev.VoltagePU, "load %.0f MW", load)
		prev = res
	}
}

func TestSolve_CollapseSentinel(t *testing.T) {
	n := newTestNetwork(t)
	res := n.Solve(200)
	assert.Equal(t, model.CollapsedResult, res)
	assert.Equal(t, 150.0, res.LoadingPercent)
	assert.Equal(t, 0.85, res.VoltagePU)
}

func TestSolve_Stateless(t *testing.T) {
	n := newTestNetwork(t)
	first := n.Solve(6)
	n.Solve(200)
	n.Solve(14)
	assert.Equal(t, first, n.Solve(6))
}
