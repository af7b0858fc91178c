package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTopology is returned when feeder parameters are malformed.
var ErrInvalidTopology = errors.New("invalid topology")

// Topology describes the fixed feeder: a slack source, one two-winding
// transformer and one load bus at the transformer's secondary.
type Topology struct {
	// SlackVoltagePU is the source voltage magnitude.
	SlackVoltagePU float64 `json:"slack_voltage_pu"`
	HVkV           float64 `json:"hv_kv"`
	LVkV           float64 `json:"lv_kv"`
	RatedMVA       float64 `json:"rated_mva"`
	// VkPercent is the short-circuit voltage, VkrPercent its real part.
	VkPercent  float64 `json:"vk_percent"`
	VkrPercent float64 `json:"vkr_percent"`
	// PfeKW is the iron loss and I0Percent the open-circuit current.
	PfeKW     float64 `json:"pfe_kw"`
	I0Percent float64 `json:"i0_percent"`
	// ReactiveRatio derives the reactive load from the real load
	// (0.33 corresponds to a power factor of about 0.95).
	ReactiveRatio float64 `json:"reactive_ratio"`
	MaxIterations int     `json:"max_iterations"`
	ToleranceMVA  float64 `json:"tolerance_mva"`
}

// DefaultTopology returns the 115 kV / 13.8 kV, 10 MVA substation feeder.
func DefaultTopology() Topology {
	return Topology{
		SlackVoltagePU: 1.02,
		HVkV:           115,
		LVkV:           13.8,
		RatedMVA:       10,
		VkPercent:      10,
		VkrPercent:     0.5,
		PfeKW:          10,
		I0Percent:      0.1,
		ReactiveRatio:  0.33,
		MaxIterations:  50,
		ToleranceMVA:   1e-8,
	}
}

// SetDefaults fills unset fields from DefaultTopology.
func (t *Topology) SetDefaults() {
	d := DefaultTopology()
	if t.SlackVoltagePU == 0 {
		t.SlackVoltagePU = d.SlackVoltagePU
	}
	if t.HVkV == 0 {
		t.HVkV = d.HVkV
	}
	if t.LVkV == 0 {
		t.LVkV = d.LVkV
	}
	if t.RatedMVA == 0 {
		t.RatedMVA = d.RatedMVA
	}
	if t.VkPercent == 0 {
		t.VkPercent = d.VkPercent
	}
	if t.VkrPercent == 0 {
		t.VkrPercent = d.VkrPercent
	}
	if t.PfeKW == 0 {
		t.PfeKW = d.PfeKW
	}
	if t.I0Percent == 0 {
		t.I0Percent = d.I0Percent
	}
	if t.ReactiveRatio == 0 {
		t.ReactiveRatio = d.ReactiveRatio
	}
	if t.MaxIterations == 0 {
		t.MaxIterations = d.MaxIterations
	}
	if t.ToleranceMVA == 0 {
		t.ToleranceMVA = d.ToleranceMVA
	}
}

// Validate rejects parameters for which the network cannot be built.
func (t Topology) Validate() error {
	switch {
	case t.SlackVoltagePU <= 0:
		return fmt.Errorf("%w: slack voltage must be positive", ErrInvalidTopology)
	case t.HVkV <= 0 || t.LVkV <= 0:
		return fmt.Errorf("%w: bus voltages must be positive", ErrInvalidTopology)
	case t.RatedMVA <= 0:
		return fmt.Errorf("%w: rated power must be positive", ErrInvalidTopology)
	case t.VkPercent <= 0:
		return fmt.Errorf("%w: vk_percent must be positive", ErrInvalidTopology)
	case t.VkrPercent < 0 || t.VkrPercent >= t.VkPercent:
		return fmt.Errorf("%w: vkr_percent must be in [0, vk_percent)", ErrInvalidTopology)
	case t.PfeKW < 0 || t.I0Percent < 0:
		return fmt.Errorf("%w: magnetising parameters must be non-negative", ErrInvalidTopology)
	case t.ReactiveRatio < 0:
		return fmt.Errorf("%w: reactive ratio must be non-negative", ErrInvalidTopology)
	case t.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidTopology)
	case t.ToleranceMVA <= 0:
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalidTopology)
	}
	return nil
}

// admittances holds the per-unit branch parameters on the transformer base.
type admittances struct {
	gs, bs float64 // series
	gm, bm float64 // magnetising shunt at the HV terminal
}

func (t Topology) admittances() admittances {
	z := t.VkPercent / 100
	r := t.VkrPercent / 100
	x := math.Sqrt(z*z - r*r)
	a := admittances{gs: r / (z * z), bs: -x / (z * z)}
	a.gm = t.PfeKW / 1000 / t.RatedMVA
	ym := t.I0Percent / 100
	if ym > a.gm {
		a.bm = -math.Sqrt(ym*ym - a.gm*a.gm)
	}
	return a
}
