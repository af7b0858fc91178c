package grid

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/gridwarden/core/logger"
	"github.com/kilianp07/gridwarden/core/model"
)

// Network is the feeder model of one scenario. Only the load injection
// changes between calls; the topology is immutable once built.
type Network struct {
	topo Topology
	y    admittances
	log  logger.Logger
}

// NewNetwork validates the topology and builds the network.
func NewNetwork(topo Topology, log logger.Logger) (*Network, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &Network{topo: topo, y: topo.admittances(), log: log}, nil
}

// Topology returns the network parameters.
func (n *Network) Topology() Topology { return n.topo }

// Solve runs a Newton-Raphson power flow for the given real load in MW.
// A solve that does not converge is reported as model.CollapsedResult
// instead of an error so a single hour never aborts a run.
func (n *Network) Solve(loadMW float64) model.PowerFlowResult {
	p := loadMW / n.topo.RatedMVA
	q := p * n.topo.ReactiveRatio
	v, theta, iters, ok := n.newtonRaphson(-p, -q)
	if !ok {
		n.log.Warnf("grid collapse at %.2f MW after %d iterations", loadMW, iters)
		return model.CollapsedResult
	}
	n.log.Debugw("power flow converged", map[string]any{
		"load_mw":    loadMW,
		"iterations": iters,
		"voltage_pu": v,
	})

	v1 := complex(n.topo.SlackVoltagePU, 0)
	v2 := cmplx.Rect(v, theta)
	ys := complex(n.y.gs, n.y.bs)
	ym := complex(n.y.gm, n.y.bm)
	iLV := ys * (v1 - v2)
	iHV := iLV + v1*ym
	loading := math.Max(cmplx.Abs(iHV), cmplx.Abs(iLV)) * 100
	return model.PowerFlowResult{LoadingPercent: loading, VoltagePU: v}
}

// newtonRaphson solves the load bus voltage for the specified injections
// pSpec, qSpec (p.u., negative for consumption) from a flat start.
func (n *Network) newtonRaphson(pSpec, qSpec float64) (v, theta float64, iters int, ok bool) {
	v1 := n.topo.SlackVoltagePU
	g22, b22 := n.y.gs, n.y.bs
	g21, b21 := -n.y.gs, -n.y.bs
	tol := n.topo.ToleranceMVA / n.topo.RatedMVA

	v, theta = 1, 0
	jac := mat.NewDense(2, 2, nil)
	rhs := mat.NewVecDense(2, nil)
	var dx mat.VecDense
	for iters = 0; ; iters++ {
		c, s := math.Cos(theta), math.Sin(theta)
		re := g21*c + b21*s
		im := g21*s - b21*c
		dp := v*v*g22 + v*v1*re - pSpec
		dq := -v*v*b22 + v*v1*im - qSpec
		if math.IsNaN(dp) || math.IsNaN(dq) || math.IsInf(dp, 0) || math.IsInf(dq, 0) {
			return v, theta, iters, false
		}
		if math.Max(math.Abs(dp), math.Abs(dq)) < tol {
			return v, theta, iters, v > 0
		}
		if iters == n.topo.MaxIterations {
			return v, theta, iters, false
		}

		jac.Set(0, 0, v*v1*(-g21*s+b21*c))
		jac.Set(0, 1, 2*v*g22+v1*re)
		jac.Set(1, 0, v*v1*re)
		jac.Set(1, 1, -2*v*b22+v1*im)
		rhs.SetVec(0, -dp)
		rhs.SetVec(1, -dq)
		if err := dx.SolveVec(jac, rhs); err != nil {
			return v, theta, iters, false
		}
		theta += dx.AtVec(0)
		v += dx.AtVec(1)
	}
}
