// Package simulate rolls trajectories forward under the per-step dynamics
// of an LTVSystem, or by numerically integrating a continuous system. This
// is the propagation the outer solver performs after every re-linearization
// pass.
package simulate

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ltvtools/dyngame/dynsys"
	"github.com/ltvtools/dyngame/gonumext"
	"github.com/ltvtools/dyngame/ode"
)

// ErrDiverged is returned when a rollout produces a NaN or Inf state.
var ErrDiverged = errors.New("simulate: state diverged")

// Policy maps the step index and current state to a control input.
type Policy interface {
	Control(k int, x mat.Vector) mat.Vector
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(k int, x mat.Vector) mat.Vector

// Control calls f.
func (f PolicyFunc) Control(k int, x mat.Vector) mat.Vector { return f(k, x) }

// ZeroPolicy returns a policy that always applies a zero input of
// dimension nu.
func ZeroPolicy(nu int) Policy {
	return PolicyFunc(func(k int, x mat.Vector) mat.Vector {
		return mat.NewVecDense(nu, nil)
	})
}

// Trajectory is the record of one rollout: h+1 states, h controls and the
// matching time stamps.
type Trajectory struct {
	States   []mat.Vector
	Controls []mat.Vector
	Times    []float64
	Ts       float64
}

// Channel extracts the time series of one state component.
func (tr *Trajectory) Channel(i int) []float64 {
	series := make([]float64, len(tr.States))
	for k, x := range tr.States {
		series[k] = x.AtVec(i)
	}
	return series
}

// XY extracts the planar position series through the given state indices.
func (tr *Trajectory) XY(ids [2]int) (xs, ys []float64) {
	return tr.Channel(ids[0]), tr.Channel(ids[1])
}

// Option configures a rollout.
type Option func(*config)

type config struct {
	noise *distuv.Normal
}

// WithProcessNoise adds zero-mean Gaussian noise with the given standard
// deviation to every propagated state, drawn from a deterministic source
// seeded with seed.
func WithProcessNoise(stddev float64, seed uint64) Option {
	return func(c *config) {
		c.noise = &distuv.Normal{Mu: 0, Sigma: stddev, Src: rand.NewSource(seed)}
	}
}

// Rollout propagates x0 through every step of sys, querying pol for the
// input at each step. It stops with ErrDiverged as soon as a state stops
// being finite.
func Rollout(sys *dynsys.LTVSystem, x0 mat.Vector, pol Policy, opts ...Option) (*Trajectory, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if x0.Len() != sys.StateSpaceOrder() {
		return nil, fmt.Errorf("%w: initial state has length %d, system order is %d",
			dynsys.ErrDimensionMismatch, x0.Len(), sys.StateSpaceOrder())
	}

	h := sys.Horizon()
	ts := sys.SamplingPeriod()
	tr := &Trajectory{
		States:   make([]mat.Vector, 0, h+1),
		Controls: make([]mat.Vector, 0, h),
		Times:    make([]float64, 0, h+1),
		Ts:       ts,
	}

	var x mat.VecDense
	x.CloneFromVec(x0)
	tr.States = append(tr.States, mat.VecDenseCopyOf(&x))
	tr.Times = append(tr.Times, 0)

	for k := 0; k < h; k++ {
		u := pol.Control(k, &x)
		next := sys.NextState(k, &x, u)
		x.CloneFromVec(next)
		if cfg.noise != nil {
			for i := 0; i < x.Len(); i++ {
				x.SetVec(i, x.AtVec(i)+cfg.noise.Rand())
			}
		}
		if gonumext.NaNOrInf(&x) {
			return tr, fmt.Errorf("%w at step %d", ErrDiverged, k)
		}
		tr.Controls = append(tr.Controls, u)
		tr.States = append(tr.States, mat.VecDenseCopyOf(&x))
		tr.Times = append(tr.Times, float64(k+1)*ts)
	}
	return tr, nil
}

// RolloutContinuous samples a continuous system at period ts over `horizon`
// steps, integrating the dynamics with rk between samples while the input
// is held constant. Panics when sys is sampled, mirroring the
// discretization preconditions.
func RolloutContinuous(sys dynsys.ControlSystem, x0 mat.Vector, pol Policy, ts float64, horizon int, rk *ode.RungeKutta) (*Trajectory, error) {
	if sys.Sampled() {
		panic(errors.New("simulate: continuous rollout requires a continuous system"))
	}
	if x0.Len() != sys.StateSpaceOrder() {
		return nil, fmt.Errorf("%w: initial state has length %d, system order is %d",
			dynsys.ErrDimensionMismatch, x0.Len(), sys.StateSpaceOrder())
	}

	tr := &Trajectory{
		States:   make([]mat.Vector, 0, horizon+1),
		Controls: make([]mat.Vector, 0, horizon),
		Times:    make([]float64, 0, horizon+1),
		Ts:       ts,
	}

	var x mat.VecDense
	x.CloneFromVec(x0)
	tr.States = append(tr.States, mat.VecDenseCopyOf(&x))
	tr.Times = append(tr.Times, 0)

	for k := 0; k < horizon; k++ {
		t := float64(k) * ts
		u := pol.Control(k, &x)
		next := rk.Step(sys, t, t+ts, &x, u)
		x.CloneFromVec(next)
		if gonumext.NaNOrInf(&x) {
			return tr, fmt.Errorf("%w at step %d", ErrDiverged, k)
		}
		tr.Controls = append(tr.Controls, u)
		tr.States = append(tr.States, mat.VecDenseCopyOf(&x))
		tr.Times = append(tr.Times, t+ts)
	}
	return tr, nil
}
