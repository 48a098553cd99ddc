package dynsys

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LTVSystem is an ordered, fixed-length sequence of sampled LinearSystem
// steps, one per time step of a finite horizon. Steps share a single
// (sampling period, nx, nu); individual steps may be overwritten when the
// outer solver re-linearizes around an updated trajectory, but the horizon
// never changes length. Steps are indexed 0 through Horizon()-1.
//
// Distinct steps may be written concurrently since their slots are
// disjoint; a single step must have at most one writer at a time.
type LTVSystem struct {
	steps []*LinearSystem
	ts    float64
	nx    int
	nu    int
}

// NewLTVSystem builds a time-varying system from one sampled LinearSystem
// per step. It fails if the horizon is empty, if any step is continuous, or
// if the steps disagree in sampling period or dimensions. The slice is
// copied; the steps themselves are immutable and shared.
func NewLTVSystem(steps []*LinearSystem) (*LTVSystem, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: empty horizon", ErrDimensionMismatch)
	}
	first := steps[0]
	sys := &LTVSystem{
		steps: make([]*LinearSystem, len(steps)),
		ts:    first.SamplingPeriod(),
		nx:    first.StateSpaceOrder(),
		nu:    first.InputSpaceOrder(),
	}
	for k, step := range steps {
		if err := sys.check(k, step); err != nil {
			return nil, err
		}
		sys.steps[k] = step
	}
	return sys, nil
}

// Horizon returns the number of time steps h.
func (sys *LTVSystem) Horizon() int { return len(sys.steps) }

// StateSpaceOrder returns the state dimension shared by every step.
func (sys *LTVSystem) StateSpaceOrder() int { return sys.nx }

// InputSpaceOrder returns the input dimension shared by every step.
func (sys *LTVSystem) InputSpaceOrder() int { return sys.nu }

// SamplingPeriod returns the sampling period shared by every step.
func (sys *LTVSystem) SamplingPeriod() float64 { return sys.ts }

// At returns the dynamics of step k. Panics if k is outside [0, Horizon()).
func (sys *LTVSystem) At(k int) *LinearSystem {
	if k < 0 || k >= len(sys.steps) {
		panic(errStepOutOfRange)
	}
	return sys.steps[k]
}

// SetAt overwrites the dynamics of step k, typically after the outer solver
// has re-linearized around a new trajectory. The replacement must agree
// with the horizon's sampling period and dimensions. Panics if k is outside
// [0, Horizon()).
func (sys *LTVSystem) SetAt(k int, step *LinearSystem) error {
	if k < 0 || k >= len(sys.steps) {
		panic(errStepOutOfRange)
	}
	if err := sys.check(k, step); err != nil {
		return err
	}
	sys.steps[k] = step
	return nil
}

// NextState propagates state x one step forward under the dynamics of
// step k.
func (sys *LTVSystem) NextState(k int, x, u mat.Vector) mat.Vector {
	return sys.At(k).NextState(x, u)
}

func (sys *LTVSystem) check(k int, step *LinearSystem) error {
	if !step.Sampled() {
		return fmt.Errorf("%w: step %d", ErrNotSampled, k)
	}
	if step.SamplingPeriod() != sys.ts ||
		step.StateSpaceOrder() != sys.nx ||
		step.InputSpaceOrder() != sys.nu {
		return fmt.Errorf("%w: step %d", ErrDimensionMismatch, k)
	}
	return nil
}
