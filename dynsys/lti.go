package dynsys

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LTISystem wraps one sampled LinearSystem together with the indices that
// give the state vector physical meaning: xyIDs names the two state
// components holding the planar position, xIDs optionally names a general
// state subset. Downstream consumers use these to pull coordinates out of
// an opaque state vector without knowing its full layout.
type LTISystem struct {
	sys   *LinearSystem
	xyIDs [2]int
	xIDs  []int
}

// NewLTISystem wraps a sampled LinearSystem. xyIDs must index valid state
// components; xIDs may be nil when no named subset exists.
func NewLTISystem(sys *LinearSystem, xyIDs [2]int, xIDs []int) (*LTISystem, error) {
	if !sys.Sampled() {
		return nil, ErrNotSampled
	}
	nx := sys.StateSpaceOrder()
	for _, id := range xyIDs {
		if id < 0 || id >= nx {
			return nil, fmt.Errorf("%w: position index %d outside state of order %d", ErrDimensionMismatch, id, nx)
		}
	}
	for _, id := range xIDs {
		if id < 0 || id >= nx {
			return nil, fmt.Errorf("%w: state index %d outside state of order %d", ErrDimensionMismatch, id, nx)
		}
	}
	lti := &LTISystem{sys: sys, xyIDs: xyIDs}
	if xIDs != nil {
		lti.xIDs = append([]int(nil), xIDs...)
	}
	return lti, nil
}

// XYIndex returns the indices of the planar position inside the state.
func (sys *LTISystem) XYIndex() [2]int { return sys.xyIDs }

// XIndex returns the named state subset, nil when none was provided.
func (sys *LTISystem) XIndex() []int {
	if sys.xIDs == nil {
		return nil
	}
	return append([]int(nil), sys.xIDs...)
}

// At returns the wrapped dynamics for any step k: a time-invariant system
// looks the same at every step of a horizon.
func (sys *LTISystem) At(k int) *LinearSystem { return sys.sys }

// NextState propagates the state one sampling period forward.
func (sys *LTISystem) NextState(x, u mat.Vector) mat.Vector {
	return sys.sys.NextState(x, u)
}

// Position extracts the planar position from a state vector.
func (sys *LTISystem) Position(x mat.Vector) (px, py float64) {
	return x.AtVec(sys.xyIDs[0]), x.AtVec(sys.xyIDs[1])
}

// StateSpaceOrder returns the state dimension of the wrapped system.
func (sys *LTISystem) StateSpaceOrder() int { return sys.sys.StateSpaceOrder() }

// InputSpaceOrder returns the input dimension of the wrapped system.
func (sys *LTISystem) InputSpaceOrder() int { return sys.sys.InputSpaceOrder() }

// SamplingPeriod returns the sampling period of the wrapped system.
func (sys *LTISystem) SamplingPeriod() float64 { return sys.sys.SamplingPeriod() }
