package dynsys

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Unicycle is a continuous planar unicycle model with state
// [px, py, heading, speed] and input [turn rate, acceleration]:
//
// px' = v cos(theta)
// py' = v sin(theta)
// theta' = omega
// v' = a
//
// It is the canonical nonlinear model an outer solver re-linearizes at
// every trajectory step before discretizing and assembling an LTVSystem.
type Unicycle struct{}

// State component indices of the Unicycle.
const (
	UnicyclePX = iota
	UnicyclePY
	UnicycleTheta
	UnicycleV
)

func (Unicycle) StateSpaceOrder() int    { return 4 }
func (Unicycle) InputSpaceOrder() int    { return 2 }
func (Unicycle) SamplingPeriod() float64 { return 0 }
func (Unicycle) Sampled() bool           { return false }

// Derivative returns the unicycle vector field at (x, u).
func (c Unicycle) Derivative(t float64, x, u mat.Vector) mat.Vector {
	if x.Len() != c.StateSpaceOrder() || u.Len() != c.InputSpaceOrder() {
		panic(ErrDimensionMismatch)
	}
	theta := x.AtVec(UnicycleTheta)
	v := x.AtVec(UnicycleV)
	return mat.NewVecDense(4, []float64{
		v * math.Cos(theta),
		v * math.Sin(theta),
		u.AtVec(0),
		u.AtVec(1),
	})
}

// NextState panics: the unicycle is a continuous model and must be
// discretized first.
func (Unicycle) NextState(x, u mat.Vector) mat.Vector {
	panic(errSampledOnly)
}

// Linearize returns the continuous Jacobian linearization about (t, x, u).
func (c Unicycle) Linearize(t float64, x, u mat.Vector) *LinearSystem {
	if x.Len() != c.StateSpaceOrder() || u.Len() != c.InputSpaceOrder() {
		panic(ErrDimensionMismatch)
	}
	theta := x.AtVec(UnicycleTheta)
	v := x.AtVec(UnicycleV)
	A := mat.NewDense(4, 4, []float64{
		0, 0, -v * math.Sin(theta), math.Cos(theta),
		0, 0, v * math.Cos(theta), math.Sin(theta),
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
	B := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 0,
		1, 0,
		0, 1,
	})
	return &LinearSystem{a: A, b: B, ts: 0}
}
