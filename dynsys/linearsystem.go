package dynsys

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LinearSystem represents the model
//
// x'(t) = A x(t) + B u(t)
//
// when continuous (sampling period 0), or
//
// x[k+1] = A x[k] + B u[k]
//
// when sampled. A is nx by nx, B is nx by nu. The matrices and the sampling
// period are fixed at construction; a LinearSystem never changes after it
// has been built.
type LinearSystem struct {
	a  *mat.Dense
	b  *mat.Dense
	ts float64
}

// NewLinearSystem creates a linear system with sampling period ts, 0 meaning
// continuous time. The matrices are copied, not retained.
func NewLinearSystem(A, B mat.Matrix, ts float64) (*LinearSystem, error) {
	m, n := A.Dims()
	mB, _ := B.Dims()
	if m == 0 || m != n || mB != m {
		return nil, ErrDimensionMismatch
	}
	if ts < 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return nil, errSamplingPeriod
	}
	return &LinearSystem{a: mat.DenseCopyOf(A), b: mat.DenseCopyOf(B), ts: ts}, nil
}

// NewContinuousSystem creates a continuous-time linear system.
func NewContinuousSystem(A, B mat.Matrix) (*LinearSystem, error) {
	return NewLinearSystem(A, B, 0)
}

// StateSpaceOrder returns the state dimension nx.
func (sys *LinearSystem) StateSpaceOrder() int {
	m, _ := sys.a.Dims()
	return m
}

// InputSpaceOrder returns the input dimension nu.
func (sys *LinearSystem) InputSpaceOrder() int {
	_, n := sys.b.Dims()
	return n
}

// SamplingPeriod returns the sampling period, 0 for continuous time.
func (sys *LinearSystem) SamplingPeriod() float64 { return sys.ts }

// Sampled reports whether the system evolves in discrete time.
func (sys *LinearSystem) Sampled() bool { return sys.ts > 0 }

// SystemMatrix returns a copy of the state transition matrix A.
func (sys *LinearSystem) SystemMatrix() *mat.Dense { return mat.DenseCopyOf(sys.a) }

// ControlMatrix returns a copy of the input matrix B.
func (sys *LinearSystem) ControlMatrix() *mat.Dense { return mat.DenseCopyOf(sys.b) }

// Derivative returns the state derivative A x + B u at time t. The time
// argument exists for interface uniformity; the dynamics of a single
// LinearSystem do not depend on it. Panics when called on a sampled system.
func (sys *LinearSystem) Derivative(t float64, x, u mat.Vector) mat.Vector {
	if sys.Sampled() {
		panic(errContinuousOnly)
	}
	return sys.affine(x, u)
}

// NextState returns the state one sampling period ahead, A x + B u. Panics
// when called on a continuous system.
func (sys *LinearSystem) NextState(x, u mat.Vector) mat.Vector {
	if !sys.Sampled() {
		panic(errSampledOnly)
	}
	return sys.affine(x, u)
}

// Linearize returns the system itself: a linear system linearized about any
// point is unchanged.
func (sys *LinearSystem) Linearize(t float64, x, u mat.Vector) *LinearSystem {
	return sys
}

func (sys *LinearSystem) affine(x, u mat.Vector) mat.Vector {
	if x.Len() != sys.StateSpaceOrder() || u.Len() != sys.InputSpaceOrder() {
		panic(ErrDimensionMismatch)
	}
	var ax, bu mat.VecDense
	ax.MulVec(sys.a, x)
	bu.MulVec(sys.b, u)
	ax.AddVec(&ax, &bu)
	return &ax
}
