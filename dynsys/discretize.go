package dynsys

import (
	"fmt"
	"math"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/gonumext"
)

// Method selects the continuous-to-discrete conversion algorithm.
type Method int

const (
	// Euler is the first order approximation Phi = I + Ts*A, Gamma = Ts*B.
	// Cheap because it needs no matrix exponential, with discretization
	// error proportional to Ts. It is the zero value: re-linearizing
	// solver loops discretize every step of every iteration, and there
	// the cost of two matrix exponentials per step dominates the solve.
	// Callers that need exactness must say so.
	Euler Method = iota
	// Exact computes Phi = exp(A*Ts), Gamma = inv(A)*(Phi - I)*B. Exact
	// under zero-order hold, undefined for singular A.
	Exact
	// Augmented computes the exponential of the block matrix
	// [[A, B], [0, 0]] scaled by Ts and reads Phi and Gamma out of it.
	// Exact under zero-order hold and well defined for singular A, at the
	// price of exponentiating an (nx+nu) square matrix.
	Augmented
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	case Exact:
		return "exact"
	case Augmented:
		return "augmented"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Discretize converts a continuous system into a sampled one with sampling
// period ts using the given method. Panics if sys is already sampled or if
// ts is not positive and finite; a singular dynamics matrix under the Exact
// method is reported as ErrSingularDynamics.
func Discretize(sys *LinearSystem, ts float64, method Method) (*LinearSystem, error) {
	checkDiscretizable(sys, ts)
	switch method {
	case Exact:
		return DiscretizeExact(sys, ts)
	case Augmented:
		return DiscretizeAugmented(sys, ts), nil
	default:
		return DiscretizeEuler(sys, ts), nil
	}
}

// DiscretizeEuler is the first order conversion
//
// Phi = I + Ts*A, Gamma = Ts*B
func DiscretizeEuler(sys *LinearSystem, ts float64) *LinearSystem {
	checkDiscretizable(sys, ts)
	nx := sys.StateSpaceOrder()
	eye, _ := matrix.NewDenseValIdentity(nx, 1.0) // nx >= 1 by construction

	phi := sys.SystemMatrix()
	phi.Scale(ts, phi)
	phi.Add(phi, eye)

	gamma := sys.ControlMatrix()
	gamma.Scale(ts, gamma)

	return &LinearSystem{a: phi, b: gamma, ts: ts}
}

// DiscretizeExact is the zero-order-hold conversion
//
// Phi = exp(A*Ts), Gamma = inv(A)*(Phi - I)*B
//
// Returns ErrSingularDynamics when A is not invertible rather than a
// silently wrong Gamma.
func DiscretizeExact(sys *LinearSystem, ts float64) (*LinearSystem, error) {
	checkDiscretizable(sys, ts)
	nx := sys.StateSpaceOrder()

	var ainv mat.Dense
	if err := ainv.Inverse(sys.a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularDynamics, err)
	}

	phi := sys.SystemMatrix()
	phi.Scale(ts, phi)
	phi.Exp(phi)

	eye, _ := matrix.NewDenseValIdentity(nx, 1.0) // nx >= 1 by construction
	var tmp, gamma mat.Dense
	tmp.Sub(phi, eye)
	tmp.Mul(&ainv, &tmp)
	gamma.Mul(&tmp, sys.b)

	// An ill-conditioned inverse can pass gonum's rcond check and still
	// poison Gamma.
	if gonumext.NaNOrInf(phi) || gonumext.NaNOrInf(&gamma) {
		return nil, ErrSingularDynamics
	}
	return &LinearSystem{a: phi, b: &gamma, ts: ts}, nil
}

// DiscretizeAugmented is the zero-order-hold conversion through the
// exponential of the augmented matrix
//
// E = exp([[A, B], [0, 0]] * Ts), Phi = E[0:nx, 0:nx], Gamma = E[0:nx, nx:nx+nu]
//
// Well defined for singular A.
func DiscretizeAugmented(sys *LinearSystem, ts float64) *LinearSystem {
	checkDiscretizable(sys, ts)
	nx := sys.StateSpaceOrder()
	nu := sys.InputSpaceOrder()

	var top, blk mat.Dense
	top.Augment(sys.a, sys.b)
	blk.Stack(&top, mat.NewDense(nu, nx+nu, nil))
	blk.Scale(ts, &blk)
	blk.Exp(&blk)

	phi := mat.DenseCopyOf(blk.Slice(0, nx, 0, nx))
	gamma := mat.DenseCopyOf(blk.Slice(0, nx, nx, nx+nu))
	return &LinearSystem{a: phi, b: gamma, ts: ts}
}

func checkDiscretizable(sys *LinearSystem, ts float64) {
	if sys.Sampled() {
		panic(errAlreadySampled)
	}
	if ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		panic(errSamplingPeriod)
	}
}
