// Package lqr solves the finite-horizon, time-varying linear-quadratic
// regulator over an LTVSystem: the backward Riccati recursion an iterative
// trajectory optimizer runs against its per-step linearizations every
// iteration.
package lqr

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/dynsys"
)

// ErrIllConditioned indicates a stage where R + B'PB could not be solved,
// typically because the control cost is not positive definite.
var ErrIllConditioned = errors.New("lqr: stage cost is ill-conditioned")

// FiniteHorizon holds the per-step feedback gains of a solved regulator.
type FiniteHorizon struct {
	gains []*mat.Dense
}

// Solve runs the backward Riccati recursion over the horizon of sys with
// state cost Q, control cost R and terminal cost Qf:
//
// P[h] = Qf
// K[k] = (R + B' P[k+1] B)^-1 B' P[k+1] A
// P[k] = Q + A' P[k+1] (A - B K[k])
//
// returning the gains K[0..h-1].
func Solve(sys *dynsys.LTVSystem, Q, R, Qf mat.Matrix) (*FiniteHorizon, error) {
	nx := sys.StateSpaceOrder()
	nu := sys.InputSpaceOrder()
	if err := checkDims(Q, nx, "Q"); err != nil {
		return nil, err
	}
	if err := checkDims(R, nu, "R"); err != nil {
		return nil, err
	}
	if err := checkDims(Qf, nx, "Qf"); err != nil {
		return nil, err
	}

	h := sys.Horizon()
	gains := make([]*mat.Dense, h)
	P := mat.DenseCopyOf(Qf)

	for k := h - 1; k >= 0; k-- {
		step := sys.At(k)
		A := step.SystemMatrix()
		B := step.ControlMatrix()

		var btp, btpb, btpa mat.Dense
		btp.Mul(B.T(), P)
		btpb.Mul(&btp, B)
		btpb.Add(&btpb, R)
		btpa.Mul(&btp, A)

		K := mat.NewDense(nu, nx, nil)
		if err := K.Solve(&btpb, &btpa); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrIllConditioned, k, err)
		}
		gains[k] = K

		// P[k] = Q + A' P (A - B K)
		var bk, acl, atp, next mat.Dense
		bk.Mul(B, K)
		acl.Sub(A, &bk)
		atp.Mul(A.T(), P)
		next.Mul(&atp, &acl)
		next.Add(&next, Q)
		P = mat.DenseCopyOf(&next)
	}
	return &FiniteHorizon{gains: gains}, nil
}

// Horizon returns the number of steps the regulator was solved over.
func (fh *FiniteHorizon) Horizon() int { return len(fh.gains) }

// Gain returns the feedback gain of step k.
func (fh *FiniteHorizon) Gain(k int) *mat.Dense {
	return mat.DenseCopyOf(fh.gains[k])
}

// Regulator applies the solved gains as a feedback policy
//
// u[k] = -K[k] (x[k] - target)
type Regulator struct {
	fh     *FiniteHorizon
	target mat.Vector
}

// NewRegulator builds a feedback policy around target; a nil target
// regulates to the origin.
func NewRegulator(fh *FiniteHorizon, target mat.Vector) *Regulator {
	return &Regulator{fh: fh, target: target}
}

// Control returns the feedback input at step k. Past the solved horizon the
// last gain is held.
func (r *Regulator) Control(k int, x mat.Vector) mat.Vector {
	if k >= len(r.fh.gains) {
		k = len(r.fh.gains) - 1
	}
	var dx mat.VecDense
	dx.CloneFromVec(x)
	if r.target != nil {
		dx.SubVec(&dx, r.target)
	}
	var u mat.VecDense
	u.MulVec(r.fh.gains[k], &dx)
	u.ScaleVec(-1, &u)
	return &u
}

func checkDims(m mat.Matrix, n int, name string) error {
	r, c := m.Dims()
	if r != n || c != n {
		return fmt.Errorf("%w: %s must be %dx%d, got %dx%d", dynsys.ErrDimensionMismatch, name, n, n, r, c)
	}
	return nil
}
