package lqr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/dynsys"
	"github.com/ltvtools/dyngame/gonumext"
	"github.com/ltvtools/dyngame/simulate"
)

func doubleIntegratorLTV(t *testing.T, h int) *dynsys.LTVSystem {
	t.Helper()
	A := mat.NewDense(2, 2, []float64{0, 1, 0, 0})
	B := mat.NewDense(2, 1, []float64{0, 1})
	cont, err := dynsys.NewContinuousSystem(A, B)
	require.NoError(t, err)
	step := dynsys.DiscretizeAugmented(cont, 0.1)
	steps := make([]*dynsys.LinearSystem, h)
	for k := range steps {
		steps[k] = step
	}
	sys, err := dynsys.NewLTVSystem(steps)
	require.NoError(t, err)
	return sys
}

func TestSolveGainShapes(t *testing.T) {
	sys := doubleIntegratorLTV(t, 20)
	fh, err := Solve(sys,
		gonumext.Diag([]float64{1, 1}),
		gonumext.Diag([]float64{0.1}),
		gonumext.Diag([]float64{10, 10}))
	require.NoError(t, err)

	assert.Equal(t, 20, fh.Horizon())
	r, c := fh.Gain(0).Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
}

func TestSolveDimensionChecks(t *testing.T) {
	sys := doubleIntegratorLTV(t, 5)
	Q := gonumext.Diag([]float64{1, 1})
	R := gonumext.Diag([]float64{1})

	_, err := Solve(sys, gonumext.Diag([]float64{1}), R, Q)
	assert.ErrorIs(t, err, dynsys.ErrDimensionMismatch)

	_, err = Solve(sys, Q, gonumext.Diag([]float64{1, 1}), Q)
	assert.ErrorIs(t, err, dynsys.ErrDimensionMismatch)

	_, err = Solve(sys, Q, R, gonumext.Diag([]float64{1, 1, 1}))
	assert.ErrorIs(t, err, dynsys.ErrDimensionMismatch)
}

func TestRegulatorDrivesStateToOrigin(t *testing.T) {
	const h = 80
	sys := doubleIntegratorLTV(t, h)
	fh, err := Solve(sys,
		gonumext.Diag([]float64{1, 1}),
		gonumext.Diag([]float64{0.1}),
		gonumext.Diag([]float64{10, 10}))
	require.NoError(t, err)

	tr, err := simulate.Rollout(sys, mat.NewVecDense(2, []float64{1, 0}), NewRegulator(fh, nil))
	require.NoError(t, err)

	first := math.Hypot(tr.States[0].AtVec(0), tr.States[0].AtVec(1))
	last := math.Hypot(tr.States[h].AtVec(0), tr.States[h].AtVec(1))
	assert.Less(t, last, 0.05*first, "regulated state must contract toward the origin")
}

func TestRegulatorTracksTarget(t *testing.T) {
	const h = 80
	sys := doubleIntegratorLTV(t, h)
	fh, err := Solve(sys,
		gonumext.Diag([]float64{1, 1}),
		gonumext.Diag([]float64{0.1}),
		gonumext.Diag([]float64{10, 10}))
	require.NoError(t, err)

	target := mat.NewVecDense(2, []float64{2, 0})
	tr, err := simulate.Rollout(sys, mat.NewVecDense(2, []float64{0, 0}), NewRegulator(fh, target))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, tr.States[h].AtVec(0), 0.1, "state must settle near the target position")
}

func TestRegulatorHoldsLastGainPastHorizon(t *testing.T) {
	sys := doubleIntegratorLTV(t, 3)
	fh, err := Solve(sys,
		gonumext.Diag([]float64{1, 1}),
		gonumext.Diag([]float64{1}),
		gonumext.Diag([]float64{1, 1}))
	require.NoError(t, err)

	reg := NewRegulator(fh, nil)
	x := mat.NewVecDense(2, []float64{1, 1})
	inside := reg.Control(2, x)
	past := reg.Control(10, x)
	assert.InDelta(t, inside.AtVec(0), past.AtVec(0), 1e-15)
}

func TestGainReturnsCopy(t *testing.T) {
	sys := doubleIntegratorLTV(t, 2)
	fh, err := Solve(sys,
		gonumext.Diag([]float64{1, 1}),
		gonumext.Diag([]float64{1}),
		gonumext.Diag([]float64{1, 1}))
	require.NoError(t, err)

	fh.Gain(0).Set(0, 0, 999)
	assert.NotEqual(t, 999.0, fh.Gain(0).At(0, 0))
}
