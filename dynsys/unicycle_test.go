package dynsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func TestUnicycleDerivative(t *testing.T) {
	var sys Unicycle
	x := mat.NewVecDense(4, []float64{0, 0, 0, 2})
	u := mat.NewVecDense(2, []float64{0.5, -1})

	dx := sys.Derivative(0, x, u)
	assert.InDelta(t, 2.0, dx.AtVec(UnicyclePX), 1e-15, "heading 0 drives px at speed v")
	assert.InDelta(t, 0.0, dx.AtVec(UnicyclePY), 1e-15)
	assert.InDelta(t, 0.5, dx.AtVec(UnicycleTheta), 1e-15)
	assert.InDelta(t, -1.0, dx.AtVec(UnicycleV), 1e-15)
}

func TestUnicycleNextStatePanics(t *testing.T) {
	var sys Unicycle
	assert.PanicsWithError(t, "dynsys: NextState requires a sampled system", func() {
		sys.NextState(mat.NewVecDense(4, nil), mat.NewVecDense(2, nil))
	})
}

func TestUnicycleLinearizeMatchesFiniteDifferences(t *testing.T) {
	var sys Unicycle
	x := []float64{0.3, -1.2, 0.7, 1.5}
	u := []float64{0.2, 0.4}

	lin := sys.Linearize(0, mat.NewVecDense(4, x), mat.NewVecDense(2, u))
	A := lin.SystemMatrix()
	B := lin.ControlMatrix()
	assert.Equal(t, 0.0, lin.SamplingPeriod(), "linearization stays continuous")

	gotA := mat.NewDense(4, 4, nil)
	fd.Jacobian(gotA, func(y, xs []float64) {
		dx := sys.Derivative(0, mat.NewVecDense(4, xs), mat.NewVecDense(2, u))
		for i := range y {
			y[i] = dx.AtVec(i)
		}
	}, x, nil)

	gotB := mat.NewDense(4, 2, nil)
	fd.Jacobian(gotB, func(y, us []float64) {
		dx := sys.Derivative(0, mat.NewVecDense(4, x), mat.NewVecDense(2, us))
		for i := range y {
			y[i] = dx.AtVec(i)
		}
	}, u, nil)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, gotA.At(i, j), A.At(i, j), 1e-6, "A[%d,%d]", i, j)
		}
		for j := 0; j < 2; j++ {
			assert.InDelta(t, gotB.At(i, j), B.At(i, j), 1e-6, "B[%d,%d]", i, j)
		}
	}
}

func TestUnicycleRelinearizeDiscretizeAssemble(t *testing.T) {
	// The flow an outer solver runs every iteration: linearize the
	// nonlinear model along a trajectory, discretize every step, assemble
	// the LTV horizon.
	var sys Unicycle
	const h = 5
	const ts = 0.1

	u := mat.NewVecDense(2, []float64{0.1, 0})
	x := mat.NewVecDense(4, []float64{0, 0, 0, 1})

	steps := make([]*LinearSystem, h)
	for k := 0; k < h; k++ {
		lin := sys.Linearize(float64(k)*ts, x, u)
		steps[k] = DiscretizeAugmented(lin, ts)

		dx := sys.Derivative(float64(k)*ts, x, u)
		x.AddScaledVec(x, ts, dx)
	}

	ltv, err := NewLTVSystem(steps)
	assert.NoError(t, err)
	assert.Equal(t, h, ltv.Horizon())
	assert.Equal(t, 4, ltv.StateSpaceOrder())
	assert.Equal(t, 2, ltv.InputSpaceOrder())
}

func TestUnicycleIsControlSystem(t *testing.T) {
	var _ ControlSystem = Unicycle{}
}
