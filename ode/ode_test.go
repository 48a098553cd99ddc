package ode

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/dynsys"
)

// oscillator returns the undamped harmonic oscillator x'' = -x, whose
// unforced solution from [1, 0] is [cos t, -sin t].
func oscillator(t *testing.T) *dynsys.LinearSystem {
	t.Helper()
	A := mat.NewDense(2, 2, []float64{0, 1, -1, 0})
	B := mat.NewDense(2, 1, []float64{0, 0})
	sys, err := dynsys.NewContinuousSystem(A, B)
	if err != nil {
		t.Fatal(err)
	}
	return sys
}

func TestTableauStages(t *testing.T) {
	if got := NewRK4().Stages(); got != 4 {
		t.Errorf("RK4 should have four stages, has %v", got)
	}
	if got := NewEulerMethod().Stages(); got != 1 {
		t.Errorf("Euler should have one stage, has %v", got)
	}
	if got := NewFehlberg45().Stages(); got != 6 {
		t.Errorf("Fehlberg45 should have six stages, has %v", got)
	}
}

func TestRK4Accuracy(t *testing.T) {
	sys := oscillator(t)
	rk := NewRK4()
	u := mat.NewVecDense(1, nil)

	x := mat.Vector(mat.NewVecDense(2, []float64{1, 0}))
	const dt = 0.01
	const steps = 100
	for i := 0; i < steps; i++ {
		x = rk.Step(sys, float64(i)*dt, float64(i+1)*dt, x, u)
	}

	wantPos := math.Cos(steps * dt)
	wantVel := -math.Sin(steps * dt)
	if math.Abs(x.AtVec(0)-wantPos) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", x.AtVec(0), wantPos)
	}
	if math.Abs(x.AtVec(1)-wantVel) > 1e-6 {
		t.Errorf("velocity error too large: got %.8f, expected %.8f", x.AtVec(1), wantVel)
	}
}

func TestIntegrateSubsteps(t *testing.T) {
	sys := oscillator(t)
	rk := NewRK4()
	u := mat.NewVecDense(1, nil)
	x0 := mat.NewVecDense(2, []float64{1, 0})

	x := rk.Integrate(sys, 0, 1, x0, u, 100)
	if math.Abs(x.AtVec(0)-math.Cos(1)) > 1e-6 {
		t.Errorf("got %.8f, expected %.8f", x.AtVec(0), math.Cos(1))
	}
}

func TestAdaptiveIntegrate(t *testing.T) {
	sys := oscillator(t)
	rk := NewFehlberg45()
	u := mat.NewVecDense(1, nil)
	x0 := mat.NewVecDense(2, []float64{1, 0})

	x, err := rk.AdaptiveIntegrate(sys, 0, 2, 1e-9, x0, u)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x.AtVec(0)-math.Cos(2)) > 1e-5 {
		t.Errorf("got %.8f, expected %.8f", x.AtVec(0), math.Cos(2))
	}
}

func TestAdaptiveRequiresEmbeddedEstimate(t *testing.T) {
	sys := oscillator(t)
	u := mat.NewVecDense(1, nil)
	if _, err := NewRK4().AdaptiveIntegrate(sys, 0, 1, 1e-6, mat.NewVecDense(2, nil), u); err == nil {
		t.Error("RK4 has no embedded error estimate, expected an error")
	}
}

// One integrated step under held input must match the zero-order-hold
// discretization within the integrator's accuracy.
func TestStepMatchesDiscretization(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{0, 1, 0, 0})
	B := mat.NewDense(2, 1, []float64{0, 1})
	sys, err := dynsys.NewContinuousSystem(A, B)
	if err != nil {
		t.Fatal(err)
	}
	const ts = 0.1
	sampled := dynsys.DiscretizeAugmented(sys, ts)

	x := mat.NewVecDense(2, []float64{1, -0.5})
	u := mat.NewVecDense(1, []float64{2})

	want := sampled.NextState(x, u)
	got := NewRK4().Step(sys, 0, ts, x, u)
	for i := 0; i < 2; i++ {
		if math.Abs(got.AtVec(i)-want.AtVec(i)) > 1e-9 {
			t.Errorf("component %d: integrated %.10f, discretized %.10f", i, got.AtVec(i), want.AtVec(i))
		}
	}
}

func TestStepRejectsSampledSystem(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	B := mat.NewDense(2, 1, []float64{0, 1})
	sampled, err := dynsys.NewLinearSystem(A, B, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("integrating a sampled system must panic")
		}
	}()
	NewRK4().Step(sampled, 0, 0.1, mat.NewVecDense(2, nil), mat.NewVecDense(1, nil))
}
