// Package ode implements explicit Runge-Kutta methods,
// https://en.wikipedia.org/wiki/Runge–Kutta_methods, over the continuous
// dynamics of a dynsys.ControlSystem. The control input is held constant
// across each integration interval, matching the zero-order-hold assumption
// the discretization methods make.
package ode

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/dynsys"
)

// ErrNoConvergence is returned when adaptive stepping cannot reach the
// requested tolerance within its iteration budget.
var ErrNoConvergence = errors.New("ode: adaptive Runge-Kutta does not converge")

// RungeKutta holds the butcherTableau which describes the Runge-Kutta
// method.
type RungeKutta struct {
	description butcherTableau
}

// butcherTableau describes the approximate solution, see
// https://en.wikipedia.org/wiki/Runge–Kutta_methods.
type butcherTableau struct {
	stages           int
	weights          [][]float64
	nodes            []float64
	rungeKuttaMatrix [][]float64
}

// Stages returns the number of stages of the method.
func (rk *RungeKutta) Stages() int { return rk.description.stages }

// Step advances the state of a continuous system from time `from` to `to`
// in a single Runge-Kutta step with input u held constant. Panics when the
// system is sampled.
func (rk *RungeKutta) Step(sys dynsys.ControlSystem, from, to float64, x, u mat.Vector) mat.Vector {
	next, _ := rk.step(sys, from, to, x, u)
	return next
}

// step returns the next state together with the embedded error estimate,
// nil when the tableau carries a single weight row.
func (rk *RungeKutta) step(sys dynsys.ControlSystem, from, to float64, x, u mat.Vector) (mat.Vector, mat.Vector) {
	if sys.Sampled() {
		panic(errors.New("ode: cannot integrate a sampled system"))
	}
	h := to - from
	nx := x.Len()

	// The precomputed derivative points
	K := make([]mat.Vector, rk.description.stages)
	for index := range K {
		var tmp mat.VecDense
		tmp.CloneFromVec(x)
		// Combine previously computed derivative points according to the
		// Butcher tableau.
		for index2, a := range rk.description.rungeKuttaMatrix[index] {
			tmp.AddScaledVec(&tmp, h*a, K[index2])
		}
		K[index] = sys.Derivative(from+h*rk.description.nodes[index], &tmp, u)
	}

	var next mat.VecDense
	next.CloneFromVec(x)
	errEst := mat.NewVecDense(nx, nil)
	for index, k := range K {
		next.AddScaledVec(&next, h*rk.description.weights[0][index], k)
		// Tableaux with two weight rows allow an embedded error estimate.
		if len(rk.description.weights) == 2 {
			errEst.AddScaledVec(errEst, h*(rk.description.weights[1][index]-rk.description.weights[0][index]), k)
		}
	}
	if len(rk.description.weights) < 2 {
		return &next, nil
	}
	return &next, errEst
}

// Integrate advances the state from `from` to `to` in a fixed number of
// equal substeps.
func (rk *RungeKutta) Integrate(sys dynsys.ControlSystem, from, to float64, x, u mat.Vector, substeps int) mat.Vector {
	if substeps < 1 {
		substeps = 1
	}
	h := (to - from) / float64(substeps)
	state := x
	for i := 0; i < substeps; i++ {
		t := from + float64(i)*h
		state = rk.Step(sys, t, t+h, state, u)
	}
	return state
}

// AdaptiveIntegrate advances the state from `from` to `to` keeping the
// local error estimate below tol, halving the step whenever the embedded
// estimate exceeds it. Requires a tableau with an embedded error row such
// as Fehlberg 4(5).
func (rk *RungeKutta) AdaptiveIntegrate(sys dynsys.ControlSystem, from, to, tol float64, x, u mat.Vector) (mat.Vector, error) {
	const maxNumberOfIterations = 10000

	if len(rk.description.weights) < 2 {
		return nil, errors.New("ode: tableau has no embedded error estimate")
	}

	var state mat.VecDense
	state.CloneFromVec(x)

	tnow := from
	count := 0
	for tnow < to {
		tnext := to
		for {
			next, errEst := rk.step(sys, tnow, tnext, &state, u)
			currentError := 0.
			for index := 0; index < errEst.Len(); index++ {
				currentError += math.Abs(errEst.AtVec(index))
			}
			if currentError < tol {
				state.CloneFromVec(next)
				break
			}
			// Halve the integration interval and try again.
			tnext = (tnext-tnow)/2. + tnow

			count++
			if count >= maxNumberOfIterations {
				return nil, ErrNoConvergence
			}
		}
		tnow = tnext
	}
	return &state, nil
}

// NewRK4 returns a fourth order Runge-Kutta method.
func NewRK4() *RungeKutta {
	var temp butcherTableau
	temp.stages = 4
	temp.nodes = []float64{0, 1. / 2., 1. / 2., 1}
	temp.weights = [][]float64{{1. / 6., 1. / 3., 1. / 3., 1. / 6.}}
	temp.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 2.},
		{0, 1. / 2.},
		{0, 0, 1.},
	}
	return &RungeKutta{temp}
}

// NewEulerMethod returns a Runge-Kutta method that does the explicit Euler
// method.
func NewEulerMethod() *RungeKutta {
	var temp butcherTableau
	temp.stages = 1
	temp.nodes = []float64{0}
	temp.weights = [][]float64{{1}}
	temp.rungeKuttaMatrix = [][]float64{nil}
	return &RungeKutta{temp}
}

// NewFehlberg45 implements
// https://en.wikipedia.org/wiki/Runge%E2%80%93Kutta%E2%80%93Fehlberg_method
func NewFehlberg45() *RungeKutta {
	var temp butcherTableau
	temp.stages = 6
	temp.nodes = []float64{0, 1. / 4., 3. / 8., 12. / 13., 1., 1. / 2.}
	temp.weights = [][]float64{
		{16. / 135., 0, 6656. / 12825., 28561. / 56430., -9. / 50., 2. / 55.},
		{25. / 216., 0, 1408. / 2565., 2197. / 4104., -1. / 5., 0},
	}
	temp.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 4.},
		{3. / 32., 9. / 32.},
		{1932. / 2197., -7200. / 2197., 7296. / 2197.},
		{439. / 216., -8., 3680. / 513., -845. / 4104.},
		{-8. / 27., 2, -3544. / 2565., 1859. / 4104., -11. / 40.},
	}
	return &RungeKutta{temp}
}
