// Package dynsys models linear and linear-time-varying dynamical systems
// together with their continuous-to-discrete conversion. It is the local
// model layer of an iterative trajectory optimizer: the outer loop
// linearizes its dynamics around the current trajectory, discretizes each
// step and assembles the result into an LTVSystem which it then propagates
// forward.
package dynsys

import (
	"gonum.org/v1/gonum/mat"
)

// ControlSystem is the capability contract every dynamics model satisfies,
// whether linear or not:
//
// 1) The Derivative function which returns the differential state evaluated
// at time t, state x and input u. Only valid for continuous systems.
//
// 2) The NextState function which maps the current state and input to the
// state one sampling period later. Only valid for sampled systems.
//
// 3) Linearize, returning a LinearSystem approximation valid around
// (t, x, u).
type ControlSystem interface {
	// Derivative of the state at time t. Panics on a sampled system.
	Derivative(t float64, x, u mat.Vector) mat.Vector
	// NextState one sampling period ahead. Panics on a continuous system.
	NextState(x, u mat.Vector) mat.Vector
	// Linearize about (t, x, u).
	Linearize(t float64, x, u mat.Vector) *LinearSystem
	// Returns the state space order
	StateSpaceOrder() int
	// Returns the input space order
	InputSpaceOrder() int
	// Sampling period of the system, 0 for continuous time.
	SamplingPeriod() float64
	// Sampled reports whether the system evolves in discrete time.
	Sampled() bool
}
