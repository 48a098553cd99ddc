package dynsys

import "errors"

// Recoverable errors reported to the caller.
var (
	// ErrDimensionMismatch indicates system matrices or vectors whose
	// dimensions do not agree.
	ErrDimensionMismatch = errors.New("dynsys: dimension mismatch between system matrices")

	// ErrNotSampled indicates a continuous system where a sampled one is
	// required, for instance inside an LTVSystem.
	ErrNotSampled = errors.New("dynsys: system is not sampled")

	// ErrSingularDynamics indicates a dynamics matrix that is singular, so
	// the inverse based discretization is undefined.
	ErrSingularDynamics = errors.New("dynsys: dynamics matrix is singular")
)

// Precondition violations are programmer errors and surface as panics,
// never as silently coerced results.
var (
	errContinuousOnly = errors.New("dynsys: Derivative requires a continuous system")
	errSampledOnly    = errors.New("dynsys: NextState requires a sampled system")
	errAlreadySampled = errors.New("dynsys: cannot discretize an already-sampled system")
	errSamplingPeriod = errors.New("dynsys: sampling period must be positive and finite")
	errStepOutOfRange = errors.New("dynsys: step index out of range")
)
