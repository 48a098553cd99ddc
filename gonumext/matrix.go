// Package gonumext collects the handful of small matrix helpers gonum does
// not ship itself.
package gonumext

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Diag returns a square matrix with values on the diagonal.
func Diag(values []float64) *mat.Dense {
	n := len(values)
	d := mat.NewDense(n, n, nil)
	for i, v := range values {
		d.Set(i, i, v)
	}
	return d
}

// NaNOrInf checks if there are any NaN or Inf entries in m.
func NaNOrInf(m mat.Matrix) bool {
	r, c := m.Dims()
	for row := 0; row < r; row++ {
		for col := 0; col < c; col++ {
			v := m.At(row, col)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
