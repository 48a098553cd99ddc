package gonumext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDiag(t *testing.T) {
	d := Diag([]float64{1, 2, 3})
	r, c := d.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2.0, d.At(1, 1))
	assert.Equal(t, 0.0, d.At(0, 1))
}

func TestNaNOrInf(t *testing.T) {
	clean := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.False(t, NaNOrInf(clean))

	assert.True(t, NaNOrInf(mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})))
	assert.True(t, NaNOrInf(mat.NewDense(2, 2, []float64{1, 2, math.Inf(-1), 4})))
	assert.True(t, NaNOrInf(mat.NewVecDense(2, []float64{0, math.Inf(1)})))
}
