package mdstat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ar1(n int, phi float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	ret := make([]float64, n)
	for i := 1; i < n; i++ {
		ret[i] = phi*ret[i-1] + r.NormFloat64()
	}
	return ret
}

func TestAutoCorr(Te *testing.T) {
	c := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	acf := AutoCorr(c)
	require.Len(Te, acf, 8)
	assert.InDelta(Te, 1.0, acf[0], 1e-9)
	assert.InDelta(Te, -1.0, acf[1], 1e-9)
	assert.InDelta(Te, 1.0, acf[2], 1e-9)
	assert.Nil(Te, AutoCorr([]float64{3, 3, 3}))
	assert.Nil(Te, AutoCorr([]float64{3}))
}

func TestInefficiency(Te *testing.T) {
	//an alternating series is anticorrelated at lag 1, the sum stops at once.
	assert.Equal(Te, 1.0, Inefficiency([]float64{1, -1, 1, -1, 1, -1}))
	assert.Equal(Te, 1.0, Inefficiency([]float64{2, 2, 2, 2}))
	//for AR(1), g = (1+phi)/(1-phi)
	phi := 0.8
	g := Inefficiency(ar1(50000, phi, 7))
	assert.InDelta(Te, (1+phi)/(1-phi), g, 2.5)
	white := Inefficiency(ar1(50000, 0, 3))
	assert.True(Te, white < 1.2, "white noise inefficiency %g", white)
	m := MeanInefficiency([][]float64{ar1(20000, phi, 1), ar1(20000, phi, 2), nil})
	assert.True(Te, m > 5 && !math.IsInf(m, 0))
	assert.Equal(Te, 1.0, MeanInefficiency(nil))
}
