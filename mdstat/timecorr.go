//Package mdstat estimates correlation times of MD time series, used to correct
//the statistical errors of quantities averaged over correlated frames.
package mdstat

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

//fill puts the deviations of c from its mean in the first len(c) elements of pad,
//and zeroes the rest. pad is reallocated if it is not twice as long as c.
func fill(c []float64, pad []complex128) []complex128 {
	if len(pad) != 2*len(c) {
		pad = make([]complex128, 2*len(c))
	}
	mean := stat.Mean(c, nil)
	for i, v := range c {
		pad[i] = complex(v-mean, 0)
	}
	for i := len(c); i < len(pad); i++ {
		pad[i] = 0
	}
	return pad
}

//CrossCorrMem returns the normalized cross-correlation function of c1 and c2, which must have
//the same length n, for lags 0 to n-1. Each lag k is averaged over its n-k terms,
//and the function is divided by its value at lag 0, so an autocorrelation starts at 1.
//c1pad and c2pad are work space, and are only used if their length is 2n. If dst is given, it
//must have 0 length and the result is appended to it.
//It returns nil if the series are shorter than 2 points or have no variance.
func CrossCorrMem(c1, c2 []float64, c1pad, c2pad []complex128, dst ...[]float64) []float64 {
	if len(c1) != len(c2) {
		panic(fmt.Sprintf("cross-correlation: both series should have the same len %d, %d", len(c1), len(c2)))
	}
	n := len(c1)
	if n < 2 {
		return nil
	}
	var ret []float64
	if len(dst) == 0 || len(dst[0]) > 0 {
		ret = make([]float64, 0, n)
	} else {
		ret = dst[0]
	}
	c1pad = fill(c1, c1pad)
	c2pad = fill(c2, c2pad)
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad) //unnormalized, but we scale by lag 0 anyway.
	zero := real(c1pad[0]) / float64(n)
	if math.Abs(zero) < 1e-300 {
		return nil
	}
	for k, v := range c1pad[:n] {
		ret = append(ret, real(v)/float64(n-k)/zero)
	}
	return ret
}

//AutoCorr returns the normalized autocorrelation function of c. See CrossCorrMem.
func AutoCorr(c []float64) []float64 {
	return CrossCorrMem(c, c, nil, nil)
}

//Inefficiency returns the statistical inefficiency g of the time series c, such
//that len(c)/g is the number of effectively independent samples. The sum over
//the autocorrelation function stops at its first non-positive value. g is at least 1.
func Inefficiency(c []float64) float64 {
	acf := AutoCorr(c)
	if acf == nil {
		return 1
	}
	n := float64(len(c))
	g := 1.0
	for k := 1; k < len(acf); k++ {
		if acf[k] <= 0 {
			break
		}
		g += 2 * acf[k] * (1 - float64(k)/n)
	}
	return math.Max(g, 1)
}

//MeanInefficiency returns the mean of the statistical inefficiencies of several
//series, weighted by their lengths. It returns 1 if there are no series.
func MeanInefficiency(series [][]float64) float64 {
	g := make([]float64, 0, len(series))
	w := make([]float64, 0, len(series))
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		g = append(g, Inefficiency(s))
		w = append(w, float64(len(s)))
	}
	if len(g) == 0 {
		return 1
	}
	return stat.Mean(g, w)
}
