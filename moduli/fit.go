/*
 * fit.go, part of gomembrane.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/


//Package moduli fits the tilt and splay distributions of a membrane to their
//analytical models, to obtain the tilt and splay (bending) moduli.
package moduli

import (
	"fmt"
	"math"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/histo"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

//Status of a fit.
type Status int

const (
	OK Status = iota
	//Degenerate fits have all the samples in one bin. The modulus is +Inf.
	Degenerate
	Failed
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Degenerate:
		return "degenerate"
	default:
		return "failed"
	}
}

//MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

//Kinds of fits
const (
	TiltKind  = "tilt"
	SplayKind = "splay"
)

//Options for the fits.
type Options struct {
	nbins      int
	thetaMax   float64
	minSamples int
	area       float64
}

//DefaultOptions returns 100 bins, tilt angles up to pi/2, at least 20
//samples per fit and a lipid area of 60 A^2.
func DefaultOptions() *Options {
	return &Options{nbins: 100, thetaMax: math.Pi / 2, minSamples: 20, area: 60}
}

//NBins returns the number of histogram bins, and sets it if a value of at least 3
//is given.
func (o *Options) NBins(n ...int) int {
	ret := o.nbins
	if len(n) > 0 && n[0] >= 3 {
		o.nbins = n[0]
	}
	return ret
}

//ThetaMax returns the upper limit of the tilt histogram, in radians, and sets it
//if a value in (0, pi] is given.
func (o *Options) ThetaMax(t ...float64) float64 {
	ret := o.thetaMax
	if len(t) > 0 && t[0] > 0 && t[0] <= math.Pi {
		o.thetaMax = t[0]
	}
	return ret
}

//MinSamples returns the smallest number of samples for which a fit is attempted,
//and sets it if a positive value is given.
func (o *Options) MinSamples(n ...int) int {
	ret := o.minSamples
	if len(n) > 0 && n[0] > 0 {
		o.minSamples = n[0]
	}
	return ret
}

//Area returns the area per lipid at the neutral plane, in A^2, and sets it if
//a positive value is given.
func (o *Options) Area(a ...float64) float64 {
	ret := o.area
	if len(a) > 0 && a[0] > 0 {
		o.area = a[0]
	}
	return ret
}

//Fit is the result of fitting one distribution.
//For tilt, Modulus is chi in kBT/rad^2 (per lipid) and Scaled is chi/area, in kBT/(rad^2 A^2).
//For splay, Modulus is chi_S in kBT A^2 and Scaled is the bending modulus chi_S/area, in kBT.
type Fit struct {
	Label        string
	Kind         string
	Modulus      float64
	Error        float64
	Scaled       float64
	ScaledError  float64
	Center       float64 //the mean splay, S0. Always 0 for tilt.
	Residual     float64 //sum of squared residuals over the non-empty bins
	Samples      int
	Bins         int //non-empty bins
	Inefficiency float64
	Status       Status
	Message      string
	Histogram    *histo.Data
}

//Model returns the fitted probability density at x, which is in radians
//for tilt fits. It returns NaN for fits without a finite modulus.
func (F *Fit) Model(x float64) float64 {
	if F.Status != OK {
		return math.NaN()
	}
	if F.Kind == TiltKind {
		d := F.Histogram.CopyDividers()
		return tiltPDF(F.Modulus, d[0], d[len(d)-1])(x)
	}
	return gaussian(F.Modulus, F.Center, x)
}

func (F *Fit) fail(err *membrane.FitError) (*Fit, error) {
	F.Status = Failed
	F.Message = err.Error()
	F.Modulus, F.Error = math.NaN(), math.NaN()
	F.Scaled, F.ScaledError = math.NaN(), math.NaN()
	return F, err
}

//degenerate returns true, and sets the fit accordingly, if all the samples
//fall in one bin.
func (F *Fit) degenerate() bool {
	if F.Histogram.NonEmpty() != 1 {
		return false
	}
	F.Status = Degenerate
	F.Modulus, F.Scaled = math.Inf(1), math.Inf(1)
	F.Error, F.ScaledError, F.Residual = 0, 0, 0
	return true
}

func (F *Fit) scale(area, g float64) {
	if g > 1 {
		F.Error *= math.Sqrt(g)
	}
	F.Scaled = F.Modulus / area
	F.ScaledError = F.Error / area
}

//tiltPDF returns sin(t)exp(-chi t^2/2), normalized over [min, max].
func tiltPDF(chi, min, max float64) func(float64) float64 {
	f := func(t float64) float64 { return math.Sin(t) * math.Exp(-chi*t*t/2) }
	z := quad.Fixed(f, min, max, 64, nil, 0)
	return func(t float64) float64 { return f(t) / z }
}

func gaussian(chi, center, x float64) float64 {
	d := x - center
	return math.Sqrt(chi/(2*math.Pi)) * math.Exp(-chi*d*d/2)
}

//FitTilt fits the tilt angles given, in radians, to P(t) = sin(t)exp(-chi t^2/2)/Z.
//g is the statistical inefficiency of the samples, used to correct the error.
//It returns a *membrane.FitError, with the fit and its histogram, if the fit fails.
func FitTilt(label string, angles []float64, g float64, o *Options) (*Fit, error) {
	if o == nil {
		o = DefaultOptions()
	}
	F := &Fit{Label: label, Kind: TiltKind, Samples: len(angles), Inefficiency: math.Max(g, 1)}
	F.Histogram = histo.NewData(label, histo.Dividers(0, o.ThetaMax(), o.NBins()), angles)
	if F.Histogram.Total() == 0 {
		return F.fail(membrane.NewFitError(label, "no tilt samples in range"))
	}
	if F.degenerate() {
		return F, nil
	}
	if err := F.check(o); err != nil {
		return F.fail(err)
	}
	x := F.Histogram.BinCenters()
	y := F.Histogram.Density()
	d := F.Histogram.CopyDividers()
	min, max := d[0], d[len(d)-1]
	chi0 := tiltGuess(x, y, F.Histogram.Counts(), angles)
	p, e, res, err := leastSquares(x, y, []float64{chi0}, []float64{chi0}, func(p []float64) func(float64) float64 {
		return tiltPDF(p[0], min, max)
	})
	if err != nil {
		return F.fail(membrane.NewFitError(label, "tilt optimization: %v", err))
	}
	F.Modulus, F.Error, F.Residual = p[0], e[0], res
	if !(F.Modulus > 0) {
		return F.fail(membrane.NewFitError(label, "non-positive tilt modulus %g", F.Modulus))
	}
	F.scale(o.Area(), F.Inefficiency)
	return F, nil
}

//tiltGuess estimates chi from the slope of ln(P/sin t) against t^2/2. If that
//fails, it uses <t^2> = 2/chi.
func tiltGuess(x, y, counts, angles []float64) float64 {
	var xs, ys, ws []float64
	for i := range x {
		if y[i] > 0 && x[i] > 0 {
			xs = append(xs, x[i]*x[i]/2)
			ys = append(ys, math.Log(y[i]/math.Sin(x[i])))
			ws = append(ws, counts[i])
		}
	}
	if len(xs) >= 2 {
		_, beta := stat.LinearRegression(xs, ys, ws, false)
		if -beta > 0 && !math.IsInf(beta, 0) {
			return -beta
		}
	}
	sq := make([]float64, len(angles))
	floats.MulTo(sq, angles, angles)
	return 2 / math.Max(stat.Mean(sq, nil), 1e-12)
}

//FitSplay fits the splay values given, in 1/A, to a Gaussian centered at S0 with
//variance 1/chi. See FitTilt.
func FitSplay(label string, values []float64, g float64, o *Options) (*Fit, error) {
	if o == nil {
		o = DefaultOptions()
	}
	F := &Fit{Label: label, Kind: SplayKind, Samples: len(values), Inefficiency: math.Max(g, 1)}
	if len(values) == 0 {
		F.Histogram = histo.NewData(label, []float64{-1, 1}, nil)
		return F.fail(membrane.NewFitError(label, "no splay samples"))
	}
	min, max := floats.Min(values), floats.Max(values)
	if max-min < 1e-12 {
		//all the values are the same, one bin around them is enough
		min, max = min-1e-3, max+1e-3
	}
	F.Histogram = histo.NewData(label, histo.Dividers(min, max, o.NBins()), values)
	if F.degenerate() {
		F.Center = stat.Mean(values, nil)
		return F, nil
	}
	if err := F.check(o); err != nil {
		return F.fail(err)
	}
	mean, variance := stat.MeanVariance(values, nil)
	if !(variance > 0) {
		return F.fail(membrane.NewFitError(label, "splay values have no variance"))
	}
	sigma := math.Sqrt(variance)
	x := F.Histogram.BinCenters()
	y := F.Histogram.Density()
	p, e, res, err := leastSquares(x, y, []float64{1 / variance, mean}, []float64{1 / variance, sigma}, func(p []float64) func(float64) float64 {
		return func(x float64) float64 { return gaussian(p[0], p[1], x) }
	})
	if err != nil {
		return F.fail(membrane.NewFitError(label, "splay optimization: %v", err))
	}
	F.Modulus, F.Center, F.Error, F.Residual = p[0], p[1], e[0], res
	if !(F.Modulus > 0) {
		return F.fail(membrane.NewFitError(label, "non-positive splay modulus %g", F.Modulus))
	}
	F.scale(o.Area(), F.Inefficiency)
	return F, nil
}

func (F *Fit) check(o *Options) *membrane.FitError {
	if F.Samples < o.MinSamples() {
		return membrane.NewFitError(F.Label, "%d samples, at least %d needed", F.Samples, o.MinSamples())
	}
	if n := F.Histogram.NonEmpty(); n < 3 {
		return membrane.NewFitError(F.Label, "only %d non-empty bins", n)
	}
	F.Bins = F.Histogram.NonEmpty()
	return nil
}

//leastSquares fits model to the points (x, y) with y > 0, starting from p0. The
//parameters are optimized in units of scale. It returns the parameters, their errors,
//and the sum of squared residuals.
func leastSquares(x, y, p0, scale []float64, model func(p []float64) func(float64) float64) ([]float64, []float64, float64, error) {
	var xs, ys []float64
	for i := range x {
		if y[i] > 0 {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	k := len(p0)
	unscale := func(q []float64) []float64 {
		p := make([]float64, k)
		for i := range q {
			p[i] = p0[i] + (q[i]-1)*scale[i]
		}
		return p
	}
	rss := func(q []float64) float64 {
		f := model(unscale(q))
		var sum float64
		for i, v := range xs {
			r := f(v) - ys[i]
			sum += r * r
		}
		if math.IsNaN(sum) {
			return math.Inf(1)
		}
		return sum
	}
	q0 := make([]float64, k)
	for i := range q0 {
		q0[i] = 1
	}
	problem := optimize.Problem{Func: rss}
	settings := &optimize.Settings{
		FuncEvaluations: 20000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-15, Relative: 1e-12, Iterations: 100},
	}
	result, err := optimize.Minimize(problem, q0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, nil, 0, err
	}
	if math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return nil, nil, 0, fmt.Errorf("no finite residual found")
	}
	best := unscale(result.X)
	errs := make([]float64, k)
	dof := len(xs) - k
	if dof <= 0 {
		for i := range errs {
			errs[i] = math.NaN()
		}
		return best, errs, result.F, nil
	}
	H := mat.NewSymDense(k, nil)
	fd.Hessian(H, rss, result.X, nil)
	var inv mat.Dense
	if err := inv.Inverse(H); err != nil {
		for i := range errs {
			errs[i] = math.NaN()
		}
		return best, errs, result.F, nil
	}
	s2 := result.F / float64(dof)
	for i := range errs {
		v := inv.At(i, i)
		if v < 0 {
			errs[i] = math.NaN()
			continue
		}
		errs[i] = math.Sqrt(2*s2*v) * scale[i]
	}
	return best, errs, result.F, nil
}
