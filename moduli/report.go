/*
 * report.go, part of gomembrane.
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


package moduli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

//AllPairs is the label of the splay fit over all pair types.
const AllPairs = "all"

//number is a float64 that encodes +-Inf as strings and NaN as null, which
//JSON can't represent.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func (F *Fit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label        string `json:"label"`
		Kind         string `json:"kind"`
		Modulus      number `json:"modulus"`
		Error        number `json:"error"`
		Scaled       number `json:"scaled"`
		ScaledError  number `json:"scaled_error"`
		Center       number `json:"center"`
		Residual     number `json:"residual"`
		Samples      int    `json:"samples"`
		Bins         int    `json:"bins"`
		Inefficiency number `json:"inefficiency"`
		Status       Status `json:"status"`
		Message      string `json:"message,omitempty"`
	}{F.Label, F.Kind, number(F.Modulus), number(F.Error), number(F.Scaled), number(F.ScaledError),
		number(F.Center), number(F.Residual), F.Samples, F.Bins, number(F.Inefficiency), F.Status, F.Message})
}

//Counters keeps track of what could not be used in a run.
type Counters struct {
	Frames        int `json:"frames"`         //processed
	Skipped       int `json:"skipped"`        //frames, for any reason
	EmptyDensity  int `json:"empty_density"`  //frames skipped for lack of lipid density
	Degenerate    int `json:"degenerate"`     //lipids with degenerate directors, over all frames
	LowConfidence int `json:"low_confidence"` //low confidence normal field cells, over all density frames
	FitFailures   int `json:"fit_failures"`
}

//Overall is the tilt modulus for the whole membrane.
type Overall struct {
	Modulus     float64
	Error       float64
	Scaled      float64
	ScaledError float64
	Samples     int
	Status      Status
}

func (O Overall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Modulus     number `json:"modulus"`
		Error       number `json:"error"`
		Scaled      number `json:"scaled"`
		ScaledError number `json:"scaled_error"`
		Samples     int    `json:"samples"`
		Status      Status `json:"status"`
	}{number(O.Modulus), number(O.Error), number(O.Scaled), number(O.ScaledError), O.Samples, O.Status})
}

//Report collects all the fits of a run.
type Report struct {
	Area     float64         `json:"lipid_area"`
	Tilt     map[string]*Fit `json:"tilt"`
	Splay    map[string]*Fit `json:"splay"` //by pair key, plus AllPairs
	Overall  Overall         `json:"overall_tilt"`
	Counters Counters        `json:"counters"`
}

func sortedKeys[V any](m map[string]V) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//TiltLabels returns the sorted lipid types of the tilt fits.
func (R *Report) TiltLabels() []string {
	return sortedKeys(R.Tilt)
}

//SplayLabels returns the sorted pair keys of the splay fits.
func (R *Report) SplayLabels() []string {
	return sortedKeys(R.Splay)
}

//Analyze fits the tilt angles of each lipid type and the splay values of each pair type,
//and obtains the overall tilt modulus. g has the statistical inefficiency of the tilt
//of each lipid type (missing types are taken as uncorrelated). Failed fits are
//logged and counted, and kept in the report with their histograms.
func Analyze(tilt map[string][]float64, g map[string]float64, splay map[string][]float64, o *Options) *Report {
	if o == nil {
		o = DefaultOptions()
	}
	R := &Report{Area: o.Area(), Tilt: make(map[string]*Fit), Splay: make(map[string]*Fit)}
	for _, k := range sortedKeys(tilt) {
		F, err := FitTilt(k, tilt[k], g[k], o)
		if err != nil {
			log.Printf("gomembrane/moduli: %v", err)
			R.Counters.FitFailures++
		}
		R.Tilt[k] = F
	}
	var all []float64
	for _, k := range sortedKeys(splay) {
		all = append(all, splay[k]...)
		F, err := FitSplay(k, splay[k], 1, o)
		if err != nil {
			log.Printf("gomembrane/moduli: %v", err)
			R.Counters.FitFailures++
		}
		R.Splay[k] = F
	}
	//with one pair type the overall fit would be the same.
	if len(splay) > 1 {
		F, err := FitSplay(AllPairs, all, 1, o)
		if err != nil {
			log.Printf("gomembrane/moduli: %v", err)
			R.Counters.FitFailures++
		}
		R.Splay[AllPairs] = F
	}
	R.Overall = OverallTilt(R.Tilt, o.Area())
	return R
}

//OverallTilt returns the mean of the tilt moduli of the successful fits, weighted
//by their number of samples, with errors propagated in quadrature. If there are no
//successful fits, but there are degenerate ones, the result is degenerate (+Inf).
func OverallTilt(fits map[string]*Fit, area float64) Overall {
	var w, k, e []float64
	degenerate := 0
	for _, key := range sortedKeys(fits) {
		F := fits[key]
		switch F.Status {
		case OK:
			w = append(w, float64(F.Samples))
			k = append(k, F.Modulus)
			e = append(e, F.Error)
		case Degenerate:
			degenerate += F.Samples
		}
	}
	if len(w) == 0 {
		if degenerate > 0 {
			return Overall{Modulus: math.Inf(1), Scaled: math.Inf(1), Samples: degenerate, Status: Degenerate}
		}
		return Overall{Modulus: math.NaN(), Error: math.NaN(), Scaled: math.NaN(), ScaledError: math.NaN(), Status: Failed}
	}
	total := floats.Sum(w)
	var O Overall
	O.Samples = int(total)
	O.Modulus = floats.Dot(w, k) / total
	floats.Mul(e, w)
	O.Error = floats.Norm(e, 2) / total
	O.Scaled, O.ScaledError = O.Modulus/area, O.Error/area
	return O
}

//WriteJSON writes the report as indented JSON.
func (R *Report) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(R, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func fitLine(F *Fit, unit, scaledUnit string) string {
	s := fmt.Sprintf("%-12s %12.4f +/- %-10.4f %s  %12.6f +/- %-10.6f %s  n=%d", F.Label, F.Modulus, F.Error, unit, F.Scaled, F.ScaledError, scaledUnit, F.Samples)
	if F.Kind == TiltKind && F.Inefficiency > 1 {
		s += fmt.Sprintf(" g=%.2f", F.Inefficiency)
	}
	if F.Status != OK {
		s += " [" + F.Status.String() + "]"
	}
	if F.Message != "" {
		s += " " + F.Message
	}
	return s
}

//WriteText writes a human-readable summary of the report.
func (R *Report) WriteText(w io.Writer) error {
	lines := []string{fmt.Sprintf("# Elastic moduli. Area per lipid: %.2f A^2", R.Area), "# Tilt moduli (chi, chi/area)"}
	for _, k := range sortedKeys(R.Tilt) {
		lines = append(lines, fitLine(R.Tilt[k], "kBT/rad^2", "kBT/A^2"))
	}
	O := R.Overall
	lines = append(lines, fmt.Sprintf("%-12s %12.4f +/- %-10.4f kBT/rad^2  %12.6f +/- %-10.6f kBT/A^2  n=%d [%s]", "overall", O.Modulus, O.Error, O.Scaled, O.ScaledError, O.Samples, O.Status))
	lines = append(lines, "# Splay moduli (chi_S, Kc = chi_S/area)")
	for _, k := range sortedKeys(R.Splay) {
		F := R.Splay[k]
		lines = append(lines, fitLine(F, "kBT A^2", "kBT")+fmt.Sprintf(" S0=%.5f", F.Center))
	}
	C := R.Counters
	lines = append(lines, fmt.Sprintf("# frames %d skipped %d empty_density %d degenerate_directors %d low_confidence_normals %d fit_failures %d",
		C.Frames, C.Skipped, C.EmptyDensity, C.Degenerate, C.LowConfidence, C.FitFailures))
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
