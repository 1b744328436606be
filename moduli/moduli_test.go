/*
 * moduli_test.go, part of gomembrane.
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
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//sampleTilt draws n angles from sin(t)exp(-K t^2/2) on [0, max], using
//Rayleigh proposals accepted with probability sin(t)/t.
func sampleTilt(r *rand.Rand, K float64, n int, max float64) []float64 {
	ret := make([]float64, 0, n)
	for len(ret) < n {
		t := math.Sqrt(-2 * math.Log(1-r.Float64()) / K)
		if t == 0 || t > max {
			continue
		}
		if r.Float64() < math.Sin(t)/t {
			ret = append(ret, t)
		}
	}
	return ret
}

func TestTiltRecovery(Te *testing.T) {
	r := rand.New(rand.NewSource(11))
	K := 20.0
	angles := sampleTilt(r, K, 200000, math.Pi/2)
	F, err := FitTilt("DOPC", angles, 1, nil)
	require.NoError(Te, err)
	assert.Equal(Te, OK, F.Status)
	assert.InEpsilon(Te, K, F.Modulus, 0.05)
	assert.True(Te, F.Error > 0 && F.Error < 0.05*K, "error %g", F.Error)
	assert.InDelta(Te, F.Modulus/60, F.Scaled, 1e-12)
	assert.Equal(Te, 200000, F.Histogram.Total())
	//the model is a normalized density.
	assert.InDelta(Te, 0.0, F.Model(0), 1e-12)
	assert.True(Te, F.Model(1/math.Sqrt(K)) > 1)
	//correlated samples have larger errors.
	G, err := FitTilt("DOPC", angles, 4, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 2*F.Error, G.Error, 1e-9*F.Error+1e-12)
	assert.Equal(Te, F.Modulus, G.Modulus)
}

func TestSplayRecovery(Te *testing.T) {
	r := rand.New(rand.NewSource(5))
	values := make([]float64, 100000)
	for i := range values {
		values[i] = 0.01 + 0.05*r.NormFloat64()
	}
	o := DefaultOptions()
	o.Area(50)
	F, err := FitSplay("DOPC-DPPC", values, 1, o)
	require.NoError(Te, err)
	assert.Equal(Te, OK, F.Status)
	assert.InEpsilon(Te, 400.0, F.Modulus, 0.05)
	assert.InDelta(Te, 0.01, F.Center, 0.002)
	assert.InDelta(Te, F.Modulus/50, F.Scaled, 1e-9)
}

func TestDegenerate(Te *testing.T) {
	F, err := FitTilt("DOPC", make([]float64, 96), 1, nil)
	require.NoError(Te, err)
	assert.Equal(Te, Degenerate, F.Status)
	assert.True(Te, math.IsInf(F.Modulus, 1))
	assert.Equal(Te, 0.0, F.Residual)
	assert.Equal(Te, 0.0, F.Error)
	assert.True(Te, math.IsNaN(F.Model(0.1)))
	S, err := FitSplay("DOPC", make([]float64, 64), 1, nil)
	require.NoError(Te, err)
	assert.Equal(Te, Degenerate, S.Status)
	assert.Equal(Te, 0.0, S.Center)
	assert.Equal(Te, 64, S.Histogram.Total())
}

func TestFitFailures(Te *testing.T) {
	r := rand.New(rand.NewSource(3))
	few := sampleTilt(r, 20, 10, math.Pi/2)
	F, err := FitTilt("DPPC", few, 1, nil)
	require.Error(Te, err)
	fe, ok := err.(*membrane.FitError)
	require.True(Te, ok)
	assert.Equal(Te, "DPPC", fe.Type)
	assert.False(Te, fe.Critical())
	assert.Equal(Te, Failed, F.Status)
	assert.Equal(Te, 10, F.Histogram.Total())
	//two bins only
	two := make([]float64, 100)
	for i := 50; i < 100; i++ {
		two[i] = 1
	}
	_, err = FitTilt("DPPC", two, 1, nil)
	assert.IsType(Te, &membrane.FitError{}, err)
	_, err = FitSplay("DPPC", two, 1, nil)
	assert.IsType(Te, &membrane.FitError{}, err)
	_, err = FitSplay("DPPC", nil, 1, nil)
	assert.IsType(Te, &membrane.FitError{}, err)
	//everything out of range
	_, err = FitTilt("DPPC", []float64{3, 3, 3}, 1, nil)
	assert.IsType(Te, &membrane.FitError{}, err)
}

func TestAnalyze(Te *testing.T) {
	r := rand.New(rand.NewSource(17))
	tilt := map[string][]float64{
		"DOPC": sampleTilt(r, 20, 60000, math.Pi/2),
		"DPPC": sampleTilt(r, 30, 20000, math.Pi/2),
		"CHL1": make([]float64, 50),
	}
	splay := map[string][]float64{"DOPC": make([]float64, 0, 5000), "DOPC-DPPC": make([]float64, 0, 5000)}
	for i := 0; i < 5000; i++ {
		splay["DOPC"] = append(splay["DOPC"], 0.05*r.NormFloat64())
		splay["DOPC-DPPC"] = append(splay["DOPC-DPPC"], 0.05*r.NormFloat64())
	}
	R := Analyze(tilt, map[string]float64{"DOPC": 2}, splay, nil)
	require.Len(Te, R.Tilt, 3)
	require.Len(Te, R.Splay, 3)
	assert.Equal(Te, 0, R.Counters.FitFailures)
	assert.Equal(Te, Degenerate, R.Tilt["CHL1"].Status)
	assert.Equal(Te, 2.0, R.Tilt["DOPC"].Inefficiency)
	assert.Equal(Te, 10000, R.Splay[AllPairs].Samples)
	O := R.Overall
	assert.Equal(Te, OK, O.Status)
	assert.Equal(Te, 80000, O.Samples)
	want := (60000*R.Tilt["DOPC"].Modulus + 20000*R.Tilt["DPPC"].Modulus) / 80000
	assert.InDelta(Te, want, O.Modulus, 1e-9)
	assert.True(Te, O.Error > 0)

	var b bytes.Buffer
	require.NoError(Te, R.WriteJSON(&b))
	var back map[string]interface{}
	require.NoError(Te, json.Unmarshal(b.Bytes(), &back))
	chl := back["tilt"].(map[string]interface{})["CHL1"].(map[string]interface{})
	assert.Equal(Te, "+Inf", chl["modulus"])
	assert.Equal(Te, "degenerate", chl["status"])
	b.Reset()
	require.NoError(Te, R.WriteText(&b))
	assert.True(Te, strings.Contains(b.String(), "overall"))
	assert.True(Te, strings.Contains(b.String(), "[degenerate]"))
}

func TestOverallDegenerate(Te *testing.T) {
	fits := map[string]*Fit{"DOPC": {Status: Degenerate, Samples: 32}, "DPPC": {Status: Failed, Samples: 4}}
	O := OverallTilt(fits, 60)
	assert.Equal(Te, Degenerate, O.Status)
	assert.True(Te, math.IsInf(O.Modulus, 1))
	O = OverallTilt(nil, 60)
	assert.Equal(Te, Failed, O.Status)
}
