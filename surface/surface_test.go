/*
 * surface_test.go, part of gomembrane.
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

package surface

import (
	"math"
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/density"
	"github.com/rmera/gomembrane/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func flatGrid(Te *testing.T, o *synth.Options) *density.Grid {
	top, frame := synth.Bilayer(o)
	lipid := top.Select(membrane.And(membrane.MolNames("DOPC", "DPPC"), membrane.HeavyAtoms()))
	water := top.Select(membrane.MolNames("TIP3"))
	G, err := density.Estimate(frame, lipid, water)
	require.NoError(Te, err)
	return G
}

func TestExtractFlat(Te *testing.T) {
	G := flatGrid(Te, synth.Default())
	I, err := Extract(G, 0.3)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, I.Coverage(Upper))
	assert.Equal(Te, 1.0, I.Coverage(Lower))
	h0 := I.Height[Upper][0]
	assert.InDelta(Te, 21.0, h0, 1.0)
	//the lower interface is between the centers of its water and lipid bins.
	assert.InDelta(Te, -19.0, I.Height[Lower][0], 1.0)
	for c := range I.Height[Upper] {
		assert.InDelta(Te, h0, I.Height[Upper][c], 1e-9)
	}
	//everything moves with the bilayer.
	o := synth.Default()
	o.Offset = 4
	I2, err := Extract(flatGrid(Te, o), 0.3)
	require.NoError(Te, err)
	assert.InDelta(Te, h0+4, I2.Height[Upper][5], 1e-9)
}

func TestExtractNoInterface(Te *testing.T) {
	G := flatGrid(Te, synth.Default())
	_, err := Extract(G, 5) //no voxel can reach a total density of 5
	require.Error(Te, err)
	gap, ok := err.(*membrane.DataGapError)
	require.True(Te, ok)
	assert.Equal(Te, membrane.GapInterface, gap.Kind)
}

func TestNormalsFlat(Te *testing.T) {
	G := flatGrid(Te, synth.Default())
	I, err := Extract(G, 0.3)
	require.NoError(Te, err)
	N, err := Normals(I, G.Box, 10, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0, N.NLow)
	for c := range N.Normal[Upper] {
		assert.InDelta(Te, 1.0, N.Normal[Upper][c].Z, 1e-9)
		assert.InDelta(Te, -1.0, N.Normal[Lower][c].Z, 1e-9)
	}
	n, l, low := N.Nearest(r3.Vec{X: 3, Y: 17, Z: 19})
	assert.Equal(Te, Upper, l)
	assert.False(Te, low)
	assert.InDelta(Te, 1.0, n.Z, 1e-9)
	_, l, _ = N.Nearest(r3.Vec{X: 3, Y: 17, Z: -2})
	assert.Equal(Te, Lower, l)
	_, err = Normals(I, G.Box, 0, nil)
	assert.IsType(Te, &membrane.ConfigError{}, err)
}

func wavy(amplitude float64) (*Interface, membrane.Box) {
	box := membrane.Box{A: r3.Vec{X: 40}, B: r3.Vec{Y: 40}, C: r3.Vec{Z: 80}}
	I := &Interface{NA: 20, NB: 20, Box: box}
	for l := range I.Height {
		I.Height[l] = make([]float64, 400)
	}
	for i := 0; i < 20; i++ {
		x := (float64(i) + 0.5) * 2
		for j := 0; j < 20; j++ {
			h := amplitude * math.Sin(2*math.Pi*x/40)
			I.Height[Upper][i*20+j] = 20 + h
			I.Height[Lower][i*20+j] = -20 + h
		}
	}
	return I, box
}

func TestNormalsWavy(Te *testing.T) {
	I, box := wavy(2)
	N, err := Normals(I, box, 6, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0, N.NLow)
	//at x=1 the surface goes up with x, so the outward normal of the upper
	//leaflet points toward -x and the one of the lower leaflet toward +x.
	assert.True(Te, N.Normal[Upper][0].X < 0)
	assert.True(Te, N.Normal[Upper][0].Z > 0)
	assert.True(Te, N.Normal[Lower][0].X > 0)
	assert.True(Te, N.Normal[Lower][0].Z < 0)
	//the surface has a maximum at x=10.
	a, b := N.Normal[Upper][4*20], N.Normal[Upper][5*20]
	assert.InDelta(Te, a.X, -b.X, 1e-9)
	assert.InDelta(Te, a.Z, b.Z, 1e-9)
	//the field is periodic.
	p, _ := N.At(r3.Vec{X: 1, Y: 5, Z: 20}, Upper)
	q, _ := N.At(r3.Vec{X: 41, Y: -35, Z: 20}, Upper)
	assert.InDelta(Te, p.X, q.X, 1e-9)
	assert.InDelta(Te, 20+2*math.Sin(2*math.Pi/40), N.HeightAt(r3.Vec{X: 1, Y: 3}, Upper), 1e-9)
}

func TestNormalsFallback(Te *testing.T) {
	I, box := wavy(0)
	for c := range I.Height[Upper] {
		if c%7 != 0 {
			I.Height[Upper][c] = math.NaN()
		}
	}
	//only one point (and no replicas) within 1 A, so no plane can be fitted.
	N, err := Normals(I, box, 1, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 800, N.NLow)
	assert.True(Te, N.Low[Upper][3])
	assert.Equal(Te, r3.Vec{Z: 1}, N.Normal[Upper][3])
	assert.Equal(Te, r3.Vec{Z: -1}, N.Normal[Lower][3])
	assert.InDelta(Te, 20.0, N.Height[Upper][3], 1e-9)
	//with a previous field, its normals are used.
	prev, err := Normals(I, box, 1, nil)
	require.NoError(Te, err)
	tilted := r3.Unit(r3.Vec{X: 1, Z: 1})
	prev.Normal[Upper][3] = tilted
	N2, err := Normals(I, box, 1, prev)
	require.NoError(Te, err)
	assert.Equal(Te, tilted, N2.Normal[Upper][3])
	n, low := N2.At(N2.Box.FromFrac(r3.Vec{X: 0.5 / 20, Y: 3.5 / 20}), Upper)
	assert.True(Te, low)
	assert.InDelta(Te, tilted.X, n.X, 1e-9)
	assert.InDelta(Te, tilted.Z, n.Z, 1e-9)
}
