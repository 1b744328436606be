/*
 * density_test.go, part of gomembrane.
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

package density

import (
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func selections(top *membrane.Topology) ([]int, []int) {
	lipid := top.Select(membrane.And(membrane.MolNames("DOPC", "DPPC"), membrane.HeavyAtoms()))
	water := top.Select(membrane.MolNames("TIP3"))
	return lipid, water
}

func TestEstimateFlat(Te *testing.T) {
	top, frame := synth.Bilayer(synth.Default())
	lipid, water := selections(top)
	G, err := Estimate(frame, lipid, water)
	require.NoError(Te, err)
	assert.Equal(Te, 16, G.NA)
	assert.Equal(Te, 16, G.NB)
	assert.Equal(Te, 32, G.NZ)
	assert.InDelta(Te, 1.0, floats.Max(G.Lipid), 1e-12)
	assert.InDelta(Te, 1.0, floats.Max(G.Water), 1e-12)
	assert.True(Te, floats.Min(G.Lipid) >= 0)
	//the bilayer center is full of lipid and has no water.
	center := 15
	assert.InDelta(Te, 0.0, G.Z(center), 1e-12)
	l := G.LipidColumn(3, 3)
	w := G.WaterColumn(3, 3)
	assert.True(Te, l[center] > 0.5)
	assert.Equal(Te, 0.0, w[center])
	//the synthetic bilayer is laterally uniform.
	assert.InDeltaSlice(Te, l, G.LipidColumn(10, 0), 1e-12)
	assert.InDeltaSlice(Te, w, G.WaterColumn(15, 7), 1e-12)
}

func TestEstimateEmpty(Te *testing.T) {
	_, frame := synth.Bilayer(synth.Default())
	_, err := Estimate(frame, nil, []int{0, 1})
	require.Error(Te, err)
	gap, ok := err.(*membrane.DataGapError)
	require.True(Te, ok)
	assert.Equal(Te, membrane.GapEmptyDensity, gap.Kind)
	assert.False(Te, gap.Critical())
	frame2 := &membrane.Frame{Index: 3, Coords: frame.Coords}
	_, err = Estimate(frame2, []int{0}, nil)
	require.Error(Te, err)
	assert.Equal(Te, membrane.GapBox, err.(*membrane.DataGapError).Kind)
}

func TestKernelAndCells(Te *testing.T) {
	for _, s := range []float64{0.5, 1, 2.5} {
		w := kernel(s)
		assert.InDelta(Te, 1.0, 2*floats.Sum(w)-w[0], 1e-12)
	}
	_, frame := synth.Bilayer(synth.Default())
	G := &Grid{NA: 16, NB: 16, NZ: 1, Box: frame.Box}
	i, j := G.Cell(r3.Vec{X: -1, Y: 33})
	assert.Equal(Te, 15, i)
	assert.Equal(Te, 0, j)
	p := G.Lateral(i, j)
	assert.InDelta(Te, 31.0, p.X, 1e-12)
	assert.InDelta(Te, 1.0, p.Y, 1e-12)
}

func TestOptions(Te *testing.T) {
	o := DefaultOptions()
	assert.Equal(Te, 2.0, o.Spacing(1.5))
	assert.Equal(Te, 1.5, o.Spacing(-1))
	assert.Equal(Te, 1.0, o.Smoothing(0))
	assert.Equal(Te, 0.0, o.Smoothing())
}
