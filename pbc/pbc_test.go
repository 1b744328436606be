/*
 * pbc_test.go, part of gomembrane.
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

package pbc

import (
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var box = membrane.Box{A: r3.Vec{X: 30}, B: r3.Vec{Y: 40}, C: r3.Vec{Z: 80}}

func residues(n int) ([]*membrane.Residue, []r3.Vec) {
	res := make([]*membrane.Residue, n)
	pos := make([]r3.Vec, n)
	for i := range res {
		res[i] = &membrane.Residue{ID: i, Type: "DOPC", DoTilt: true, DoSplay: true}
		pos[i] = r3.Vec{X: float64(3 * i), Y: float64(4 * i), Z: 15}
	}
	return res, pos
}

func TestExpandCounts(Te *testing.T) {
	res, pos := residues(7)
	for _, r := range []int{0, 1, 2} {
		images, err := Expand(res, pos, box, r)
		require.NoError(Te, err)
		side := 2*r + 1
		nonCentral := 0
		for i, im := range images {
			if i < len(res) {
				assert.True(Te, im.Central())
				assert.Equal(Te, i, im.Source)
				assert.True(Te, im.DoTilt)
				continue
			}
			nonCentral++
			assert.False(Te, im.Central())
			assert.False(Te, im.DoTilt)
			assert.False(Te, im.DoSplay)
		}
		assert.Equal(Te, (side*side-1)*len(res), nonCentral)
	}
	//the residues themselves are never modified.
	for _, r := range res {
		assert.True(Te, r.DoTilt)
		assert.True(Te, r.DoSplay)
	}
}

func TestExpandFlagsFromResidue(Te *testing.T) {
	res, pos := residues(2)
	res[1] = &membrane.Residue{ID: 1, Type: "DOPC", Chain: "B"}
	images, err := Expand(res, pos, box, 0)
	require.NoError(Te, err)
	require.Len(Te, images, 2)
	assert.True(Te, images[0].DoSplay)
	assert.False(Te, images[1].DoSplay)
}

func TestExpandReplicated(Te *testing.T) {
	res := []*membrane.Residue{
		{ID: 0, MolID: 1, Type: "DOPC", Chain: "A", DoTilt: true, DoSplay: true},
		{ID: 1, MolID: 2, Type: "DOPC", Chain: "A", DoTilt: true, DoSplay: true},
		{ID: 2, MolID: 1, Type: "DOPC", Chain: "B"},
		{ID: 3, MolID: 9, Type: "DOPC", Chain: "B"},
	}
	pos := []r3.Vec{{X: -2, Y: 10}, {X: 5, Y: 10}, {X: 28, Y: 10}, {X: 40, Y: 50}}
	images, err := Expand(res, pos, box, 0)
	require.NoError(Te, err)
	require.Len(Te, images, 4)
	//nothing is wrapped
	for i, im := range images {
		assert.Equal(Te, pos[i], im.Pos)
	}
	assert.True(Te, images[0].Central())
	assert.True(Te, images[0].DoTilt)
	//a copy of residue 0, one box vector away.
	assert.False(Te, images[2].Central())
	assert.True(Te, images[2].Copy)
	assert.Equal(Te, 0, images[2].Source)
	assert.Same(Te, res[0], images[2].Residue)
	assert.False(Te, images[2].DoSplay)
	//no central residue with its number, so it stands for itself.
	assert.True(Te, images[3].Central())
	assert.Equal(Te, 3, images[3].Source)
	assert.False(Te, images[3].DoTilt)
	assert.False(Te, res[2].DoTilt)
}

func TestExpandNeighbourAcrossBoundary(Te *testing.T) {
	res := []*membrane.Residue{{ID: 0, DoTilt: true, DoSplay: true}, {ID: 1, DoTilt: true, DoSplay: true}}
	//1 A from the x=0 edge, and 1 A from the x=30 edge, plus an unwrapped position.
	pos := []r3.Vec{{X: 1, Y: 10}, {X: 59, Y: 10}}
	images, err := Expand(res, pos, box, 1)
	require.NoError(Te, err)
	assert.InDelta(Te, 29.0, images[1].Pos.X, 1e-9)
	found := false
	for _, im := range images {
		if im.Source == 1 && r3.Norm(r3.Sub(im.Pos, images[0].Pos)) < 2.0+1e-9 {
			found = true
			assert.Equal(Te, [2]int{-1, 0}, im.Shift)
		}
	}
	assert.True(Te, found)
}

func TestCheckCutoff(Te *testing.T) {
	assert.NoError(Te, CheckCutoff(15, box))
	assert.NoError(Te, CheckCutoff(10, box))
	err := CheckCutoff(15.0001, box)
	require.Error(Te, err)
	assert.IsType(Te, &membrane.ConfigError{}, err)
	assert.Error(Te, CheckCutoff(1, membrane.Box{}))
}

func TestExpandErrors(Te *testing.T) {
	res, pos := residues(3)
	_, err := Expand(res, pos[:2], box, 1)
	assert.Error(Te, err)
	_, err = Expand(res, pos, box, -1)
	assert.Error(Te, err)
}
