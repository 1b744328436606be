/*
 * pbc.go, part of gomembrane.
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

//Package pbc replicates residues over the lateral periodic images of the box,
//so that neighbour searches near the box edges see every periodic neighbour.
package pbc

import (
	"math"

	membrane "github.com/rmera/gomembrane"
	"gonum.org/v1/gonum/spatial/r3"
)

//Image is a copy of a residue, translated by a lattice vector.
//Only central images (Shift 0,0) can have DoTilt and DoSplay set, and
//they are never changed after Expand returns.
type Image struct {
	Source  int //index of the source residue in the slice given to Expand
	Residue *membrane.Residue
	Pos     r3.Vec
	Shift   [2]int //multiples of A and B added to the (wrapped) central position
	Copy    bool   //a copy of Residue already present in the trajectory
	DoTilt  bool
	DoSplay bool
}

//Central returns true if the image is the residue itself.
func (I *Image) Central() bool {
	return I.Shift == [2]int{0, 0} && !I.Copy
}

//CheckCutoff returns a *membrane.ConfigError if the distance cutoff is larger
//than half of the shortest box vector.
func CheckCutoff(distanceCutoff float64, box membrane.Box) error {
	if !box.Valid() {
		return membrane.NewConfigError("invalid box %v", box.Vectors())
	}
	if half := box.MinLength() / 2; distanceCutoff > half {
		return membrane.NewConfigError("distance_cutoff %g is larger than half the shortest box vector (%g)", distanceCutoff, half)
	}
	return nil
}

//Wrap translates p by lattice vectors A and B so its fractional coordinates
//along them are in [0,1).
func Wrap(p r3.Vec, box membrane.Box) r3.Vec {
	f := box.Frac(p)
	da, db := math.Floor(f.X), math.Floor(f.Y)
	if da == 0 && db == 0 {
		return p
	}
	return r3.Sub(p, r3.Add(r3.Scale(da, box.A), r3.Scale(db, box.B)))
}

//Expand returns one central image per residue, with the residue's flags and its position
//wrapped into the box, followed by one image per lateral shift (i,j), with |i|,|j| <= replicas
//and (i,j) != (0,0), for each residue. The latter images have DoTilt and DoSplay set to false.
//The first len(residues) images are the central ones, in the order of residues.
//positions contains one position per residue (typically the centroid of its neutral plane atoms).
//
//With replicas == 0 the trajectory is taken to be replicated already, and only one image
//per residue, not wrapped, is returned. A non-central residue with the type and residue
//number of exactly one central residue is a copy of it: its image has the central residue as
//Source and Residue, and Copy set, so each pair of lipids is found only once.
func Expand(residues []*membrane.Residue, positions []r3.Vec, box membrane.Box, replicas int) ([]Image, error) {
	if len(residues) != len(positions) {
		return nil, membrane.NewConfigError("pbc.Expand: %d residues but %d positions", len(residues), len(positions))
	}
	if replicas < 0 {
		return nil, membrane.NewConfigError("pbc.Expand: negative replica count %d", replicas)
	}
	if !box.Valid() {
		return nil, membrane.NewConfigError("pbc.Expand: invalid box")
	}
	if replicas == 0 {
		return replicated(residues, positions), nil
	}
	side := 2*replicas + 1
	ret := make([]Image, 0, side*side*len(residues))
	central := make([]r3.Vec, len(residues))
	for i, r := range residues {
		central[i] = Wrap(positions[i], box)
		ret = append(ret, Image{Source: i, Residue: r, Pos: central[i], DoTilt: r.DoTilt, DoSplay: r.DoSplay})
	}
	for a := -replicas; a <= replicas; a++ {
		for b := -replicas; b <= replicas; b++ {
			if a == 0 && b == 0 {
				continue
			}
			shift := r3.Add(r3.Scale(float64(a), box.A), r3.Scale(float64(b), box.B))
			for i, r := range residues {
				ret = append(ret, Image{Source: i, Residue: r, Pos: r3.Add(central[i], shift), Shift: [2]int{a, b}})
			}
		}
	}
	return ret, nil
}

type residueKey struct {
	typ   string
	molid int
}

func replicated(residues []*membrane.Residue, positions []r3.Vec) []Image {
	central := make(map[residueKey]int)
	for i, r := range residues {
		if !r.DoTilt {
			continue
		}
		k := residueKey{r.Type, r.MolID}
		if _, ok := central[k]; ok {
			central[k] = -1 //ambiguous, copies of it are kept as they are.
			continue
		}
		central[k] = i
	}
	ret := make([]Image, len(residues))
	for i, r := range residues {
		ret[i] = Image{Source: i, Residue: r, Pos: positions[i], DoTilt: r.DoTilt, DoSplay: r.DoSplay}
		if r.DoTilt {
			continue
		}
		if c, ok := central[residueKey{r.Type, r.MolID}]; ok && c >= 0 {
			ret[i].Source, ret[i].Residue, ret[i].Copy = c, residues[c], true
		}
	}
	return ret
}
