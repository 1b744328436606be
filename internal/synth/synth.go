/*
 * synth.go, part of gomembrane.
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

//Package synth builds synthetic bilayers with known geometry, for tests.
package synth

import (
	"math"

	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Tail atom names for each lipid type. Both exist in the default configuration.
var tails = map[string][2]string{
	"DOPC": {"C316", "C216"},
	"DPPC": {"C214", "C314"},
}

//Options for a synthetic bilayer. The lipids sit on a square lattice, and every
//lipid carries filler atoms that make the lipid density laterally uniform
//on a grid with spacing Grid.
type Options struct {
	NX, NY  int     //lipids per leaflet along x and y
	Spacing float64 //lateral distance between lipids, a multiple of Grid
	Grid    float64
	HeadZ   float64 //z of the phosphates (upper leaflet, the lower one is at -HeadZ)
	Types   []string
	Chain   string
	Water   bool
	//Tilt returns the tilt angle and azimuth for the ith lipid of the given
	//leaflet (+1 upper, -1 lower). Nil means no tilt.
	Tilt func(i, leaflet int) (theta, phi float64)
	//Offset is added to the z of every atom.
	Offset float64
}

//Default returns a 4x4 lipids per leaflet DOPC bilayer, with water.
func Default() *Options {
	return &Options{NX: 4, NY: 4, Spacing: 8, Grid: 2, HeadZ: 20, Types: []string{"DOPC"}, Chain: "A", Water: true}
}

const taillen = 15.0

type builder struct {
	atoms  []*membrane.Atom
	coords []float64
	molid  int
}

//add appends an atom. Marker atoms (the ones used in the head, tail and distance
//selections) are flagged as hydrogens, so they don't perturb the lipid density.
func (b *builder) add(name, res, chain string, p r3.Vec, marker bool) {
	sym, mass := name[:1], 12.0
	if marker {
		sym, mass = "H", 1.0
	}
	b.atoms = append(b.atoms, &membrane.Atom{Name: name, ID: len(b.atoms) + 1, MolName: res, MolID: b.molid, Chain: chain, Symbol: sym, Mass: mass})
	b.coords = append(b.coords, p.X, p.Y, p.Z)
}

//Bilayer builds the topology and the coordinates of a synthetic bilayer.
func Bilayer(o *Options) (*membrane.Topology, *membrane.Frame) {
	b := new(builder)
	lx, ly := float64(o.NX)*o.Spacing, float64(o.NY)*o.Spacing
	nsub := int(math.Round(o.Spacing / o.Grid))
	count := 0
	for _, leaflet := range []int{1, -1} {
		lf := float64(leaflet)
		for i := 0; i < o.NX; i++ {
			for j := 0; j < o.NY; j++ {
				typ := o.Types[count%len(o.Types)]
				count++
				b.molid++
				x0, y0 := (float64(i)+0.5)*o.Spacing, (float64(j)+0.5)*o.Spacing
				head := r3.Vec{X: x0, Y: y0, Z: lf*(o.HeadZ-0.5) + o.Offset}
				b.add("P", typ, o.Chain, r3.Vec{X: x0, Y: y0, Z: lf*o.HeadZ + o.Offset}, true)
				b.add("C2", typ, o.Chain, r3.Vec{X: x0, Y: y0, Z: lf*(o.HeadZ-1) + o.Offset}, true)
				theta, phi := 0.0, 0.0
				if o.Tilt != nil {
					theta, phi = o.Tilt(i*o.NY+j, leaflet)
				}
				u := r3.Vec{X: math.Sin(theta) * math.Cos(phi), Y: math.Sin(theta) * math.Sin(phi), Z: -lf * math.Cos(theta)}
				b.add("C21", typ, o.Chain, r3.Add(head, r3.Scale(4, u)), true)
				b.add("C31", typ, o.Chain, r3.Add(head, r3.Scale(4, u)), true)
				t := tails[typ]
				b.add(t[0], typ, o.Chain, r3.Add(head, r3.Scale(taillen-1, u)), true)
				b.add(t[1], typ, o.Chain, r3.Add(head, r3.Scale(taillen+1, u)), true)
				//fillers, one per grid cell of the lipid's lateral patch and level.
				for z := o.Grid; z <= o.HeadZ; z += o.Grid {
					for si := 0; si < nsub; si++ {
						for sj := 0; sj < nsub; sj++ {
							p := r3.Vec{
								X: float64(i)*o.Spacing + (float64(si)+0.5)*o.Grid,
								Y: float64(j)*o.Spacing + (float64(sj)+0.5)*o.Grid,
								Z: lf*(z-0.5*o.Grid) + o.Offset,
							}
							b.add("CF", typ, o.Chain, p, false)
						}
					}
				}
			}
		}
	}
	if o.Water {
		nx, ny := int(math.Round(lx/o.Grid)), int(math.Round(ly/o.Grid))
		for _, leaflet := range []float64{1, -1} {
			for z := o.HeadZ + o.Grid; z <= o.HeadZ+5*o.Grid; z += o.Grid {
				for i := 0; i < nx; i++ {
					for j := 0; j < ny; j++ {
						b.molid++
						b.add("OH2", "TIP3", "W", r3.Vec{X: (float64(i) + 0.5) * o.Grid, Y: (float64(j) + 0.5) * o.Grid, Z: leaflet*(z-0.5*o.Grid) + o.Offset}, false)
					}
				}
			}
		}
	}
	top, _ := membrane.NewTopology(b.atoms)
	coords, _ := v3.NewMatrix(b.coords)
	box := membrane.Box{A: r3.Vec{X: lx}, B: r3.Vec{Y: ly}, C: r3.Vec{Z: 2 * (o.HeadZ + 6*o.Grid)}}
	return top, &membrane.Frame{Coords: coords, Box: box}
}

//LipidTypes returns the lipid types for the synthetic bilayers.
func LipidTypes(names ...string) map[string]*membrane.LipidType {
	ret := make(map[string]*membrane.LipidType)
	for _, n := range names {
		t := tails[n]
		ret[n] = &membrane.LipidType{Name: n, Head: membrane.Names("P", "C2"), Tail: membrane.Names(t[0], t[1]), Distance: membrane.Names("C21", "C31")}
	}
	return ret
}

//Tile replicates a bilayer n x n times along the box vectors A and B, as in
//trajectories of systems replicated before the simulation. The original
//copy comes first and keeps its atoms. The other copies surround it, with
//chain "B" and the same residue numbers as the original. The box is not changed.
func Tile(top *membrane.Topology, f *membrane.Frame, n int) (*membrane.Topology, *membrane.Frame) {
	shifts := [][2]int{{0, 0}}
	lo := -(n / 2)
	for a := lo; a < lo+n; a++ {
		for b := lo; b < lo+n; b++ {
			if a != 0 || b != 0 {
				shifts = append(shifts, [2]int{a, b})
			}
		}
	}
	natoms := top.Len()
	atoms := make([]*membrane.Atom, 0, natoms*len(shifts))
	coords := v3.Zeros(natoms * len(shifts))
	for k, s := range shifts {
		d := r3.Add(r3.Scale(float64(s[0]), f.Box.A), r3.Scale(float64(s[1]), f.Box.B))
		for i, at := range top.Atoms {
			c := at.Copy()
			c.ID = len(atoms) + 1
			if k > 0 {
				c.Chain = "B"
			}
			atoms = append(atoms, c)
			coords.SetVec(k*natoms+i, r3.Add(f.Coords.Vec(i), d))
		}
	}
	ret, _ := membrane.NewTopology(atoms)
	return ret, &membrane.Frame{Coords: coords, Box: f.Box}
}
