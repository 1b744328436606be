/*
 * density.go, part of gomembrane.
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

//Package density bins lipid and water atoms into a lateral x depth grid,
//the first step in locating the membrane surfaces.
package density

import (
	"math"

	membrane "github.com/rmera/gomembrane"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

//Options for the density estimation.
type Options struct {
	spacing   float64
	smoothing float64
}

//DefaultOptions returns the default options: 2 A bins and a smoothing
//of 1 bin.
func DefaultOptions() *Options {
	return &Options{spacing: 2, smoothing: 1}
}

//Spacing returns the grid spacing in A, and sets it, if a valid value is given.
func (o *Options) Spacing(s ...float64) float64 {
	ret := o.spacing
	if len(s) > 0 && s[0] > 0 {
		o.spacing = s[0]
	}
	return ret
}

//Smoothing returns the sigma of the Gaussian smoothing kernel, in bins,
//and sets it, if a valid value is given. 0 disables smoothing.
func (o *Options) Smoothing(s ...float64) float64 {
	ret := o.smoothing
	if len(s) > 0 && s[0] >= 0 {
		o.smoothing = s[0]
	}
	return ret
}

//Grid holds the lipid and water densities of a frame. The lateral axes follow the
//A and B box vectors and are periodic. The z axis is not periodic. Both fields are
//normalized so their maximum is 1.
type Grid struct {
	NA, NB, NZ int
	Z0, DZ     float64 //the lower z limit of the grid, and the bin height.
	Box        membrane.Box
	Frame      int
	Lipid      []float64
	Water      []float64
}

func (G *Grid) index(i, j, k int) int {
	return (i*G.NB+j)*G.NZ + k
}

//LipidColumn returns the lipid densities along z for the lateral cell i,j. It is a view.
func (G *Grid) LipidColumn(i, j int) []float64 {
	s := G.index(i, j, 0)
	return G.Lipid[s : s+G.NZ]
}

//WaterColumn returns the water densities along z for the lateral cell i,j. It is a view.
func (G *Grid) WaterColumn(i, j int) []float64 {
	s := G.index(i, j, 0)
	return G.Water[s : s+G.NZ]
}

//Z returns the z coordinate of the center of the kth bin.
func (G *Grid) Z(k int) float64 {
	return G.Z0 + (float64(k)+0.5)*G.DZ
}

//Lateral returns the cartesian position of the center of the lateral cell i,j at z=0.
func (G *Grid) Lateral(i, j int) r3.Vec {
	return G.Box.FromFrac(r3.Vec{X: (float64(i) + 0.5) / float64(G.NA), Y: (float64(j) + 0.5) / float64(G.NB)})
}

//Cell returns the lateral cell that contains the point p, taking periodicity into account.
func (G *Grid) Cell(p r3.Vec) (int, int) {
	f := G.Box.Frac(p)
	return wrapCell(f.X, G.NA), wrapCell(f.Y, G.NB)
}

func wrapCell(f float64, n int) int {
	f -= math.Floor(f)
	i := int(f * float64(n))
	if i >= n { //f so close to 1 that it rounded up
		i = n - 1
	}
	return i
}

//Estimate builds the lipid and water density grids for frame, using the atoms with
//indexes in lipid and water, respectively. It returns a *membrane.DataGapError if there
//are no lipid atoms or the frame's box is not valid.
func Estimate(frame *membrane.Frame, lipid, water []int, options ...*Options) (*Grid, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	if len(lipid) == 0 {
		return nil, membrane.NewDataGapError(frame.Index, membrane.GapEmptyDensity, "no lipid atoms")
	}
	if !frame.Box.Valid() {
		return nil, membrane.NewDataGapError(frame.Index, membrane.GapBox, "invalid box")
	}
	G := &Grid{Box: frame.Box, Frame: frame.Index, DZ: o.spacing}
	G.NA = nbins(r3.Norm(frame.Box.A), o.spacing)
	G.NB = nbins(r3.Norm(frame.Box.B), o.spacing)
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, set := range [][]int{lipid, water} {
		for _, i := range set {
			z := frame.Coords.At(i, 2)
			zmin = math.Min(zmin, z)
			zmax = math.Max(zmax, z)
		}
	}
	//one bin of padding at each side.
	G.Z0 = zmin - o.spacing
	G.NZ = int(math.Floor((zmax-G.Z0)/o.spacing)) + 2
	G.Lipid = make([]float64, G.NA*G.NB*G.NZ)
	G.Water = make([]float64, G.NA*G.NB*G.NZ)
	G.bin(frame, lipid, G.Lipid)
	G.bin(frame, water, G.Water)
	if s := o.smoothing; s > 0 {
		G.smooth(G.Lipid, s)
		G.smooth(G.Water, s)
	}
	normalize(G.Lipid)
	normalize(G.Water)
	return G, nil
}

func nbins(length, spacing float64) int {
	n := int(math.Round(length / spacing))
	if n < 1 {
		n = 1
	}
	return n
}

func (G *Grid) bin(frame *membrane.Frame, atoms []int, field []float64) {
	for _, at := range atoms {
		p := frame.Coords.Vec(at)
		i, j := G.Cell(p)
		k := int((p.Z - G.Z0) / G.DZ)
		if k < 0 || k >= G.NZ {
			continue //can't happen with the range set in Estimate
		}
		field[G.index(i, j, k)]++
	}
}

func normalize(field []float64) {
	max := floats.Max(field)
	if max > 0 {
		floats.Scale(1/max, field)
	}
}

//kernel returns the weights of a Gaussian of the given sigma (in bins),
//truncated at 3 sigma, from the center outwards.
func kernel(sigma float64) []float64 {
	g := distuv.Normal{Mu: 0, Sigma: sigma}
	n := int(math.Ceil(3 * sigma))
	w := make([]float64, n+1)
	for i := range w {
		w[i] = g.Prob(float64(i))
	}
	//the weights of the full (2n+1) kernel add up to 1.
	floats.Scale(1/(2*floats.Sum(w)-w[0]), w)
	return w
}

//smooth convolutes field with a separable Gaussian kernel. The lateral
//axes wrap around, the z axis is truncated.
func (G *Grid) smooth(field []float64, sigma float64) {
	w := kernel(sigma)
	tmp := make([]float64, len(field))
	dims := [3]int{G.NA, G.NB, G.NZ}
	for axis := 0; axis < 3; axis++ {
		for i := range tmp {
			tmp[i] = 0
		}
		for i := 0; i < G.NA; i++ {
			for j := 0; j < G.NB; j++ {
				for k := 0; k < G.NZ; k++ {
					v := field[G.index(i, j, k)]
					if v == 0 {
						continue
					}
					pos := [3]int{i, j, k}
					for d := -len(w) + 1; d < len(w); d++ {
						q := pos
						q[axis] += d
						if axis < 2 {
							q[axis] = ((q[axis] % dims[axis]) + dims[axis]) % dims[axis]
						} else if q[2] < 0 || q[2] >= G.NZ {
							continue
						}
						tmp[G.index(q[0], q[1], q[2])] += v * w[abs(d)]
					}
				}
			}
		}
		copy(field, tmp)
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
