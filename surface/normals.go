/*
 * normals.go, part of gomembrane.
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
	"log"
	"math"

	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

//point is an interface point, indexed in a k-d tree.
type point struct {
	r3.Vec
	cell int //the cell in the central image. Replicas keep the cell of their source.
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	}
	panic("gomembrane/surface: illegal dimension")
}

func (p point) Dims() int { return 3 }

//Distance returns the squared distance between p and c.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

//plane is required to help points.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.Dim) < 0
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

//NormalField contains one outward (toward the water) unit normal per lateral cell and
//leaflet. Cells where the normal could not be fitted are flagged as low-confidence, and
//get either the normal of the previous field or the mean normal of the leaflet.
//A NormalField is not modified after it is built, and can be shared among goroutines.
type NormalField struct {
	NA, NB int
	Box    membrane.Box
	Frame  int
	Normal [2][]r3.Vec
	Height [2][]float64 //interface heights, with the missing ones filled in.
	Low    [2][]bool
	NLow   int //number of low-confidence cells, both leaflets
}

//needed for a plane fit.
const minNeighbours = 3

//collinearity threshold for the ratio of the 2 largest eigenvalues of the moment tensor.
const collinear = 1e-6

//up returns the unit normal to the membrane plane of the box.
func up(box membrane.Box) r3.Vec {
	return r3.Unit(r3.Cross(box.A, box.B))
}

//Normals fits a plane to the interface points of each leaflet found within withinSize
//of each cell's point (taking periodicity into account) and returns the field of outward
//normals. If previous is not nil and has the same grid, its normals are used for the cells
//where a plane can't be fitted. Otherwise, those cells get the leaflet's mean normal.
func Normals(I *Interface, box membrane.Box, withinSize float64, previous *NormalField) (*NormalField, error) {
	if withinSize <= 0 {
		return nil, membrane.NewConfigError("within_size_normals must be positive, got %g", withinSize)
	}
	if !box.Valid() {
		return nil, membrane.NewDataGapError(I.Frame, membrane.GapBox, "invalid box")
	}
	if previous != nil && (previous.NA != I.NA || previous.NB != I.NB) {
		previous = nil
	}
	N := &NormalField{NA: I.NA, NB: I.NB, Box: box, Frame: I.Frame}
	u := up(box)
	ncells := I.NA * I.NB
	for _, l := range []Leaflet{Upper, Lower} {
		outward := u
		if l == Lower {
			outward = r3.Scale(-1, u)
		}
		N.Normal[l] = make([]r3.Vec, ncells)
		N.Height[l] = make([]float64, ncells)
		N.Low[l] = make([]bool, ncells)
		pts := make(points, 0, 9*ncells)
		var hsum float64
		var hn int
		for c, h := range I.Height[l] {
			if math.IsNaN(h) {
				continue
			}
			hsum += h
			hn++
			p := r3.Add(lateral(I, c, box), r3.Scale(h, u))
			for a := -1; a <= 1; a++ {
				for b := -1; b <= 1; b++ {
					shift := r3.Add(r3.Scale(float64(a), box.A), r3.Scale(float64(b), box.B))
					pts = append(pts, point{Vec: r3.Add(p, shift), cell: c})
				}
			}
		}
		meanh := hsum / float64(hn)
		tree := kdtree.New(pts, false)
		var sum r3.Vec
		for c, h := range I.Height[l] {
			N.Height[l][c] = h
			if math.IsNaN(h) {
				N.Low[l][c] = true
				continue
			}
			q := point{Vec: r3.Add(lateral(I, c, box), r3.Scale(h, u)), cell: c}
			n, ok := fitNormal(tree, q, withinSize)
			if !ok {
				N.Low[l][c] = true
				continue
			}
			if r3.Dot(n, outward) < 0 {
				n = r3.Scale(-1, n)
			}
			N.Normal[l][c] = n
			sum = r3.Add(sum, n)
		}
		mean, ok := v3.Unit(sum)
		if !ok {
			mean = outward
		}
		for c, low := range N.Low[l] {
			if !low {
				continue
			}
			N.NLow++
			switch {
			case previous != nil:
				N.Normal[l][c] = previous.Normal[l][c]
				if math.IsNaN(N.Height[l][c]) {
					N.Height[l][c] = previous.Height[l][c]
				}
			default:
				N.Normal[l][c] = mean
				if math.IsNaN(N.Height[l][c]) {
					N.Height[l][c] = meanh
				}
			}
		}
	}
	if N.NLow > 0 {
		log.Printf("gomembrane/surface: frame %d: %d of %d cells with low-confidence normals", I.Frame, N.NLow, 2*ncells)
	}
	return N, nil
}

//lateral returns the lateral position of cell c (row-major, i*NB+j).
func lateral(I *Interface, c int, box membrane.Box) r3.Vec {
	i, j := c/I.NB, c%I.NB
	return box.FromFrac(r3.Vec{X: (float64(i) + 0.5) / float64(I.NA), Y: (float64(j) + 0.5) / float64(I.NB)})
}

//fitNormal returns the normal to the best plane through the points of tree within
//radius of q. It returns false if there are too few points or they are collinear.
func fitNormal(tree *kdtree.Tree, q point, radius float64) (r3.Vec, bool) {
	keep := kdtree.NewDistKeeper(radius * radius)
	tree.NearestSet(keep, q)
	neigh := make([]float64, 0, 3*keep.Len())
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		p := c.Comparable.(point)
		neigh = append(neigh, p.X, p.Y, p.Z)
	}
	if len(neigh) < 3*minNeighbours {
		return r3.Vec{}, false
	}
	m, err := v3.NewMatrix(neigh)
	if err != nil {
		return r3.Vec{}, false
	}
	n, evals, err := membrane.BestPlane(m)
	if err != nil || evals[2] <= 0 || evals[1] <= collinear*evals[2] {
		return r3.Vec{}, false
	}
	return n, true
}

//At returns the outward normal of leaflet l at the lateral position of p, bilinearly
//interpolated over the periodic grid, and whether any of the cells involved has a
//low-confidence normal.
func (N *NormalField) At(p r3.Vec, l Leaflet) (r3.Vec, bool) {
	var n r3.Vec
	low := false
	N.bilinear(p, func(c int, w float64) {
		n = r3.Add(n, r3.Scale(w, N.Normal[l][c]))
		low = low || N.Low[l][c]
	})
	ret, ok := v3.Unit(n)
	if !ok {
		//opposite normals cancelled out, which should not happen for a sane membrane.
		ret = N.Normal[l][N.cell(p)]
		low = true
	}
	return ret, low
}

//HeightAt returns the interface height of leaflet l at the lateral position of p,
//bilinearly interpolated.
func (N *NormalField) HeightAt(p r3.Vec, l Leaflet) float64 {
	var h float64
	N.bilinear(p, func(c int, w float64) {
		h += w * N.Height[l][c]
	})
	return h
}

//Nearest returns the outward normal of the leaflet whose surface is closest to p,
//together with the leaflet and the low-confidence flag.
func (N *NormalField) Nearest(p r3.Vec) (r3.Vec, Leaflet, bool) {
	z := r3.Dot(p, up(N.Box))
	l := Upper
	if math.Abs(z-N.HeightAt(p, Lower)) < math.Abs(z-N.HeightAt(p, Upper)) {
		l = Lower
	}
	n, low := N.At(p, l)
	return n, l, low
}

//Leaflet returns the leaflet whose surface is closest to p.
func (N *NormalField) Leaflet(p r3.Vec) Leaflet {
	z := r3.Dot(p, up(N.Box))
	if math.Abs(z-N.HeightAt(p, Lower)) < math.Abs(z-N.HeightAt(p, Upper)) {
		return Lower
	}
	return Upper
}

func (N *NormalField) cell(p r3.Vec) int {
	f := N.Box.Frac(p)
	i := wrap(int(math.Floor(f.X*float64(N.NA))), N.NA)
	j := wrap(int(math.Floor(f.Y*float64(N.NB))), N.NB)
	return i*N.NB + j
}

//bilinear calls f with each of the 4 cells around p and their weights.
func (N *NormalField) bilinear(p r3.Vec, f func(c int, w float64)) {
	fr := N.Box.Frac(p)
	u := fr.X*float64(N.NA) - 0.5
	v := fr.Y*float64(N.NB) - 0.5
	i0, j0 := math.Floor(u), math.Floor(v)
	t, s := u-i0, v-j0
	ws := [4]float64{(1 - t) * (1 - s), t * (1 - s), (1 - t) * s, t * s}
	for k, w := range ws {
		if w == 0 {
			continue
		}
		i := wrap(int(i0)+k%2, N.NA)
		j := wrap(int(j0)+k/2, N.NB)
		f(i*N.NB+j, w)
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
