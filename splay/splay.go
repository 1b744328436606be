/*
 * splay.go, part of gomembrane.
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


//Package splay finds pairs of neighbouring lipids, under periodic boundary
//conditions, and computes the splay of each pair.
package splay

import (
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/pbc"
	"github.com/rmera/gomembrane/tilt"
	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Options for the pair search.
type Options struct {
	distance float64
	angle    float64
}

//DefaultOptions returns options with a distance cutoff of 10 A and an
//angle cutoff of 0.175 rad (about 10 degrees).
func DefaultOptions() *Options {
	return &Options{distance: 10, angle: 0.175}
}

//DistanceCutoff returns the largest neutral plane distance, in A, for two lipids
//to be considered neighbours, and sets it if a positive value is given.
func (o *Options) DistanceCutoff(d ...float64) float64 {
	ret := o.distance
	if len(d) > 0 && d[0] > 0 {
		o.distance = d[0]
	}
	return ret
}

//AngleCutoff returns the largest tilt angle, in radians, for a lipid to be
//part of a pair, and sets it if a positive value is given.
func (o *Options) AngleCutoff(a ...float64) float64 {
	ret := o.angle
	if len(a) > 0 && a[0] > 0 {
		o.angle = a[0]
	}
	return ret
}

//Pair is the splay of two neighbouring lipids in one frame.
type Pair struct {
	A, B       int //residue IDs. A is the central one (the lowest ID if both are).
	Frame      int
	Value      float64 //1/A
	Separation float64 //neutral plane distance, A
	Key        string  //lipid types of the pair, sorted and joined by "-"
}

//Key returns the pair-type key for two lipid types: the type itself if both
//are equal, otherwise both types sorted and joined with "-".
func Key(t1, t2 string) string {
	if t1 == t2 {
		return t1
	}
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	return strings.Join([]string{t1, t2}, "-")
}

//entry is an image in the lateral index.
type entry struct {
	geom.Point
	image int
}

type candidate struct {
	pair  Pair
	image int
}

//Compute returns the splay pairs of the frame. images are the periodic images of
//the lipids, and samples holds the tilt of each lipid, indexed by the source of the images
//(as returned by tilt.ComputeAll). Each unordered pair of lipids appears at most once, at
//the shortest distance among all its images, and only if at least one of the lipids
//is central (DoSplay). The pairs are sorted by A, then B.
func Compute(frame *membrane.Frame, images []pbc.Image, samples []tilt.Sample, options ...*Options) []Pair {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	cutoff, maxangle := o.DistanceCutoff(), o.AngleCutoff()
	ok := func(im *pbc.Image) bool {
		s := &samples[im.Source]
		return s.Valid && s.Angle < maxangle
	}
	tree := rtree.NewTree(25, 50)
	for i := range images {
		if ok(&images[i]) {
			tree.Insert(&entry{Point: geom.Point{X: images[i].Pos.X, Y: images[i].Pos.Y}, image: i})
		}
	}
	best := make(map[[2]int]candidate)
	for r := range images {
		R := &images[r]
		if !R.DoSplay || !ok(R) {
			continue
		}
		sr := &samples[R.Source]
		query := &geom.Bounds{
			Min: geom.Point{X: R.Pos.X - cutoff, Y: R.Pos.Y - cutoff},
			Max: geom.Point{X: R.Pos.X + cutoff, Y: R.Pos.Y + cutoff},
		}
		for _, found := range tree.SearchIntersect(query) {
			s := found.(*entry).image
			S := &images[s]
			ss := &samples[S.Source]
			if S.Source == R.Source || ss.Leaflet != sr.Leaflet {
				continue
			}
			x := r3.Sub(S.Pos, R.Pos)
			dist := r3.Norm(x)
			if dist > cutoff {
				continue
			}
			value, valid := Value(sr.Director, ss.Director, sr.Normal, ss.Normal, x)
			if !valid {
				continue
			}
			key := [2]int{R.Source, S.Source}
			if key[1] < key[0] {
				key[0], key[1] = key[1], key[0]
			}
			a, b := R.Residue, S.Residue
			if b.DoSplay && b.ID < a.ID {
				a, b = b, a
			}
			c := candidate{pair: Pair{A: a.ID, B: b.ID, Frame: frame.Index, Value: value, Separation: dist, Key: Key(a.Type, b.Type)}, image: s}
			prev, seen := best[key]
			if !seen || dist < prev.pair.Separation || (dist == prev.pair.Separation && s < prev.image) {
				best[key] = c
			}
		}
	}
	ret := make([]Pair, 0, len(best))
	for _, c := range best {
		ret = append(ret, c.pair)
	}
	Sort(ret)
	return ret
}

//Value returns the splay of two lipids with unit directors dR and dS, inward unit
//normals nR and nS, separated by x (the position of S minus that of R):
//(dS-dR).g/|x| where g is the unit projection of x on the plane perpendicular to
//the mean normal. The value is symmetric in R and S, and zero for parallel
//directors. It returns false if x is parallel to the mean normal.
func Value(dR, dS, nR, nS, x r3.Vec) (float64, bool) {
	n, ok := v3.Unit(r3.Add(nR, nS))
	if !ok {
		return 0, false
	}
	g, ok := v3.Unit(membrane.Projection(x, n))
	if !ok {
		return 0, false
	}
	return r3.Dot(r3.Sub(dS, dR), g) / r3.Norm(x), true
}

//Sort sorts pairs by frame, then A, then B.
func Sort(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		p, q := &pairs[i], &pairs[j]
		if p.Frame != q.Frame {
			return p.Frame < q.Frame
		}
		if p.A != q.A {
			return p.A < q.A
		}
		return p.B < q.B
	})
}

//Keys returns the sorted, distinct pair-type keys in pairs.
func Keys(pairs []Pair) []string {
	set := make(map[string]bool)
	for _, p := range pairs {
		set[p.Key] = true
	}
	ret := make([]string, 0, len(set))
	for k := range set {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Values returns the splay values of the pairs with the given key, or of all
//pairs if key is empty.
func Values(pairs []Pair, key string) []float64 {
	ret := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if key == "" || p.Key == key {
			ret = append(ret, p.Value)
		}
	}
	return ret
}
