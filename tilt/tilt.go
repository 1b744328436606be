/*
 * tilt.go, part of gomembrane.
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

//Package tilt computes the tilt of each lipid's director with respect to the
//local membrane normal.
package tilt

import (
	"log"
	"math"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/pbc"
	"github.com/rmera/gomembrane/surface"
	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//DefaultEpsilon is the shortest director, in A, and the smallest director-normal
//cosine, for which the Hamm-Kozlov tilt is computed.
const DefaultEpsilon = 1e-6

//Sample is the tilt of one lipid in one frame.
type Sample struct {
	Residue  int //the residue ID
	Source   int //index of the lipid in the slice given to Compute
	Type     string
	Frame    int
	Angle    float64 //radians, between the director and the inward normal, in [0, pi]
	Tilt     r3.Vec  //Hamm-Kozlov tilt vector
	Director r3.Vec  //unit vector from the head to the tails
	Normal   r3.Vec  //inward unit normal used
	Leaflet  surface.Leaflet
	Low      bool //the normal had low confidence
	Valid    bool //false if the director is degenerate
}

//ComputeAll returns one Sample per central image, indexed by the image's source, and
//a GeometryError for each DoTilt lipid with a director shorter than eps. Samples for
//degenerate directors have Valid set to false. Samples of central images without DoTilt
//are still computed, as they are needed for splay neighbours, but they never enter the
//tilt statistics.
func ComputeAll(frame *membrane.Frame, lipids []*membrane.Lipid, images []pbc.Image, field *surface.NormalField, eps float64) ([]Sample, []*membrane.GeometryError) {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	samples := make([]Sample, len(lipids))
	var gerrs []*membrane.GeometryError
	for i := range images {
		im := &images[i]
		if !im.Central() {
			continue
		}
		l := lipids[im.Source]
		s := &samples[im.Source]
		s.Residue = l.ID
		s.Source = im.Source
		s.Type = l.Type
		s.Frame = frame.Index
		head := l.HeadCentroid(frame.Coords)
		d := l.Director(frame.Coords)
		if r3.Norm(d) < eps {
			if im.DoTilt {
				gerrs = append(gerrs, membrane.NewGeometryError(frame.Index, l.ID, "director shorter than %g A", eps))
			}
			continue
		}
		out, leaflet, low := field.Nearest(head)
		s.Director, _ = v3.Unit(d)
		s.Normal = r3.Scale(-1, out)
		s.Leaflet = leaflet
		s.Low = low
		s.Angle, s.Tilt = Vector(s.Director, s.Normal, eps)
		s.Valid = true
	}
	if len(gerrs) > 0 {
		log.Printf("gomembrane/tilt: frame %d: %d lipids with degenerate directors", frame.Index, len(gerrs))
	}
	return samples, gerrs
}

//Select returns the valid samples of the central images with DoTilt set.
func Select(all []Sample, images []pbc.Image) []Sample {
	ret := make([]Sample, 0, len(all))
	for i := range images {
		im := &images[i]
		if im.Central() && im.DoTilt && all[im.Source].Valid {
			ret = append(ret, all[im.Source])
		}
	}
	return ret
}

//Compute returns the tilt samples for the lipids of central images with DoTilt set,
//and a GeometryError for each of those lipids with a degenerate director.
func Compute(frame *membrane.Frame, lipids []*membrane.Lipid, images []pbc.Image, field *surface.NormalField, eps float64) ([]Sample, []*membrane.GeometryError) {
	all, gerrs := ComputeAll(frame, lipids, images, field, eps)
	return Select(all, images), gerrs
}

//Vector returns the angle between the unit vectors d (director) and n (inward normal),
//and the Hamm-Kozlov tilt vector d/(d.n) - n. If d.n <= eps, the tangential
//projection d - (d.n)n is returned instead.
func Vector(d, n r3.Vec, eps float64) (float64, r3.Vec) {
	c := r3.Dot(d, n)
	angle := math.Acos(math.Max(-1, math.Min(1, c)))
	if c > eps {
		return angle, r3.Sub(r3.Scale(1/c, d), n)
	}
	return angle, membrane.Projection(d, n)
}
