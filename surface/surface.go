/*
 * surface.go, part of gomembrane.
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

//Package surface locates the lipid/water interfaces of a bilayer from a density grid,
//and derives from them a field of local membrane normals.
package surface

import (
	"fmt"
	"math"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/density"
)

//Leaflet identifies one of the two monolayers.
type Leaflet int

const (
	Upper Leaflet = iota //water above
	Lower                //water below
)

func (l Leaflet) String() string {
	switch l {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	}
	return fmt.Sprintf("Leaflet(%d)", int(l))
}

//Interface contains the heights of the two lipid/water interfaces over the
//lateral grid. Cells where no interface was found contain NaN.
type Interface struct {
	NA, NB int
	Box    membrane.Box
	Frame  int
	Height [2][]float64
}

//Found returns true if an interface for leaflet l was found at the cell i,j.
func (I *Interface) Found(l Leaflet, i, j int) bool {
	return !math.IsNaN(I.Height[l][i*I.NB+j])
}

//Coverage returns the fraction of cells where an interface for leaflet l was found.
func (I *Interface) Coverage(l Leaflet) float64 {
	n := 0
	for _, h := range I.Height[l] {
		if !math.IsNaN(h) {
			n++
		}
	}
	return float64(n) / float64(len(I.Height[l]))
}

//Extract finds, for each lateral cell of G, the height at which the lipid-minus-water
//density changes sign between two voxels that both have a total density of at least
//cutoff. The crossing is linearly interpolated. A crossing with water above belongs to
//the upper leaflet, one with water below to the lower leaflet. If a column has several
//crossings for one leaflet, the steepest one is kept.
//It returns a *membrane.DataGapError if one of the interfaces can't be found anywhere.
func Extract(G *density.Grid, cutoff float64) (*Interface, error) {
	I := &Interface{NA: G.NA, NB: G.NB, Box: G.Box, Frame: G.Frame}
	for l := range I.Height {
		I.Height[l] = make([]float64, G.NA*G.NB)
	}
	diff := make([]float64, G.NZ)
	tot := make([]float64, G.NZ)
	for i := 0; i < G.NA; i++ {
		for j := 0; j < G.NB; j++ {
			lip, wat := G.LipidColumn(i, j), G.WaterColumn(i, j)
			for k := range diff {
				diff[k] = lip[k] - wat[k]
				tot[k] = lip[k] + wat[k]
			}
			var best [2]float64
			h := [2]float64{math.NaN(), math.NaN()}
			for k := 0; k < G.NZ-1; k++ {
				d0, d1 := diff[k], diff[k+1]
				if tot[k] < cutoff || tot[k+1] < cutoff || d0 == d1 {
					continue
				}
				var l Leaflet
				switch {
				case d0 > 0 && d1 <= 0:
					l = Upper
				case d0 <= 0 && d1 > 0:
					l = Lower
				default:
					continue
				}
				steep := math.Abs(d0 - d1)
				if steep > best[l] {
					best[l] = steep
					h[l] = G.Z(k) + G.DZ*d0/(d0-d1)
				}
			}
			I.Height[Upper][i*G.NB+j] = h[Upper]
			I.Height[Lower][i*G.NB+j] = h[Lower]
		}
	}
	for _, l := range []Leaflet{Upper, Lower} {
		if I.Coverage(l) == 0 {
			return nil, membrane.NewDataGapError(G.Frame, membrane.GapInterface, "no %s interface with density cutoff %g", l, cutoff)
		}
	}
	return I, nil
}
