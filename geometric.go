/*
 * geometric.go, part of gomembrane.
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

package membrane

import (
	"fmt"
	"math"

	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

//Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

//Angle takes 2 vectors and calculate the angle in radians between them
//It does not check for correctness or return errors!
func Angle(v1, v2 r3.Vec) float64 {
	argument := r3.Dot(v1, v2) / (r3.Norm(v1) * r3.Norm(v2))
	//Take care of floating point math errors
	if argument >= 1-appzero {
		return 0
	} else if argument <= -1+appzero {
		return math.Pi
	}
	return math.Acos(argument)
}

//Projection returns the component of v perpendicular to the unit vector n,
//i.e. its projection on the plane normal to n.
func Projection(v, n r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, n), n))
}

//MomentTensor returns the (unweighted) second moment tensor of the vectors
//in A around their geometric center.
func MomentTensor(A *v3.Matrix) (*v3.Matrix, error) {
	n := A.NVecs()
	if n == 0 {
		return nil, fmt.Errorf("gomembrane: MomentTensor: no points given")
	}
	center := v3.Zeros(n)
	center.SubVec(A, A.Centroid())
	moment := v3.Zeros(3)
	moment.Mul(center.T(), center)
	return moment, nil
}

//BestPlane returns the unit normal of the plane that best contains the points in
//coords, together with the eigenvalues of their moment tensor, in increasing order.
//The sign of the normal is arbitrary.
func BestPlane(coords *v3.Matrix) (r3.Vec, []float64, error) {
	moment, err := MomentTensor(coords)
	if err != nil {
		return r3.Vec{}, nil, err
	}
	evecs, evals, err := v3.EigenWrap(moment, -1)
	if err != nil {
		return r3.Vec{}, evals, err
	}
	normal := r3.Cross(evecs.Vec(2), evecs.Vec(1))
	normal, ok := v3.Unit(normal)
	if !ok {
		return normal, evals, fmt.Errorf("gomembrane: BestPlane: degenerate eigenvectors")
	}
	return normal, evals, nil
}
