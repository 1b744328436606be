/*
 * gocoords.go, part of gomembrane.
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

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//METHODS

//NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Vec returns the ith vector of F as an r3.Vec
func (F *Matrix) Vec(i int) r3.Vec {
	row := F.RawRowView(i)
	return r3.Vec{X: row[0], Y: row[1], Z: row[2]}
}

//SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v r3.Vec) {
	row := F.RawRowView(i)
	row[0], row[1], row[2] = v.X, v.Y, v.Z
}

//SwapVecs swaps the ith and jth vectors of F
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	vi := F.Vec(i)
	F.SetVec(i, F.Vec(j))
	F.SetVec(j, vi)
}

//AddVec adds the vector vec to each vector of A, putting the result on the receiver.
func (F *Matrix) AddVec(A *Matrix, vec r3.Vec) {
	if A.NVecs() != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < A.NVecs(); i++ {
		F.SetVec(i, r3.Add(A.Vec(i), vec))
	}
}

//SubVec subtracts the vector vec from each vector of the matrix A, putting
//the result on the receiver.
func (F *Matrix) SubVec(A *Matrix, vec r3.Vec) {
	F.AddVec(A, r3.Scale(-1, vec))
}

//SomeVecs puts in the receiver the vectors of A with indexes in clist,
//in the same order as in clist. It panics if F doesn't have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		F.SetVec(key, A.Vec(val))
	}
}

//SomeVecsSafe is like SomeVecs but returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{e.Error(), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	n := A.NVecs()
	for _, v := range clist {
		if v < 0 || v >= n {
			return Error{fmt.Sprintf("Index %d out of range for a Matrix with %d vectors", v, n), []string{"SomeVecsSafe"}, true}
		}
	}
	F.SomeVecs(A, clist)
	return nil
}

//SetVecs sets the vectors with indexes in clist in the receiver to the vectors
//of A, in order.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		F.SetVec(val, A.Vec(key))
	}
}

//Centroid returns the geometric center of the vectors of F with indexes
//in clist, or of all vectors if clist is empty.
func (F *Matrix) Centroid(clist ...int) r3.Vec {
	var sum r3.Vec
	if len(clist) == 0 {
		n := F.NVecs()
		for i := 0; i < n; i++ {
			sum = r3.Add(sum, F.Vec(i))
		}
		if n == 0 {
			return sum
		}
		return r3.Scale(1/float64(n), sum)
	}
	for _, i := range clist {
		sum = r3.Add(sum, F.Vec(i))
	}
	return r3.Scale(1/float64(len(clist)), sum)
}

//Returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, _ := F.Dims()
	v := make([]string, 0, r+2)
	v = append(v, "\n[")
	for i := 0; i < r; i++ {
		row := F.RawRowView(i)
		v = append(v, fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2]))
	}
	v = append(v, " ]")
	return strings.Join(v, "\n")
}

//Unit returns a unitary vector in the direction of v, and
//false if v is too short to have a direction.
func Unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n <= appzero {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}
