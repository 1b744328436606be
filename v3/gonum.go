/*
 * gonum.go, part of gomembrane.
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

//gonum.go contains what is needed for handling the gonum/mat types.

package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space, wrapping a gonum Dense.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
//data is used as backing, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

//VecView returns a view of the ith vector of the matrix.
//Changes in the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from the ith vector and spanning r vectors.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

//Copy copies A into the receiver, which must have the same shape.
func (F *Matrix) Copy(A *Matrix) {
	F.Dense.Copy(A.Dense)
}

//Scale multiplies each element of A by f, putting the result in the receiver.
func (F *Matrix) Scale(f float64, A *Matrix) {
	F.Dense.Scale(f, A.Dense)
}

//Add puts A+B in the receiver.
func (F *Matrix) Add(A, B *Matrix) {
	F.Dense.Add(A.Dense, B.Dense)
}

//Sub puts A-B in the receiver.
func (F *Matrix) Sub(A, B *Matrix) {
	F.Dense.Sub(A.Dense, B.Dense)
}

//Returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}

//EigenWrap obtains the eigenvectors and eigenvalues of the symmetric 3x3 matrix in.
//The eigenvectors are returned as the rows (vectors) of a Matrix, sorted by increasing
//eigenvalue, forming a right-handed orthonormal set.
//Only the upper triangle of in is used.
func EigenWrap(in *Matrix, epsilon float64) (*Matrix, []float64, error) {
	if epsilon < 0 {
		epsilon = appzero
	}
	r, c := in.Dims()
	if r != 3 || c != 3 {
		return nil, nil, Error{string(ErrDeterminant), []string{"EigenWrap"}, true}
	}
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, in.At(i, j))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, Error{string(ErrEigen), []string{"EigenWrap"}, true}
	}
	evals := es.Values(nil) //gonum gives them in ascending order.
	var cols mat.Dense
	es.VectorsTo(&cols)
	evecs := Zeros(3)
	evecs.Dense.CloneFrom(cols.T()) //we want the vectors as rows.
	for i := 0; i < 3; i++ {
		vi := evecs.Vec(i)
		for j := i + 1; j < 3; j++ {
			vj := evecs.Vec(j)
			if d := math.Abs(vi.X*vj.X + vi.Y*vj.Y + vi.Z*vj.Z); d > math.Sqrt(epsilon) {
				return evecs, evals, Error{fmt.Sprintf("Eigenvectors %d and %d not orthogonal. Dot: %g", i, j, d), []string{"EigenWrap"}, true}
			}
		}
	}
	if det(evecs) < 0 {
		evecs.Scale(-1, evecs)
	}
	return evecs, evals, nil
}

//Errors

//Error is the error type for the v3 package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("gomembrane/v3: A Matrix should have 3 columns")
	ErrEigen           = PanicMsg("gomembrane/v3: Can't obtain eigenvectors/eigenvalues of given matrix")
	ErrDeterminant     = PanicMsg("gomembrane/v3: Determinants are only available for 3x3 matrices")
	ErrShape           = PanicMsg("gomembrane/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("gomembrane/v3: index out of range")
)
