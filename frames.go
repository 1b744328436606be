/*
 * frames.go, part of gomembrane.
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
	"log"
	"math"
	"sync"

	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Box is a periodic cell given by its three lattice vectors, in A.
//The membrane plane is assumed to be spanned by A and B.
type Box struct {
	A, B, C r3.Vec
}

//BoxFromVectors builds a box from the 9 components of the A, B and C vectors,
//in that order, as stored in trajectory files.
func BoxFromVectors(v []float64) (Box, error) {
	if len(v) < 9 {
		return Box{}, fmt.Errorf("gomembrane: need 9 box components, got %d", len(v))
	}
	b := Box{
		A: r3.Vec{X: v[0], Y: v[1], Z: v[2]},
		B: r3.Vec{X: v[3], Y: v[4], Z: v[5]},
		C: r3.Vec{X: v[6], Y: v[7], Z: v[8]},
	}
	return b, nil
}

//BoxFromCRYST1 builds a box from the cell lengths (A) and angles (degrees),
//as given in the CRYST1 record of PDB files. A is put along x and B in the xy plane.
func BoxFromCRYST1(a, b, c, alpha, beta, gamma float64) Box {
	const deg2rad = math.Pi / 180
	al, be, ga := alpha*deg2rad, beta*deg2rad, gamma*deg2rad
	ret := Box{}
	ret.A = r3.Vec{X: a}
	ret.B = r3.Vec{X: b * math.Cos(ga), Y: b * math.Sin(ga)}
	cx := c * math.Cos(be)
	cy := c * (math.Cos(al) - math.Cos(be)*math.Cos(ga)) / math.Sin(ga)
	cz := math.Sqrt(math.Max(c*c-cx*cx-cy*cy, 0))
	ret.C = r3.Vec{X: cx, Y: cy, Z: cz}
	return ret
}

//CRYST1 returns the cell lengths (A) and angles (degrees) of the box.
func (b Box) CRYST1() (a, bl, c, alpha, beta, gamma float64) {
	const rad2deg = 180 / math.Pi
	angle := func(u, v r3.Vec) float64 {
		return math.Acos(r3.Cos(u, v)) * rad2deg
	}
	a, bl, c = r3.Norm(b.A), r3.Norm(b.B), r3.Norm(b.C)
	return a, bl, c, angle(b.B, b.C), angle(b.A, b.C), angle(b.A, b.B)
}

//Vectors returns the 9 components of the box vectors.
func (b Box) Vectors() []float64 {
	return []float64{b.A.X, b.A.Y, b.A.Z, b.B.X, b.B.Y, b.B.Z, b.C.X, b.C.Y, b.C.Z}
}

//Volume returns the (signed) volume of the box.
func (b Box) Volume() float64 {
	return r3.Dot(b.A, r3.Cross(b.B, b.C))
}

//Valid returns true if the box vectors span a non-zero volume.
func (b Box) Valid() bool {
	return math.Abs(b.Volume()) > 1e-9
}

//MinLength returns the length of the shortest box vector.
func (b Box) MinLength() float64 {
	return math.Min(r3.Norm(b.A), math.Min(r3.Norm(b.B), r3.Norm(b.C)))
}

//LateralArea returns the area of the AB face.
func (b Box) LateralArea() float64 {
	return r3.Norm(r3.Cross(b.A, b.B))
}

//Frac returns the fractional coordinates of p in the box.
//The box must be Valid.
func (b Box) Frac(p r3.Vec) r3.Vec {
	v := b.Volume()
	return r3.Vec{
		X: r3.Dot(p, r3.Cross(b.B, b.C)) / v,
		Y: r3.Dot(p, r3.Cross(b.C, b.A)) / v,
		Z: r3.Dot(p, r3.Cross(b.A, b.B)) / v,
	}
}

//FromFrac returns the cartesian coordinates for the fractional coordinates f.
func (b Box) FromFrac(f r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(f.X, b.A), r3.Scale(f.Y, b.B)), r3.Scale(f.Z, b.C))
}

//Frame is one snapshot of a trajectory. Frames are never modified
//once produced.
type Frame struct {
	Index  int
	Coords *v3.Matrix
	Box    Box
}

//MemSource is a FrameSource over frames kept in memory.
type MemSource struct {
	frames []*Frame
}

//NewMemSource returns a MemSource for the given frames. The frames are re-indexed
//according to their position in the slice. All frames must have the same number of atoms.
func NewMemSource(frames ...*Frame) (*MemSource, error) {
	if len(frames) == 0 {
		return nil, NewConfigError("NewMemSource: no frames given")
	}
	n := frames[0].Coords.NVecs()
	for i, f := range frames {
		if f.Coords.NVecs() != n {
			return nil, NewConfigError("NewMemSource: frame %d has %d atoms, expected %d", i, f.Coords.NVecs(), n)
		}
		f.Index = i
	}
	return &MemSource{frames: frames}, nil
}

func (M *MemSource) NFrames() int { return len(M.frames) }

func (M *MemSource) Len() int { return M.frames[0].Coords.NVecs() }

//Frame returns the ith frame.
func (M *MemSource) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(M.frames) {
		return nil, fmt.Errorf("gomembrane: frame %d out of range (%d frames)", i, len(M.frames))
	}
	return M.frames[i], nil
}

//SeqSource serves the frames of a sequential trajectory as a FrameSource.
//Frames are read forward. Requesting an earlier frame than the last one read
//reopens the trajectory. It is safe for concurrent use, but it is only efficient
//when frames are requested in order.
type SeqSource struct {
	open       func() (Traj, error)
	traj       Traj
	next       int //index of the frame that the next call to Next will read
	nframes    int //-1 if not yet known
	natoms     int
	defaultBox Box
	mu         sync.Mutex
}

//NewSeqSource returns a SeqSource for the trajectory returned by open.
//defaultBox is used for the frames where the trajectory gives no box.
func NewSeqSource(open func() (Traj, error), defaultBox Box) (*SeqSource, error) {
	t, err := open()
	if err != nil {
		return nil, ErrDecorate(err, "NewSeqSource")
	}
	return &SeqSource{open: open, traj: t, nframes: -1, natoms: t.Len(), defaultBox: defaultBox}, nil
}

func (S *SeqSource) Len() int { return S.natoms }

//NFrames returns the number of frames in the trajectory. If the trajectory
//implements FrameCounter with a known count, that is used. Otherwise, the first
//call reads the whole trajectory once, discarding the frames. Frames that can't
//be read are counted, unless the error is critical, in which case the counting
//stops after that frame.
func (S *SeqSource) NFrames() int {
	S.mu.Lock()
	defer S.mu.Unlock()
	if S.nframes >= 0 {
		return S.nframes
	}
	if c, ok := S.traj.(FrameCounter); ok && c.Frames() > 0 {
		S.nframes = c.Frames()
		return S.nframes
	}
	t, err := S.open()
	if err != nil {
		return 0
	}
	if c, ok := t.(interface{ Close() }); ok {
		defer c.Close()
	}
	n := 0
	for {
		err := t.Next(nil)
		if _, ok := err.(LastFrameError); ok {
			break
		}
		n++
		if err != nil && IsCritical(err) {
			break
		}
	}
	S.nframes = n
	return n
}

func (S *SeqSource) reopen() error {
	if c, ok := S.traj.(interface{ Close() }); ok {
		c.Close()
	}
	t, err := S.open()
	if err != nil {
		return err
	}
	S.traj = t
	S.next = 0
	return nil
}

//Frame returns the ith frame of the trajectory.
func (S *SeqSource) Frame(i int) (*Frame, error) {
	S.mu.Lock()
	defer S.mu.Unlock()
	if i < S.next {
		if err := S.reopen(); err != nil {
			return nil, ErrDecorate(err, "SeqSource.Frame")
		}
	}
	//a frame counts as read even if reading it failed, so the following
	//frames keep their indexes.
	for S.next < i {
		err := S.traj.Next(nil)
		S.next++
		if err == nil {
			continue
		}
		if _, ok := err.(LastFrameError); ok || IsCritical(err) {
			return nil, ErrDecorate(err, "SeqSource.Frame")
		}
		log.Printf("gomembrane: frame %d can't be read: %v", S.next-1, err)
	}
	coords := v3.Zeros(S.natoms)
	box := make([]float64, 9)
	err := S.traj.Next(coords, box)
	S.next++
	if err != nil {
		return nil, ErrDecorate(err, "SeqSource.Frame")
	}
	b, _ := BoxFromVectors(box)
	if !b.Valid() {
		b = S.defaultBox
	}
	return &Frame{Index: i, Coords: coords, Box: b}, nil
}
