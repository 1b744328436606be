/*
 * interfaces.go, part of gomembrane.
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

import v3 "github.com/rmera/gomembrane/v3"

//Traj is an interface for any trajectory object, including a Molecule Object
type Traj interface {
	//Is the trajectory ready to be read?
	Readable() bool

	//Next reads the next frame in a trajectory and puts it in output.
	//If output is nil, the frame is discarded. If box is given, and the format
	//supports it, the 9 components of the box vectors (A, B, C) are put in box[0].
	Next(output *v3.Matrix, box ...[]float64) error

	//Len returns the number of atoms per frame in the trajectory.
	Len() int
}

//FrameCounter is implemented by trajectories that store their number of
//frames, so it can be known without reading them. Frames returns 0 when
//the count is unknown.
type FrameCounter interface {
	Frames() int
}

//FrameSource gives random access to the frames of a trajectory.
//Implementations are not required to keep more than one frame in memory.
type FrameSource interface {
	//NFrames returns the total number of frames available.
	NFrames() int

	//Len returns the number of atoms per frame.
	Len() int

	//Frame returns the ith frame. The returned Frame must not be modified.
	Frame(i int) (*Frame, error)
}

//Atomer is the basic interface for a topology.
type Atomer interface {
	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	//Len returns the number of atoms in the topology.
	Len() int
}

//Errors

//Error is the interface for errors that all packages in this library implement.
type Error interface {
	Error() string
	Decorate(string) []string //Adds information when the error is passed up. An empty string just returns the current decoration.
	Critical() bool
}

//TrajError is the interface for errors in trajectories
type TrajError interface {
	Error
	FileName() string
	Format() string
}

//LastFrameError has a useless function to distinguish the harmless errors (i.e. last frame) so they can be
//filtered in a typeswith that looks for this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}
