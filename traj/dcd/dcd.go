/*
 * dcd.go, part of gomembrane.
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

//Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories.
//Only CHARMM-style files (NAMD >= 2.1 included) without fixed atoms are supported.
//When the file carries the unit cell, it is returned as the box of each frame.
package dcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
)

const mAXTITLE int32 = 80

//DCDObj is a DCD trajectory open for reading. It implements membrane.Traj.
//Files ending in ".gz" are decompressed while read.
type DCDObj struct {
	natoms     int32
	nframes    int32 //as given in the header
	readable   bool
	readLast   bool //the 4th dimension block is missing in the last frame
	filename   string
	extrablock bool //unit cell in each frame
	fourdim    bool
	f          *os.File
	dec        io.ReadCloser
	dcd        *bufio.Reader
	fields     [3][]float32
	cell       [6]float64
	endian     binary.ByteOrder
}

//New opens the DCD file filename for reading.
func New(filename string) (*DCDObj, error) {
	D := new(DCDObj)
	D.filename = filename
	if err := D.initRead(); err != nil {
		D.close()
		return nil, errDecorate(err, "New")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *DCDObj) readInt() (int32, error) {
	var i int32
	err := binary.Read(D.dcd, D.endian, &i)
	return i, err
}

//expect reads an int32 and returns an error if it is not want.
func (D *DCDObj) expect(want int32, what string) error {
	got, err := D.readInt()
	if err != nil {
		return Error{fmt.Sprintf("%s: %s", what, err), D.filename, []string{"expect"}, true}
	}
	if got != want {
		return Error{fmt.Sprintf("%s: expected %d, got %d", what, want, got), D.filename, []string{"expect"}, true}
	}
	return nil
}

func (D *DCDObj) initRead() error {
	var err error
	D.f, err = os.Open(D.filename)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), D.filename, []string{"initRead"}, true}
	}
	var src io.Reader = D.f
	if strings.HasSuffix(strings.ToLower(D.filename), ".gz") {
		z, err := gzip.NewReader(bufio.NewReader(D.f))
		if err != nil {
			return Error{UnableToOpen + ": " + err.Error(), D.filename, []string{"initRead"}, true}
		}
		D.dec = z
		src = z
	}
	D.dcd = bufio.NewReader(src)
	//The first record is always 84 bytes long. That tells us the endianness.
	head := make([]byte, 8)
	if _, err := io.ReadFull(D.dcd, head); err != nil {
		return Error{WrongFormat + ": " + err.Error(), D.filename, []string{"initRead"}, true}
	}
	switch {
	case binary.LittleEndian.Uint32(head) == 84:
		D.endian = binary.LittleEndian
	case binary.BigEndian.Uint32(head) == 84:
		D.endian = binary.BigEndian
	default:
		return Error{WrongFormat + ": bad first record", D.filename, []string{"initRead"}, true}
	}
	if string(head[4:]) != "CORD" {
		return Error{WrongFormat + ": wrong magic number", D.filename, []string{"initRead"}, true}
	}
	buf := make([]byte, 80)
	if _, err := io.ReadFull(D.dcd, buf); err != nil {
		return Error{WrongFormat + ": " + err.Error(), D.filename, []string{"initRead"}, true}
	}
	field := func(i int) int32 { return int32(D.endian.Uint32(buf[4*i:])) }
	//X-plor sets the last one to zero, CHARMM to its version number.
	if field(19) == 0 {
		return Error{"X-plor DCD files are not supported", D.filename, []string{"initRead"}, true}
	}
	if field(8) != 0 {
		return Error{"DCD files with fixed atoms are not supported", D.filename, []string{"initRead"}, true}
	}
	D.nframes = field(0)
	D.extrablock = field(10) != 0
	D.fourdim = field(11) == 1
	if err := D.expect(84, "end of header"); err != nil {
		return err
	}
	titlesize, err := D.readInt()
	if err != nil {
		return Error{WrongFormat + ": " + err.Error(), D.filename, []string{"initRead"}, true}
	}
	ntitle, err := D.readInt()
	if err != nil || ntitle < 0 || titlesize != 4+ntitle*mAXTITLE {
		return Error{WrongFormat + ": bad title block", D.filename, []string{"initRead"}, true}
	}
	if _, err := D.dcd.Discard(int(ntitle * mAXTITLE)); err != nil {
		return Error{WrongFormat + ": " + err.Error(), D.filename, []string{"initRead"}, true}
	}
	if err := D.expect(titlesize, "end of title"); err != nil {
		return err
	}
	if err := D.expect(4, "atom number record"); err != nil {
		return err
	}
	if D.natoms, err = D.readInt(); err != nil || D.natoms <= 0 {
		return Error{WrongFormat + ": bad number of atoms", D.filename, []string{"initRead"}, true}
	}
	return D.expect(4, "atom number record")
}

//Readable returns true if frames can still be read from the trajectory.
func (D *DCDObj) Readable() bool {
	return D.readable
}

//Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

//Frames returns the number of frames given in the header. Programs that
//crash while writing may leave it at 0 or larger than the real count.
func (D *DCDObj) Frames() int {
	if D.nframes < 0 {
		return 0
	}
	return int(D.nframes)
}

//Next reads the next frame into output, if it is not nil. If a slice
//with 9 elements is given and the file has unit cell information, the
//box vectors are put there. At the end of the trajectory, it returns a
//membrane.LastFrameError and the trajectory is closed.
func (D *DCDObj) Next(output *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIniRead, D.filename, []string{"Next"}, true}
	}
	if output != nil && output.NVecs() < int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"Next"}, true}
	}
	if D.readLast {
		D.Close()
		return newlastFrameError(D.filename, "Next")
	}
	blocksize, err := D.readInt()
	if err == io.EOF {
		D.Close()
		return newlastFrameError(D.filename, "Next")
	} else if err != nil {
		return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
	}
	//Some programs only write the unit cell in some frames, so the block
	//size tells whether this is the cell or already the X block.
	hascell := false
	if D.extrablock && blocksize != 4*D.natoms {
		if blocksize == 48 {
			if err := binary.Read(D.dcd, D.endian, D.cell[:]); err != nil {
				return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
			}
			hascell = true
		} else if _, err := D.dcd.Discard(int(blocksize)); err != nil {
			return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
		}
		if err := D.expect(blocksize, "end of unit cell block"); err != nil {
			return errDecorate(err, "Next")
		}
		if blocksize, err = D.readInt(); err != nil {
			return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
		}
	}
	for i := range D.fields {
		if i > 0 {
			if blocksize, err = D.readInt(); err != nil {
				return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
			}
		}
		if blocksize != 4*D.natoms {
			return Error{fmt.Sprintf("%s: coordinate block of %d bytes for %d atoms", WrongFormat, blocksize, D.natoms), D.filename, []string{"Next"}, true}
		}
		if err := binary.Read(D.dcd, D.endian, D.fields[i]); err != nil {
			return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
		}
		if err := D.expect(blocksize, "end of coordinate block"); err != nil {
			return errDecorate(err, "Next")
		}
	}
	if D.fourdim {
		blocksize, err = D.readInt()
		if err == io.EOF {
			D.readLast = true
		} else if err != nil {
			return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
		} else if _, err := D.dcd.Discard(int(blocksize) + 4); err != nil {
			return Error{ReadError + ": " + err.Error(), D.filename, []string{"Next"}, true}
		}
	}
	if output != nil {
		for i := 0; i < int(D.natoms); i++ {
			output.Set(i, 0, float64(D.fields[0][i]))
			output.Set(i, 1, float64(D.fields[1][i]))
			output.Set(i, 2, float64(D.fields[2][i]))
		}
	}
	if hascell && len(box) > 0 && len(box[0]) >= 9 {
		copy(box[0], cellBox(D.cell).Vectors())
	}
	return nil
}

//cellBox builds a box from the unit cell record: A, gamma, B, beta, alpha, C.
//Newer CHARMM versions store the cosines of the angles, older ones and NAMD
//store the angles in degrees.
func cellBox(cell [6]float64) membrane.Box {
	angles := []float64{cell[4], cell[3], cell[1]}
	cosines := true
	for _, a := range angles {
		if math.Abs(a) > 1 {
			cosines = false
		}
	}
	if cosines {
		for i, a := range angles {
			angles[i] = math.Acos(a) * 180 / math.Pi
		}
	}
	return membrane.BoxFromCRYST1(cell[0], cell[2], cell[5], angles[0], angles[1], angles[2])
}

func (D *DCDObj) close() {
	if D.dec != nil {
		D.dec.Close()
	}
	if D.f != nil {
		D.f.Close()
	}
}

//Close closes the file. The object can't be read afterwards.
func (D *DCDObj) Close() {
	if !D.readable {
		return
	}
	D.close()
	D.readable = false
}

//Errors

func errDecorate(err error, caller string) error {
	return membrane.ErrDecorate(err, caller)
}

//Error is the error type for DCD trajectories. It implements membrane.Error and membrane.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

//Decorate adds deco to the decorations of the error and returns them.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

//Format returns "dcd".
func (err Error) Format() string { return "dcd" }

//Critical returns true if the error is critical.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NotEnoughSpace = "Not enough space in the given matrix"
	WrongFormat    = "Wrong format in the DCD file or frame"
)

//lastFrameError implements membrane.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "dcd" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
