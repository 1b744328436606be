/*
 * dcd_write.go, part of gomembrane.
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

package dcd

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"

	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
)

//DCDWObj is a DCD trajectory open for writing. Every frame carries a unit
//cell record, with the angles in degrees, as NAMD writes them.
type DCDWObj struct {
	natoms   int32
	writable bool
	filename string
	frames   int32
	dcd      *os.File
	buf      bytes.Buffer
	endian   binary.ByteOrder
}

//NewWriter creates the file filename and returns a writer for a trajectory
//with natoms atoms per frame. Compressed output is not supported, as the
//frame count in the header is updated after each frame.
func NewWriter(filename string, natoms int) (*DCDWObj, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".gz") {
		return nil, Error{"compressed DCD files can't be written", filename, []string{"NewWriter"}, true}
	}
	if natoms <= 0 {
		return nil, Error{"the number of atoms must be positive", filename, []string{"NewWriter"}, true}
	}
	D := &DCDWObj{natoms: int32(natoms), filename: filename, endian: binary.LittleEndian}
	if err := D.initWrite(); err != nil {
		return nil, errDecorate(err, "NewWriter")
	}
	return D, nil
}

//put appends the binary representation of data to the internal buffer.
func (D *DCDWObj) put(data ...interface{}) {
	for _, d := range data {
		binary.Write(&D.buf, D.endian, d) //writing to a bytes.Buffer can't fail.
	}
}

func (D *DCDWObj) flush(caller string) error {
	_, err := D.buf.WriteTo(D.dcd)
	D.buf.Reset()
	if err != nil {
		return Error{err.Error(), D.filename, []string{caller}, true}
	}
	return nil
}

func (D *DCDWObj) initWrite() error {
	var err error
	D.dcd, err = os.Create(D.filename)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), D.filename, []string{"initWrite"}, true}
	}
	header := make([]int32, 20)
	//header[0], the number of frames, is updated after each frame.
	header[2] = 1   //steps between frames
	header[10] = 1  //unit cell present
	header[19] = 24 //CHARMM version
	D.put(int32(84), []byte("CORD"), header[:9], float32(1), header[10:], int32(84))
	title := bytes.Repeat([]byte(" "), int(2*mAXTITLE))
	copy(title, "REMARKS written by gomembrane")
	D.put(4+2*mAXTITLE, int32(2), title, 4+2*mAXTITLE)
	D.put(int32(4), D.natoms, int32(4))
	if err := D.flush("initWrite"); err != nil {
		D.dcd.Close()
		return err
	}
	D.writable = true
	return nil
}

//WNext writes coords as the next frame. If a box (9 numbers, the A, B and C
//vectors) is given, it is written as the unit cell. Otherwise, a zero cell is written.
func (D *DCDWObj) WNext(coords *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if coords == nil || coords.NVecs() != int(D.natoms) {
		return Error{"coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	var cell [6]float64
	if len(box) > 0 {
		if b, err := membrane.BoxFromVectors(box[0]); err == nil && b.Valid() {
			a, bl, c, alpha, beta, gamma := b.CRYST1()
			cell = [6]float64{a, gamma, bl, beta, alpha, c}
		}
	}
	D.put(int32(48), cell[:], int32(48))
	block := make([]float32, D.natoms)
	size := 4 * D.natoms
	for j := 0; j < 3; j++ {
		for i := range block {
			block[i] = float32(coords.At(i, j))
		}
		D.put(size, block, size)
	}
	if err := D.flush("WNext"); err != nil {
		return err
	}
	D.frames++
	return D.updateFrames()
}

//the number of frames goes in the header, right after the magic number.
func (D *DCDWObj) updateFrames() error {
	b := make([]byte, 4)
	D.endian.PutUint32(b, uint32(D.frames))
	if _, err := D.dcd.WriteAt(b, 8); err != nil {
		return Error{err.Error(), D.filename, []string{"updateFrames"}, true}
	}
	return nil
}

//Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int { return int(D.natoms) }

//Frames returns the number of frames written so far.
func (D *DCDWObj) Frames() int { return int(D.frames) }

//Close closes the file.
func (D *DCDWObj) Close() {
	if !D.writable {
		return
	}
	D.dcd.Close()
	D.writable = false
}
