/*
 * files.go, part of gomembrane.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gomembrane/v3"
)

//PDB reading

//parses the fixed columns of an ATOM or HETATM line. If atom is nil,
//only the coordinates are read.
func readPDBLine(line string, atom *Atom, coords []float64) error {
	if len(line) < 54 {
		return fmt.Errorf("line too short (%d characters)", len(line))
	}
	var err error
	for i, cols := range [3][2]int{{30, 38}, {38, 46}, {46, 54}} {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[cols[0]:cols[1]]), 64)
		if err != nil {
			return err
		}
	}
	if atom == nil {
		return nil
	}
	atom.Het = strings.HasPrefix(line, "HETATM")
	//atom serials overflow in large systems, we don't rely on them.
	atom.ID, _ = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	//CHARMM uses 4-letter residue names (TIP3, POPC) which take column 21 too.
	atom.MolName = strings.TrimSpace(line[17:21])
	atom.Chain = strings.TrimSpace(line[21:22])
	if atom.Chain == "" && len(line) >= 76 {
		atom.Chain = strings.TrimSpace(line[72:76]) //segment ID
	}
	atom.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return err
	}
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) == 2 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	if atom.Symbol == "" {
		atom.Symbol = symbolFromName(atom.Name)
	}
	atom.Mass = symbolMass[atom.Symbol]
	return nil
}

//parses a CRYST1 line.
func readCRYST1(line string) (Box, error) {
	f := strings.Fields(line)
	if len(f) < 7 {
		return Box{}, fmt.Errorf("malformed CRYST1 record")
	}
	var v [6]float64
	for i := range v {
		var err error
		v[i], err = strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return Box{}, err
		}
	}
	return BoxFromCRYST1(v[0], v[1], v[2], v[3], v[4], v[5]), nil
}

//PDBRead reads the topology, the coordinates of the first model, and
//the box from the CRYST1 record, of the PDB file pdbname.
//If there is no CRYST1 record, the returned box is the zero Box.
func PDBRead(pdbname string) (*Topology, *Frame, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, nil, err
	}
	defer pdbfile.Close()
	pdb := bufio.NewReader(pdbfile)
	atoms := make([]*Atom, 0, 1000)
	coords := make([]float64, 0, 3000)
	var box Box
	c := make([]float64, 3)
	for lineno := 1; ; lineno++ {
		line, err := pdb.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		eof := err == io.EOF
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			at := new(Atom)
			if err2 := readPDBLine(line, at, c); err2 != nil {
				return nil, nil, fmt.Errorf("gomembrane: %s, line %d: %w", pdbname, lineno, err2)
			}
			atoms = append(atoms, at)
			coords = append(coords, c...)
		case strings.HasPrefix(line, "CRYST1"):
			var err2 error
			box, err2 = readCRYST1(line)
			if err2 != nil {
				return nil, nil, fmt.Errorf("gomembrane: %s, line %d: %w", pdbname, lineno, err2)
			}
		case strings.HasPrefix(line, "ENDMDL"):
			eof = true //only the first model is read.
		}
		if eof {
			break
		}
	}
	top, err := NewTopology(atoms)
	if err != nil {
		return nil, nil, ErrDecorate(err, "PDBRead")
	}
	m, _ := v3.NewMatrix(coords)
	return top, &Frame{Index: 0, Coords: m, Box: box}, nil
}

//PDBWrite writes the frames given to out, as the models of a PDB file with the
//topology T. Each model carries the CRYST1 record of its box, if the box is valid.
func PDBWrite(out io.Writer, T *Topology, frames ...*Frame) error {
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH GOMEMBRANE\n")
	for _, f := range frames {
		if f.Coords.NVecs() != T.Len() {
			return fmt.Errorf("gomembrane: frame %d has %d atoms, the topology %d", f.Index, f.Coords.NVecs(), T.Len())
		}
		fmt.Fprintf(w, "MODEL     %4d\n", f.Index+1)
		if f.Box.Valid() {
			a, b, c, al, be, ga := f.Box.CRYST1()
			fmt.Fprintf(w, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", a, b, c, al, be, ga)
		}
		for i, at := range T.Atoms {
			first := "ATOM"
			if at.Het {
				first = "HETATM"
			}
			name := at.Name
			if len(name) < 4 {
				name = " " + name //names shorter than 4 start at column 14
			}
			v := f.Coords.Vec(i)
			//serial numbers and residue numbers wrap around in large systems.
			_, err := fmt.Fprintf(w, "%-6s%5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				first, (i+1)%100000, name, at.MolName, at.Chain, at.MolID%10000, v.X, v.Y, v.Z, 1.0, 0.0, at.Symbol)
			if err != nil {
				return err
			}
		}
		fmt.Fprint(w, "ENDMDL\n")
	}
	fmt.Fprint(w, "END\n")
	return w.Flush()
}

//PDBTraj reads the models of a multi-model PDB file as a trajectory.
//It implements Traj.
type PDBTraj struct {
	filename string
	file     *os.File
	pdb      *bufio.Reader
	natoms   int
	readable bool
	eof      bool
}

//NewPDBTraj opens the PDB file filename, which has natoms atoms per model.
func NewPDBTraj(filename string, natoms int) (*PDBTraj, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return &PDBTraj{filename: filename, file: f, pdb: bufio.NewReader(f), natoms: natoms, readable: true}, nil
}

func (P *PDBTraj) Readable() bool { return P.readable }

func (P *PDBTraj) Len() int { return P.natoms }

//Close closes the underlying file.
func (P *PDBTraj) Close() {
	if !P.readable {
		return
	}
	P.file.Close()
	P.readable = false
}

//Next reads the next model. A model ends at an ENDMDL or END record, at a MODEL
//record starting the next model, or at the end of the file. A model with a number of
//atoms other than Len() gives a non-critical PDBError, and the following model can
//still be read. The box, if requested, is taken from the last CRYST1 record before or
//inside the model.
func (P *PDBTraj) Next(output *v3.Matrix, box ...[]float64) error {
	if P.eof {
		return newlastFrameError(P.filename, "Next")
	}
	if !P.readable {
		return PDBError{"Traj object uninitialized to read", P.filename, []string{"Next"}, true}
	}
	c := make([]float64, 3)
	read := 0
	var bad error //a malformed line. The rest of the model is still consumed.
	for {
		line, err := P.pdb.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			P.Close()
			if err != io.EOF {
				return PDBError{err.Error(), P.filename, []string{"Next"}, true}
			}
			P.eof = true
			if read == 0 && bad == nil {
				return newlastFrameError(P.filename, "Next")
			}
			return P.modelEnd(read, bad)
		}
		switch {
		case strings.HasPrefix(line, "ENDMDL"):
			return P.modelEnd(read, bad)
		case strings.HasPrefix(line, "MODEL") || strings.TrimSpace(line) == "END":
			if read > 0 || bad != nil {
				return P.modelEnd(read, bad)
			}
		case strings.HasPrefix(line, "CRYST1"):
			b, err := readCRYST1(line)
			if err == nil && len(box) > 0 && len(box[0]) >= 9 {
				copy(box[0], b.Vectors())
			}
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if err := readPDBLine(line, nil, c); err != nil {
				if bad == nil {
					bad = err
				}
				continue
			}
			if output != nil && read < P.natoms {
				output.Set(read, 0, c[0])
				output.Set(read, 1, c[1])
				output.Set(read, 2, c[2])
			}
			read++
		}
	}
}

//modelEnd returns the error for a model that ended after read atoms.
func (P *PDBTraj) modelEnd(read int, bad error) error {
	switch {
	case bad != nil:
		return PDBError{fmt.Sprintf("model skipped: %v", bad), P.filename, []string{"Next"}, false}
	case read != P.natoms:
		return PDBError{fmt.Sprintf("model has %d atoms, %d expected", read, P.natoms), P.filename, []string{"Next"}, false}
	}
	return nil
}

//NewPDBSource returns a FrameSource over the models of a multi-model PDB file.
//The first model is used to determine the number of atoms and the default box.
func NewPDBSource(filename string) (*SeqSource, *Topology, error) {
	top, first, err := PDBRead(filename)
	if err != nil {
		return nil, nil, ErrDecorate(err, "NewPDBSource")
	}
	open := func() (Traj, error) { return NewPDBTraj(filename, top.Len()) }
	src, err := NewSeqSource(open, first.Box)
	if err != nil {
		return nil, nil, ErrDecorate(err, "NewPDBSource")
	}
	return src, top, nil
}

//PDBError is the error type for PDB trajectories. It implements TrajError.
type PDBError struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err PDBError) Error() string {
	return fmt.Sprintf("pdb file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err PDBError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err PDBError) FileName() string { return err.filename }
func (err PDBError) Format() string   { return "pdb" }
func (err PDBError) Critical() bool   { return err.critical }

type lastFrameError struct {
	fileName string
	deco     []string
}

func (E lastFrameError) NormalLastFrameTermination() {}
func (E lastFrameError) FileName() string           { return E.fileName }
func (E lastFrameError) Error() string              { return "EOF" }
func (E lastFrameError) Critical() bool             { return false }
func (E lastFrameError) Format() string             { return "pdb" }
func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
