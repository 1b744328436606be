/*
 * chem.go, part of gomembrane.
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
	"sort"

	v3 "github.com/rmera/gomembrane/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Atom contains the information read for an atom, except for the coordinates,
//which are kept in a v3.Matrix
type Atom struct {
	Name    string
	ID      int
	MolName string //the residue name
	MolID   int    //the residue number as given in the input file
	Chain   string
	Symbol  string
	Mass    float64
	Het     bool // is hetatm in the pdb file?
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

/*****Topology type***/

//Topology contains the information about a system which is not expected to change
//in time, i.e. everything except for coordinates and box.
type Topology struct {
	Atoms []*Atom
}

//NewTopology returns a topology containing ats.
func NewTopology(ats []*Atom) (*Topology, error) {
	if len(ats) == 0 {
		return nil, NewConfigError("NewTopology: empty atom list")
	}
	return &Topology{Atoms: ats}, nil
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= len(T.Atoms) {
		panic(fmt.Sprintf("gomembrane: requested atom %d, topology has %d", i, len(T.Atoms)))
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Select returns the indexes of the atoms for which sel returns true.
func (T *Topology) Select(sel Selector) []int {
	ret := make([]int, 0, 10)
	for i, at := range T.Atoms {
		if sel(at) {
			ret = append(ret, i)
		}
	}
	return ret
}

//Residue is a group of atoms forming one lipid or water molecule.
//DoTilt and DoSplay are set when the residue is created, and are true only
//for residues in the central unit cell. They are never changed afterwards.
type Residue struct {
	ID      int //sequential over all residues in the topology, unique.
	MolID   int //as in the input file, may repeat.
	Type    string
	Chain   string
	Atoms   []int
	DoTilt  bool
	DoSplay bool
}

//Residues groups the atoms selected by sel into residues. Consecutive atoms
//with the same residue number, residue name and chain belong to the same residue.
//Residues with atoms for which central returns true are marked as central (DoTilt
//and DoSplay). A nil central marks every residue as central.
func (T *Topology) Residues(sel Selector, central Selector) []*Residue {
	ret := make([]*Residue, 0, 64)
	var cur *Residue
	resid := 0
	for i, at := range T.Atoms {
		if !sel(at) {
			cur = nil
			continue
		}
		if cur == nil || cur.MolID != at.MolID || cur.Type != at.MolName || cur.Chain != at.Chain {
			c := central == nil || central(at)
			cur = &Residue{ID: resid, MolID: at.MolID, Type: at.MolName, Chain: at.Chain, DoTilt: c, DoSplay: c}
			resid++
			ret = append(ret, cur)
		}
		cur.Atoms = append(cur.Atoms, i)
	}
	return ret
}

//LipidType holds the selections that define the director and the neutral
//plane reference point for one lipid species.
type LipidType struct {
	Name     string
	Head     Selector
	Tail     Selector
	Distance Selector
}

//Lipid is a residue with the indexes of the atoms in its head, tail and
//distance (neutral plane) selections.
type Lipid struct {
	*Residue
	Head     []int
	Tail     []int
	Distance []int
}

//BuildLipids collects all the residues of the types given, and applies to each of
//them the selections of its type. The residues are marked as central if central
//returns true for their atoms (all are central if central is nil).
//It returns a ConfigError if a type has no residues in the topology or if any of its
//selections is empty for a residue.
func BuildLipids(T *Topology, types map[string]*LipidType, central Selector) ([]*Lipid, error) {
	names := make([]string, 0, len(types))
	for k := range types {
		names = append(names, k)
	}
	sort.Strings(names)
	res := T.Residues(MolNames(names...), central)
	count := make(map[string]int, len(types))
	ret := make([]*Lipid, 0, len(res))
	for _, r := range res {
		lt := types[r.Type]
		l := &Lipid{Residue: r}
		for _, i := range r.Atoms {
			at := T.Atoms[i]
			if lt.Head(at) {
				l.Head = append(l.Head, i)
			}
			if lt.Tail(at) {
				l.Tail = append(l.Tail, i)
			}
			if lt.Distance(at) {
				l.Distance = append(l.Distance, i)
			}
		}
		switch {
		case len(l.Head) == 0:
			return nil, NewConfigError("head selection of %s matches no atoms in residue %d (chain %q)", r.Type, r.MolID, r.Chain)
		case len(l.Tail) == 0:
			return nil, NewConfigError("tail selection of %s matches no atoms in residue %d (chain %q)", r.Type, r.MolID, r.Chain)
		case len(l.Distance) == 0:
			return nil, NewConfigError("distance selection of %s matches no atoms in residue %d (chain %q)", r.Type, r.MolID, r.Chain)
		}
		count[r.Type]++
		ret = append(ret, l)
	}
	for _, n := range names {
		if count[n] == 0 {
			return nil, NewConfigError("lipid type %s matches no residues", n)
		}
	}
	return ret, nil
}

//HeadCentroid returns the geometric center of the head atoms of L in coords.
func (L *Lipid) HeadCentroid(coords *v3.Matrix) r3.Vec {
	return coords.Centroid(L.Head...)
}

//TailCentroid returns the geometric center of the tail atoms of L in coords.
func (L *Lipid) TailCentroid(coords *v3.Matrix) r3.Vec {
	return coords.Centroid(L.Tail...)
}

//NeutralPlane returns the geometric center of the distance atoms of L in coords,
//which is taken as the position of the lipid at the neutral plane.
func (L *Lipid) NeutralPlane(coords *v3.Matrix) r3.Vec {
	return coords.Centroid(L.Distance...)
}

//Director returns the vector from the head centroid to the tail centroid.
func (L *Lipid) Director(coords *v3.Matrix) r3.Vec {
	return r3.Sub(L.TailCentroid(coords), L.HeadCentroid(coords))
}

//Residues returns the residues of the lipids, in the same order.
func Residues(lipids []*Lipid) []*Residue {
	ret := make([]*Residue, len(lipids))
	for i, l := range lipids {
		ret[i] = l.Residue
	}
	return ret
}
