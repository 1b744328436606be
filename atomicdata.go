/*
 * atomicdata.go, part of gomembrane.
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

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Zn": 65.38,
}

//symbolFromName guesses the element from a CHARMM/AMBER-style atom name.
//It only deals with the elements common in membrane systems.
func symbolFromName(name string) string {
	if name == "" {
		return ""
	}
	switch name {
	case "SOD", "NA":
		return "Na"
	case "POT", "K":
		return "K"
	case "CLA", "CL":
		return "Cl"
	case "CAL":
		return "Ca"
	case "MG":
		return "Mg"
	case "ZN":
		return "Zn"
	}
	switch name[0] {
	case 'H':
		return "H"
	case 'C':
		return "C"
	case 'N':
		return "N"
	case 'O':
		return "O"
	case 'P':
		return "P"
	case 'S':
		return "S"
	}
	//names like 1H2 or 2HA
	if len(name) > 1 && name[0] >= '0' && name[0] <= '9' && name[1] == 'H' {
		return "H"
	}
	return ""
}

//Heavy returns true if the atom is not a hydrogen.
func (A *Atom) Heavy() bool {
	return A.Symbol != "H"
}
