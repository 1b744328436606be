/*
 * selection.go, part of gomembrane.
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

//Selector is a predicate over atoms. Selections are built from lists of names
//given in the configuration, and combined with And, Or and Not.
type Selector func(*Atom) bool

func set(names []string) map[string]bool {
	ret := make(map[string]bool, len(names))
	for _, v := range names {
		ret[v] = true
	}
	return ret
}

//Names selects atoms by atom name.
func Names(names ...string) Selector {
	s := set(names)
	return func(a *Atom) bool { return s[a.Name] }
}

//MolNames selects atoms by residue name.
func MolNames(names ...string) Selector {
	s := set(names)
	return func(a *Atom) bool { return s[a.MolName] }
}

//Chains selects atoms by chain ID.
func Chains(chains ...string) Selector {
	s := set(chains)
	return func(a *Atom) bool { return s[a.Chain] }
}

//All selects every atom.
func All() Selector {
	return func(*Atom) bool { return true }
}

//And returns a selector true when all of sels are.
func And(sels ...Selector) Selector {
	return func(a *Atom) bool {
		for _, s := range sels {
			if !s(a) {
				return false
			}
		}
		return true
	}
}

//Or returns a selector true when any of sels is.
func Or(sels ...Selector) Selector {
	return func(a *Atom) bool {
		for _, s := range sels {
			if s(a) {
				return true
			}
		}
		return false
	}
}

func Not(sel Selector) Selector {
	return func(a *Atom) bool { return !sel(a) }
}

//HeavyAtoms selects every atom that is not a hydrogen.
func HeavyAtoms() Selector {
	return func(a *Atom) bool { return a.Heavy() }
}
