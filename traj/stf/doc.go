/*
 * doc.go, part of gomembrane.
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

/*
Package stf implements the simple trajectory format (STF), a compressed text
trajectory format meant to be trivial to read and write from any language.
gomembrane uses it to store trajectories converted from multi-model PDB files,
and to read trajectories written by other tools that support the format.

Format

An STF file is compressed with z-standard (zstd). Files whose name ends in "z"
(e.g. traj.stz) are gzip-compressed instead. The uncompressed content contains
only ASCII symbols.

The file starts with a header of key=value lines. The header ends with a line that
starts with the characters "**" followed by one or more spaces and the number of
atoms per frame. The header must contain the precision under the key "prec",
an integer greater than 0. This implementation always writes it, with a default
of 2.

After the header, the file has one line per atom, per frame. Each line contains
3 integers: the x, y and z cartesian coordinates in Angstrom, multiplied by 10 to
the power of the precision, and rounded.

Each frame ends with a line starting with the character "*", optionally followed
by one or more spaces and 9 floating-point numbers separated by spaces. If present,
these are the components of the A, B and C box vectors, in Angstrom.

The "**" sequence may only be used as a header termination.
*/
package stf
