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

/*Package membrane is the main package of the goMembrane library. It provides the atom,
residue and topology structures, the frame and trajectory abstractions, and the error
types shared by the analysis packages.

	**goMembrane Capabilities**

    Reads PDB topologies (with the CRYST1 box) and multi-model PDB trajectories.

    Reads and writes STF (zstd-compressed) trajectories, see the traj/stf package.

    Selects atoms and residues with predicates built from lists of atom, residue and chain names.

    Obtains a membrane normal field from the lipid and water densities (density and surface packages).

    Replicates lipids over the periodic images of the simulation box (pbc package).

    Obtains per-lipid tilt and per-pair splay (tilt and splay packages), and fits the
    tilt and splay moduli from their distributions (moduli package).

    Drives the whole analysis concurrently over the frames of a trajectory (elastic package).

*/
package membrane
