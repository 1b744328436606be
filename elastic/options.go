/*
 * options.go, part of gomembrane.
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


package elastic

import (
	"runtime"

	"github.com/rmera/gomembrane/density"
	"github.com/rmera/gomembrane/moduli"
	"github.com/rmera/gomembrane/splay"
	"github.com/rmera/gomembrane/tilt"
)

//Options for a run. The options of each step are reached through
//the Density, Splay and Moduli methods.
type Options struct {
	cpus          int
	stride        int
	densityCutoff float64
	within        float64
	replicas      int
	eps           float64
	density       *density.Options
	splay         *splay.Options
	moduli        *moduli.Options
}

//DefaultOptions returns the default options: all the logical CPUs, a density
//stride of 1, a density cutoff of 0.3, a 10 A radius for the normals and 1 replica
//in each lateral direction.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cpus = runtime.NumCPU()
	ret.stride = 1
	ret.densityCutoff = 0.3
	ret.within = 10
	ret.replicas = 1
	ret.eps = tilt.DefaultEpsilon
	ret.density = density.DefaultOptions()
	ret.splay = splay.DefaultOptions()
	ret.moduli = moduli.DefaultOptions()
	return ret
}

//Cpus returns the number of gorutines used to process frames
//and sets it, if a valid value is given.
func (r *Options) Cpus(cpus ...int) int {
	ret := r.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		r.cpus = cpus[0]
	}
	return ret
}

//DensityStride returns the number of consecutive frames that share one normal field
//(computed on the first of them), and sets it, if a valid value is given.
func (r *Options) DensityStride(stride ...int) int {
	ret := r.stride
	if len(stride) > 0 && stride[0] > 0 {
		r.stride = stride[0]
	}
	return ret
}

//DensityCutoff returns the minimum total (lipid+water) normalized density for a
//voxel to be part of the interface, and sets it, if a valid value is given.
func (r *Options) DensityCutoff(cutoff ...float64) float64 {
	ret := r.densityCutoff
	if len(cutoff) > 0 && cutoff[0] > 0 {
		r.densityCutoff = cutoff[0]
	}
	return ret
}

//WithinSize returns the radius, in A, of the neighbourhood used to fit each normal,
//and sets it, if a valid value is given.
func (r *Options) WithinSize(within ...float64) float64 {
	ret := r.within
	if len(within) > 0 && within[0] > 0 {
		r.within = within[0]
	}
	return ret
}

//Replicas returns the number of periodic images generated in each lateral direction,
//and sets it, if a valid value is given. 0 means that the trajectory is already replicated.
func (r *Options) Replicas(replicas ...int) int {
	ret := r.replicas
	if len(replicas) > 0 && replicas[0] >= 0 {
		r.replicas = replicas[0]
	}
	return ret
}

//Epsilon returns the shortest valid director, and sets it, if a valid value is given.
func (r *Options) Epsilon(eps ...float64) float64 {
	ret := r.eps
	if len(eps) > 0 && eps[0] > 0 {
		r.eps = eps[0]
	}
	return ret
}

func (r *Options) Density() *density.Options { return r.density }

func (r *Options) Splay() *splay.Options { return r.splay }

func (r *Options) Moduli() *moduli.Options { return r.moduli }
