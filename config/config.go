/*
 * config.go, part of gomembrane.
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

//Package config reads the TOML files that describe an elastic moduli analysis,
//and turns them into the objects the elastic package works with.
package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/elastic"
	"github.com/rmera/gomembrane/traj/dcd"
	"github.com/rmera/gomembrane/traj/stf"
)

//Config is the content of a configuration file.
type Config struct {
	Input    Input    `toml:"input"`
	Lipids   []Lipid  `toml:"lipid"`
	Analysis Analysis `toml:"analysis"`
	Output   Output   `toml:"output"`
}

//Input gives the files to read and the selections that don't depend
//on the lipid type.
type Input struct {
	Topology      string   `toml:"topology"`
	Trajectory    string   `toml:"trajectory"` //if empty, the models of Topology are used.
	Water         []string `toml:"water"`
	CentralChains []string `toml:"central_chains"`
}

//Lipid gives the atom names that define one lipid type.
type Lipid struct {
	Name     string   `toml:"name"`
	Head     []string `toml:"head"`
	Tail     []string `toml:"tail"`
	Distance []string `toml:"distance"`
}

//Analysis holds the numerical parameters. Distances are in A,
//AngleCutoff in radians and ThetaMax in degrees.
type Analysis struct {
	DistanceCutoff    float64 `toml:"distance_cutoff"`
	AngleCutoff       float64 `toml:"angle_cutoff"`
	WithinSizeNormals float64 `toml:"within_size_normals"`
	DensityCutoff     float64 `toml:"density_cutoff"`
	DensityStride     int     `toml:"density_stride"`
	GridSpacing       float64 `toml:"grid_spacing"`
	Smoothing         float64 `toml:"smoothing"`
	Replicas          int     `toml:"replicas"`
	Cpus              int     `toml:"cpus"` //0 means all the logical CPUs
	LipidArea         float64 `toml:"lipid_area"`
	NBins             int     `toml:"nbins"`
	ThetaMax          float64 `toml:"theta_max"`
	MinSamples        int     `toml:"min_samples"`
}

//Output is the [output] section.
type Output struct {
	Dir    string `toml:"dir"`
	Prefix string `toml:"prefix"`
	Plots  bool   `toml:"plots"`
	Movie  bool   `toml:"movie"`
}

var distanceAtoms = []string{"C22", "C21", "C23", "C31", "C32", "C33"}

//Default returns the configuration for a DOPC/DPPC bilayer in TIP3 water,
//with chain A as the central cell. Only the input files are missing.
func Default() *Config {
	C := new(Config)
	C.Input.Water = []string{"TIP3"}
	C.Input.CentralChains = []string{"A"}
	C.Lipids = []Lipid{
		{Name: "DOPC", Head: []string{"P", "C2"}, Tail: []string{"C316", "C317", "C318", "C216", "C217", "C218"}, Distance: distanceAtoms},
		{Name: "DPPC", Head: []string{"P", "C2"}, Tail: []string{"C214", "C215", "C216", "C314", "C315", "C316"}, Distance: distanceAtoms},
	}
	C.Analysis = Analysis{
		DistanceCutoff:    10,
		AngleCutoff:       0.175,
		WithinSizeNormals: 10,
		DensityCutoff:     0.3,
		DensityStride:     1,
		GridSpacing:       2,
		Smoothing:         1,
		Replicas:          1,
		LipidArea:         60,
		NBins:             100,
		ThetaMax:          90,
		MinSamples:        20,
	}
	C.Output = Output{Dir: ".", Prefix: "tilt&splay_", Plots: true, Movie: true}
	return C
}

//Decode reads a configuration from r. Keys missing in r keep their default
//values. Unknown keys are an error. Relative file names are kept as they are.
func Decode(r io.Reader) (*Config, error) {
	C := Default()
	dec := toml.NewDecoder(r).Strict(true)
	if err := dec.Decode(C); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

//Load reads and validates the configuration file filename. The input and output
//paths in the file are taken as relative to the file's directory.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	C, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	dir := filepath.Dir(filename)
	C.Input.Topology = relative(dir, C.Input.Topology)
	C.Input.Trajectory = relative(dir, C.Input.Trajectory)
	C.Output.Dir = relative(dir, C.Output.Dir)
	return C, nil
}

func relative(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

//Validate returns a ConfigError for the first invalid value found, or nil.
func (C *Config) Validate() error {
	a := C.Analysis
	if C.Input.Topology == "" {
		return membrane.NewConfigError("no topology file given")
	}
	if len(C.Input.Water) == 0 {
		return membrane.NewConfigError("no water residue names given")
	}
	if len(C.Lipids) == 0 {
		return membrane.NewConfigError("no lipid types given")
	}
	seen := make(map[string]bool, len(C.Lipids))
	for i, l := range C.Lipids {
		if l.Name == "" {
			return membrane.NewConfigError("lipid type %d has no name", i)
		}
		if seen[l.Name] {
			return membrane.NewConfigError("lipid type %s given twice", l.Name)
		}
		seen[l.Name] = true
		if len(l.Head) == 0 || len(l.Tail) == 0 || len(l.Distance) == 0 {
			return membrane.NewConfigError("lipid type %s needs head, tail and distance atoms", l.Name)
		}
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"distance_cutoff", a.DistanceCutoff},
		{"angle_cutoff", a.AngleCutoff},
		{"within_size_normals", a.WithinSizeNormals},
		{"density_cutoff", a.DensityCutoff},
		{"grid_spacing", a.GridSpacing},
		{"lipid_area", a.LipidArea},
		{"theta_max", a.ThetaMax},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return membrane.NewConfigError("%s must be a positive number, not %g", p.name, p.v)
		}
	}
	switch {
	case a.DensityCutoff >= 1:
		return membrane.NewConfigError("density_cutoff must be smaller than 1, not %g", a.DensityCutoff)
	case a.ThetaMax > 180:
		return membrane.NewConfigError("theta_max can't exceed 180 degrees")
	case a.DensityStride < 1:
		return membrane.NewConfigError("density_stride must be at least 1, not %d", a.DensityStride)
	case a.NBins < 3:
		return membrane.NewConfigError("nbins must be at least 3, not %d", a.NBins)
	case a.Replicas < 0:
		return membrane.NewConfigError("replicas can't be negative")
	case a.Cpus < 0:
		return membrane.NewConfigError("cpus can't be negative")
	case a.Smoothing < 0:
		return membrane.NewConfigError("smoothing can't be negative")
	case a.MinSamples < 1:
		return membrane.NewConfigError("min_samples must be at least 1")
	}
	if strings.ContainsRune(C.Output.Prefix, filepath.Separator) {
		return membrane.NewConfigError("the output prefix %q can't contain a path separator", C.Output.Prefix)
	}
	return nil
}

//LipidTypes returns the lipid types, by name.
func (C *Config) LipidTypes() map[string]*membrane.LipidType {
	ret := make(map[string]*membrane.LipidType, len(C.Lipids))
	for _, l := range C.Lipids {
		ret[l.Name] = &membrane.LipidType{
			Name:     l.Name,
			Head:     membrane.Names(l.Head...),
			Tail:     membrane.Names(l.Tail...),
			Distance: membrane.Names(l.Distance...),
		}
	}
	return ret
}

//Water returns a selector for the water molecules.
func (C *Config) Water() membrane.Selector {
	return membrane.MolNames(C.Input.Water...)
}

//Central returns a selector for the atoms in the central cell, or nil
//(everything is central) if no chains were given.
func (C *Config) Central() membrane.Selector {
	if len(C.Input.CentralChains) == 0 {
		return nil
	}
	return membrane.Chains(C.Input.CentralChains...)
}

//Options returns the run options.
func (C *Config) Options() *elastic.Options {
	a := C.Analysis
	o := elastic.DefaultOptions()
	if a.Cpus > 0 {
		o.Cpus(a.Cpus)
	}
	o.DensityStride(a.DensityStride)
	o.DensityCutoff(a.DensityCutoff)
	o.WithinSize(a.WithinSizeNormals)
	o.Replicas(a.Replicas)
	o.Density().Spacing(a.GridSpacing)
	o.Density().Smoothing(a.Smoothing)
	o.Splay().DistanceCutoff(a.DistanceCutoff)
	o.Splay().AngleCutoff(a.AngleCutoff)
	o.Moduli().NBins(a.NBins)
	o.Moduli().ThetaMax(membrane.Deg2Rad(a.ThetaMax))
	o.Moduli().MinSamples(a.MinSamples)
	o.Moduli().Area(a.LipidArea)
	return o
}

//Out returns the output specification.
func (C *Config) Out() *elastic.Output {
	o := C.Output
	return &elastic.Output{Dir: o.Dir, Prefix: o.Prefix, Plots: o.Plots, Movie: o.Movie}
}

//Open reads the topology and opens the trajectory. CHARMM/NAMD trajectories
//(.dcd, .dcd.gz) and stf trajectories (.stf, .stz, .stl) are supported. Any other
//extension is read as a multi-model PDB. Frames without a box get the box of the topology file.
func (C *Config) Open() (membrane.FrameSource, *membrane.Topology, error) {
	traj := C.Input.Trajectory
	if traj == "" || traj == C.Input.Topology {
		src, top, err := membrane.NewPDBSource(C.Input.Topology)
		if err != nil {
			return nil, nil, membrane.ErrDecorate(err, "config.Open")
		}
		return src, top, nil
	}
	top, first, err := membrane.PDBRead(C.Input.Topology)
	if err != nil {
		return nil, nil, membrane.ErrDecorate(err, "config.Open")
	}
	var src *membrane.SeqSource
	switch lower := strings.ToLower(traj); {
	case strings.HasSuffix(lower, ".dcd") || strings.HasSuffix(lower, ".dcd.gz"):
		open := func() (membrane.Traj, error) { return dcd.New(traj) }
		src, err = membrane.NewSeqSource(open, first.Box)
	case strings.HasSuffix(lower, ".stf") || strings.HasSuffix(lower, ".stz") || strings.HasSuffix(lower, ".stl"):
		open := func() (membrane.Traj, error) {
			r, _, err := stf.New(traj)
			return r, err
		}
		src, err = membrane.NewSeqSource(open, first.Box)
	default:
		open := func() (membrane.Traj, error) { return membrane.NewPDBTraj(traj, top.Len()) }
		src, err = membrane.NewSeqSource(open, first.Box)
	}
	if err != nil {
		return nil, nil, membrane.ErrDecorate(err, "config.Open")
	}
	if src.Len() != top.Len() {
		return nil, nil, membrane.NewConfigError("the trajectory %s has %d atoms, the topology %d", traj, src.Len(), top.Len())
	}
	return src, top, nil
}

//System builds the lipids and solvent selections of the topology.
func (C *Config) System(top *membrane.Topology) (*elastic.System, error) {
	return elastic.NewSystem(top, C.LipidTypes(), C.Water(), C.Central())
}
