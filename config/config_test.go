/*
 * config_test.go, part of gomembrane.
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

package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/elastic"
	"github.com/rmera/gomembrane/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const partial = `
[input]
topology = "bilayer.pdb"

[analysis]
distance_cutoff = 12.5
nbins = 50
theta_max = 45.0

[output]
movie = false
`

func TestDecodeKeepsDefaults(Te *testing.T) {
	C, err := Decode(strings.NewReader(partial))
	require.NoError(Te, err)
	assert.Equal(Te, "bilayer.pdb", C.Input.Topology)
	assert.Equal(Te, []string{"TIP3"}, C.Input.Water)
	assert.Equal(Te, []string{"A"}, C.Input.CentralChains)
	require.Len(Te, C.Lipids, 2)
	assert.Equal(Te, "DPPC", C.Lipids[1].Name)
	assert.Equal(Te, []string{"C214", "C215", "C216", "C314", "C315", "C316"}, C.Lipids[1].Tail)
	assert.Equal(Te, 12.5, C.Analysis.DistanceCutoff)
	assert.Equal(Te, 0.175, C.Analysis.AngleCutoff)
	assert.Equal(Te, 50, C.Analysis.NBins)
	assert.Equal(Te, 60.0, C.Analysis.LipidArea)
	assert.Equal(Te, "tilt&splay_", C.Output.Prefix)
	assert.True(Te, C.Output.Plots)
	assert.False(Te, C.Output.Movie)

	o := C.Options()
	assert.Equal(Te, 12.5, o.Splay().DistanceCutoff())
	assert.Equal(Te, 0.175, o.Splay().AngleCutoff())
	assert.Equal(Te, 50, o.Moduli().NBins())
	assert.InDelta(Te, math.Pi/4, o.Moduli().ThetaMax(), 1e-12)
	assert.Equal(Te, 10.0, o.WithinSize())
	assert.Equal(Te, 1, o.DensityStride())
	assert.Equal(Te, 2.0, o.Density().Spacing())

	out := C.Out()
	assert.Equal(Te, "tilt&splay_", out.Prefix)
	assert.False(Te, out.Movie)
}

func TestDecodeLipids(Te *testing.T) {
	in := `
[input]
topology = "x.pdb"
water = ["SOL", "TIP3"]
central_chains = []

[[lipid]]
name = "POPC"
head = ["P"]
tail = ["C218", "C316"]
distance = ["C21", "C31"]
`
	C, err := Decode(strings.NewReader(in))
	require.NoError(Te, err)
	require.Len(Te, C.Lipids, 1)
	assert.Equal(Te, "POPC", C.Lipids[0].Name)
	assert.Nil(Te, C.Central())
	types := C.LipidTypes()
	require.Contains(Te, types, "POPC")
	assert.True(Te, types["POPC"].Tail(&membrane.Atom{Name: "C316"}))
	assert.False(Te, types["POPC"].Tail(&membrane.Atom{Name: "C317"}))
	assert.True(Te, C.Water()(&membrane.Atom{MolName: "SOL"}))
}

func TestDecodeErrors(Te *testing.T) {
	//unknown key
	_, err := Decode(strings.NewReader("[input]\ntopology = \"a.pdb\"\nwater_name = \"TIP3\"\n"))
	assert.Error(Te, err)
	//wrong type
	_, err = Decode(strings.NewReader("[input]\ntopology = \"a.pdb\"\n[analysis]\nnbins = \"many\"\n"))
	assert.Error(Te, err)

	invalid := []string{
		"[analysis]\nnbins = 2\n",
		"[analysis]\ndistance_cutoff = -1.0\n",
		"[analysis]\ndensity_stride = 0\n",
		"[analysis]\ndensity_cutoff = 1.5\n",
		"[analysis]\nreplicas = -1\n",
		"[analysis]\ntheta_max = 200.0\n",
		"[output]\nprefix = \"a/b\"\n",
		"[[lipid]]\nname = \"POPC\"\nhead = [\"P\"]\n",
		"[[lipid]]\nname = \"X\"\nhead = [\"P\"]\ntail = [\"C\"]\ndistance = [\"C\"]\n[[lipid]]\nname = \"X\"\nhead = [\"P\"]\ntail = [\"C\"]\ndistance = [\"C\"]\n",
	}
	for _, v := range invalid {
		_, err := Decode(strings.NewReader("[input]\ntopology = \"a.pdb\"\n" + v))
		require.Error(Te, err, v)
		_, ok := err.(*membrane.ConfigError)
		assert.True(Te, ok, v)
	}
	_, err = Decode(strings.NewReader("[analysis]\nnbins = 20\n"))
	_, ok := err.(*membrane.ConfigError)
	assert.True(Te, ok, "missing topology")
}

//writes a 2-model PDB of the synthetic bilayer and a configuration file
//that points to it.
func writeInput(Te *testing.T) string {
	dir := Te.TempDir()
	top, f0 := synth.Bilayer(synth.Default())
	_, f1 := synth.Bilayer(synth.Default())
	f1.Index = 1
	pdb, err := os.Create(filepath.Join(dir, "bilayer.pdb"))
	require.NoError(Te, err)
	require.NoError(Te, membrane.PDBWrite(pdb, top, f0, f1))
	require.NoError(Te, pdb.Close())
	conf := `
[input]
topology = "bilayer.pdb"

[[lipid]]
name = "DOPC"
head = ["P", "C2"]
tail = ["C316", "C216"]
distance = ["C21", "C31"]

[analysis]
cpus = 2

[output]
dir = "out"
plots = false
movie = false
`
	name := filepath.Join(dir, "membrane.toml")
	require.NoError(Te, os.WriteFile(name, []byte(conf), 0644))
	return name
}

func TestLoadAndRun(Te *testing.T) {
	name := writeInput(Te)
	dir := filepath.Dir(name)
	C, err := Load(name)
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join(dir, "bilayer.pdb"), C.Input.Topology)
	assert.Equal(Te, filepath.Join(dir, "out"), C.Output.Dir)
	assert.Equal(Te, 2, C.Options().Cpus())

	src, top, err := C.Open()
	require.NoError(Te, err)
	assert.Equal(Te, 2, src.NFrames())
	sys, err := C.System(top)
	require.NoError(Te, err)
	assert.Len(Te, sys.Lipids, 32)

	res, err := elastic.Run(context.Background(), src, sys, C.Options())
	require.NoError(Te, err)
	assert.Equal(Te, 2, res.Counters.Frames)
	assert.Len(Te, res.Tilt, 64)
	for _, s := range res.Tilt {
		assert.InDelta(Te, 0.0, s.Angle, 1e-3)
	}
}

func TestLoadMissing(Te *testing.T) {
	_, err := Load(filepath.Join(Te.TempDir(), "nothere.toml"))
	assert.Error(Te, err)
	name := writeInput(Te)
	C, err := Load(name)
	require.NoError(Te, err)
	C.Lipids[0].Name = "POPE"
	src, top, err := C.Open()
	require.NoError(Te, err)
	assert.NotNil(Te, src)
	_, err = C.System(top)
	assert.Error(Te, err)
}
