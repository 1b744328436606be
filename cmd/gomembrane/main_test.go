/*
 * main_test.go, part of gomembrane.
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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/internal/synth"
	"github.com/rmera/gomembrane/traj/stf"
	v3 "github.com/rmera/gomembrane/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(Te *testing.T, frames int, cutoff string) (string, string) {
	dir := Te.TempDir()
	top, _ := synth.Bilayer(synth.Default())
	f := make([]*membrane.Frame, frames)
	for i := range f {
		_, f[i] = synth.Bilayer(synth.Default())
		f[i].Index = i
	}
	pdb := filepath.Join(dir, "bilayer.pdb")
	out, err := os.Create(pdb)
	require.NoError(Te, err)
	require.NoError(Te, membrane.PDBWrite(out, top, f...))
	require.NoError(Te, out.Close())
	return writeConfig(Te, dir, cutoff, ""), pdb
}

func writeConfig(Te *testing.T, dir, cutoff, traj string) string {
	conf := `
[input]
topology = "bilayer.pdb"
trajectory = "` + traj + `"

[[lipid]]
name = "DOPC"
head = ["P", "C2"]
tail = ["C316", "C216"]
distance = ["C21", "C31"]

[analysis]
distance_cutoff = ` + cutoff + `

[output]
dir = "results"
plots = false
movie = false
`
	name := filepath.Join(dir, "membrane.toml")
	require.NoError(Te, os.WriteFile(name, []byte(conf), 0644))
	return name
}

func execute(ctx context.Context, args ...string) (string, error) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return buf.String(), err
}

func TestElastic(Te *testing.T) {
	conf, _ := writeInput(Te, 2, "10.0")
	out, err := execute(context.Background(), "elastic", "--config", conf, "--cpus", "2", "--quiet")
	require.NoError(Te, err)
	assert.Contains(Te, out, "DOPC")
	dir := filepath.Join(filepath.Dir(conf), "results")
	data, err := os.ReadFile(filepath.Join(dir, "tilt&splay_moduli.json"))
	require.NoError(Te, err)
	var rep map[string]interface{}
	require.NoError(Te, json.Unmarshal(data, &rep))
	assert.Contains(Te, rep, "tilt")
	assert.FileExists(Te, filepath.Join(dir, "tilt&splay_tilt_DOPC.dat"))
	assert.FileExists(Te, filepath.Join(dir, "tilt&splay_splay_DOPC.dat"))
	assert.FileExists(Te, filepath.Join(dir, "tilt&splay_moduli.txt"))
}

func TestElasticCancelled(Te *testing.T) {
	conf, _ := writeInput(Te, 2, "10.0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := execute(ctx, "elastic", "--config", conf, "--quiet")
	assert.Equal(Te, context.Canceled, err)
	assert.FileExists(Te, filepath.Join(filepath.Dir(conf), "results", "tilt&splay_moduli.json"))
}

func TestCheck(Te *testing.T) {
	conf, _ := writeInput(Te, 1, "10.0")
	out, err := execute(context.Background(), "check", "--config", conf)
	require.NoError(Te, err)
	assert.Contains(Te, out, "32 lipids (32 central)")

	//the synthetic box is 32 A wide.
	conf, _ = writeInput(Te, 1, "16.5")
	_, err = execute(context.Background(), "check", "--config", conf)
	require.Error(Te, err)
	_, ok := err.(*membrane.ConfigError)
	assert.True(Te, ok)

	_, err = execute(context.Background(), "check", "--config", filepath.Join(Te.TempDir(), "none.toml"))
	assert.Error(Te, err)
}

func TestConvert(Te *testing.T) {
	_, pdb := writeInput(Te, 3, "10.0")
	name := filepath.Join(Te.TempDir(), "bilayer.stf")
	out, err := execute(context.Background(), "convert", pdb, name)
	require.NoError(Te, err)
	assert.Contains(Te, out, "3 frames")
	src, top, err := membrane.NewPDBSource(pdb)
	require.NoError(Te, err)
	r, header, err := stf.New(name)
	require.NoError(Te, err)
	defer r.Close()
	assert.Equal(Te, pdb, header["source"])
	assert.Equal(Te, top.Len(), r.Len())
	want, err := src.Frame(0)
	require.NoError(Te, err)
	got := v3.Zeros(top.Len())
	box := make([]float64, 9)
	require.NoError(Te, r.Next(got, box))
	assert.InDelta(Te, want.Coords.At(10, 2), got.At(10, 2), 0.01)
	assert.InDelta(Te, 32.0, box[0], 0.01)
	n := 1
	for {
		if err := r.Next(nil); err != nil {
			break
		}
		n++
	}
	assert.Equal(Te, 3, n)

	_, err = execute(context.Background(), "convert", pdb)
	assert.Error(Te, err)
}

func TestConvertDCDAndRun(Te *testing.T) {
	_, pdb := writeInput(Te, 3, "10.0")
	dir := filepath.Dir(pdb)
	out, err := execute(context.Background(), "convert", pdb, filepath.Join(dir, "bilayer.dcd"))
	require.NoError(Te, err)
	assert.Contains(Te, out, "3 frames")
	conf := writeConfig(Te, dir, "10.0", "bilayer.dcd")
	out, err = execute(context.Background(), "elastic", "--config", conf, "--quiet")
	require.NoError(Te, err)
	assert.Contains(Te, out, "# frames 3 skipped 0")
}
