/*
 * elastic_test.go, part of gomembrane.
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
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/internal/synth"
	"github.com/rmera/gomembrane/moduli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(Te *testing.T, n int, o *synth.Options) (*System, []*membrane.Frame) {
	var top *membrane.Topology
	ret := make([]*membrane.Frame, n)
	for i := range ret {
		top, ret[i] = synth.Bilayer(o)
	}
	sys, err := NewSystem(top, synth.LipidTypes(o.Types...), membrane.MolNames("TIP3"), membrane.Chains("A"))
	require.NoError(Te, err)
	return sys, ret
}

func source(Te *testing.T, f []*membrane.Frame) *membrane.MemSource {
	src, err := membrane.NewMemSource(f...)
	require.NoError(Te, err)
	return src
}

func TestFlatBilayer(Te *testing.T) {
	sys, f := frames(Te, 3, synth.Default())
	res, err := Run(context.Background(), source(Te, f), sys)
	require.NoError(Te, err)
	assert.Equal(Te, 3, res.Counters.Frames)
	assert.Equal(Te, 0, res.Counters.Skipped)
	assert.Equal(Te, 0, res.Counters.LowConfidence)
	require.Len(Te, res.Tilt, 96)
	require.Len(Te, res.Pairs, 192)
	require.Len(Te, res.Fields, 3)
	for _, s := range res.Tilt {
		assert.InDelta(Te, 0.0, s.Angle, 1e-6)
	}
	for _, p := range res.Pairs {
		assert.InDelta(Te, 0.0, p.Value, 1e-9)
	}
	assert.Equal(Te, 0, res.Tilt[0].Frame)
	assert.Equal(Te, 2, res.Tilt[95].Frame)
	rep := res.Analyze(nil)
	assert.Equal(Te, moduli.Degenerate, rep.Tilt["DOPC"].Status)
	assert.Equal(Te, 0.0, rep.Tilt["DOPC"].Residual)
	assert.True(Te, math.IsInf(rep.Tilt["DOPC"].Modulus, 1))
	assert.Equal(Te, moduli.Degenerate, rep.Splay["DOPC"].Status)
	assert.Equal(Te, 3, rep.Counters.Frames)
	assert.Equal(Te, 0, rep.Counters.FitFailures)
}

//tilted gives each lipid a different, fixed tilt.
func tilted() *synth.Options {
	o := synth.Default()
	o.Types = []string{"DOPC", "DPPC"}
	o.Tilt = func(i, leaflet int) (float64, float64) {
		return 0.02 * float64((i*7+leaflet+5)%9), float64(i)
	}
	return o
}

func TestIdempotence(Te *testing.T) {
	sys, f := frames(Te, 6, tilted())
	run := func(cpus, stride int) (*Result, []byte) {
		o := DefaultOptions()
		o.Cpus(cpus)
		o.DensityStride(stride)
		o.Moduli().MinSamples(5)
		o.Moduli().NBins(10)
		res, err := Run(context.Background(), source(Te, f), sys, o)
		require.NoError(Te, err)
		var b bytes.Buffer
		require.NoError(Te, res.Analyze(o.Moduli()).WriteJSON(&b))
		return res, b.Bytes()
	}
	r1, j1 := run(1, 2)
	r2, j2 := run(4, 2)
	r3, j3 := run(4, 2)
	assert.Equal(Te, r1.Tilt, r2.Tilt)
	assert.Equal(Te, r1.Pairs, r2.Pairs)
	assert.Equal(Te, r2.Tilt, r3.Tilt)
	assert.Equal(Te, string(j1), string(j2))
	assert.Equal(Te, string(j2), string(j3))
	assert.Len(Te, r1.Fields, 3)
	assert.Equal(Te, []int{0, 2, 4}, []int{r1.Fields[0].Frame, r1.Fields[1].Frame, r1.Fields[2].Frame})
	//both types and the mixed pairs
	v := r1.SplayValues()
	assert.Contains(Te, v, "DOPC-DPPC")
	g := r1.Inefficiencies()
	assert.Contains(Te, g, "DPPC")
	assert.True(Te, g["DPPC"] >= 1)
}

//canceler cancels a context when a given frame is requested.
type canceler struct {
	membrane.FrameSource
	at     int
	cancel context.CancelFunc
}

func (c *canceler) Frame(i int) (*membrane.Frame, error) {
	if i == c.at {
		c.cancel()
	}
	return c.FrameSource.Frame(i)
}

func TestCancel(Te *testing.T) {
	sys, f := frames(Te, 6, synth.Default())
	ctx, cancel := context.WithCancel(context.Background())
	o := DefaultOptions()
	o.Cpus(2)
	res, err := Run(ctx, &canceler{FrameSource: source(Te, f), at: 2, cancel: cancel}, sys, o)
	assert.Equal(Te, context.Canceled, err)
	require.NotNil(Te, res)
	//blocks are only started before the cancellation is seen.
	assert.Equal(Te, 3, res.Counters.Frames)
	assert.Len(Te, res.Tilt, 96)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	res, err = Run(ctx, source(Te, f), sys, o)
	assert.Equal(Te, context.Canceled, err)
	assert.Equal(Te, 0, res.Counters.Frames)
}

func TestConfigAndGaps(Te *testing.T) {
	sys, f := frames(Te, 3, synth.Default())
	o := DefaultOptions()
	o.Splay().DistanceCutoff(17) //the box is 32 A wide
	_, err := Run(context.Background(), source(Te, f), sys, o)
	require.Error(Te, err)
	assert.IsType(Te, &membrane.ConfigError{}, err)
	o.Splay().DistanceCutoff(16)
	f[1].Box = membrane.Box{}
	res, err := Run(context.Background(), source(Te, f), sys, o)
	require.NoError(Te, err)
	assert.Equal(Te, 2, res.Counters.Frames)
	assert.Equal(Te, 1, res.Counters.Skipped)

	top, _ := synth.Bilayer(synth.Default())
	_, err = NewSystem(top, synth.LipidTypes("DOPC"), membrane.MolNames("SOL"), nil)
	assert.IsType(Te, &membrane.ConfigError{}, err)
	_, err = NewSystem(top, synth.LipidTypes("DPPC"), membrane.MolNames("TIP3"), nil)
	assert.IsType(Te, &membrane.ConfigError{}, err)
}

func TestWrite(Te *testing.T) {
	sys, f := frames(Te, 2, tilted())
	o := DefaultOptions()
	o.Moduli().MinSamples(5)
	o.Moduli().NBins(10)
	res, err := Run(context.Background(), source(Te, f), sys, o)
	require.NoError(Te, err)
	rep := res.Analyze(o.Moduli())
	dir := filepath.Join(Te.TempDir(), "out")
	out := &Output{Dir: dir, Prefix: "tilt&splay_", Plots: true, Movie: true}
	require.NoError(Te, Write(res, rep, out))
	for _, name := range []string{"tilt_DOPC.dat", "tilt_DPPC.json", "splay_DOPC-DPPC.dat", "moduli.json", "moduli.txt", "normals.avi"} {
		st, err := os.Stat(filepath.Join(dir, "tilt&splay_"+name))
		require.NoError(Te, err, name)
		assert.True(Te, st.Size() > 0, name)
	}
}

func TestShortModel(Te *testing.T) {
	o := synth.Default()
	var top *membrane.Topology
	models := make([]*membrane.Frame, 4)
	for i := range models {
		o.Offset = float64(i)
		top, models[i] = synth.Bilayer(o)
		models[i].Index = i
	}
	var b bytes.Buffer
	require.NoError(Te, membrane.PDBWrite(&b, top, models...))
	//the second model loses a water atom.
	var pdb strings.Builder
	model, dropped := 0, false
	for _, line := range strings.SplitAfter(b.String(), "\n") {
		if strings.HasPrefix(line, "MODEL") {
			model++
		}
		if model == 2 && !dropped && strings.Contains(line, "TIP3") {
			dropped = true
			continue
		}
		pdb.WriteString(line)
	}
	require.True(Te, dropped)
	name := filepath.Join(Te.TempDir(), "short.pdb")
	require.NoError(Te, os.WriteFile(name, []byte(pdb.String()), 0644))
	src, top, err := membrane.NewPDBSource(name)
	require.NoError(Te, err)
	assert.Equal(Te, 4, src.NFrames())
	sys, err := NewSystem(top, synth.LipidTypes("DOPC"), membrane.MolNames("TIP3"), membrane.Chains("A"))
	require.NoError(Te, err)
	res, err := Run(context.Background(), src, sys)
	require.NoError(Te, err)
	assert.Equal(Te, 3, res.Counters.Frames)
	assert.Equal(Te, 1, res.Counters.Skipped)
	require.Len(Te, res.Fields, 3)
	assert.Equal(Te, []int{0, 2, 3}, []int{res.Fields[0].Frame, res.Fields[1].Frame, res.Fields[2].Frame})
	require.Len(Te, res.Tilt, 96)
	for _, s := range res.Tilt {
		assert.InDelta(Te, 0.0, s.Angle, 1e-4)
	}
}

func TestReplicated(Te *testing.T) {
	top, f := synth.Bilayer(synth.Default())
	types := synth.LipidTypes("DOPC")
	ref, err := NewSystem(top, types, membrane.MolNames("TIP3"), membrane.Chains("A"))
	require.NoError(Te, err)
	want, err := Run(context.Background(), source(Te, []*membrane.Frame{f}), ref)
	require.NoError(Te, err)
	require.Len(Te, want.Pairs, 64)

	ttop, tf := synth.Tile(top, f, 3)
	sys, err := NewSystem(ttop, types, membrane.MolNames("TIP3"), membrane.Chains("A"))
	require.NoError(Te, err)
	require.Len(Te, sys.Lipids, 9*32)
	o := DefaultOptions()
	o.Replicas(0)
	super := membrane.BoxFromCRYST1(3*f.Box.A.X, 3*f.Box.B.Y, f.Box.C.Z, 90, 90, 90)
	//the unit cell, or the whole replicated system, as the box.
	for _, box := range []membrane.Box{f.Box, super} {
		g := &membrane.Frame{Coords: tf.Coords, Box: box}
		res, err := Run(context.Background(), source(Te, []*membrane.Frame{g}), sys, o)
		require.NoError(Te, err)
		assert.Len(Te, res.Tilt, 32)
		require.Len(Te, res.Pairs, len(want.Pairs))
		for i, p := range res.Pairs {
			assert.Equal(Te, want.Pairs[i].A, p.A)
			assert.Equal(Te, want.Pairs[i].B, p.B)
			assert.InDelta(Te, want.Pairs[i].Separation, p.Separation, 1e-6)
		}
	}
}

func TestAtomCount(Te *testing.T) {
	sys, _ := frames(Te, 1, synth.Default())
	small := synth.Default()
	small.NX = 2
	_, f := synth.Bilayer(small)
	_, err := Run(context.Background(), source(Te, []*membrane.Frame{f}), sys)
	require.Error(Te, err)
	assert.IsType(Te, &membrane.ConfigError{}, err)
}
