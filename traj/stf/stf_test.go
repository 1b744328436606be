/*
 * stf_test.go, part of gomembrane.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 */

package stf

import (
	"path/filepath"
	"testing"

	membrane "github.com/rmera/gomembrane"
	v3 "github.com/rmera/gomembrane/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(shift float64) *v3.Matrix {
	m, _ := v3.NewMatrix([]float64{1.234, -5.678, 10, 0, 0, 0, 33.3, 44.4, -55.5})
	for i := 0; i < 3; i++ {
		m.Set(i, 2, m.At(i, 2)+shift)
	}
	return m
}

func writeRead(Te *testing.T, name string) {
	box := []float64{40, 0, 0, 0, 40, 0, 0, 0, 80.5}
	w, err := NewWriter(name, 3, map[string]string{"origin": "test", "prec": "3"})
	require.NoError(Te, err)
	for i := 0; i < 4; i++ {
		if i == 2 {
			require.NoError(Te, w.WNext(frame(float64(i))))
			continue
		}
		require.NoError(Te, w.WNext(frame(float64(i)), box))
	}
	assert.Error(Te, w.WNext(v3.Zeros(2)))
	assert.Equal(Te, 4, w.Frames())
	w.Close()

	r, header, err := New(name)
	require.NoError(Te, err)
	assert.Equal(Te, "test", header["origin"])
	assert.Equal(Te, "3", header["prec"])
	assert.Equal(Te, 3, r.Len())
	m := v3.Zeros(3)
	b := make([]float64, 9)
	require.NoError(Te, r.Next(m, b))
	assert.InDelta(Te, 1.234, m.At(0, 0), 1e-9)
	assert.InDelta(Te, -5.678, m.At(0, 1), 1e-9)
	assert.InDelta(Te, 80.5, b[8], 1e-9)
	require.NoError(Te, r.Next(nil))
	require.NoError(Te, r.Next(m, b))
	assert.InDelta(Te, 12.0, m.At(0, 2), 1e-9)
	assert.Equal(Te, 0.0, b[0], "frame without box")
	require.NoError(Te, r.Next(m, b))
	assert.InDelta(Te, -52.5, m.At(2, 2), 1e-9)
	err = r.Next(m)
	require.Error(Te, err)
	_, ok := err.(membrane.LastFrameError)
	assert.True(Te, ok)
	assert.False(Te, r.Readable())
}

func TestSTFWriteRead(Te *testing.T) {
	writeRead(Te, filepath.Join(Te.TempDir(), "test.stf"))
}

func TestSTFGzip(Te *testing.T) {
	writeRead(Te, filepath.Join(Te.TempDir(), "test.stz"))
}

func TestSTFAsSource(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "src.stf")
	w, err := NewWriter(name, 3, nil)
	require.NoError(Te, err)
	for i := 0; i < 5; i++ {
		require.NoError(Te, w.WNext(frame(float64(i)), []float64{30, 0, 0, 0, 30, 0, 0, 0, 90}))
	}
	w.Close()
	open := func() (membrane.Traj, error) {
		r, _, err := New(name)
		return r, err
	}
	src, err := membrane.NewSeqSource(open, membrane.Box{})
	require.NoError(Te, err)
	assert.Equal(Te, 5, src.NFrames())
	f, err := src.Frame(3)
	require.NoError(Te, err)
	assert.InDelta(Te, 13.0, f.Coords.At(0, 2), 1e-9)
	assert.InDelta(Te, 30.0, f.Box.MinLength(), 1e-9)
	f, err = src.Frame(1)
	require.NoError(Te, err)
	assert.Equal(Te, 1, f.Index)
	assert.InDelta(Te, 11.0, f.Coords.At(0, 2), 1e-9)
}

func TestSTFMissing(Te *testing.T) {
	_, _, err := New(filepath.Join(Te.TempDir(), "nothere.stf"))
	require.Error(Te, err)
	assert.True(Te, err.(Error).Critical())
}
