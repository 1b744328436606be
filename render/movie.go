/*
 * movie.go, part of gomembrane.
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


package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/icza/mjpeg"
	"github.com/rmera/gomembrane/surface"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const labelHeight = 20

//Movie is an MJPEG movie with one frame per normal field, showing the height map
//of one leaflet.
type Movie struct {
	w       mjpeg.AviWriter
	width   int
	height  int //of the map, without the label
	leaflet surface.Leaflet
	buf     bytes.Buffer
	frames  int
}

//NewMovie creates the movie file filename, with maps of size x size pixels.
func NewMovie(filename string, size int, fps int, leaflet surface.Leaflet) (*Movie, error) {
	if size < 16 {
		size = 16
	}
	w, err := mjpeg.New(filename, int32(size), int32(size+labelHeight), int32(fps))
	if err != nil {
		return nil, err
	}
	return &Movie{w: w, width: size, height: size, leaflet: leaflet}, nil
}

//Frames returns the number of frames added.
func (M *Movie) Frames() int {
	return M.frames
}

//Add adds a frame with the height map of N, and the given label under it.
//Heights go from blue (lowest) to red (highest). Low confidence cells are gray.
func (M *Movie) Add(N *surface.NormalField, label string) error {
	img := HeightMap(N, M.leaflet, M.width, M.height)
	addLabel(img, 4, M.height+labelHeight-6, label, color.White)
	M.buf.Reset()
	if err := jpeg.Encode(&M.buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return err
	}
	if err := M.w.AddFrame(M.buf.Bytes()); err != nil {
		return err
	}
	M.frames++
	return nil
}

//Close finishes the movie file.
func (M *Movie) Close() error {
	return M.w.Close()
}

//HeightMap returns a width x (height+label) image of the heights of the leaflet l of N.
func HeightMap(N *surface.NormalField, l surface.Leaflet, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height+labelHeight))
	h := N.Height[l]
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range h {
		min, max = math.Min(min, v), math.Max(max, v)
	}
	span := max - min
	for py := 0; py < height; py++ {
		//b grows upwards
		j := (height - 1 - py) * N.NB / height
		for px := 0; px < width; px++ {
			i := px * N.NA / width
			c := i*N.NB + j
			if N.Low[l][c] {
				img.Set(px, py, color.Gray{Y: 128})
				continue
			}
			f := 0.5
			if span > 0 {
				f = (h[c] - min) / span
			}
			img.Set(px, py, color.RGBA{R: uint8(255 * f), G: 64, B: uint8(255 * (1 - f)), A: 255})
		}
	}
	for py := height; py < height+labelHeight; py++ {
		for px := 0; px < width; px++ {
			img.Set(px, py, color.Black)
		}
	}
	return img
}

// addLabel draws a text label onto an image at the specified position.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
