/*
 * output.go, part of gomembrane.
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
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/histo"
	"github.com/rmera/gomembrane/moduli"
	"github.com/rmera/gomembrane/render"
	"github.com/rmera/gomembrane/surface"
)

//Output says where and what to write.
type Output struct {
	Dir    string
	Prefix string
	Plots  bool
	Movie  bool
}

func (O *Output) name(s string) string {
	return filepath.Join(O.Dir, O.Prefix+s)
}

func writeFile(name string, f func(*os.File) error) error {
	fout, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := f(fout); err != nil {
		fout.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return fout.Close()
}

func writeHisto(name string, D *histo.Data, xscale float64) error {
	if err := writeFile(name+".dat", func(f *os.File) error { return D.WriteTable(f, xscale) }); err != nil {
		return err
	}
	return writeFile(name+".json", func(f *os.File) error { return json.NewEncoder(f).Encode(D) })
}

//Write writes the histograms, the report and, if requested, the plots and the
//movie of the normal fields of res. Plot failures are logged but not returned.
func Write(res *Result, rep *moduli.Report, O *Output) error {
	if err := os.MkdirAll(O.Dir, 0o755); err != nil {
		return err
	}
	for _, k := range rep.TiltLabels() {
		F := rep.Tilt[k]
		name := O.name("tilt_" + k)
		if err := writeHisto(name, F.Histogram, membrane.Rad2Deg(1)); err != nil {
			return err
		}
		if O.Plots {
			if err := render.FitPlot(F, membrane.Rad2Deg(1), "tilt (degrees)", name+".png"); err != nil {
				log.Printf("gomembrane/elastic: %v", err)
			}
		}
	}
	for _, k := range rep.SplayLabels() {
		F := rep.Splay[k]
		name := O.name("splay_" + strings.ReplaceAll(k, "/", "_"))
		if err := writeHisto(name, F.Histogram, 1); err != nil {
			return err
		}
		if O.Plots {
			if err := render.FitPlot(F, 1, "splay (1/A)", name+".png"); err != nil {
				log.Printf("gomembrane/elastic: %v", err)
			}
		}
	}
	if err := writeFile(O.name("moduli.json"), func(f *os.File) error { return rep.WriteJSON(f) }); err != nil {
		return err
	}
	if err := writeFile(O.name("moduli.txt"), func(f *os.File) error { return rep.WriteText(f) }); err != nil {
		return err
	}
	if O.Plots {
		if ok, err := render.ModuliChart(rep, O.name("moduli.png")); err != nil {
			log.Printf("gomembrane/elastic: %v", err)
		} else if !ok {
			log.Printf("gomembrane/elastic: no finite moduli to chart")
		}
	}
	if O.Movie && len(res.Fields) > 0 {
		return writeMovie(res.Fields, O.name("normals.avi"))
	}
	return nil
}

func writeMovie(fields []*surface.NormalField, name string) error {
	M, err := render.NewMovie(name, 256, 5, surface.Upper)
	if err != nil {
		return err
	}
	for _, N := range fields {
		if err := M.Add(N, fmt.Sprintf("frame %d", N.Frame)); err != nil {
			M.Close()
			return err
		}
	}
	return M.Close()
}
