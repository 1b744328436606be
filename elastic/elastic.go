/*
 * elastic.go, part of gomembrane.
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


//Package elastic runs the whole analysis over a trajectory: normal fields,
//tilts and splays, processing blocks of frames concurrently.
package elastic

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/density"
	"github.com/rmera/gomembrane/mdstat"
	"github.com/rmera/gomembrane/moduli"
	"github.com/rmera/gomembrane/pbc"
	"github.com/rmera/gomembrane/splay"
	"github.com/rmera/gomembrane/surface"
	"github.com/rmera/gomembrane/tilt"
	"gonum.org/v1/gonum/spatial/r3"
)

//System holds the lipids to analyze and the atoms used for the densities.
type System struct {
	Lipids []*membrane.Lipid
	Lipid  []int //heavy atoms of the lipids
	Water  []int
}

//NewSystem builds the lipids of the given types from the topology. water selects
//the solvent atoms, and central the atoms of the residues in the central cell (nil
//for all). It returns a ConfigError if a selection matches nothing.
func NewSystem(top *membrane.Topology, types map[string]*membrane.LipidType, water, central membrane.Selector) (*System, error) {
	lipids, err := membrane.BuildLipids(top, types, central)
	if err != nil {
		return nil, membrane.ErrDecorate(err, "NewSystem")
	}
	S := &System{Lipids: lipids}
	for _, l := range lipids {
		for _, i := range l.Atoms {
			if top.Atom(i).Heavy() {
				S.Lipid = append(S.Lipid, i)
			}
		}
	}
	if len(S.Lipid) == 0 {
		return nil, membrane.NewConfigError("lipids have no heavy atoms")
	}
	S.Water = top.Select(water)
	if len(S.Water) == 0 {
		return nil, membrane.NewConfigError("water selection matches no atoms")
	}
	return S, nil
}

//maxAtom returns the largest atom index used by S, or -1 if it uses none.
func (S *System) maxAtom() int {
	m := -1
	for _, l := range S.Lipids {
		for _, i := range l.Atoms {
			if i > m {
				m = i
			}
		}
	}
	for _, i := range S.Water {
		if i > m {
			m = i
		}
	}
	return m
}

//Result holds everything obtained from a run. The samples and pairs are sorted
//by frame, and then by residue.
type Result struct {
	Tilt     []tilt.Sample
	Pairs    []splay.Pair
	Fields   []*surface.NormalField //one per block, sorted by frame
	Counters moduli.Counters
}

type block struct {
	frames []*membrane.Frame
	gaps   []*membrane.DataGapError
}

//accumulator collects the results of the workers.
type accumulator struct {
	sync.Mutex
	res *Result
}

func (a *accumulator) add(r *Result) {
	a.Lock()
	defer a.Unlock()
	a.res.Tilt = append(a.res.Tilt, r.Tilt...)
	a.res.Pairs = append(a.res.Pairs, r.Pairs...)
	a.res.Fields = append(a.res.Fields, r.Fields...)
	c, d := &a.res.Counters, &r.Counters
	c.Frames += d.Frames
	c.Skipped += d.Skipped
	c.EmptyDensity += d.EmptyDensity
	c.Degenerate += d.Degenerate
	c.LowConfidence += d.LowConfidence
}

func (R *Result) sort() {
	sort.Slice(R.Tilt, func(i, j int) bool {
		a, b := &R.Tilt[i], &R.Tilt[j]
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Residue < b.Residue
	})
	splay.Sort(R.Pairs)
	sort.Slice(R.Fields, func(i, j int) bool { return R.Fields[i].Frame < R.Fields[j].Frame })
}

//Run processes all the frames of src. Frames are grouped in blocks of DensityStride frames,
//which share the normal field of their first frame, and the blocks are processed concurrently.
//It returns a ConfigError if the splay distance cutoff doesn't fit the box of the first frame.
//Frames that can't be processed are skipped and counted. If ctx is canceled, no more blocks are
//started, and the result of the ones already started is returned, with ctx.Err().
func Run(ctx context.Context, src membrane.FrameSource, sys *System, options ...*Options) (*Result, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	if m := sys.maxAtom(); m >= src.Len() {
		return nil, membrane.NewConfigError("the trajectory has %d atoms, but atom %d is used", src.Len(), m+1)
	}
	n := src.NFrames()
	if n == 0 {
		return nil, membrane.NewConfigError("no frames to process")
	}
	first, err := src.Frame(0)
	if err != nil {
		return nil, membrane.ErrDecorate(err, "elastic.Run")
	}
	if err := pbc.CheckCutoff(o.Splay().DistanceCutoff(), first.Box); err != nil {
		return nil, membrane.ErrDecorate(err, "elastic.Run")
	}
	acc := &accumulator{res: new(Result)}
	stride, cpus := o.DensityStride(), o.Cpus()
	jobs := make(chan *block, cpus)
	var wg sync.WaitGroup
	for w := 0; w < cpus; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				acc.add(processBlock(b, sys, o))
			}
		}()
	}
	//frames are read in order, as sequential sources can only go forward cheaply.
	var readErr error
	cached := first
producer:
	for start := 0; start < n; start += stride {
		if ctx.Err() != nil {
			break
		}
		b := new(block)
		for i := start; i < start+stride && i < n; i++ {
			var f *membrane.Frame
			var err error
			if i == 0 && cached != nil {
				f, cached = cached, nil
			} else {
				f, err = src.Frame(i)
			}
			if err != nil {
				if _, ok := err.(membrane.LastFrameError); ok {
					log.Printf("gomembrane/elastic: trajectory ended at frame %d, %d expected", i, n)
					if len(b.frames)+len(b.gaps) > 0 {
						jobs <- b
					}
					break producer
				}
				if membrane.IsCritical(err) {
					if _, ok := err.(membrane.TrajError); !ok {
						readErr = err
						break producer
					}
				}
				b.gaps = append(b.gaps, membrane.NewDataGapError(i, membrane.GapRead, "%v", err))
				continue
			}
			b.frames = append(b.frames, f)
		}
		jobs <- b
	}
	close(jobs)
	wg.Wait()
	R := acc.res
	R.sort()
	log.Printf("gomembrane/elastic: %d frames processed, %d skipped", R.Counters.Frames, R.Counters.Skipped)
	if readErr != nil {
		return R, membrane.ErrDecorate(readErr, "elastic.Run")
	}
	return R, ctx.Err()
}

//processBlock computes the normal field with the first frame of b that allows it, and
//the tilts and splays of all the frames of b from that one on.
func processBlock(b *block, sys *System, o *Options) *Result {
	R := new(Result)
	skip := func(gap *membrane.DataGapError) {
		log.Printf("gomembrane/elastic: %v", gap)
		R.Counters.Skipped++
		if gap.Kind == membrane.GapEmptyDensity {
			R.Counters.EmptyDensity++
		}
	}
	for _, g := range b.gaps {
		skip(g)
	}
	var field *surface.NormalField
	for _, f := range b.frames {
		if err := pbc.CheckCutoff(o.Splay().DistanceCutoff(), f.Box); err != nil {
			skip(membrane.NewDataGapError(f.Index, membrane.GapBox, "%v", err))
			continue
		}
		if field == nil {
			var err error
			field, err = normalField(f, sys, o)
			if err != nil {
				if gap, ok := err.(*membrane.DataGapError); ok {
					skip(gap)
					continue
				}
				//only configuration errors are left, and those were checked before.
				skip(membrane.NewDataGapError(f.Index, membrane.GapInterface, "%v", err))
				continue
			}
			R.Fields = append(R.Fields, field)
			R.Counters.LowConfidence += field.NLow
		}
		samples, pairs, ndeg, err := Frame(f, sys, field, o)
		if err != nil {
			skip(membrane.NewDataGapError(f.Index, membrane.GapBox, "%v", err))
			continue
		}
		R.Tilt = append(R.Tilt, samples...)
		R.Pairs = append(R.Pairs, pairs...)
		R.Counters.Degenerate += ndeg
		R.Counters.Frames++
	}
	return R
}

func normalField(f *membrane.Frame, sys *System, o *Options) (*surface.NormalField, error) {
	G, err := density.Estimate(f, sys.Lipid, sys.Water, o.Density())
	if err != nil {
		return nil, err
	}
	I, err := surface.Extract(G, o.DensityCutoff())
	if err != nil {
		return nil, err
	}
	return surface.Normals(I, f.Box, o.WithinSize(), nil)
}

//Frame computes the tilt samples and splay pairs of one frame, given its
//normal field. It also returns the number of lipids with degenerate directors.
func Frame(f *membrane.Frame, sys *System, field *surface.NormalField, o *Options) ([]tilt.Sample, []splay.Pair, int, error) {
	pos := make([]r3.Vec, len(sys.Lipids))
	for i, l := range sys.Lipids {
		pos[i] = l.NeutralPlane(f.Coords)
	}
	images, err := pbc.Expand(membrane.Residues(sys.Lipids), pos, f.Box, o.Replicas())
	if err != nil {
		return nil, nil, 0, membrane.ErrDecorate(err, fmt.Sprintf("elastic.Frame %d", f.Index))
	}
	all, gerrs := tilt.ComputeAll(f, sys.Lipids, images, field, o.Epsilon())
	pairs := splay.Compute(f, images, all, o.Splay())
	return tilt.Select(all, images), pairs, len(gerrs), nil
}

//TiltAngles returns the tilt angles, in radians, for each lipid type.
func (R *Result) TiltAngles() map[string][]float64 {
	ret := make(map[string][]float64)
	for _, s := range R.Tilt {
		ret[s.Type] = append(ret[s.Type], s.Angle)
	}
	return ret
}

//SplayValues returns the splay values for each pair type.
func (R *Result) SplayValues() map[string][]float64 {
	ret := make(map[string][]float64)
	for _, p := range R.Pairs {
		ret[p.Key] = append(ret[p.Key], p.Value)
	}
	return ret
}

//Inefficiencies returns the mean statistical inefficiency of the tilt angle
//time series of the lipids of each type.
func (R *Result) Inefficiencies() map[string]float64 {
	series := make(map[string]map[int][]float64)
	for _, s := range R.Tilt {
		if series[s.Type] == nil {
			series[s.Type] = make(map[int][]float64)
		}
		series[s.Type][s.Residue] = append(series[s.Type][s.Residue], s.Angle)
	}
	ret := make(map[string]float64, len(series))
	for typ, byres := range series {
		ids := make([]int, 0, len(byres))
		for id := range byres {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		s := make([][]float64, 0, len(ids))
		for _, id := range ids {
			s = append(s, byres[id])
		}
		ret[typ] = mdstat.MeanInefficiency(s)
	}
	return ret
}

//Analyze fits the moduli from the result and adds the run's counters to the report.
func (R *Result) Analyze(o *moduli.Options) *moduli.Report {
	rep := moduli.Analyze(R.TiltAngles(), R.Inefficiencies(), R.SplayValues(), o)
	failures := rep.Counters.FitFailures
	rep.Counters = R.Counters
	rep.Counters.FitFailures = failures
	return rep
}
