/*
 * main.go, part of gomembrane.
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

//gomembrane obtains the tilt and splay moduli of lipid bilayers from
//molecular dynamics trajectories.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	membrane "github.com/rmera/gomembrane"
	"github.com/rmera/gomembrane/config"
	"github.com/rmera/gomembrane/elastic"
	"github.com/rmera/gomembrane/pbc"
	"github.com/rmera/gomembrane/traj/dcd"
	"github.com/rmera/gomembrane/traj/stf"
	v3 "github.com/rmera/gomembrane/v3"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gomembrane",
		Short: "Tilt and splay moduli of lipid bilayers",
		Long: `gomembrane computes the tilt and splay moduli of lipid bilayers from
the distributions of lipid tilts and pair splays along a trajectory.
The analysis is described in a TOML file. Keys that are not given
take their default values (a DOPC/DPPC bilayer in TIP3 water).`,
		SilenceUsage: true,
	}
	root.AddCommand(newElasticCmd(), newCheckCmd(), newConvertCmd())
	return root
}

func newElasticCmd() *cobra.Command {
	var conf string
	var cpus int
	var quiet bool
	cmd := &cobra.Command{
		Use:   "elastic",
		Short: "Run the analysis described in a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				log.SetOutput(io.Discard)
			}
			C, err := config.Load(conf)
			if err != nil {
				return err
			}
			if cpus > 0 {
				C.Analysis.Cpus = cpus
			}
			return runElastic(cmd.Context(), C, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&conf, "config", "membrane.toml", "configuration file")
	cmd.Flags().IntVar(&cpus, "cpus", 0, "number of goroutines processing frames (overrides the configuration)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "don't log recoverable problems")
	return cmd
}

//runElastic runs the analysis and writes the results. If ctx is cancelled,
//the frames processed so far are analyzed and written, and the
//cancellation error is returned.
func runElastic(ctx context.Context, C *config.Config, out io.Writer) error {
	src, top, err := C.Open()
	if err != nil {
		return err
	}
	sys, err := C.System(top)
	if err != nil {
		return err
	}
	o := C.Options()
	res, runerr := elastic.Run(ctx, src, sys, o)
	if res == nil {
		return runerr
	}
	if runerr != nil && !errors.Is(runerr, context.Canceled) {
		return runerr
	}
	if runerr != nil {
		log.Printf("gomembrane: interrupted after %d frames, writing partial results", res.Counters.Frames)
	}
	rep := res.Analyze(o.Moduli())
	if err := elastic.Write(res, rep, C.Out()); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if err := rep.WriteText(out); err != nil {
		return err
	}
	return runerr
}

func newCheckCmd() *cobra.Command {
	var conf string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a configuration file against its topology, without processing frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			C, err := config.Load(conf)
			if err != nil {
				return err
			}
			return check(C, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&conf, "config", "membrane.toml", "configuration file")
	return cmd
}

func check(C *config.Config, out io.Writer) error {
	src, top, err := C.Open()
	if err != nil {
		return err
	}
	sys, err := C.System(top)
	if err != nil {
		return err
	}
	first, err := src.Frame(0)
	if err != nil {
		return membrane.ErrDecorate(err, "check")
	}
	if err := pbc.CheckCutoff(C.Analysis.DistanceCutoff, first.Box); err != nil {
		return err
	}
	central := 0
	for _, l := range sys.Lipids {
		if l.DoTilt {
			central++
		}
	}
	fmt.Fprintf(out, "%d atoms, %d lipids (%d central), %d water atoms\n", top.Len(), len(sys.Lipids), central, len(sys.Water))
	fmt.Fprintf(out, "box: %.2f x %.2f x %.2f A\n", first.Box.A.X, first.Box.B.Y, first.Box.C.Z)
	return nil
}

func newConvertCmd() *cobra.Command {
	var prec int
	cmd := &cobra.Command{
		Use:   "convert input.pdb output",
		Short: "Convert a multi-model PDB trajectory to the DCD or the compressed stf format",
		Long: `convert writes the models of a PDB file as a trajectory. Output names
ending in ".dcd" give a DCD file with the unit cell of each model. Other names
give an stf trajectory: gzip-compressed if the name ends in "z", zstd otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := convert(cmd.Context(), args[0], args[1], prec)
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s\n", n, args[1])
			}
			return err
		},
	}
	cmd.Flags().IntVar(&prec, "prec", stf.DefaultPrec, "number of decimal places kept for the coordinates")
	return cmd
}

type writer interface {
	WNext(*v3.Matrix, ...[]float64) error
	Close()
}

func convert(ctx context.Context, in, out string, prec int) (int, error) {
	src, top, err := membrane.NewPDBSource(in)
	if err != nil {
		return 0, err
	}
	var w writer
	if strings.HasSuffix(strings.ToLower(out), ".dcd") {
		w, err = dcd.NewWriter(out, top.Len())
	} else {
		w, err = stf.NewWriter(out, top.Len(), map[string]string{"prec": strconv.Itoa(prec), "source": in})
	}
	if err != nil {
		return 0, err
	}
	defer w.Close()
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		f, err := src.Frame(i)
		if _, ok := err.(membrane.LastFrameError); ok {
			return i, nil
		} else if err != nil {
			return i, err
		}
		if err := w.WNext(f.Coords, f.Box.Vectors()); err != nil {
			return i, err
		}
	}
}
