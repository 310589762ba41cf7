/*
Copyright © 2024 the ArealAlloc authors.
This file is part of ArealAlloc.

ArealAlloc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ArealAlloc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ArealAlloc.  If not, see <http://www.gnu.org/licenses/>.
*/

package allocutil

import (
	"context"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/arealalloc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Process and domain options are shared by every command that draws
	// points.
	drawSets := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{estimateCmd.Flags(), simulateCmd.Flags(), sampleCmd.Flags()}
	}

	// Options are the configuration options available to ArealAlloc.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel is the minimum level of log messages to print:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "logformat",
			usage: `
              logformat is the format of log messages: text or json.`,
			defaultVal: "text",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "dim",
			usage: `
              dim is the number of spatial dimensions, 1 or 2.`,
			shorthand:  "d",
			defaultVal: 1,
			flagsets:   drawSets(),
		},
		{
			name: "process",
			usage: `
              process is the point process that points are drawn from:
              poisson, neymanscott, or lgcp.`,
			shorthand:  "p",
			defaultVal: "poisson",
			flagsets:   drawSets(),
		},
		{
			name: "rate",
			usage: `
              rate is the expected number of points per unit length (1D) or area (2D)
              of the poisson process, and the exponential of the mean log intensity
              of the lgcp process.`,
			defaultVal: 100.0,
			flagsets:   drawSets(),
		},
		{
			name: "parentrate",
			usage: `
              parentrate is the expected number of cluster parents per unit length
              or area of the neymanscott process.`,
			defaultVal: 10.0,
			flagsets:   drawSets(),
		},
		{
			name: "offspring",
			usage: `
              offspring is the expected number of points around each neymanscott
              cluster parent.`,
			defaultVal: 10.0,
			flagsets:   drawSets(),
		},
		{
			name: "sigma",
			usage: `
              sigma is the standard deviation of the displacement of neymanscott
              offspring from their parent.`,
			defaultVal: 0.02,
			flagsets:   drawSets(),
		},
		{
			name: "fieldvariance",
			usage: `
              fieldvariance is the variance of the Gaussian field of the lgcp process.`,
			defaultVal: 0.5,
			flagsets:   drawSets(),
		},
		{
			name: "lengthscale",
			usage: `
              lengthscale is the correlation length of the Gaussian field of the
              lgcp process.`,
			defaultVal: 0.1,
			flagsets:   drawSets(),
		},
		{
			name: "resolution",
			usage: `
              resolution is the number of Gaussian field nodes per unit length
              (1D) or along each side of the domain (2D) of the lgcp process.`,
			defaultVal: 50,
			flagsets:   drawSets(),
		},
		{
			name: "seed",
			usage: `
              seed determines all random draws. Runs with the same seed and
              configuration give the same results.`,
			defaultVal: 1,
			flagsets:   drawSets(),
		},
		{
			name: "start",
			usage: `
              start is the lower bound of the domain along x.`,
			defaultVal: 0.0,
			flagsets:   drawSets(),
		},
		{
			name: "end",
			usage: `
              end is the upper bound of the domain along x.`,
			defaultVal: 1.0,
			flagsets:   drawSets(),
		},
		{
			name: "ystart",
			usage: `
              ystart is the lower bound of the domain along y. It is only
              used in two dimensions.`,
			defaultVal: 0.0,
			flagsets:   drawSets(),
		},
		{
			name: "yend",
			usage: `
              yend is the upper bound of the domain along y. It is only
              used in two dimensions.`,
			defaultVal: 1.0,
			flagsets:   drawSets(),
		},
		{
			name: "gridwidth",
			usage: `
              gridwidth is the width of the grid cells.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "variation",
			usage: `
              variation is the range of the random grid origin. When it is zero
              the grid starts at the start of the domain.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "qlo",
			usage: `
              qlo is the lower bound of the query along x.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "qhi",
			usage: `
              qhi is the upper bound of the query along x.`,
			defaultVal: 0.35,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "ylo",
			usage: `
              ylo is the lower bound of the query along y in two dimensions.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "yhi",
			usage: `
              yhi is the upper bound of the query along y in two dimensions.`,
			defaultVal: 0.35,
			flagsets:   []*pflag.FlagSet{estimateCmd.Flags()},
		},
		{
			name: "mode",
			usage: `
              mode is how queries and grids are placed in each trial: fixed,
              random, or random-origin.`,
			shorthand:  "m",
			defaultVal: "random",
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "trials",
			usage: `
              trials is the number of trials for each grid and query width pair.`,
			shorthand:  "n",
			defaultVal: 1000,
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "workers",
			usage: `
              workers is the number of trials to run in parallel. The default of
              0 uses one worker per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "gridwidths",
			usage: `
              gridwidths are the grid cell widths of the experiment. They are
              paired in order with querywidths.`,
			defaultVal: []string{"0.025", "0.05", "0.1", "0.2", "0.4"},
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "querywidths",
			usage: `
              querywidths are the query widths of the experiment. They are paired
              in order with gridwidths.`,
			defaultVal: []string{"0.1", "0.1", "0.1", "0.1", "0.1"},
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "plan",
			usage: `
              plan is the path to a TOML file listing the grid and query width
              pairs of the experiment, which replace gridwidths and querywidths.
              It may also set the number of trials and the seed. The path can
              include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "figure",
			usage: `
              figure is the kind of figure written to output: results (against
              grid width), ratio (against the query:grid ratio), or maperatio.`,
			defaultVal: "results",
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the path of the PNG figure to write. simulate only writes
              a figure if it is set. The path can include environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{simulateCmd.Flags(), sampleCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AREALALLOC")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(estimateCmd)
	Root.AddCommand(simulateCmd)
	Root.AddCommand(sampleCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("arealalloc: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "arealalloc",
	Short: "Compare centroid and proportional areal allocation.",
	Long: `ArealAlloc estimates the number of points in a query region from gridded
point counts, using centroid or proportional allocation, and runs Monte Carlo
experiments measuring the error of each method.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'AREALALLOC_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLogging(Cfg, logrus.StandardLogger())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ArealAlloc.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ArealAlloc v%s\n", arealalloc.Version)
	},
	DisableAutoGenTag: true,
}

// estimateCmd is a command that estimates one query from one realization.
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the points in a query",
	Long: `estimate draws one realization of the configured point process, counts
the points in a grid of cells of width gridwidth, and prints the true number
of points in the query [qlo, qhi] (× [ylo, yhi] in two dimensions) along
with the centroid and proportional allocation estimates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := drawSettings(Cfg)
		if err != nil {
			return err
		}
		q := arealalloc.Rect{
			X: arealalloc.Interval{Lo: Cfg.GetFloat64("qlo"), Hi: Cfg.GetFloat64("qhi")},
			Y: arealalloc.Interval{Lo: Cfg.GetFloat64("ylo"), Hi: Cfg.GetFloat64("yhi")},
		}
		e, err := Estimate(s, Cfg.GetFloat64("gridwidth"), Cfg.GetFloat64("variation"), q)
		if err != nil {
			return err
		}
		return e.Write(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

// simulateCmd is a command that runs an experiment.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run an experiment",
	Long: `simulate runs a Monte Carlo experiment comparing centroid and proportional
allocation for each pair of grid width and query width, prints a table of
the mean error, error variance and mean absolute percentage error (MAPE) of
each estimator, and, if output is set, writes a figure of the results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := drawSettings(Cfg)
		if err != nil {
			return err
		}
		c, err := experimentConfig(Cfg, s)
		if err != nil {
			return err
		}
		figure, err := checkFigure(Cfg.GetString("figure"))
		if err != nil {
			return err
		}
		res, err := Simulate(context.Background(), s, c, Cfg.GetInt("workers"), logrus.StandardLogger())
		if err != nil {
			return err
		}
		if err := res.WriteTable(cmd.OutOrStdout()); err != nil {
			return err
		}
		if out := Cfg.GetString("output"); out != "" {
			return writeFile(out, func(f *os.File) error { return figure(res, f) })
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// sampleCmd is a command that plots one realization of a point process.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Plot a point process realization",
	Long: `sample draws one realization of the configured point process and writes
a PNG figure of it to output: a histogram in one dimension or a scatter plot
in two.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := drawSettings(Cfg)
		if err != nil {
			return err
		}
		out := Cfg.GetString("output")
		if out == "" {
			return fmt.Errorf("arealalloc: sample requires an output file")
		}
		return writeFile(out, func(f *os.File) error { return Sample(s, f) })
	},
	DisableAutoGenTag: true,
}
