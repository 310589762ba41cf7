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
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/arealalloc"
	"github.com/spatialmodel/arealalloc/experiment"
	"github.com/spatialmodel/arealalloc/figures"
	"github.com/spatialmodel/arealalloc/pointproc"
	"github.com/spf13/cast"
)

// Settings holds the configuration shared by every command that draws
// points: the point process, the domain it is drawn on and the seed.
// Only the process matching Dim is set.
type Settings struct {
	Dim       int
	Process   string
	Process1D pointproc.Process1D
	Process2D pointproc.Process2D
	Domain    arealalloc.Rect
	Seed      uint64
}

// Title describes the process for figure titles.
func (s Settings) Title() string {
	return fmt.Sprintf("%s process (%dD, seed %d)", s.Process, s.Dim, s.Seed)
}

// drawSettings reads the point process, domain and seed from cfg.
func drawSettings(cfg *viper.Viper) (Settings, error) {
	s := Settings{
		Dim:     cfg.GetInt("dim"),
		Process: strings.ToLower(os.ExpandEnv(cfg.GetString("process"))),
		Domain: arealalloc.Rect{
			X: arealalloc.Interval{Lo: cfg.GetFloat64("start"), Hi: cfg.GetFloat64("end")},
			Y: arealalloc.Interval{Lo: cfg.GetFloat64("ystart"), Hi: cfg.GetFloat64("yend")},
		},
	}
	seed := cfg.GetInt64("seed")
	if seed < 0 {
		return s, fmt.Errorf("arealalloc: seed must not be negative but is %d", seed)
	}
	s.Seed = uint64(seed)

	var err error
	switch s.Dim {
	case 1:
		s.Process1D, err = process1D(cfg, s.Process)
	case 2:
		s.Process2D, err = process2D(cfg, s.Process)
	default:
		return s, fmt.Errorf("arealalloc: dim must be 1 or 2 but is %d", s.Dim)
	}
	return s, err
}

func process1D(cfg *viper.Viper, name string) (pointproc.Process1D, error) {
	switch name {
	case "poisson":
		return pointproc.Poisson{Rate: cfg.GetFloat64("rate")}, nil
	case "neymanscott":
		return neymanScott(cfg), nil
	case "lgcp":
		rate, resolution := cfg.GetFloat64("rate"), cfg.GetInt("resolution")
		if !(rate > 0) {
			return nil, fmt.Errorf("arealalloc: lgcp rate must be positive but is %g", rate)
		}
		if resolution < 1 {
			return nil, fmt.Errorf("arealalloc: lgcp resolution must be at least 1 but is %d", resolution)
		}
		return pointproc.LGCP{
			Dx:               1 / float64(resolution),
			MeanLogIntensity: math.Log(rate),
			Variance:         cfg.GetFloat64("fieldvariance"),
			LengthScale:      cfg.GetFloat64("lengthscale"),
		}, nil
	default:
		return nil, invalidProcess(name)
	}
}

func process2D(cfg *viper.Viper, name string) (pointproc.Process2D, error) {
	switch name {
	case "poisson":
		return pointproc.Poisson2D{Rate: cfg.GetFloat64("rate")}, nil
	case "neymanscott":
		return pointproc.NeymanScott2D(neymanScott(cfg)), nil
	case "lgcp":
		return pointproc.LGCP2D{
			Rate:        cfg.GetFloat64("rate"),
			Resolution:  cfg.GetInt("resolution"),
			Variance:    cfg.GetFloat64("fieldvariance"),
			LengthScale: cfg.GetFloat64("lengthscale"),
		}, nil
	default:
		return nil, invalidProcess(name)
	}
}

func neymanScott(cfg *viper.Viper) pointproc.NeymanScott {
	return pointproc.NeymanScott{
		ParentRate:    cfg.GetFloat64("parentrate"),
		OffspringMean: cfg.GetFloat64("offspring"),
		Sigma:         cfg.GetFloat64("sigma"),
	}
}

func invalidProcess(name string) error {
	return fmt.Errorf("arealalloc: invalid process %q; valid processes are poisson, neymanscott, and lgcp", name)
}

// experimentConfig reads the experiment settings from cfg. A plan file, if
// given, replaces the width lists and may override the trials and seed.
func experimentConfig(cfg *viper.Viper, s Settings) (*experiment.Config, error) {
	mode, err := experiment.ParseMode(os.ExpandEnv(cfg.GetString("mode")))
	if err != nil {
		return nil, err
	}
	c := &experiment.Config{
		Mode:   mode,
		Trials: cfg.GetInt("trials"),
		Seed:   s.Seed,
		Domain: s.Domain,
	}
	if plan := cfg.GetString("plan"); plan != "" {
		f, err := os.Open(os.ExpandEnv(plan))
		if err != nil {
			return nil, fmt.Errorf("arealalloc: opening plan: %v", err)
		}
		defer f.Close()
		p, err := experiment.LoadPlan(f)
		if err != nil {
			return nil, err
		}
		p.Apply(c)
		return c, nil
	}
	if c.GridWidths, err = toFloat64SliceE(cfg.Get("gridwidths")); err != nil {
		return nil, fmt.Errorf("arealalloc: reading 'gridwidths': %v", err)
	}
	if c.QueryWidths, err = toFloat64SliceE(cfg.Get("querywidths")); err != nil {
		return nil, fmt.Errorf("arealalloc: reading 'querywidths': %v", err)
	}
	return c, nil
}

// toFloat64SliceE converts a list of numbers to a []float64, accounting for
// the fact that it might be a slice of strings if it was set from a command
// line argument, or a single separated string if it was set from an
// environment variable.
func toFloat64SliceE(v interface{}) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return s, nil
	case string:
		v = strings.Replace(s, ",", " ", -1)
	}
	items, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(items))
	for i, item := range items {
		if o[i], err = cast.ToFloat64E(strings.TrimSpace(item)); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// setLogging sets the level and format of log from cfg.
func setLogging(cfg *viper.Viper, log *logrus.Logger) error {
	level, err := logrus.ParseLevel(cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("arealalloc: %v", err)
	}
	log.Level = level
	switch f := cfg.GetString("logformat"); f {
	case "text":
		log.Formatter = &logrus.TextFormatter{}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("arealalloc: invalid log format %q; it must be text or json", f)
	}
	return nil
}

// figureFunc writes a figure of experiment results.
type figureFunc func(*experiment.Results, io.Writer) error

// checkFigure returns the figure named kind.
func checkFigure(kind string) (figureFunc, error) {
	switch strings.ToLower(kind) {
	case "results":
		return figures.Results, nil
	case "ratio":
		return figures.Ratio, nil
	case "maperatio":
		return func(res *experiment.Results, w io.Writer) error {
			return figures.MAPERatio(w, []string{res.Mode.String()}, res)
		}, nil
	default:
		return nil, fmt.Errorf("arealalloc: invalid figure %q; valid figures are results, ratio, and maperatio", kind)
	}
}

// writeFile creates the file at path, which can include environment
// variables, and writes to it with write.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("arealalloc: creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("arealalloc: closing output file: %v", err)
	}
	return nil
}
