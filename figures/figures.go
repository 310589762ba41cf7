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

// Package figures draws experiment results and point process samples as
// PNG images.
package figures

import (
	"fmt"
	"io"
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/arealalloc/experiment"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = 96

var (
	panelWidth  = 5 * vg.Inch
	panelHeight = 4 * vg.Inch
)

// metric is one of the quantities plotted for each estimator.
type metric struct {
	label string
	value func(experiment.Summary) float64
}

var metrics = []metric{
	{"Mean error", func(s experiment.Summary) float64 { return s.MeanError }},
	{"Error variance", func(s experiment.Summary) float64 { return s.ErrorVariance }},
	{"MAPE (%)", func(s experiment.Summary) float64 { return s.MAPE }},
}

// Results writes a PNG with one panel per metric (mean error, error
// variance, and MAPE) against grid width, comparing centroid and
// proportional allocation.
func Results(res *experiment.Results, w io.Writer) error {
	if err := checkResults(res); err != nil {
		return err
	}
	plots, err := metricPlots(res, res.GridWidths(), "Grid width", false)
	if err != nil {
		return err
	}
	return writeRow(plots, w)
}

// Ratio is like Results, but against the ratio of query size to grid cell
// size on a logarithmic axis.
func Ratio(res *experiment.Results, w io.Writer) error {
	if err := checkResults(res); err != nil {
		return err
	}
	label := "Query width : grid width"
	if res.Dims == 2 {
		label = "Query area : cell area"
	}
	plots, err := metricPlots(res, res.Ratios(), label, true)
	if err != nil {
		return err
	}
	return writeRow(plots, w)
}

// MAPERatio writes a log-log PNG of the ratio of centroid MAPE to
// proportional MAPE against the query:grid ratio, with one line per
// experiment. names label the experiments. A dashed line marks equal
// performance; points above it favor proportional allocation.
func MAPERatio(w io.Writer, names []string, res ...*experiment.Results) error {
	if len(names) != len(res) {
		return fmt.Errorf("figures: %d names for %d results", len(names), len(res))
	}
	if len(res) == 0 {
		return fmt.Errorf("figures: no results")
	}
	p := plot.New()
	p.Title.Text = "Centroid MAPE : proportional MAPE"
	p.X.Label.Text = "Query : grid ratio"
	p.Y.Label.Text = "MAPE ratio"
	logAxes(p, true, true)
	p.Legend.Top = true

	var xs, ys []float64
	for i, r := range res {
		if err := checkResults(r); err != nil {
			return err
		}
		ratios := r.Ratios()
		y := make([]float64, len(r.Pairs))
		for j := range r.Pairs {
			y[j] = r.Pairs[j].Centroid.MAPE / r.Pairs[j].Proportional.MAPE
		}
		pts := plotXYs(ratios, y, true, true)
		if len(pts) == 0 {
			continue
		}
		for _, pt := range pts {
			xs, ys = append(xs, pt.X), append(ys, pt.Y)
		}
		l, s, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("figures: %v", err)
		}
		l.Color = plotutil.Color(i)
		s.Color = plotutil.Color(i)
		s.Shape = plotutil.Shape(i)
		p.Add(l, s)
		p.Legend.Add(names[i], l, s)
	}
	if len(xs) == 0 {
		return fmt.Errorf("figures: no positive MAPE ratios to plot")
	}
	logRange(&p.X, xs...)
	logRange(&p.Y, append(ys, 1)...)
	equal, err := plotter.NewLine(plotter.XYs{{X: p.X.Min, Y: 1}, {X: p.X.Max, Y: 1}})
	if err != nil {
		return fmt.Errorf("figures: %v", err)
	}
	equal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	equal.Color = plotutil.Color(len(res))
	p.Add(equal)
	return writePlot(p, panelWidth*1.2, panelHeight, w)
}

// Samples1D writes a histogram of xs with a rug of the individual points.
func Samples1D(xs []float64, title string, w io.Writer) error {
	if len(xs) == 0 {
		return fmt.Errorf("figures: no points to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "Count"

	bins := int(math.Ceil(math.Sqrt(float64(len(xs)))))
	h, err := plotter.NewHist(plotter.Values(xs), bins)
	if err != nil {
		return fmt.Errorf("figures: %v", err)
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)

	rug := make(plotter.XYs, len(xs))
	for i, x := range xs {
		rug[i] = plotter.XY{X: x, Y: 0}
	}
	s, err := plotter.NewScatter(rug)
	if err != nil {
		return fmt.Errorf("figures: %v", err)
	}
	s.Shape = draw.BoxGlyph{}
	s.Radius = vg.Points(1)
	s.Color = plotutil.Color(1)
	p.Add(s)
	return writePlot(p, panelWidth*1.5, panelHeight, w)
}

// Samples2D writes a scatter plot of pts.
func Samples2D(pts []geom.Point, title string, w io.Writer) error {
	if len(pts) == 0 {
		return fmt.Errorf("figures: no points to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("figures: %v", err)
	}
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(1.5)
	s.Color = plotutil.Color(0)
	p.Add(s)
	return writePlot(p, panelHeight*1.25, panelHeight*1.25, w)
}

func checkResults(res *experiment.Results) error {
	if res == nil || len(res.Pairs) == 0 {
		return fmt.Errorf("figures: no results to plot")
	}
	return nil
}

// metricPlots returns one plot per metric with a line for each estimator.
func metricPlots(res *experiment.Results, x []float64, xlabel string, logX bool) ([]*plot.Plot, error) {
	plots := make([]*plot.Plot, len(metrics))
	for i, m := range metrics {
		p := plot.New()
		p.Title.Text = m.label
		p.X.Label.Text = xlabel
		p.Y.Label.Text = m.label
		logAxes(p, logX, false)
		p.Legend.Top = true
		var ys []float64
		for j, e := range []experiment.Estimator{experiment.Centroid, experiment.Proportional} {
			y := make([]float64, len(res.Pairs))
			for k := range res.Pairs {
				y[k] = m.value(res.Summary(k, e))
			}
			pts := plotXYs(x, y, logX, false)
			if len(pts) == 0 {
				continue
			}
			for _, pt := range pts {
				ys = append(ys, pt.Y)
			}
			l, s, err := plotter.NewLinePoints(pts)
			if err != nil {
				return nil, fmt.Errorf("figures: %s: %v", m.label, err)
			}
			l.Color = plotutil.Color(j)
			s.Color = plotutil.Color(j)
			s.Shape = plotutil.Shape(j)
			p.Add(l, s)
			p.Legend.Add(e.String(), l, s)
		}
		if logX {
			logRange(&p.X, x...)
		} else {
			linearRange(&p.X, x...)
		}
		linearRange(&p.Y, ys...)
		plots[i] = p
	}
	return plots, nil
}

func logAxes(p *plot.Plot, x, y bool) {
	if x {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if y {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
}

// plotXYs pairs x and y, skipping points that cannot be drawn: NaN or
// infinite values, such as the MAPE of a pair whose queries never held any
// points, and values that are not positive on a logarithmic axis.
func plotXYs(x, y []float64, logX, logY bool) plotter.XYs {
	var xys plotter.XYs
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) || (logX && x[i] <= 0) || (logY && y[i] <= 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: x[i], Y: y[i]})
	}
	return xys
}

// logRange sets the range of a logarithmic axis to span the positive
// values of vals, widening a range of a single value.
func logRange(a *plot.Axis, vals ...float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v > 0 && isFinite(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 1, 10
	}
	if lo == hi {
		lo, hi = lo/2, hi*2
	}
	a.Min, a.Max = lo, hi
}

// linearRange sets the range of a linear axis to span the finite values
// of vals, widening a range of a single value. Without values the range is
// [0, 1].
func linearRange(a *plot.Axis, vals ...float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if isFinite(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	switch {
	case math.IsInf(lo, 1):
		lo, hi = 0, 1
	case lo == hi:
		pad := math.Max(math.Abs(lo)/2, 1)
		lo, hi = lo-pad, hi+pad
	}
	a.Min, a.Max = lo, hi
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func writeRow(plots []*plot.Plot, w io.Writer) error {
	img := vgimg.NewWith(vgimg.UseWH(panelWidth*vg.Length(len(plots)), panelHeight), vgimg.UseDPI(dpi))
	dc := draw.New(img)
	t := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, t, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}
	return writePNG(img, w)
}

func writePlot(p *plot.Plot, width, height vg.Length, w io.Writer) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(img))
	return writePNG(img, w)
}

func writePNG(img *vgimg.Canvas, w io.Writer) error {
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("figures: writing png: %v", err)
	}
	return nil
}
