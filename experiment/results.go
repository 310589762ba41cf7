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

package experiment

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Results holds the outcome of an experiment, one entry per pair in the
// order of the configuration.
type Results struct {
	RunID string
	Dims  int
	Mode  Mode
	Pairs []PairResult
}

// Estimator selects the summary of one estimator.
type Estimator int

// The estimators compared by an experiment.
const (
	Centroid Estimator = iota
	Proportional
)

func (e Estimator) String() string {
	if e == Centroid {
		return "centroid"
	}
	return "proportional"
}

// Summary returns the summary of estimator e for pair i.
func (r *Results) Summary(i int, e Estimator) Summary {
	if e == Centroid {
		return r.Pairs[i].Centroid
	}
	return r.Pairs[i].Proportional
}

// GridWidths returns the grid width of each pair.
func (r *Results) GridWidths() []float64 {
	w := make([]float64, len(r.Pairs))
	for i, p := range r.Pairs {
		w[i] = p.GridWidth
	}
	return w
}

// Ratios returns the ratio of query size to grid cell size for each pair:
// the width ratio in one dimension and the area ratio in two.
func (r *Results) Ratios() []float64 {
	ratios := make([]float64, len(r.Pairs))
	for i, p := range r.Pairs {
		ratios[i] = p.QueryWidth / p.GridWidth
		if r.Dims == 2 {
			ratios[i] *= ratios[i]
		}
	}
	return ratios
}

// WriteTable writes r as an aligned text table.
func (r *Results) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "grid width\tquery width\ttrials\t"+
		"centroid mean error\tcentroid error variance\tcentroid MAPE\t"+
		"proportional mean error\tproportional error variance\tproportional MAPE\t\n")
	for _, p := range r.Pairs {
		fmt.Fprintf(tw, "%g\t%g\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n",
			p.GridWidth, p.QueryWidth, p.Trials,
			p.Centroid.MeanError, p.Centroid.ErrorVariance, p.Centroid.MAPE,
			p.Proportional.MeanError, p.Proportional.ErrorVariance, p.Proportional.MAPE)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("experiment: writing table: %v", err)
	}
	return nil
}
