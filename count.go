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

package arealalloc

import (
	"fmt"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"
)

// Count1D returns the number of values of xs that fall in each cell of
// edges. Values outside of the grid are dropped, so the sum of the counts
// may be less than len(xs).
func Count1D(edges Edges, xs []float64) ([]float64, error) {
	if err := edges.Validate(); err != nil {
		return nil, err
	}
	counts := make([]float64, edges.Cells())
	for _, x := range xs {
		if i, ok := edges.cellIndex(x); ok {
			counts[i]++
		}
	}
	return counts, nil
}

// Count2D returns the number of points that fall in each cell of g as a
// matrix with one row per x cell and one column per y cell. Points outside
// of the grid are dropped.
func Count2D(g Grid2D, points []geom.Point) (*mat.Dense, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	counts := mat.NewDense(g.X.Cells(), g.Y.Cells(), nil)
	for _, p := range points {
		i, ok := g.X.cellIndex(p.X)
		if !ok {
			continue
		}
		j, ok := g.Y.cellIndex(p.Y)
		if !ok {
			continue
		}
		counts.Set(i, j, counts.At(i, j)+1)
	}
	return counts, nil
}

// check1D validates the inputs shared by the one-dimensional estimators.
func check1D(counts []float64, edges Edges, q Interval) error {
	if err := edges.Validate(); err != nil {
		return err
	}
	if len(counts) != edges.Cells() {
		return fmt.Errorf("arealalloc: %d counts for %d edges: %w",
			len(counts), len(edges), ErrMismatchedDimensions)
	}
	return q.Validate()
}

// check2D validates the inputs shared by the two-dimensional estimators.
func check2D(counts mat.Matrix, g Grid2D, q Rect) error {
	if err := g.Validate(); err != nil {
		return err
	}
	r, c := counts.Dims()
	if nx, ny := g.Shape(); r != nx || c != ny {
		return fmt.Errorf("arealalloc: %d×%d counts for a %d×%d grid: %w",
			r, c, nx, ny, ErrMismatchedDimensions)
	}
	return q.Validate()
}
