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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OverlapFractions returns, for each cell of edges, the fraction of the
// cell's width that lies inside q. Fractions are in [0, 1]: 1 for cells
// fully inside q and 0 for cells that do not touch it.
func OverlapFractions(edges Edges, q Interval) ([]float64, error) {
	if err := edges.Validate(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return overlapFractions(edges, q), nil
}

// overlapFractions uses the width of each individual cell, so cells
// narrowed by a random grid origin are weighted correctly.
func overlapFractions(edges Edges, q Interval) []float64 {
	w := edges.Widths()
	f := make([]float64, len(w))
	for i := range f {
		overlap := math.Min(edges[i+1], q.Hi) - math.Max(edges[i], q.Lo)
		if overlap <= 0 {
			continue
		}
		f[i] = math.Min(overlap/w[i], 1)
	}
	return f
}

// Proportional1D estimates the number of points in q by summing the
// count of each cell weighted by the fraction of the cell that overlaps q.
func Proportional1D(counts []float64, edges Edges, q Interval) (float64, error) {
	if err := check1D(counts, edges, q); err != nil {
		return 0, err
	}
	return floats.Dot(overlapFractions(edges, q), counts), nil
}

// Proportional2D estimates the number of points in q by summing the count
// of each cell weighted by the fraction of the cell's area that overlaps q.
// Because both the cells and q are axis-aligned rectangles, the area
// fraction of cell (i, j) is the product of its x and y overlap fractions.
func Proportional2D(counts mat.Matrix, g Grid2D, q Rect) (float64, error) {
	if err := check2D(counts, g, q); err != nil {
		return 0, err
	}
	fx := mat.NewVecDense(g.X.Cells(), overlapFractions(g.X, q.X))
	fy := mat.NewVecDense(g.Y.Cells(), overlapFractions(g.Y, q.Y))

	var w mat.Dense
	w.Outer(1, fx, fy)
	w.MulElem(&w, counts)
	return mat.Sum(&w), nil
}
