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

import "gonum.org/v1/gonum/mat"

// Centroid1D estimates the number of points in q by summing the counts of
// the cells whose centers lie in q, bounds included. The estimate depends
// on how the query lines up with the grid.
func Centroid1D(counts []float64, edges Edges, q Interval) (float64, error) {
	if err := check1D(counts, edges, q); err != nil {
		return 0, err
	}
	var sum float64
	for i, c := range edges.Centers() {
		if q.Contains(c) {
			sum += counts[i]
		}
	}
	return sum, nil
}

// Centroid2D estimates the number of points in q by summing the counts of
// the cells whose (x, y) centers lie in q. counts must have one row per x
// cell and one column per y cell of g.
func Centroid2D(counts mat.Matrix, g Grid2D, q Rect) (float64, error) {
	if err := check2D(counts, g, q); err != nil {
		return 0, err
	}
	inY := centersWithin(g.Y, q.Y)
	var sum float64
	for i, x := range g.X.Centers() {
		if !q.X.Contains(x) {
			continue
		}
		for j, ok := range inY {
			if ok {
				sum += counts.At(i, j)
			}
		}
	}
	return sum, nil
}

func centersWithin(e Edges, q Interval) []bool {
	in := make([]bool, e.Cells())
	for i, c := range e.Centers() {
		in[i] = q.Contains(c)
	}
	return in
}
