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
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Truth1D returns the number of values of xs in q, bounds included. It
// uses the same boundary convention as the estimators, so it can be used
// to measure their error.
func Truth1D(xs []float64, q Interval) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	var n int
	for _, x := range xs {
		if q.Contains(x) {
			n++
		}
	}
	return n, nil
}

// Truth2D returns the number of points in q, boundaries included.
func Truth2D(points []geom.Point, q Rect) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	var n int
	for _, p := range points {
		if q.Contains(p) {
			n++
		}
	}
	return n, nil
}

// PointIndex holds one realization of a two-dimensional point set in a
// spatial index so that it can be queried repeatedly without scanning
// every point.
type PointIndex struct {
	tree *rtree.Rtree
	n    int
}

// NewPointIndex indexes points.
func NewPointIndex(points []geom.Point) *PointIndex {
	idx := &PointIndex{
		tree: rtree.NewTree(25, 50),
		n:    len(points),
	}
	for _, p := range points {
		idx.tree.Insert(p)
	}
	return idx
}

// Len returns the number of indexed points.
func (idx *PointIndex) Len() int { return idx.n }

// Count returns the number of indexed points in q, boundaries included.
// It gives the same result as Truth2D.
func (idx *PointIndex) Count(q Rect) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	var n int
	for _, g := range idx.tree.SearchIntersect(q.Bounds()) {
		if p, ok := g.(geom.Point); ok && q.Contains(p) {
			n++
		}
	}
	return n, nil
}
