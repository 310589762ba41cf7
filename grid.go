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
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// edgeTol is the fraction of a cell width below which two edge positions
// are considered to coincide.
const edgeTol = 1e-9

// maxCells is the largest number of cells per axis a grid may have.
const maxCells = 1 << 24

// Edges holds the strictly increasing cell boundaries of a one-dimensional
// grid. Cell i spans [e[i], e[i+1]); the last cell also includes its upper
// edge.
type Edges []float64

// Cells returns the number of cells described by e.
func (e Edges) Cells() int {
	if len(e) < 2 {
		return 0
	}
	return len(e) - 1
}

// Validate returns an error wrapping ErrMismatchedDimensions if e has
// fewer than two edges or is not strictly increasing.
func (e Edges) Validate() error {
	if len(e) < 2 {
		return fmt.Errorf("arealalloc: a grid needs at least 2 edges but has %d: %w",
			len(e), ErrMismatchedDimensions)
	}
	for i := 1; i < len(e); i++ {
		if !(e[i] > e[i-1]) {
			return fmt.Errorf("arealalloc: edges are not strictly increasing at index %d (%g after %g): %w",
				i, e[i], e[i-1], ErrMismatchedDimensions)
		}
	}
	return nil
}

// Centers returns the midpoint of each cell.
func (e Edges) Centers() []float64 {
	c := make([]float64, e.Cells())
	for i := range c {
		c[i] = (e[i] + e[i+1]) / 2
	}
	return c
}

// Widths returns the width of each cell.
func (e Edges) Widths() []float64 {
	w := make([]float64, e.Cells())
	for i := range w {
		w[i] = e[i+1] - e[i]
	}
	return w
}

// Extent returns the interval covered by e.
func (e Edges) Extent() Interval {
	return Interval{Lo: e[0], Hi: e[len(e)-1]}
}

// cellIndex returns the cell that x falls in. A value on a shared edge
// belongs to the cell for which that edge is the lower bound, and the
// final edge belongs to the last cell. ok is false for values outside
// the grid.
func (e Edges) cellIndex(x float64) (i int, ok bool) {
	n := len(e) - 1
	if !(x >= e[0] && x <= e[n]) {
		return 0, false
	}
	if x == e[n] {
		return n - 1, true
	}
	i = sort.SearchFloat64s(e, x)
	if e[i] == x {
		return i, true
	}
	return i - 1, true
}

// NewEdges creates the edges of a grid of cells of the given width that
// covers [start, end]. Edges start at start and step by width until one
// reaches or passes end, so the last cell may extend beyond end. If width
// is larger than the domain, the grid is the single cell [start, end]. If
// start is negative, the grid is anchored so that zero is an edge.
func NewEdges(start, end, width float64) (Edges, error) {
	if err := checkGridSpec(start, end, width, 0); err != nil {
		return nil, err
	}
	return buildEdges(start, end, width, 0, false), nil
}

// NewEdgesRandomOrigin is like NewEdges, but the grid is anchored at an
// origin drawn uniformly from [0, variation) using src, so that the origin
// is always an exact edge. Cells on either side of the origin step away from
// it by width; the cell adjacent to start may therefore be narrower than
// width. A variation of zero gives an origin of zero, and src may then be
// nil.
func NewEdgesRandomOrigin(start, end, width, variation float64, src rand.Source) (Edges, error) {
	if err := checkGridSpec(start, end, width, variation); err != nil {
		return nil, err
	}
	if variation == 0 {
		return buildEdges(start, end, width, 0, false), nil
	}
	if src == nil {
		return nil, fmt.Errorf("arealalloc: a random source is required for origin variation %g: %w",
			variation, ErrInvalidGridSpec)
	}
	origin := distuv.Uniform{Min: 0, Max: variation, Src: src}.Rand()
	return buildEdges(start, end, width, origin, true), nil
}

func checkGridSpec(start, end, width, variation float64) error {
	for _, v := range []float64{start, end, width, variation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("arealalloc: grid parameters must be finite (start=%g, end=%g, width=%g, variation=%g): %w",
				start, end, width, variation, ErrInvalidGridSpec)
		}
	}
	if width <= 0 {
		return fmt.Errorf("arealalloc: cell width must be positive but is %g: %w", width, ErrInvalidGridSpec)
	}
	if end <= start {
		return fmt.Errorf("arealalloc: domain end (%g) must be greater than start (%g): %w",
			end, start, ErrInvalidGridSpec)
	}
	if variation < 0 {
		return fmt.Errorf("arealalloc: origin variation must not be negative but is %g: %w",
			variation, ErrInvalidGridSpec)
	}
	lo, hi := start, end
	if start < 0 || variation > 0 {
		// The grid also reaches the origin, which lies in [0, variation).
		lo, hi = math.Min(start, 0), math.Max(end, variation)
	}
	if n := (hi - lo) / width; math.IsInf(n, 0) || n > maxCells {
		return fmt.Errorf("arealalloc: %g cells of width %g over [%g, %g] exceeds the limit of %d: %w",
			n, width, lo, hi, maxCells, ErrInvalidGridSpec)
	}
	return nil
}

func buildEdges(start, end, width, origin float64, randomOrigin bool) Edges {
	switch {
	case width > end-start:
		return Edges{start, end}
	case start < 0 || randomOrigin:
		return anchoredEdges(start, end, width, origin)
	default:
		return steppedEdges(start, end, width)
	}
}

// steps returns the number of cells of the given width needed to span
// [from, to], ignoring overshoot smaller than edgeTol cell widths.
func steps(from, to, width float64) int {
	n := int(math.Ceil((to-from)/width - edgeTol))
	if n < 1 {
		n = 1
	}
	return n
}

func steppedEdges(start, end, width float64) Edges {
	n := steps(start, end, width)
	e := make(Edges, n+1)
	for k := range e {
		e[k] = start + float64(k)*width
	}
	if e[n] < end {
		e[n] = end
	}
	return e
}

// anchoredEdges builds the cells below origin by stepping up from start and
// the cells above it by stepping up from origin. start is always kept when
// it lies below origin, however close, so the grid covers the domain.
func anchoredEdges(start, end, width, origin float64) Edges {
	var e Edges
	for k := 0; ; k++ {
		v := start + float64(k)*width
		if v >= origin || (k > 0 && v >= origin-edgeTol*width) {
			break
		}
		e = append(e, v)
	}
	if origin >= end {
		return append(e, origin)
	}
	n := steps(origin, end, width)
	for k := 0; k <= n; k++ {
		e = append(e, origin+float64(k)*width)
	}
	if last := len(e) - 1; e[last] < end {
		e[last] = end
	}
	return e
}

// Grid2D is a two-dimensional grid made of independent x and y edges.
// Cell (i, j) spans x cell i and y cell j.
type Grid2D struct {
	X, Y Edges
}

// NewGrid2D creates a grid of square cells of the given width covering the
// rectangle x × y. Each axis is built independently as by
// NewEdgesRandomOrigin, each drawing its own origin from src.
func NewGrid2D(x, y Interval, width, variation float64, src rand.Source) (Grid2D, error) {
	ex, err := NewEdgesRandomOrigin(x.Lo, x.Hi, width, variation, src)
	if err != nil {
		return Grid2D{}, fmt.Errorf("x axis: %w", err)
	}
	ey, err := NewEdgesRandomOrigin(y.Lo, y.Hi, width, variation, src)
	if err != nil {
		return Grid2D{}, fmt.Errorf("y axis: %w", err)
	}
	return Grid2D{X: ex, Y: ey}, nil
}

// Validate checks the edges of both axes.
func (g Grid2D) Validate() error {
	if err := g.X.Validate(); err != nil {
		return fmt.Errorf("x axis: %w", err)
	}
	if err := g.Y.Validate(); err != nil {
		return fmt.Errorf("y axis: %w", err)
	}
	return nil
}

// Shape returns the number of cells along x and y.
func (g Grid2D) Shape() (nx, ny int) {
	return g.X.Cells(), g.Y.Cells()
}
