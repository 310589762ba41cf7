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
	"errors"
	"testing"

	"github.com/ctessum/geom"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

// testPoints are six points over the unit square.
func testPoints() []geom.Point {
	return []geom.Point{
		{X: 0.1, Y: 0.2},
		{X: 0.1, Y: 0.4},
		{X: 0.4, Y: 0.6},
		{X: 0.55, Y: 0.4},
		{X: 0.99, Y: 0.01},
		{X: 0.99, Y: 0.49},
	}
}

func TestCount1D(t *testing.T) {
	edges := Edges{0, 0.2, 0.4, 0.6}
	xs := []float64{-0.5, 0, 0.05, 0.2, 0.21, 0.39, 0.4, 0.45, 0.6, 0.7}
	have, err := Count1D(edges, xs)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3, 3}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("counts (-want +have):\n%s", diff)
	}

	if _, err := Count1D(Edges{0}, xs); !errors.Is(err, ErrMismatchedDimensions) {
		t.Errorf("have error %v, want ErrMismatchedDimensions", err)
	}
}

func TestCount2D(t *testing.T) {
	g, err := NewGrid2D(Interval{0, 1}, Interval{0, 1}, 0.5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	pts := append(testPoints(), geom.Point{X: 1.5, Y: 0.5}, geom.Point{X: 0.5, Y: -0.1}, geom.Point{X: 1, Y: 1})
	have, err := Count2D(g, pts)
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(2, 2, []float64{
		2, 1,
		3, 1,
	})
	if !mat.Equal(have, want) {
		t.Errorf("have\n%v\nwant\n%v", mat.Formatted(have), mat.Formatted(want))
	}
	if s := mat.Sum(have); s != 7 {
		t.Errorf("points inside the grid: have %g, want 7", s)
	}

	if _, err := Count2D(Grid2D{X: Edges{0, 1}, Y: Edges{1, 0}}, pts); !errors.Is(err, ErrMismatchedDimensions) {
		t.Errorf("have error %v, want ErrMismatchedDimensions", err)
	}
}
