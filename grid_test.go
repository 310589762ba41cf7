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
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/stat/distuv"
)

const testTolerance = 1e-9

var approx = cmpopts.EquateApprox(0, testTolerance)

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestNewEdges(t *testing.T) {
	tests := []struct {
		name              string
		start, end, width float64
		want              Edges
	}{
		{name: "exact", start: 0, end: 1, width: 0.5, want: Edges{0, 0.5, 1}},
		{name: "thirds", start: 0, end: 1, width: 1. / 3, want: Edges{0, 1. / 3, 2. / 3, 1}},
		{name: "overshoot", start: 0, end: 1, width: 0.3, want: Edges{0, 0.3, 0.6, 0.9, 1.2}},
		{name: "offset start", start: 2, end: 3, width: 0.25, want: Edges{2, 2.25, 2.5, 2.75, 3}},
		{name: "single cell", start: 0, end: 1, width: 2, want: Edges{0, 1}},
		{name: "single cell negative", start: -1, end: 0.5, width: 2, want: Edges{-1, 0.5}},
		{name: "straddles zero", start: -1, end: 1, width: 0.5, want: Edges{-1, -0.5, 0, 0.5, 1}},
		{name: "zero anchored", start: -0.25, end: 1, width: 0.5, want: Edges{-0.25, 0, 0.5, 1}},
		{name: "negative domain", start: -2, end: -1, width: 0.5, want: Edges{-2, -1.5, -1, -0.5, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := NewEdges(test.start, test.end, test.width)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, have, approx); diff != "" {
				t.Errorf("edges mismatch (-want +have):\n%s", diff)
			}
			if err := have.Validate(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestNewEdgesInvalid(t *testing.T) {
	src := rand.NewPCG(1, 2)
	tests := []struct {
		name                         string
		start, end, width, variation float64
		src                          rand.Source
	}{
		{name: "zero width", start: 0, end: 1, width: 0},
		{name: "negative width", start: 0, end: 1, width: -0.1},
		{name: "empty domain", start: 1, end: 1, width: 0.1},
		{name: "reversed domain", start: 1, end: 0, width: 0.1},
		{name: "nan", start: math.NaN(), end: 1, width: 0.1},
		{name: "inf", start: 0, end: math.Inf(1), width: 0.1},
		{name: "negative variation", start: 0, end: 1, width: 0.1, variation: -1, src: src},
		{name: "missing source", start: 0, end: 1, width: 0.1, variation: 0.5},
		{name: "too many cells", start: 0, end: 1e10, width: 1},
		{name: "cell count overflow", start: 0, end: 1e300, width: 1e-300},
		{name: "wide origin variation", start: 0, end: 1, width: 1e-3, variation: 1e5, src: src},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewEdgesRandomOrigin(test.start, test.end, test.width, test.variation, test.src)
			if !errors.Is(err, ErrInvalidGridSpec) {
				t.Errorf("have error %v, want ErrInvalidGridSpec", err)
			}
		})
	}
	if _, err := NewEdges(0, 1, 0); !errors.Is(err, ErrInvalidGridSpec) {
		t.Errorf("NewEdges: have error %v, want ErrInvalidGridSpec", err)
	}
}

func TestNewEdgesRandomOrigin(t *testing.T) {
	domains := []Interval{{0, 1}, {-1, 2}, {0.5, 1}, {-3, -1}}
	for _, d := range domains {
		for _, width := range []float64{0.01, 0.1, 0.3, 0.7} {
			for _, variation := range []float64{0.05, 0.5, 2} {
				for seed := uint64(0); seed < 50; seed++ {
					e, err := NewEdgesRandomOrigin(d.Lo, d.Hi, width, variation, rand.NewPCG(seed, 7))
					if err != nil {
						t.Fatal(err)
					}
					if err := e.Validate(); err != nil {
						t.Fatalf("domain %v width %g variation %g seed %d: %v", d, width, variation, seed, err)
					}
					if e[0] > d.Lo {
						t.Errorf("domain %v width %g variation %g seed %d: first edge %g > start",
							d, width, variation, seed, e[0])
					}
					if e[len(e)-1] < d.Hi {
						t.Errorf("domain %v width %g variation %g seed %d: last edge %g < end",
							d, width, variation, seed, e[len(e)-1])
					}
					if width > d.Width() {
						continue
					}
					origin := distuv.Uniform{Min: 0, Max: variation, Src: rand.NewPCG(seed, 7)}.Rand()
					if !containsEdge(e, origin) {
						t.Errorf("domain %v width %g variation %g seed %d: origin %g is not an edge of %v",
							d, width, variation, seed, origin, e)
					}
				}
			}
		}
	}
}

func containsEdge(e Edges, v float64) bool {
	for _, x := range e {
		if x == v {
			return true
		}
	}
	return false
}

// fixedSource always returns the same value, which pins the origin drawn by
// NewEdgesRandomOrigin.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }

func TestNewEdgesOriginNearStart(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		src        fixedSource
	}{
		// Float64 of 2⁻⁵³ puts the origin a tiny distance above zero.
		{name: "origin just above zero", start: 0, end: 1, src: 1},
		// Float64 of 0.5+2⁻⁵³ puts the origin at or just above 0.05.
		{name: "origin at positive start", start: 0.05, end: 1, src: 1<<52 + 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := NewEdgesRandomOrigin(test.start, test.end, 0.1, 0.1, test.src)
			if err != nil {
				t.Fatal(err)
			}
			if err := e.Validate(); err != nil {
				t.Fatal(err)
			}
			if e[0] > test.start || e[len(e)-1] < test.end {
				t.Fatalf("edges %v do not cover [%g, %g]", e, test.start, test.end)
			}
			counts, err := Count1D(e, []float64{test.start})
			if err != nil {
				t.Fatal(err)
			}
			var total float64
			for _, c := range counts {
				total += c
			}
			if total != 1 {
				t.Errorf("point at the domain start counted %g times in %v", total, counts)
			}
		})
	}
}

func TestNewEdgesRandomOriginReproducible(t *testing.T) {
	a, err := NewEdgesRandomOrigin(0, 1, 0.1, 0.1, rand.NewPCG(42, 42))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEdgesRandomOrigin(0, 1, 0.1, 0.1, rand.NewPCG(42, 42))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different grids:\n%s", diff)
	}
}

func TestNewEdgesSingleCell(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		e, err := NewEdgesRandomOrigin(-0.2, 0.4, 1, 0.5, rand.NewPCG(seed, 0))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(Edges{-0.2, 0.4}, e); diff != "" {
			t.Errorf("seed %d (-want +have):\n%s", seed, diff)
		}
	}
}

func TestEdgesValidate(t *testing.T) {
	for _, e := range []Edges{nil, {1}, {0, 0}, {0, 1, 0.5}, {0, math.NaN()}} {
		if err := e.Validate(); !errors.Is(err, ErrMismatchedDimensions) {
			t.Errorf("%v: have error %v, want ErrMismatchedDimensions", e, err)
		}
	}
	if err := (Edges{0, 0.1, 0.3}).Validate(); err != nil {
		t.Error(err)
	}
}

func TestEdgesGeometry(t *testing.T) {
	e := Edges{0, 0.2, 0.4, 0.6}
	if diff := cmp.Diff([]float64{0.1, 0.3, 0.5}, e.Centers(), approx); diff != "" {
		t.Errorf("centers (-want +have):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.2, 0.2, 0.2}, e.Widths(), approx); diff != "" {
		t.Errorf("widths (-want +have):\n%s", diff)
	}
	if e.Cells() != 3 {
		t.Errorf("cells: have %d, want 3", e.Cells())
	}
	if ext := e.Extent(); ext != (Interval{0, 0.6}) {
		t.Errorf("extent: have %v", ext)
	}
}

func TestCellIndex(t *testing.T) {
	e := Edges{0, 0.2, 0.4, 0.6}
	tests := []struct {
		x    float64
		want int
		ok   bool
	}{
		{x: -0.1, ok: false},
		{x: 0, want: 0, ok: true},
		{x: 0.1, want: 0, ok: true},
		{x: 0.2, want: 1, ok: true},
		{x: 0.39, want: 1, ok: true},
		{x: 0.4, want: 2, ok: true},
		{x: 0.6, want: 2, ok: true},
		{x: 0.61, ok: false},
		{x: math.NaN(), ok: false},
	}
	for _, test := range tests {
		i, ok := e.cellIndex(test.x)
		if ok != test.ok || (ok && i != test.want) {
			t.Errorf("x=%g: have (%d, %v), want (%d, %v)", test.x, i, ok, test.want, test.ok)
		}
	}
}

func TestNewGrid2D(t *testing.T) {
	g, err := NewGrid2D(Interval{0, 1}, Interval{0, 2}, 0.5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if nx, ny := g.Shape(); nx != 2 || ny != 4 {
		t.Errorf("shape: have %d×%d, want 2×4", nx, ny)
	}

	g, err = NewGrid2D(Interval{0, 1}, Interval{0, 1}, 0.1, 0.1, rand.NewPCG(3, 4))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if g.X[0] > 0 || g.Y[0] > 0 || g.X[len(g.X)-1] < 1 || g.Y[len(g.Y)-1] < 1 {
		t.Errorf("grid %v does not cover the domain", g)
	}

	_, err = NewGrid2D(Interval{0, 1}, Interval{1, 0}, 0.5, 0, nil)
	if !errors.Is(err, ErrInvalidGridSpec) {
		t.Errorf("have error %v, want ErrInvalidGridSpec", err)
	}
}
