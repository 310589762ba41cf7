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

	"github.com/ctessum/geom"
)

// Interval is the closed interval [Lo, Hi]. It is used both as a
// one-dimensional query region and as the extent of a grid axis.
type Interval struct {
	Lo, Hi float64
}

// Validate returns an error wrapping ErrDegenerateQuery if Hi < Lo or
// either bound is NaN.
func (i Interval) Validate() error {
	return i.validate("")
}

func (i Interval) validate(axis string) error {
	if math.IsNaN(i.Lo) || math.IsNaN(i.Hi) {
		return fmt.Errorf("arealalloc: %squery bound is NaN: %w", axis, ErrDegenerateQuery)
	}
	if i.Hi < i.Lo {
		return fmt.Errorf("arealalloc: %squery [%g, %g] has its upper bound below its lower bound: %w",
			axis, i.Lo, i.Hi, ErrDegenerateQuery)
	}
	return nil
}

// Contains reports whether Lo <= x <= Hi.
func (i Interval) Contains(x float64) bool {
	return i.Lo <= x && x <= i.Hi
}

// Width returns Hi - Lo.
func (i Interval) Width() float64 { return i.Hi - i.Lo }

// Rect is an axis-aligned rectangle made of independent closed x and y
// intervals.
type Rect struct {
	X, Y Interval
}

// Validate returns an error wrapping ErrDegenerateQuery if either axis of
// r is degenerate.
func (r Rect) Validate() error {
	if err := r.X.validate("x "); err != nil {
		return err
	}
	return r.Y.validate("y ")
}

// Contains reports whether p is inside r or on its boundary.
func (r Rect) Contains(p geom.Point) bool {
	return r.X.Contains(p.X) && r.Y.Contains(p.Y)
}

// Bounds returns the extent of r.
func (r Rect) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.X.Lo, Y: r.Y.Lo},
		Max: geom.Point{X: r.X.Hi, Y: r.Y.Hi},
	}
}
