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

// Package pointproc draws realizations of spatial point processes in one
// and two dimensions. All randomness comes from the rand.Source passed to
// each Sample call, so a realization is reproducible from its seed.
package pointproc

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/arealalloc"
	"gonum.org/v1/gonum/stat/distuv"
)

// Process1D is a point process on an interval.
type Process1D interface {
	// Sample returns the coordinates of one realization of the process on
	// domain d.
	Sample(d arealalloc.Interval, src rand.Source) ([]float64, error)
}

// Process2D is a point process on a rectangle.
type Process2D interface {
	// Sample returns one realization of the process on domain d.
	Sample(d arealalloc.Rect, src rand.Source) ([]geom.Point, error)
}

// Poisson is a homogeneous Poisson process: the number of points is
// Poisson distributed with mean Rate times the domain length and the
// points are uniformly distributed over the domain.
type Poisson struct {
	Rate float64
}

// Sample implements Process1D.
func (p Poisson) Sample(d arealalloc.Interval, src rand.Source) ([]float64, error) {
	if err := checkDomain(d); err != nil {
		return nil, err
	}
	if err := checkPositive("rate", p.Rate); err != nil {
		return nil, err
	}
	return uniformPoints(poissonCount(p.Rate*d.Width(), src), d, src), nil
}

// Poisson2D is a homogeneous Poisson process on a rectangle, with mean
// number of points Rate times the domain area.
type Poisson2D struct {
	Rate float64
}

// Sample implements Process2D.
func (p Poisson2D) Sample(d arealalloc.Rect, src rand.Source) ([]geom.Point, error) {
	if err := checkRect(d); err != nil {
		return nil, err
	}
	if err := checkPositive("rate", p.Rate); err != nil {
		return nil, err
	}
	n := poissonCount(p.Rate*d.X.Width()*d.Y.Width(), src)
	return uniformPoints2D(n, d, src), nil
}

// NeymanScott is a cluster process. Parents are placed uniformly with
// intensity ParentRate (at least one parent is always placed), and each
// parent has a Poisson(OffspringMean) number of offspring displaced from
// it by Normal(0, Sigma). Offspring may fall outside of the domain.
type NeymanScott struct {
	ParentRate    float64
	OffspringMean float64
	Sigma         float64
}

func (p NeymanScott) validate() error {
	if err := checkPositive("parent rate", p.ParentRate); err != nil {
		return err
	}
	if err := checkPositive("offspring mean", p.OffspringMean); err != nil {
		return err
	}
	return checkPositive("sigma", p.Sigma)
}

// Sample implements Process1D. The offspring are returned first, followed
// by the parents.
func (p NeymanScott) Sample(d arealalloc.Interval, src rand.Source) ([]float64, error) {
	if err := checkDomain(d); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	parents := uniformPoints(max(poissonCount(p.ParentRate*d.Width(), src), 1), d, src)
	disp := distuv.Normal{Mu: 0, Sigma: p.Sigma, Src: src}
	var out []float64
	for _, parent := range parents {
		n := poissonCount(p.OffspringMean, src)
		for i := 0; i < n; i++ {
			out = append(out, parent+disp.Rand())
		}
	}
	return append(out, parents...), nil
}

// NeymanScott2D is the two-dimensional NeymanScott process, with
// independent x and y displacements. Only the offspring are returned.
type NeymanScott2D NeymanScott

// Sample implements Process2D.
func (p NeymanScott2D) Sample(d arealalloc.Rect, src rand.Source) ([]geom.Point, error) {
	if err := checkRect(d); err != nil {
		return nil, err
	}
	if err := NeymanScott(p).validate(); err != nil {
		return nil, err
	}
	np := max(poissonCount(p.ParentRate*d.X.Width()*d.Y.Width(), src), 1)
	parents := uniformPoints2D(np, d, src)
	disp := distuv.Normal{Mu: 0, Sigma: p.Sigma, Src: src}
	var out []geom.Point
	for _, parent := range parents {
		n := poissonCount(p.OffspringMean, src)
		for i := 0; i < n; i++ {
			out = append(out, geom.Point{X: parent.X + disp.Rand(), Y: parent.Y + disp.Rand()})
		}
	}
	return out, nil
}

// poissonCount draws a Poisson distributed count with the given mean.
func poissonCount(mean float64, src rand.Source) int {
	if mean <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: src}.Rand())
}

func uniformPoints(n int, d arealalloc.Interval, src rand.Source) []float64 {
	u := distuv.Uniform{Min: d.Lo, Max: d.Hi, Src: src}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = u.Rand()
	}
	return xs
}

func uniformPoints2D(n int, d arealalloc.Rect, src rand.Source) []geom.Point {
	ux := distuv.Uniform{Min: d.X.Lo, Max: d.X.Hi, Src: src}
	uy := distuv.Uniform{Min: d.Y.Lo, Max: d.Y.Hi, Src: src}
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Point{X: ux.Rand(), Y: uy.Rand()}
	}
	return pts
}

func checkPositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("pointproc: invalid %s %g; it must be positive and finite", name, v)
	}
	return nil
}

func checkDomain(d arealalloc.Interval) error { return checkAxis("", d) }

func checkRect(d arealalloc.Rect) error {
	if err := checkAxis("x ", d.X); err != nil {
		return err
	}
	return checkAxis("y ", d.Y)
}

func checkAxis(axis string, d arealalloc.Interval) error {
	if math.IsNaN(d.Lo) || math.IsNaN(d.Hi) || math.IsInf(d.Lo, 0) || math.IsInf(d.Hi, 0) || d.Hi <= d.Lo {
		return fmt.Errorf("pointproc: invalid %sdomain [%g, %g]", axis, d.Lo, d.Hi)
	}
	return nil
}
