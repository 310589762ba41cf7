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

// Package allocutil contains the command-line interface for ArealAlloc.
package allocutil

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/arealalloc"
	"github.com/spatialmodel/arealalloc/experiment"
	"github.com/spatialmodel/arealalloc/figures"
)

// Estimation holds the outcome of estimating one query from one
// realization of a point process.
type Estimation struct {
	Points, Cells int
	Truth         int
	Centroid      float64
	Proportional  float64
}

// Write prints e.
func (e *Estimation) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "points: %d\ncells: %d\ntruth: %d\ncentroid: %g\nproportional: %g\n",
		e.Points, e.Cells, e.Truth, e.Centroid, e.Proportional)
	return err
}

// source returns the random source of a single realization.
func (s Settings) source() rand.Source { return rand.NewPCG(s.Seed, 0) }

// Estimate draws one realization of the process in s, counts it on a grid
// of the given cell width and origin variation, and estimates the number
// of points in q. In one dimension only q.X is used.
func Estimate(s Settings, gridWidth, variation float64, q arealalloc.Rect) (*Estimation, error) {
	src := s.source()
	if s.Dim == 1 {
		xs, err := s.Process1D.Sample(s.Domain.X, src)
		if err != nil {
			return nil, err
		}
		edges, err := arealalloc.NewEdgesRandomOrigin(s.Domain.X.Lo, s.Domain.X.Hi, gridWidth, variation, src)
		if err != nil {
			return nil, err
		}
		counts, err := arealalloc.Count1D(edges, xs)
		if err != nil {
			return nil, err
		}
		e := &Estimation{Points: len(xs), Cells: edges.Cells()}
		if e.Truth, err = arealalloc.Truth1D(xs, q.X); err != nil {
			return nil, err
		}
		if e.Centroid, err = arealalloc.Centroid1D(counts, edges, q.X); err != nil {
			return nil, err
		}
		if e.Proportional, err = arealalloc.Proportional1D(counts, edges, q.X); err != nil {
			return nil, err
		}
		return e, nil
	}

	pts, err := s.Process2D.Sample(s.Domain, src)
	if err != nil {
		return nil, err
	}
	g, err := arealalloc.NewGrid2D(s.Domain.X, s.Domain.Y, gridWidth, variation, src)
	if err != nil {
		return nil, err
	}
	counts, err := arealalloc.Count2D(g, pts)
	if err != nil {
		return nil, err
	}
	nx, ny := g.Shape()
	e := &Estimation{Points: len(pts), Cells: nx * ny}
	if e.Truth, err = arealalloc.Truth2D(pts, q); err != nil {
		return nil, err
	}
	if e.Centroid, err = arealalloc.Centroid2D(counts, g, q); err != nil {
		return nil, err
	}
	if e.Proportional, err = arealalloc.Proportional2D(counts, g, q); err != nil {
		return nil, err
	}
	return e, nil
}

// Simulate runs the experiment c on the process in s.
func Simulate(ctx context.Context, s Settings, c *experiment.Config, workers int, log logrus.FieldLogger) (*experiment.Results, error) {
	r := experiment.NewRunner(*c)
	if workers > 0 {
		r.Workers = workers
	}
	r.Log = log
	if s.Dim == 1 {
		return r.Run1D(ctx, s.Process1D)
	}
	return r.Run2D(ctx, s.Process2D)
}

// Sample draws one realization of the process in s and writes a figure of
// it to w.
func Sample(s Settings, w io.Writer) error {
	src := s.source()
	if s.Dim == 1 {
		xs, err := s.Process1D.Sample(s.Domain.X, src)
		if err != nil {
			return err
		}
		return figures.Samples1D(xs, s.Title(), w)
	}
	pts, err := s.Process2D.Sample(s.Domain, src)
	if err != nil {
		return err
	}
	return figures.Samples2D(pts, s.Title(), w)
}
