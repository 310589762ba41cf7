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

// Package experiment runs Monte Carlo comparisons of centroid and
// proportional allocation. For each pair of grid and query widths it draws
// many realizations of a point process, grids them, and records the error
// of each estimator against the true number of points in the query.
package experiment

import (
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/arealalloc"
)

// Mode specifies how the query and the grid are placed in each trial.
type Mode int

const (
	// FixedEdge places the query at [0, w] (on each axis in two
	// dimensions) and starts the grid at the start of the domain, so the
	// lower query bound always coincides with a grid edge when the domain
	// starts at zero.
	FixedEdge Mode = iota

	// RandomPlacement draws the lower query bound from U(-1, 2) in one
	// dimension and from U(-1, 0) on each axis in two dimensions.
	RandomPlacement

	// RandomPlacementAndOrigin is RandomPlacement with a grid whose origin
	// is drawn from U(0, w), where w is the query width.
	RandomPlacementAndOrigin
)

var modeNames = map[Mode]string{
	FixedEdge:                "fixed",
	RandomPlacement:          "random",
	RandomPlacementAndOrigin: "random-origin",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode named s: "fixed", "random" or
// "random-origin".
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("experiment: invalid mode %q; valid modes are fixed, random, and random-origin", s)
}

// Pair is one grid width and query width combination.
type Pair struct {
	GridWidth  float64
	QueryWidth float64
}

// Config holds the settings of an experiment.
type Config struct {
	Mode   Mode
	Trials int

	// Seed determines every random draw of the experiment.
	Seed uint64

	// GridWidths and QueryWidths are paired element by element.
	GridWidths  []float64
	QueryWidths []float64

	// Domain is the region the point process is sampled on and the grid
	// covers. One-dimensional experiments use only Domain.X.
	Domain arealalloc.Rect
}

// Pairs returns the grid and query width pairs of c.
func (c *Config) Pairs() []Pair {
	p := make([]Pair, len(c.GridWidths))
	for i := range p {
		p[i] = Pair{GridWidth: c.GridWidths[i], QueryWidth: c.QueryWidths[i]}
	}
	return p
}

// Validate checks the settings shared by one- and two-dimensional
// experiments.
func (c *Config) Validate() error {
	if c.Trials < 1 {
		return fmt.Errorf("experiment: number of trials must be at least 1 but is %d", c.Trials)
	}
	if _, ok := modeNames[c.Mode]; !ok {
		return fmt.Errorf("experiment: invalid mode %v", c.Mode)
	}
	if len(c.GridWidths) == 0 {
		return fmt.Errorf("experiment: no grid widths")
	}
	if len(c.GridWidths) != len(c.QueryWidths) {
		return fmt.Errorf("experiment: %d grid widths but %d query widths",
			len(c.GridWidths), len(c.QueryWidths))
	}
	for i, p := range c.Pairs() {
		if !positive(p.GridWidth) || !positive(p.QueryWidth) {
			return fmt.Errorf("experiment: pair %d: widths must be positive but are %g (grid) and %g (query)",
				i, p.GridWidth, p.QueryWidth)
		}
	}
	return checkDomain("", c.Domain.X)
}

func (c *Config) validate2D() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return checkDomain("y ", c.Domain.Y)
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func checkDomain(axis string, d arealalloc.Interval) error {
	if !(d.Hi > d.Lo) || math.IsInf(d.Lo, 0) || math.IsInf(d.Hi, 0) {
		return fmt.Errorf("experiment: empty or invalid %sdomain [%g, %g]", axis, d.Lo, d.Hi)
	}
	return nil
}

// Plan is a sweep of grid and query widths read from a TOML document, for
// example:
//
//	Trials = 1000
//	Seed = 7
//
//	[[Pair]]
//	GridWidth = 0.1
//	QueryWidth = 0.05
//
//	[[Pair]]
//	GridWidth = 0.1
//	QueryWidth = 0.2
type Plan struct {
	Trials int
	Seed   int64
	Pair   []Pair
}

// LoadPlan decodes a Plan from r.
func LoadPlan(r io.Reader) (*Plan, error) {
	p := new(Plan)
	if _, err := toml.DecodeReader(r, p); err != nil {
		return nil, fmt.Errorf("experiment: reading plan: %v", err)
	}
	if p.Seed < 0 {
		return nil, fmt.Errorf("experiment: plan seed must not be negative but is %d", p.Seed)
	}
	if len(p.Pair) == 0 {
		return nil, fmt.Errorf("experiment: plan has no pairs")
	}
	return p, nil
}

// Apply replaces the widths of c with those of the plan. Trials and Seed
// are only replaced when the plan sets them.
func (p *Plan) Apply(c *Config) {
	c.GridWidths = make([]float64, len(p.Pair))
	c.QueryWidths = make([]float64, len(p.Pair))
	for i, pair := range p.Pair {
		c.GridWidths[i] = pair.GridWidth
		c.QueryWidths[i] = pair.QueryWidth
	}
	if p.Trials != 0 {
		c.Trials = p.Trials
	}
	if p.Seed != 0 {
		c.Seed = uint64(p.Seed)
	}
}
