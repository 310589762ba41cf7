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

// Package arealalloc estimates how many points of an unobserved point set
// fall inside an axis-aligned query region when only a histogram of the
// points is available. Two estimators are provided: centroid allocation,
// which assigns each cell's whole count to the query if the cell center is
// inside it, and proportional allocation, which weights each cell's count by
// the fraction of the cell's length (1D) or area (2D) that the query covers.
//
// Grids are built with NewEdges, NewEdgesRandomOrigin or NewGrid2D, points
// are binned with Count1D or Count2D, and the exact number of points in a
// query, used to measure estimator error, is given by Truth1D, Truth2D or a
// PointIndex.
package arealalloc

import "errors"

// Version gives the version number.
const Version = "1.0.0"

var (
	// ErrInvalidGridSpec is returned when a grid cannot be built from the
	// requested domain, cell width and origin variation.
	ErrInvalidGridSpec = errors.New("invalid grid specification")

	// ErrMismatchedDimensions is returned when a set of cell counts does
	// not line up with the grid edges it is paired with, or when the edges
	// themselves do not describe a valid grid.
	ErrMismatchedDimensions = errors.New("mismatched dimensions")

	// ErrDegenerateQuery is returned for a query region whose upper bound
	// is below its lower bound on any axis.
	ErrDegenerateQuery = errors.New("degenerate query")
)
