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

package pointproc

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/arealalloc"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LGCP is a one-dimensional log-Gaussian Cox process. The log intensity
// is a Gaussian field with mean MeanLogIntensity and squared-exponential
// covariance Variance*exp(-d²/(2*LengthScale²)), sampled at nodes
// start, start+Dx, ... below the end of the domain.
type LGCP struct {
	Dx               float64
	MeanLogIntensity float64
	Variance         float64
	LengthScale      float64

	// Direct selects per-node sampling: each node x contributes a
	// Poisson(λ(x)*Dx) number of points uniform in [x, x+Dx), so the last
	// node may place points past the end of the domain. Otherwise points
	// are drawn by thinning a homogeneous process against a cubic spline
	// through the node intensities.
	Direct bool
}

// Sample implements Process1D.
func (p LGCP) Sample(d arealalloc.Interval, src rand.Source) ([]float64, error) {
	if err := checkDomain(d); err != nil {
		return nil, err
	}
	if err := checkPositive("dx", p.Dx); err != nil {
		return nil, err
	}
	if err := checkPositive("variance", p.Variance); err != nil {
		return nil, err
	}
	if err := checkPositive("length scale", p.LengthScale); err != nil {
		return nil, err
	}
	xs := nodes(d.Lo, d.Hi, p.Dx)
	a, err := covFactor(seCovariance(xs, p.LengthScale))
	if err != nil {
		return nil, err
	}
	z := standardNormals(len(xs), src)
	var g mat.VecDense
	g.MulVec(a, mat.NewVecDense(len(z), z))

	lambda := make([]float64, len(xs))
	sd := math.Sqrt(p.Variance)
	for i := range lambda {
		lambda[i] = math.Exp(p.MeanLogIntensity + sd*g.AtVec(i))
	}
	if p.Direct {
		var out []float64
		for i, x := range xs {
			out = append(out, uniformPoints(poissonCount(lambda[i]*p.Dx, src),
				arealalloc.Interval{Lo: x, Hi: x + p.Dx}, src)...)
		}
		return out, nil
	}
	return thin(xs, lambda, d, src)
}

// thin draws a homogeneous Poisson process at the largest node intensity
// and keeps each point with probability λ(x)/λmax, where λ is a natural
// cubic spline through the node intensities (a line for two nodes), held
// constant past the last node.
func thin(xs, lambda []float64, d arealalloc.Interval, src rand.Source) ([]float64, error) {
	lmax := floats.Max(lambda)
	intensity := func(float64) float64 { return lambda[0] }
	switch {
	case len(xs) > 2:
		var spline interp.NaturalCubic
		if err := spline.Fit(xs, lambda); err != nil {
			return nil, fmt.Errorf("pointproc: fitting intensity: %w", err)
		}
		intensity = spline.Predict
	case len(xs) == 2:
		var line interp.PiecewiseLinear
		if err := line.Fit(xs, lambda); err != nil {
			return nil, fmt.Errorf("pointproc: fitting intensity: %w", err)
		}
		intensity = line.Predict
	}
	candidates := uniformPoints(poissonCount(lmax*d.Width(), src), d, src)
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	kept := candidates[:0]
	for _, x := range candidates {
		prob := math.Max(0, math.Min(1, intensity(x)/lmax))
		if u.Rand() <= prob {
			kept = append(kept, x)
		}
	}
	return kept, nil
}

// LGCP2D is a two-dimensional log-Gaussian Cox process on the square of
// side max(width, height) anchored at the lower-left corner of the domain.
// The square is divided into Resolution×Resolution cells. Each cell holds a
// Poisson(λ*dx²) number of points placed uniformly within it, where λ is
// the exponential of a Gaussian field with mean ln(Rate) and
// squared-exponential covariance. Zero Resolution, Variance and
// LengthScale take the values of NewLGCP2D.
type LGCP2D struct {
	Rate        float64
	Resolution  int
	Variance    float64
	LengthScale float64
}

// NewLGCP2D returns an LGCP2D with a 50×50 field of variance 0.5 and
// length scale 0.1.
func NewLGCP2D(rate float64) LGCP2D {
	return LGCP2D{Rate: rate, Resolution: 50, Variance: 0.5, LengthScale: 0.1}
}

func (p LGCP2D) withDefaults() LGCP2D {
	def := NewLGCP2D(p.Rate)
	if p.Resolution == 0 {
		p.Resolution = def.Resolution
	}
	if p.Variance == 0 {
		p.Variance = def.Variance
	}
	if p.LengthScale == 0 {
		p.LengthScale = def.LengthScale
	}
	return p
}

// Sample implements Process2D.
func (p LGCP2D) Sample(d arealalloc.Rect, src rand.Source) ([]geom.Point, error) {
	if err := checkRect(d); err != nil {
		return nil, err
	}
	p = p.withDefaults()
	if p.Resolution < 1 {
		return nil, fmt.Errorf("pointproc: invalid resolution %d", p.Resolution)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{{"rate", p.Rate}, {"variance", p.Variance}, {"length scale", p.LengthScale}} {
		if err := checkPositive(c.name, c.v); err != nil {
			return nil, err
		}
	}

	size := math.Max(d.X.Width(), d.Y.Width())
	dx := size / float64(p.Resolution)
	offsets := make([]float64, p.Resolution)
	for i := range offsets {
		offsets[i] = float64(i) * dx
	}
	// The squared-exponential kernel on a regular grid is the Kronecker
	// product of the per-axis kernels, so the field is A Z Aᵀ for the
	// per-axis factor A and a matrix Z of standard normals.
	a, err := covFactor(seCovariance(offsets, p.LengthScale))
	if err != nil {
		return nil, err
	}
	n := p.Resolution
	z := mat.NewDense(n, n, standardNormals(n*n, src))
	var field mat.Dense
	field.Product(a, z, a.T())

	mean := math.Log(p.Rate)
	sd := math.Sqrt(p.Variance)
	var out []geom.Point
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lambda := math.Exp(mean + sd*field.At(i, j))
			cell := arealalloc.Rect{
				X: arealalloc.Interval{Lo: d.X.Lo + offsets[i], Hi: d.X.Lo + offsets[i] + dx},
				Y: arealalloc.Interval{Lo: d.Y.Lo + offsets[j], Hi: d.Y.Lo + offsets[j] + dx},
			}
			out = append(out, uniformPoints2D(poissonCount(lambda*dx*dx, src), cell, src)...)
		}
	}
	return out, nil
}

// nodes returns start, start+dx, ... for every value below end.
func nodes(start, end, dx float64) []float64 {
	n := int(math.Ceil((end-start)/dx - 1e-9))
	if n < 1 {
		n = 1
	}
	xs := make([]float64, n)
	for k := range xs {
		xs[k] = start + float64(k)*dx
	}
	return xs
}

// seCovariance returns the unit-variance squared-exponential covariance of
// the locations xs.
func seCovariance(xs []float64, lengthScale float64) *mat.SymDense {
	n := len(xs)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := (xs[i] - xs[j]) / lengthScale
			k.SetSym(i, j, math.Exp(-0.5*r*r))
		}
	}
	return k
}

// covFactor returns A with A Aᵀ = k. Squared-exponential covariances are
// numerically singular, so negative eigenvalues of k are treated as zero.
func covFactor(k *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(k, true) {
		return nil, errors.New("pointproc: covariance eigendecomposition failed")
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		vals[i] = math.Sqrt(math.Max(v, 0))
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	var a mat.Dense
	a.Mul(&vecs, mat.NewDiagDense(len(vals), vals))
	return &a, nil
}

func standardNormals(n int, src rand.Source) []float64 {
	norm := distuv.UnitNormal
	norm.Src = src
	z := make([]float64, n)
	for i := range z {
		z[i] = norm.Rand()
	}
	return z
}
