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

package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/requestcache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/arealalloc"
	"github.com/spatialmodel/arealalloc/internal/hash"
	"github.com/spatialmodel/arealalloc/pointproc"
	"gonum.org/v1/gonum/stat/distuv"
)

// Runner runs experiments. Trials are processed concurrently by a pool of
// workers, and identical trials submitted while one is in progress are
// only computed once.
type Runner struct {
	Config

	// Workers is the number of trials processed in parallel. The default
	// is runtime.GOMAXPROCS(-1). Workers can only be changed before the
	// Runner is first used.
	Workers int

	Log logrus.FieldLogger

	cache     *requestcache.Cache
	cacheOnce sync.Once
}

// NewRunner returns a Runner for c with default settings.
func NewRunner(c Config) *Runner {
	return &Runner{
		Config:  c,
		Workers: runtime.GOMAXPROCS(-1),
		Log:     logrus.StandardLogger(),
	}
}

// trialKey identifies a trial. It holds everything the trial's outcome
// depends on.
type trialKey struct {
	Dims    int
	Mode    Mode
	Seed    uint64
	Domain  arealalloc.Rect
	Process string
	PairID  int
	Pair    Pair
	Trial   int
}

type trialRequest struct {
	trialKey
	p1 pointproc.Process1D
	p2 pointproc.Process2D
}

// outcome holds the truth and the two estimates of one trial.
type outcome struct {
	Truth, Centroid, Proportional float64
}

type trialResult struct {
	outcome
	err error
}

var (
	// trialCaches holds one trial cache per worker count. Each cache owns
	// a pool of long-lived goroutines, so caches are shared by every
	// Runner with the same number of workers.
	trialCaches   = make(map[int]*requestcache.Cache)
	trialCachesMu sync.Mutex
)

// trialCache returns the shared trial cache with the given number of
// workers, creating it if necessary.
func trialCache(workers int) *requestcache.Cache {
	trialCachesMu.Lock()
	defer trialCachesMu.Unlock()
	if c, ok := trialCaches[workers]; ok {
		return c
	}
	// Trial errors travel inside the result: the cache only finishes
	// its bookkeeping for a key when processing succeeds.
	c := requestcache.NewCache(func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(trialRequest)
		var res trialResult
		if req.Dims == 1 {
			res.outcome, res.err = trial1D(req)
		} else {
			res.outcome, res.err = trial2D(req)
		}
		return res, nil
	}, workers, requestcache.Deduplicate())
	trialCaches[workers] = c
	return c
}

func (r *Runner) init() {
	r.cacheOnce.Do(func() {
		workers := r.Workers
		if workers < 1 {
			workers = runtime.GOMAXPROCS(-1)
		}
		if r.Log == nil {
			r.Log = logrus.StandardLogger()
		}
		r.cache = trialCache(workers)
	})
}

// Run1D runs the one-dimensional experiment on p.
func (r *Runner) Run1D(ctx context.Context, p pointproc.Process1D) (*Results, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r.run(ctx, 1, p, nil)
}

// Run2D runs the two-dimensional experiment on p.
func (r *Runner) Run2D(ctx context.Context, p pointproc.Process2D) (*Results, error) {
	if err := r.validate2D(); err != nil {
		return nil, err
	}
	return r.run(ctx, 2, nil, p)
}

func (r *Runner) run(ctx context.Context, dims int, p1 pointproc.Process1D, p2 pointproc.Process2D) (*Results, error) {
	r.init()
	res := &Results{
		RunID: uuid.New().String(),
		Dims:  dims,
		Mode:  r.Mode,
	}
	var process string
	if dims == 1 {
		process = fmt.Sprintf("%T%+v", p1, p1)
	} else {
		process = fmt.Sprintf("%T%+v", p2, p2)
	}
	log := r.Log.WithFields(logrus.Fields{
		"run":     res.RunID,
		"dims":    dims,
		"mode":    r.Mode.String(),
		"process": process,
	})
	log.WithField("pairs", len(r.GridWidths)).Info("experiment starting")
	start := time.Now()

	for i, pair := range r.Pairs() {
		pairStart := time.Now()
		outcomes, err := r.trials(ctx, trialKey{
			Dims:    dims,
			Mode:    r.Mode,
			Seed:    r.Seed,
			Domain:  r.Domain,
			Process: process,
			PairID:  i,
			Pair:    pair,
		}, p1, p2)
		if err != nil {
			return nil, err
		}
		pr := summarize(pair, outcomes)
		res.Pairs = append(res.Pairs, pr)
		log.WithFields(logrus.Fields{
			"grid width":        pair.GridWidth,
			"query width":       pair.QueryWidth,
			"trials":            len(outcomes),
			"centroid MAPE":     pr.Centroid.MAPE,
			"proportional MAPE": pr.Proportional.MAPE,
			"elapsed":           time.Since(pairStart),
		}).Debug("experiment pair finished")
	}
	log.WithField("elapsed", time.Since(start)).Info("experiment finished")
	return res, nil
}

// trials runs every trial of one pair and returns the outcomes in trial
// order. Cancellation of ctx is checked before each trial is submitted.
func (r *Runner) trials(ctx context.Context, key trialKey, p1 pointproc.Process1D, p2 pointproc.Process2D) ([]outcome, error) {
	outcomes := make([]outcome, r.Trials)
	errs := make([]error, r.Trials)
	var wg sync.WaitGroup
	for t := 0; t < r.Trials; t++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		key.Trial = t
		req := r.cache.NewRequest(ctx, trialRequest{trialKey: key, p1: p1, p2: p2},
			hash.Key(fmt.Sprintf("trial%dd", key.Dims), key))
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			result, err := req.Result()
			if err != nil {
				errs[t] = err
				return
			}
			tr := result.(trialResult)
			outcomes[t], errs[t] = tr.outcome, tr.err
		}(t)
	}
	wg.Wait()
	for t, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("experiment: grid width %g, query width %g, trial %d: %w",
				key.Pair.GridWidth, key.Pair.QueryWidth, t, err)
		}
	}
	return outcomes, nil
}

// source returns the random source of a trial. Each trial has its own
// stream, so outcomes do not depend on the order trials are run in.
func (k trialKey) source() rand.Source {
	return rand.NewPCG(k.Seed, uint64(k.PairID)<<32|uint64(k.Trial))
}

// variation returns the range of the grid origin offset for k's mode.
func (k trialKey) variation() float64 {
	if k.Mode == RandomPlacementAndOrigin {
		return k.Pair.QueryWidth
	}
	return 0
}

func trial1D(req trialRequest) (outcome, error) {
	src := req.source()
	w := req.Pair.QueryWidth
	q := arealalloc.Interval{Lo: 0, Hi: w}
	if req.Mode != FixedEdge {
		lo := distuv.Uniform{Min: -1, Max: 2, Src: src}.Rand()
		q = arealalloc.Interval{Lo: lo, Hi: lo + w}
	}
	d := req.Domain.X
	xs, err := req.p1.Sample(d, src)
	if err != nil {
		return outcome{}, err
	}
	edges, err := arealalloc.NewEdgesRandomOrigin(d.Lo, d.Hi, req.Pair.GridWidth, req.variation(), src)
	if err != nil {
		return outcome{}, err
	}
	counts, err := arealalloc.Count1D(edges, xs)
	if err != nil {
		return outcome{}, err
	}
	truth, err := arealalloc.Truth1D(xs, q)
	if err != nil {
		return outcome{}, err
	}
	var o outcome
	o.Truth = float64(truth)
	if o.Centroid, err = arealalloc.Centroid1D(counts, edges, q); err != nil {
		return outcome{}, err
	}
	if o.Proportional, err = arealalloc.Proportional1D(counts, edges, q); err != nil {
		return outcome{}, err
	}
	return o, nil
}

func trial2D(req trialRequest) (outcome, error) {
	src := req.source()
	w := req.Pair.QueryWidth
	q := arealalloc.Rect{X: arealalloc.Interval{Lo: 0, Hi: w}, Y: arealalloc.Interval{Lo: 0, Hi: w}}
	if req.Mode != FixedEdge {
		u := distuv.Uniform{Min: -1, Max: 0, Src: src}
		ox, oy := u.Rand(), u.Rand()
		q = arealalloc.Rect{
			X: arealalloc.Interval{Lo: ox, Hi: ox + w},
			Y: arealalloc.Interval{Lo: oy, Hi: oy + w},
		}
	}
	pts, err := req.p2.Sample(req.Domain, src)
	if err != nil {
		return outcome{}, err
	}
	g, err := arealalloc.NewGrid2D(req.Domain.X, req.Domain.Y, req.Pair.GridWidth, req.variation(), src)
	if err != nil {
		return outcome{}, err
	}
	counts, err := arealalloc.Count2D(g, pts)
	if err != nil {
		return outcome{}, err
	}
	truth, err := arealalloc.Truth2D(pts, q)
	if err != nil {
		return outcome{}, err
	}
	var o outcome
	o.Truth = float64(truth)
	if o.Centroid, err = arealalloc.Centroid2D(counts, g, q); err != nil {
		return outcome{}, err
	}
	if o.Proportional, err = arealalloc.Proportional2D(counts, g, q); err != nil {
		return outcome{}, err
	}
	return o, nil
}

// Summary describes the errors of one estimator over the trials of a pair.
type Summary struct {
	// MeanError and ErrorVariance are the mean and population variance
	// of estimate minus truth.
	MeanError     float64
	ErrorVariance float64

	// MAPE is the mean absolute percentage error over the trials whose
	// truth was not zero. It is NaN if there were none.
	MAPE float64
}

// PairResult holds the results of one pair.
type PairResult struct {
	Pair
	Trials       int
	Centroid     Summary
	Proportional Summary
}

func summarize(p Pair, outcomes []outcome) PairResult {
	var cErr, pErr, cAPE, pAPE stats.Stats
	for _, o := range outcomes {
		cErr.Update(o.Centroid - o.Truth)
		pErr.Update(o.Proportional - o.Truth)
		if o.Truth != 0 {
			cAPE.Update(math.Abs(o.Centroid-o.Truth) / o.Truth * 100)
			pAPE.Update(math.Abs(o.Proportional-o.Truth) / o.Truth * 100)
		}
	}
	return PairResult{
		Pair:         p,
		Trials:       len(outcomes),
		Centroid:     summary(&cErr, &cAPE),
		Proportional: summary(&pErr, &pAPE),
	}
}

func summary(errs, ape *stats.Stats) Summary {
	s := Summary{
		MeanError:     errs.Mean(),
		ErrorVariance: errs.PopulationVariance(),
		MAPE:          math.NaN(),
	}
	if ape.Count() > 0 {
		s.MAPE = ape.Mean()
	}
	return s
}
