// Package optimization runs martingale layer schedules against a fixed
// bar window in parallel and ranks them, so a schedule can be picked on
// historical data instead of guessed.
package optimization

import (
	"context"
	"runtime"
	"sync"

	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/internal/strategy"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// Candidate is one layer schedule under evaluation.
type Candidate struct {
	Name   string
	Layers strategy.LayerSchedule
}

// Result pairs a candidate with its run summary. Err is set when the
// schedule failed validation or the run could not start.
type Result struct {
	Candidate Candidate
	Summary   strategy.Summary
	Err       error
}

// Sweep evaluates candidates with a shared base config and volatility
// snapshot, spreading runs across a worker pool.
type Sweep struct {
	base    strategy.Config
	vol     features.VolatilitySnapshot
	workers int
}

// NewSweep creates a sweep. workers <= 0 selects one worker per CPU.
func NewSweep(base strategy.Config, vol features.VolatilitySnapshot, workers int) *Sweep {
	return &Sweep{base: base, vol: vol, workers: workers}
}

// Run evaluates every candidate against bars. Results come back in
// candidate order regardless of which worker finished first. Candidates
// not started before ctx ends carry the context error.
func (s *Sweep) Run(ctx context.Context, bars []types.OHLCV, candidates []Candidate) []Result {
	workers := s.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	results := make([]Result, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.evaluate(bars, candidates[idx])
			}
		}()
	}

	submitted := 0
	for i := range candidates {
		select {
		case jobs <- i:
			submitted++
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := submitted; i < len(results); i++ {
			results[i] = Result{Candidate: candidates[i], Err: err}
		}
	}
	return results
}

func (s *Sweep) evaluate(bars []types.OHLCV, cand Candidate) Result {
	cfg := s.base
	cfg.Layers = cand.Layers

	engine, err := strategy.NewMartingaleEngine(cfg, s.vol)
	if err != nil {
		return Result{Candidate: cand, Err: err}
	}
	run, err := engine.Run(bars)
	if err != nil {
		return Result{Candidate: cand, Err: err}
	}
	return Result{Candidate: cand, Summary: run.Summary}
}

// Best picks the strongest result: non-liquidated runs beat liquidated
// ones, then by higher profit (or lower loss among liquidated runs).
// Returns false when every result errored.
func Best(results []Result) (Result, bool) {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best == -1 || better(r.Summary, results[best].Summary) {
			best = i
		}
	}
	if best == -1 {
		return Result{}, false
	}
	return results[best], true
}

func better(a, b strategy.Summary) bool {
	if a.Liquidated != b.Liquidated {
		return !a.Liquidated
	}
	if a.Liquidated {
		return a.TotalLoss < b.TotalLoss
	}
	return a.TotalProfit > b.TotalProfit
}
