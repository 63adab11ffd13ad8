// Package driver runs a batch of independent photons across a pool of
// worker goroutines.
//
// Grounded on internal/meshing/pool.go's WorkerPool (context for
// cancellation, sync.WaitGroup, one goroutine per worker pulling off a
// channel). The shape is simpler here because the unit of work really
// is embarrassingly parallel (spec.md sec 5): every photon is fully
// independent, so instead of a per-job result channel the workers
// write straight into a preallocated results slice, each at its own
// photon index — no two workers ever touch the same slot, so no lock
// is needed on the slice itself.
package driver

import (
	"context"
	"math/rand"
	"sync"

	"photontrace/internal/mesh"
	"photontrace/internal/photon"
	"photontrace/internal/policy"
	"photontrace/internal/prng"
	"photontrace/internal/telemetry"
	"photontrace/internal/transport"
)

// RunFunc matches transport.Run's signature; overridable in tests.
type RunFunc func(m *mesh.Mesh, tbl *policy.Table, rng *rand.Rand) (photon.Termination, error)

// Config controls a batch run.
type Config struct {
	Photons int
	Workers int
	Seed    int64

	// Run defaults to transport.Run; tests may substitute a stub.
	Run RunFunc
}

// Result is the outcome of a full batch: one termination per photon,
// in photon-index order, plus the telemetry collected along the way.
type Result struct {
	Terminations []photon.Termination
	Telemetry    *telemetry.Recorder
}

// Run launches cfg.Photons independent photons across cfg.Workers
// goroutines (at least 1), each with its own prng stream derived from
// cfg.Seed and the worker's index (internal/prng), and collects one
// termination record per photon. Run blocks until every photon has
// terminated or ctx is canceled.
func Run(ctx context.Context, m *mesh.Mesh, tbl *policy.Table, cfg Config) (Result, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	runFn := cfg.Run
	if runFn == nil {
		runFn = transport.Run
	}

	rec := telemetry.New()
	results := make([]photon.Termination, cfg.Photons)

	jobs := make(chan int, workers)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			rng := prng.New(cfg.Seed, workerIndex)
			for {
				select {
				case idx, ok := <-jobs:
					if !ok {
						return
					}
					term, err := runFn(m, tbl, rng)
					if err != nil {
						errMu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						errMu.Unlock()
						cancel()
						continue
					}
					results[idx] = term
					rec.Record(term.Class)
				case <-ctx.Done():
					return
				}
			}
		}(w)
	}

	stop := rec.Track("driver.Run")
feed:
	for i := 0; i < cfg.Photons; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	stop()

	errMu.Lock()
	err := firstErr
	errMu.Unlock()
	if err != nil {
		return Result{}, err
	}

	return Result{Terminations: results, Telemetry: rec}, nil
}
