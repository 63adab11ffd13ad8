// Package telemetry records per-run counters and component timings.
//
// Adapted from internal/profiling/profiling.go's mutex-guarded named-
// duration map, re-scoped from per-frame render timings to per-run
// photon termination counts and named phase timings (the driver records
// its whole photon batch as "driver.Run") — an instance instead of package
// globals, since a run is a single batch job rather than a long-lived
// process with one frame loop.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"photontrace/internal/photon"
)

// Recorder accumulates classification counts and named phase durations
// for one run. Create one with New; the zero value has nil maps and is
// not ready to use. Safe for concurrent use by driver workers.
type Recorder struct {
	mu        sync.Mutex
	counts    map[photon.Classification]int64
	durations map[string]time.Duration
}

// New returns a ready-to-use Recorder.
func New() *Recorder {
	return &Recorder{
		counts:    make(map[photon.Classification]int64),
		durations: make(map[string]time.Duration),
	}
}

// Record tallies one photon's terminal classification.
func (r *Recorder) Record(c photon.Classification) {
	r.mu.Lock()
	r.counts[c]++
	r.mu.Unlock()
}

// Track returns a stop function that records the elapsed time under
// name. Usage: defer rec.Track("mesh.Build")()
func (r *Recorder) Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		r.mu.Lock()
		r.durations[name] += d
		r.mu.Unlock()
	}
}

// Counts returns a copy of the current classification tallies.
func (r *Recorder) Counts() map[photon.Classification]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[photon.Classification]int64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Total returns the number of photons recorded so far.
func (r *Recorder) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, v := range r.counts {
		sum += v
	}
	return sum
}

// Durations returns a copy of the current named phase timings.
func (r *Recorder) Durations() map[string]time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]time.Duration, len(r.durations))
	for k, v := range r.durations {
		out[k] = v
	}
	return out
}

// Summary formats classification counts and phase timings for a
// one-line run report, e.g. "COLLECT:8421 OUTOFRANGE:1420 IGNORE:159
// | driver.Run:845.1ms".
func (r *Recorder) Summary() string {
	counts := r.Counts()
	order := []photon.Classification{photon.Collect, photon.OutOfRange, photon.Ignore, photon.Emit}
	countParts := make([]string, 0, len(order))
	for _, c := range order {
		if n, ok := counts[c]; ok {
			countParts = append(countParts, fmt.Sprintf("%s:%d", c, n))
		}
	}

	durations := r.Durations()
	names := make([]string, 0, len(durations))
	for k := range durations {
		names = append(names, k)
	}
	sort.Strings(names)
	durParts := make([]string, 0, len(names))
	for _, k := range names {
		ms := float64(durations[k].Microseconds()) / 1000.0
		durParts = append(durParts, fmt.Sprintf("%s:%.1fms", k, ms))
	}

	return strings.Join(countParts, " ") + " | " + strings.Join(durParts, " ")
}
