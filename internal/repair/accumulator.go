package repair

import (
	"sync"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// Accumulator collects fix results for one run. It is safe for concurrent use
// and is created per run rather than shared between runs.
type Accumulator struct {
	mu      sync.Mutex
	results []types.FixResult
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record appends results in the order given.
func (a *Accumulator) Record(results ...types.FixResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, results...)
}

// Results returns a copy of everything recorded so far.
func (a *Accumulator) Results() []types.FixResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.FixResult, len(a.results))
	copy(out, a.results)
	return out
}

// Partition splits recorded results by status.
func (a *Accumulator) Partition() (applied, failed, skipped []types.FixResult) {
	for _, r := range a.Results() {
		switch r.Status {
		case types.FixApplied:
			applied = append(applied, r)
		case types.FixFailed:
			failed = append(failed, r)
		case types.FixSkipped:
			skipped = append(skipped, r)
		}
	}
	return applied, failed, skipped
}

// Mutated reports whether any recorded result wrote (or in a dry run would write) a file.
func (a *Accumulator) Mutated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.results {
		if r.Status == types.FixApplied {
			return true
		}
	}
	return false
}
