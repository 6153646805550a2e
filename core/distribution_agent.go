package core

import (
	"math/rand"
	"sync"
	"time"
)

// DistributionAgent spreads accepted connections uniformly at random across
// a registered set of Loopers. The source keeps a thread-local *mt19937* per
// accept thread; Go has no portable goroutine-local storage, so this agent
// shares one mutex-guarded *rand.Rand across every caller instead (see
// SPEC_FULL.md §9).
type DistributionAgent struct {
	mu         sync.Mutex
	rng        *rand.Rand
	candidates []*Looper
}

// NewDistributionAgent builds an agent with no registered candidates.
func NewDistributionAgent() *DistributionAgent {
	return &DistributionAgent{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddCandidate registers a Looper as an eligible distribution target.
func (d *DistributionAgent) AddCandidate(candidate *Looper) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.candidates = append(d.candidates, candidate)
}

// SelectCandidate returns a uniformly random registered Looper and its
// index. It panics if no candidates have been registered.
func (d *DistributionAgent) SelectCandidate() (*Looper, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.candidates) == 0 {
		panic("distribution_agent: SelectCandidate() with no registered candidates")
	}
	idx := d.rng.Intn(len(d.candidates))
	return d.candidates[idx], idx
}
