package game

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Rand is the only source of randomness the simulation consumes.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rand: mathrand.New(mathrand.NewSource(seed))}
}

type lockedRand struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

func (r *lockedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

func randRange(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// randInt returns an int in [lo, hi].
func randInt(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

func chance(r Rand, p float64) bool {
	return r.Float64() < p
}

func pick[T any](r Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.Intn(len(items))], true
}

func shuffle[T any](r Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
