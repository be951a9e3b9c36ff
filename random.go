package crossing

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource supplies the randomness used for spawning and emergencies
type RandomSource interface {
	// Float64 returns a value in [0, 1)
	Float64() float64
	// Intn returns a value in [0, n)
	Intn(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a RandomSource seeded with seed.
// A zero seed uses the current time.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}
