package game

import (
	"math/rand/v2"
	"sync"
)

// Source yields independent draws in [0,1). Combat consumes two per attack.
type Source interface {
	Float64() float64
}

type pcgSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a seeded Source backed by math/rand/v2.
func NewSource(seed uint64) Source {
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *pcgSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// FixedSource replays a fixed sequence of draws, cycling when exhausted.
// An empty sequence always yields 0.
type FixedSource struct {
	Draws []float64
	next  int
}

func (f *FixedSource) Float64() float64 {
	if len(f.Draws) == 0 {
		return 0
	}
	d := f.Draws[f.next%len(f.Draws)]
	f.next++
	return d
}
