package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness the simulated actions draw from.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type MathSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMathSource() *MathSource {
	return NewSeededSource(time.Now().UnixNano())
}

func NewSeededSource(seed int64) *MathSource {
	return &MathSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *MathSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

func (s *MathSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// FixedSource always returns the same draws, clamped into range.
type FixedSource struct {
	Int   int
	Float float64
}

func (f FixedSource) Intn(n int) int {
	if f.Int >= n {
		return n - 1
	}
	if f.Int < 0 {
		return 0
	}
	return f.Int
}

func (f FixedSource) Float64() float64 {
	return f.Float
}
