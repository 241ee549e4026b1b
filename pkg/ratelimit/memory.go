package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const defaultSweepChance = 0.01

// MemoryStore keeps timestamps in process memory. It is safe for concurrent
// use but not shared across instances. Each key remembers the window it was
// last recorded with, so policies with different windows can share a store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*bucket

	sweepChance float64
	rand        func() float64
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithRandom replaces the random source that drives opportunistic sweeps.
func WithRandom(fn func() float64) MemoryOption {
	return func(s *MemoryStore) { s.rand = fn }
}

// WithSweepChance sets the probability of a sweep after each allowed call.
func WithSweepChance(p float64) MemoryOption {
	return func(s *MemoryStore) { s.sweepChance = p }
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]*bucket),
		sweepChance: defaultSweepChance,
		rand:        rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type bucket struct {
	stamps []time.Time
	window time.Duration
}

// TryAcquire implements Store.
func (s *MemoryStore) TryAcquire(_ context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recent []time.Time
	if b, ok := s.entries[key]; ok {
		recent = pruneBefore(b.stamps, now.Add(-window))
	}
	if len(recent) >= max {
		s.entries[key] = &bucket{stamps: recent, window: window}
		return false, nil
	}

	s.entries[key] = &bucket{stamps: append(recent, now), window: window}
	if s.rand() < s.sweepChance {
		s.sweepLocked(now)
	}
	return true, nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweepLocked drops keys whose stamps have all left their own window.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, b := range s.entries {
		if len(pruneBefore(b.stamps, now.Add(-b.window))) == 0 {
			delete(s.entries, key)
		}
	}
}

// pruneBefore drops timestamps at or before cutoff. Stamps are appended in
// call order so the slice is sorted.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
