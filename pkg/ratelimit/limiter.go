// Package ratelimit implements a per-key sliding-window limiter with a
// pluggable timestamp store.
package ratelimit

import (
	"context"
	"time"
)

// Store records call timestamps per key. TryAcquire atomically counts the
// timestamps of key newer than now-window and, when fewer than max are
// present, records now and reports true. A rejected call records nothing.
type Store interface {
	TryAcquire(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error)
}

// Limiter applies one policy over a Store.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	prefix string
	now    func() time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithPrefix namespaces keys so several policies can share one store.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// New builds a limiter allowing max calls per key within window.
func New(store Store, max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{store: store, max: max, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether key may proceed and records the call when it may.
// A non-positive max disables the limiter.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.max <= 0 {
		return true, nil
	}
	return l.store.TryAcquire(ctx, l.prefix+key, l.now(), l.window, l.max)
}

// Window returns the configured window.
func (l *Limiter) Window() time.Duration {
	return l.window
}
