package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Aside wraps a Service with get-or-compute-and-store semantics.
// The backing store is an optimization, never a dependency: a nil service
// (cache disabled) or an unreachable store degrades every operation to a
// no-op and computation proceeds with live data.
type Aside struct {
	svc     Service
	warn    func(op, key string, err error)
	observe func(op, result string)

	// degraded flips on the first store failure so the warning fires once
	// per incident instead of once per request; it resets on recovery.
	degraded atomic.Bool
}

// AsideOption configures Aside.
type AsideOption func(*Aside)

// WithAsideWarn sets the warn-level logging hook for store failures.
func WithAsideWarn(f func(op, key string, err error)) AsideOption {
	return func(a *Aside) {
		a.warn = f
	}
}

// WithAsideObserve sets a hook invoked with the outcome of every lookup
// ("hit" or "miss"), for metrics.
func WithAsideObserve(f func(op, result string)) AsideOption {
	return func(a *Aside) {
		a.observe = f
	}
}

// NewAside creates a cache-aside wrapper. svc may be nil (cache disabled).
func NewAside(svc Service, opts ...AsideOption) *Aside {
	a := &Aside{svc: svc}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a backing store is configured.
func (a *Aside) Enabled() bool {
	return a != nil && a.svc != nil
}

func (a *Aside) note(op, result string) {
	if a.observe != nil {
		a.observe(op, result)
	}
}

func (a *Aside) warnOnce(op, key string, err error) {
	if a.degraded.CompareAndSwap(false, true) && a.warn != nil {
		a.warn(op, key, err)
	}
}

// Invalidate removes every key matching pattern from the backing store.
// A disabled cache has nothing to invalidate.
func (a *Aside) Invalidate(ctx context.Context, pattern string) error {
	if !a.Enabled() {
		return nil
	}
	return a.svc.DeleteByPattern(ctx, pattern)
}

// GetOrCompute looks up key and deserializes into T on a hit. On a miss
// (absent key, unreachable store, or deserialization failure) it invokes
// compute exactly once, best-effort stores the result under key with the
// given TTL, and returns the computed value whether or not the store
// succeeded.
//
// Concurrent calls with the same key are NOT deduplicated: each concurrent
// miss independently invokes compute. Cached values are derived and
// re-computable, so last-write-wins overwrites are acceptable.
func GetOrCompute[T any](ctx context.Context, a *Aside, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	if !a.Enabled() {
		return compute(ctx)
	}

	var cached T
	err := a.svc.Get(ctx, key, &cached)
	if err == nil {
		a.degraded.Store(false)
		a.note("get", "hit")
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Unreachable store or corrupt entry: treated as a miss.
		a.warnOnce("get", key, err)
	}
	a.note("get", "miss")

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if serr := a.svc.Set(ctx, key, value, ttl); serr != nil {
		a.warnOnce("set", key, serr)
	} else {
		a.degraded.Store(false)
	}
	return value, nil
}
