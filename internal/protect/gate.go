// SPDX-License-Identifier: MIT

// Package protect gates sensitive operations behind a per-identity
// fixed-window rate limit. It mirrors the contract of an external edge
// protection service: callers receive a decision, not an error, and the
// counters are the gate's own state.
package protect

import (
	"context"
	"sync"
	"time"

	"github.com/MartinJindu/SnapCast/internal/metrics"
)

// Reason classifies why a request was denied.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonRateLimit
)

// Decision is the outcome of a protection check.
type Decision struct {
	denied bool
	reason Reason
}

// IsDenied reports whether the request must be rejected.
func (d Decision) IsDenied() bool { return d.denied }

// IsRateLimit reports whether the denial was caused by the rate limit.
func (d Decision) IsRateLimit() bool { return d.reason == ReasonRateLimit }

// Protector decides whether an operation keyed by fingerprint may proceed.
type Protector interface {
	Protect(ctx context.Context, fingerprint string) Decision
}

// window tracks request counts for one fingerprint within the current
// fixed window.
type window struct {
	start time.Time
	count int
}

// FixedWindow is a fixed-window rate limiter keyed by caller fingerprint.
// A fingerprint may make at most Max requests per Window; the counter resets
// when a new window begins.
type FixedWindow struct {
	windowLen time.Duration
	max       int
	now       func() time.Time

	mu      sync.Mutex
	windows map[string]*window
	swept   time.Time
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the limiter's time source.
func WithClock(now func() time.Time) Option {
	return func(f *FixedWindow) { f.now = now }
}

// NewFixedWindow creates a limiter allowing max requests per windowLen.
func NewFixedWindow(windowLen time.Duration, max int, opts ...Option) *FixedWindow {
	f := &FixedWindow{
		windowLen: windowLen,
		max:       max,
		now:       time.Now,
		windows:   make(map[string]*window),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.swept = f.now()
	return f
}

// Protect counts the request against the fingerprint's current window and
// returns the resulting decision. The count is consumed even when the caller
// later fails for unrelated reasons; this matches the remote gate semantics.
func (f *FixedWindow) Protect(_ context.Context, fingerprint string) Decision {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.maybeSweep(now)

	w, ok := f.windows[fingerprint]
	if !ok || now.Sub(w.start) >= f.windowLen {
		f.windows[fingerprint] = &window{start: now, count: 1}
		return Decision{}
	}

	w.count++
	if w.count > f.max {
		metrics.RateLimitRejections.Inc()
		return Decision{denied: true, reason: ReasonRateLimit}
	}
	return Decision{}
}

// maybeSweep drops windows that expired more than one window length ago.
// Caller holds the mutex.
func (f *FixedWindow) maybeSweep(now time.Time) {
	if now.Sub(f.swept) < f.windowLen {
		return
	}
	for key, w := range f.windows {
		if now.Sub(w.start) >= f.windowLen {
			delete(f.windows, key)
		}
	}
	f.swept = now
}

// AllowAll is a Protector that never denies. Useful for tests and for
// deployments where the edge service handles protection.
type AllowAll struct{}

// Protect always permits the request.
func (AllowAll) Protect(context.Context, string) Decision { return Decision{} }
