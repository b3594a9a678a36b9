package device

import (
	"context"
	"sync"
	"time"
)

// Telemetry is the timing readout for one device. Interval is the gap
// between the two most recent successful updates, Duration the cost of the
// most recent one. Both only move on success, so a dropped frame leaves the
// previous reading visible.
type Telemetry struct {
	LastSuccess time.Time
	Interval    time.Duration
	Duration    time.Duration
	Average     time.Duration
}

// Base carries the lifecycle behavior common to all backends: identity, the
// lazily-built variable registry and update timing. Backends embed it and
// keep their transport-specific state alongside.
type Base struct {
	name    string
	details string

	declare  func(*Registry)
	varsOnce sync.Once
	vars     *Registry

	mu        sync.Mutex
	telemetry Telemetry
	successes uint64
}

// NewBase builds the shared lifecycle state. declare is invoked once, on
// first Variables access, to let the backend register its configuration
// options; it may be nil.
func NewBase(name, details string, declare func(*Registry)) *Base {
	return &Base{name: name, details: details, declare: declare}
}

func (b *Base) Name() string    { return b.name }
func (b *Base) Details() string { return b.details }

// Units is the default empty unit list; multi-unit backends override it.
func (b *Base) Units() []string { return nil }

func (b *Base) Variables() *Registry {
	b.varsOnce.Do(func() {
		b.vars = NewRegistry()
		if b.declare != nil {
			b.declare(b.vars)
		}
	})
	return b.vars
}

// Track wraps one update call with cancellation and telemetry. A context
// already cancelled on entry short-circuits to false with zero writes. The
// timing readout is refreshed only when fn reports success.
func (b *Base) Track(ctx context.Context, fn func() bool) bool {
	if ctx.Err() != nil {
		return false
	}

	start := time.Now()
	if !fn() {
		return false
	}
	dur := time.Since(start)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.telemetry.LastSuccess.IsZero() {
		b.telemetry.Interval = start.Sub(b.telemetry.LastSuccess)
	}
	b.telemetry.LastSuccess = time.Now()
	b.telemetry.Duration = dur
	b.successes++
	b.telemetry.Average += (dur - b.telemetry.Average) / time.Duration(b.successes)
	return true
}

func (b *Base) Telemetry() Telemetry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.telemetry
}
