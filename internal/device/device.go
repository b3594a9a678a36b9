// Package device defines the uniform contract every lighting backend
// implements, plus the lifecycle and configuration plumbing shared by all of
// them. One misbehaving device must never destabilize the others: nothing
// behind this interface is allowed to panic across the boundary, and each
// backend serializes its own operations with one coarse lock so that a slow
// device only ever stalls itself.
package device

import (
	"context"
	"log"

	"chromaflow/internal/frame"
)

// Device is the operation set consumed by the update orchestrator.
//
// Update is the high-frequency, frame-budgeted call; Initialize, Shutdown
// and Reset are rare and may block for the duration of their I/O. All
// methods may be invoked from different goroutines at any time relative to
// an in-flight update.
type Device interface {
	// Name is the immutable identity of this device instance.
	Name() string

	// Details describes the device for display purposes.
	Details() string

	// Initialize acquires the underlying resources. Idempotent: returns
	// true immediately with no side effects when already initialized. For
	// multi-unit devices, true means at least one unit succeeded.
	Initialize() bool

	// Shutdown releases all resources. It never fails outwardly; internal
	// errors are absorbed and logged.
	Shutdown()

	// Reset is Shutdown followed by Initialize, each step independently
	// fallible.
	Reset()

	// Update applies one frame's composition. It returns false without
	// further writes once ctx is cancelled, false when the device is
	// uninitialized and an implicit reconnect fails, and true on success.
	Update(ctx context.Context, comp frame.Composition, forced bool) bool

	// Initialized reports whether at least one underlying resource is held.
	Initialized() bool

	// Variables is the device's configuration registry, built lazily on
	// first access; the same instance is returned thereafter.
	Variables() *Registry

	// Units lists the identifiers of the physical units behind this
	// device. Most backends drive a single unit and return nil.
	Units() []string
}

// Reset shuts a device down and initializes it again, discarding the
// outcome. Backends delegate their Reset implementation here.
func Reset(d Device) {
	d.Shutdown()
	d.Initialize()
}

// Guarded runs an initialize body, converting an unexpected panic into a
// false result so no fault escapes the contract boundary.
func Guarded(name string, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[device] %s: recovered during initialize: %v", name, r)
			ok = false
		}
	}()
	return fn()
}
