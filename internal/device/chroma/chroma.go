// Package chroma drives native matrix devices (per-key keyboards, mice)
// through an in-process vendor SDK. Each enabled slot owns a color matrix
// sized to its native grid; an update paints every mapped zone into the
// matrix and submits it once per slot.
package chroma

import (
	"context"
	"fmt"
	"log"
	"sync"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
	"chromaflow/internal/layout"
)

type slot struct {
	id     SlotID
	class  Class
	table  *layout.Table
	matrix [][]frame.Color
}

// Device is the SDK-backed matrix implementation of the device contract.
type Device struct {
	*device.Base

	sdk SDK

	// mu serializes Initialize, Update and Shutdown against each other so
	// a shutdown can never free a native handle under a running update.
	mu             sync.Mutex
	slots          map[SlotID]*slot
	fallbackLogged bool

	classDisabled func(Class) bool
	isoLayout     func() bool
}

type Option func(*Device)

// WithClassDisabled wires the global per-class disable switches. The
// function is consulted on every update, so runtime toggles apply to the
// next frame.
func WithClassDisabled(fn func(Class) bool) Option {
	return func(d *Device) { d.classDisabled = fn }
}

// WithISOLayout wires the host keyboard layout probe used for zone
// aliasing. Evaluated every update call, never cached.
func WithISOLayout(fn func() bool) Option {
	return func(d *Device) { d.isoLayout = fn }
}

func New(name string, sdk SDK, opts ...Option) *Device {
	d := &Device{
		sdk:           sdk,
		slots:         make(map[SlotID]*slot),
		classDisabled: func(Class) bool { return false },
		isoLayout:     func() bool { return false },
	}
	d.Base = device.NewBase(name, "native matrix SDK device", nil)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Initialize enumerates the native slots and enables LED control on every
// present one. True means at least one slot succeeded; per-slot failures
// are skipped, never fatal.
func (d *Device) Initialize() bool {
	return device.Guarded(d.Name(), func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()

		if len(d.slots) > 0 {
			return true
		}

		for _, id := range d.sdk.Enumerate() {
			if !d.sdk.IsPresent(id) {
				continue
			}
			if !d.sdk.Enable(id, true) {
				log.Printf("[chroma] %s: slot %d enable failed, skipping", d.Name(), id)
				continue
			}

			class := d.sdk.Class(id)
			table, known := layout.For(familyFor(class))
			if !known && !d.fallbackLogged {
				log.Printf("[chroma] %s: no layout for %s slots, using generic fallback", d.Name(), class)
				d.fallbackLogged = true
			}

			matrix := make([][]frame.Color, table.Rows)
			for r := range matrix {
				matrix[r] = make([]frame.Color, table.Cols)
			}
			d.slots[id] = &slot{id: id, class: class, table: table, matrix: matrix}
		}

		return len(d.slots) > 0
	})
}

// Update paints the composition into each enabled slot's matrix and submits
// every matrix once. Slots of a disabled class are skipped entirely.
func (d *Device) Update(ctx context.Context, comp frame.Composition, forced bool) bool {
	return d.Track(ctx, func() bool {
		if !d.Initialized() && !d.Initialize() {
			return false
		}

		d.mu.Lock()
		defer d.mu.Unlock()

		iso := d.isoLayout()
		ok := true
		for _, s := range d.slots {
			if d.classDisabled(s.class) {
				continue
			}

			for zone, color := range comp {
				if ctx.Err() != nil {
					return false
				}
				pos, mapped := s.table.Position(layout.Localize(zone, iso))
				if !mapped {
					continue
				}
				s.matrix[pos.Row][pos.Col] = frame.CorrectWithAlpha(color)
			}

			if ctx.Err() != nil {
				return false
			}
			if err := d.sdk.WriteMatrix(s.id, s.matrix); err != nil {
				log.Printf("[chroma] %s: slot %d write failed: %v", d.Name(), s.id, err)
				ok = false
			}
		}
		return ok
	})
}

// Shutdown disables LED control on every enabled slot and clears the slot
// set. Errors are absorbed; release proceeds regardless.
func (d *Device) Shutdown() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[chroma] %s: recovered during shutdown: %v", d.Name(), r)
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.slots {
		if !d.sdk.Enable(id, false) {
			log.Printf("[chroma] %s: slot %d disable failed", d.Name(), id)
		}
	}
	d.slots = make(map[SlotID]*slot)
}

func (d *Device) Reset() { device.Reset(d) }

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.slots) > 0
}

// Units lists the enabled slot identifiers.
func (d *Device) Units() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	units := make([]string, 0, len(d.slots))
	for id, s := range d.slots {
		units = append(units, fmt.Sprintf("%s-%d", s.class, id))
	}
	return units
}

func familyFor(class Class) string {
	return "chroma-" + class.String()
}
