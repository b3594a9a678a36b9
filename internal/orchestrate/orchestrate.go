// Package orchestrate fans one frame's composition out to every registered
// device. Devices are updated independently and concurrently; no lock is
// ever held across devices, so one device stuck in I/O or a back-off sleep
// can never stall the others.
package orchestrate

import (
	"context"
	"log"
	"sort"
	"sync"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
)

type Orchestrator struct {
	mu      sync.RWMutex
	devices map[string]device.Device
}

func New() *Orchestrator {
	return &Orchestrator{devices: make(map[string]device.Device)}
}

func (o *Orchestrator) Register(d device.Device) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.devices[d.Name()] = d
}

func (o *Orchestrator) Device(name string) (device.Device, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.devices[name]
	return d, ok
}

// Devices returns the registered devices sorted by name.
func (o *Orchestrator) Devices() []device.Device {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]device.Device, 0, len(o.devices))
	for _, d := range o.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// InitializeAll initializes every device and reports how many succeeded.
// Failures are logged and retried implicitly on later updates.
func (o *Orchestrator) InitializeAll() int {
	ok := 0
	for _, d := range o.Devices() {
		if d.Initialize() {
			ok++
		} else {
			log.Printf("[orchestrate] %s failed to initialize", d.Name())
		}
	}
	return ok
}

// UpdateAll pushes one composition to every device concurrently and
// collects the per-device boolean outcome. The composition is read-only for
// the duration of the call; cancelling ctx aborts the in-flight updates
// cooperatively. No ordering is guaranteed across devices.
func (o *Orchestrator) UpdateAll(ctx context.Context, comp frame.Composition, forced bool) map[string]bool {
	devices := o.Devices()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]bool, len(devices))
	)
	for _, d := range devices {
		wg.Add(1)
		go func(d device.Device) {
			defer wg.Done()
			ok := d.Update(ctx, comp, forced)
			mu.Lock()
			results[d.Name()] = ok
			mu.Unlock()
		}(d)
	}
	wg.Wait()
	return results
}

// ShutdownAll shuts every device down. Shutdown never fails outwardly, so
// there is nothing to collect.
func (o *Orchestrator) ShutdownAll() {
	for _, d := range o.Devices() {
		d.Shutdown()
	}
}
