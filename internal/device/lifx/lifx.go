// Package lifx drives a single LIFX bulb as a zone device: the aggregate
// peripheral color is pushed over the LAN protocol once per rate-gate
// window.
package lifx

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"go.yhsif.com/lifxlan"
	"go.yhsif.com/lifxlan/light"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
)

const (
	defaultSendDelayMs = 100
	defaultKelvin      = 3500
	fadeDuration       = 200 * time.Millisecond
	dialTimeout        = 2 * time.Second
)

// Device is the LIFX LAN implementation of the device contract.
type Device struct {
	*device.Base

	mu       sync.Mutex
	light    light.Device
	lastSend time.Time
}

func New(name string) *Device {
	d := &Device{}
	prefix := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	d.Base = device.NewBase(name, "LIFX LAN zone device", func(r *device.Registry) {
		r.Register(prefix+"_addr", "", "Bulb address",
			device.WithRemark("host:port, e.g. 192.168.1.60:56700"))
		r.Register(prefix+"_send_delay", defaultSendDelayMs, "Send delay (ms)",
			device.WithBounds(0, 1000))
		r.Register(prefix+"_kelvin", defaultKelvin, "Color temperature",
			device.WithBounds(1500, 9000))
	})
	return d
}

func (d *Device) key(suffix string) string {
	return strings.ToLower(strings.ReplaceAll(d.Name(), " ", "_")) + "_" + suffix
}

// Initialize wraps the configured address as a light device, verifying the
// bulb answers. May block for the dial timeout.
func (d *Device) Initialize() bool {
	return device.Guarded(d.Name(), func() bool {
		if d.Initialized() {
			return true
		}

		addr := device.GetOr(d.Variables(), d.key("addr"), "")
		if addr == "" {
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()

		raw := lifxlan.NewDevice(addr, lifxlan.ServiceUDP, lifxlan.AllDevices)
		ld, err := light.Wrap(ctx, raw, false)
		if err != nil {
			log.Printf("[lifx] %s: wrap %s failed: %v", d.Name(), addr, err)
			return false
		}

		d.mu.Lock()
		d.light = ld
		d.mu.Unlock()
		return true
	})
}

func (d *Device) Update(ctx context.Context, comp frame.Composition, forced bool) bool {
	return d.Track(ctx, func() bool {
		delay := time.Duration(device.GetOr(d.Variables(), d.key("send_delay"), defaultSendDelayMs)) * time.Millisecond

		d.mu.Lock()
		ld := d.light
		gated := !forced && !d.lastSend.IsZero() && time.Since(d.lastSend) < delay
		d.mu.Unlock()

		if gated {
			return false
		}
		if ld == nil {
			if !d.Initialize() {
				return false
			}
			d.mu.Lock()
			ld = d.light
			d.mu.Unlock()
			if ld == nil {
				return false
			}
		}

		color, ok := comp[frame.ZonePeripheral]
		if !ok {
			return false
		}

		conn, err := ld.Dial()
		if err != nil {
			log.Printf("[lifx] %s: dial failed: %v", d.Name(), err)
			return false
		}
		defer conn.Close()

		kelvin := device.GetOr(d.Variables(), d.key("kelvin"), defaultKelvin)
		lc := toLifxColor(frame.CorrectWithAlpha(color), uint16(kelvin))
		if err := ld.SetColor(ctx, conn, &lc, fadeDuration, false); err != nil {
			log.Printf("[lifx] %s: set color failed: %v", d.Name(), err)
			return false
		}

		d.mu.Lock()
		d.lastSend = time.Now()
		d.mu.Unlock()
		return true
	})
}

// Shutdown turns the bulb off best-effort and drops the handle.
func (d *Device) Shutdown() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[lifx] %s: recovered during shutdown: %v", d.Name(), r)
		}
	}()

	d.mu.Lock()
	ld := d.light
	d.light = nil
	d.lastSend = time.Time{}
	d.mu.Unlock()

	if ld == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if conn, err := ld.Dial(); err == nil {
		defer conn.Close()
		if err := ld.SetLightPower(ctx, conn, lifxlan.PowerOff, fadeDuration, false); err != nil {
			log.Printf("[lifx] %s: power off failed: %v", d.Name(), err)
		}
	}
}

func (d *Device) Reset() { device.Reset(d) }

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.light != nil
}

func (d *Device) Units() []string {
	if addr := device.GetOr(d.Variables(), d.key("addr"), ""); addr != "" {
		return []string{addr}
	}
	return nil
}

func toLifxColor(c frame.Color, kelvin uint16) lifxlan.Color {
	h, s, b := frame.RGBToHSB(c)
	return lifxlan.Color{
		Hue:        uint16(h / 360.0 * math.MaxUint16),
		Saturation: uint16(s * math.MaxUint16),
		Brightness: uint16(b * math.MaxUint16),
		Kelvin:     kelvin,
	}
}
