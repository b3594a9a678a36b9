// Package elgato drives an Elgato Key Light as a zone device. Key Lights
// have no color channel, so the aggregate peripheral color is reduced to a
// brightness level at a configured color temperature.
package elgato

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/mdlayher/keylight"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
)

const (
	defaultSendDelayMs = 100
	defaultKelvin      = 4000
	probeTimeout       = 2 * time.Second
)

// Device is the Key Light implementation of the device contract.
type Device struct {
	*device.Base

	mu       sync.Mutex
	client   *keylight.Client
	product  string
	lastSend time.Time
}

func New(name string) *Device {
	d := &Device{}
	prefix := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	d.Base = device.NewBase(name, "Elgato Key Light zone device", func(r *device.Registry) {
		r.Register(prefix+"_addr", "", "Light address",
			device.WithRemark("IP of the Key Light, port 9123 assumed"))
		r.Register(prefix+"_send_delay", defaultSendDelayMs, "Send delay (ms)",
			device.WithBounds(0, 1000))
		r.Register(prefix+"_kelvin", defaultKelvin, "Color temperature",
			device.WithBounds(2900, 7000))
	})
	return d
}

func (d *Device) key(suffix string) string {
	return strings.ToLower(strings.ReplaceAll(d.Name(), " ", "_")) + "_" + suffix
}

// AddrKey is the variable key holding the light's address, for callers that
// seed discovered lights.
func (d *Device) AddrKey() string { return d.key("addr") }

// Initialize creates the HTTP client and probes the light. May block for
// the probe timeout.
func (d *Device) Initialize() bool {
	return device.Guarded(d.Name(), func() bool {
		if d.Initialized() {
			return true
		}

		addr := device.GetOr(d.Variables(), d.key("addr"), "")
		if addr == "" {
			return false
		}

		client, err := keylight.NewClient(fmt.Sprintf("http://%s:9123", addr), nil)
		if err != nil {
			log.Printf("[elgato] %s: client for %s failed: %v", d.Name(), addr, err)
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		info, err := client.AccessoryInfo(ctx)
		if err != nil {
			log.Printf("[elgato] %s: probe %s failed: %v", d.Name(), addr, err)
			return false
		}

		d.mu.Lock()
		d.client = client
		d.product = info.ProductName
		d.mu.Unlock()
		return true
	})
}

func (d *Device) Update(ctx context.Context, comp frame.Composition, forced bool) bool {
	return d.Track(ctx, func() bool {
		delay := time.Duration(device.GetOr(d.Variables(), d.key("send_delay"), defaultSendDelayMs)) * time.Millisecond

		d.mu.Lock()
		client := d.client
		gated := !forced && !d.lastSend.IsZero() && time.Since(d.lastSend) < delay
		d.mu.Unlock()

		if gated {
			return false
		}
		if client == nil {
			if !d.Initialize() {
				return false
			}
			d.mu.Lock()
			client = d.client
			d.mu.Unlock()
			if client == nil {
				return false
			}
		}

		color, ok := comp[frame.ZonePeripheral]
		if !ok {
			return false
		}

		brightness := brightnessFor(frame.CorrectWithAlpha(color))
		kelvin := clampKelvin(device.GetOr(d.Variables(), d.key("kelvin"), defaultKelvin))
		lights := []*keylight.Light{{
			On:          brightness > 0,
			Brightness:  max(brightness, 3), // library floor
			Temperature: kelvin,
		}}
		if err := client.SetLights(ctx, lights); err != nil {
			log.Printf("[elgato] %s: set lights failed: %v", d.Name(), err)
			return false
		}

		d.mu.Lock()
		d.lastSend = time.Now()
		d.mu.Unlock()
		return true
	})
}

// Shutdown turns the light off best-effort and drops the client.
func (d *Device) Shutdown() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[elgato] %s: recovered during shutdown: %v", d.Name(), r)
		}
	}()

	d.mu.Lock()
	client := d.client
	d.client = nil
	d.product = ""
	d.lastSend = time.Time{}
	d.mu.Unlock()

	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	off := []*keylight.Light{{On: false, Brightness: 3, Temperature: defaultKelvin}}
	if err := client.SetLights(ctx, off); err != nil {
		log.Printf("[elgato] %s: power off failed: %v", d.Name(), err)
	}
}

func (d *Device) Reset() { device.Reset(d) }

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.client != nil
}

func (d *Device) Units() []string {
	if addr := device.GetOr(d.Variables(), d.key("addr"), ""); addr != "" {
		return []string{addr}
	}
	return nil
}

// brightnessFor reduces a color to a 0-100 level by relative luminance.
func brightnessFor(c frame.Color) int {
	lum := 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
	return int(math.Round(lum / 255.0 * 100.0))
}

func clampKelvin(k int) int {
	if k < 2900 {
		return 2900
	}
	if k > 7000 {
		return 7000
	}
	return k
}
