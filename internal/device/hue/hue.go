// Package hue drives one Philips Hue light as a zone device through a
// pre-provisioned bridge: address and application key come from the device
// variables, no pairing flow is run here.
package hue

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openhue/openhue-go"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
)

const (
	defaultSendDelayMs = 100
	probeTimeout       = 3 * time.Second
)

// Device is the Hue bridge implementation of the device contract.
type Device struct {
	*device.Base

	mu       sync.Mutex
	client   *openhue.ClientWithResponses
	lastSend time.Time
}

func New(name string) *Device {
	d := &Device{}
	prefix := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	d.Base = device.NewBase(name, "Philips Hue zone device", func(r *device.Registry) {
		r.Register(prefix+"_bridge", "", "Bridge address")
		r.Register(prefix+"_app_key", "", "Application key",
			device.WithRemark("hue-application-key issued by the bridge"))
		r.Register(prefix+"_light_id", "", "Light resource id")
		r.Register(prefix+"_send_delay", defaultSendDelayMs, "Send delay (ms)",
			device.WithBounds(0, 1000))
	})
	return d
}

func (d *Device) key(suffix string) string {
	return strings.ToLower(strings.ReplaceAll(d.Name(), " ", "_")) + "_" + suffix
}

// Initialize builds the bridge client and verifies the bridge answers.
func (d *Device) Initialize() bool {
	return device.Guarded(d.Name(), func() bool {
		if d.Initialized() {
			return true
		}

		vars := d.Variables()
		bridge := device.GetOr(vars, d.key("bridge"), "")
		appKey := device.GetOr(vars, d.key("app_key"), "")
		lightID := device.GetOr(vars, d.key("light_id"), "")
		if bridge == "" || appKey == "" || lightID == "" {
			return false
		}

		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
		client, err := openhue.NewClientWithResponses(
			fmt.Sprintf("https://%s", bridge),
			openhue.WithHTTPClient(httpClient),
			openhue.WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
				req.Header.Set("hue-application-key", appKey)
				return nil
			}),
		)
		if err != nil {
			log.Printf("[hue] %s: client for %s failed: %v", d.Name(), bridge, err)
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		resp, err := client.GetLightWithResponse(ctx, lightID)
		if err != nil || resp.JSON200 == nil {
			log.Printf("[hue] %s: probe light %s on %s failed: %v", d.Name(), lightID, bridge, err)
			return false
		}

		d.mu.Lock()
		d.client = client
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

		c := frame.CorrectWithAlpha(color)
		_, _, b := frame.RGBToHSB(c)
		on := b > 0
		brightness := openhue.Brightness(b * 100.0)
		xy := rgbToXY(c)
		x := float32(xy[0])
		y := float32(xy[1])

		body := openhue.UpdateLightJSONRequestBody{
			On:      &openhue.On{On: &on},
			Dimming: &openhue.Dimming{Brightness: &brightness},
			Color: &openhue.Color{
				Xy: &openhue.GamutPosition{X: &x, Y: &y},
			},
		}

		lightID := device.GetOr(d.Variables(), d.key("light_id"), "")
		resp, err := client.UpdateLightWithResponse(ctx, lightID, body)
		if err != nil {
			log.Printf("[hue] %s: update light failed: %v", d.Name(), err)
			return false
		}
		if resp.HTTPResponse != nil && resp.HTTPResponse.StatusCode != 200 {
			log.Printf("[hue] %s: bridge returned HTTP %d", d.Name(), resp.HTTPResponse.StatusCode)
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
			log.Printf("[hue] %s: recovered during shutdown: %v", d.Name(), r)
		}
	}()

	d.mu.Lock()
	client := d.client
	d.client = nil
	d.lastSend = time.Time{}
	d.mu.Unlock()

	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	off := false
	body := openhue.UpdateLightJSONRequestBody{On: &openhue.On{On: &off}}
	lightID := device.GetOr(d.Variables(), d.key("light_id"), "")
	if _, err := client.UpdateLightWithResponse(ctx, lightID, body); err != nil {
		log.Printf("[hue] %s: power off failed: %v", d.Name(), err)
	}
}

func (d *Device) Reset() { device.Reset(d) }

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.client != nil
}

func (d *Device) Units() []string {
	if id := device.GetOr(d.Variables(), d.key("light_id"), ""); id != "" {
		return []string{id}
	}
	return nil
}

// rgbToXY converts to the CIE xy chromaticity the bridge expects.
func rgbToXY(c frame.Color) [2]float64 {
	rf := gammaExpand(float64(c.R) / 255.0)
	gf := gammaExpand(float64(c.G) / 255.0)
	bf := gammaExpand(float64(c.B) / 255.0)

	x := rf*0.664511 + gf*0.154324 + bf*0.162028
	y := rf*0.283881 + gf*0.668433 + bf*0.047685
	z := rf*0.000088 + gf*0.072310 + bf*0.986039

	sum := x + y + z
	if sum == 0 {
		return [2]float64{0.3127, 0.3290} // D65 white point
	}
	return [2]float64{x / sum, y / sum}
}

func gammaExpand(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}
