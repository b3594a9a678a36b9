// Package atmoorb drives AtmoOrb receivers over UDP multicast. Every update
// sends one fixed 8-byte datagram per configured orb id:
//
//	[0xC0 0xFF 0xEE options orbID R G B]
//
// The orb consumes a single aggregate color per frame; it is a zone device,
// not a per-key one.
package atmoorb

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"chromaflow/internal/device"
	"chromaflow/internal/frame"
)

// DefaultGroup is the fixed multicast group and port orbs listen on.
const DefaultGroup = "239.15.18.2:49692"

const (
	optValidateID byte = 1
	optSmoothing  byte = 4

	defaultSendDelayMs = 50

	// connectBackoff is how long a failed connect blocks its caller before
	// the next update is allowed to retry. A known blocking hazard: callers
	// must not invoke Connect from a frame-budgeted path.
	connectBackoff = 2500 * time.Millisecond
)

// State is the connection state machine; transitions happen only through
// Connect, Reconnect and Shutdown.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Device is the UDP multicast implementation of the device contract.
type Device struct {
	*device.Base

	mu       sync.Mutex // guards conn, group, lastSend
	conn     net.PacketConn
	group    net.Addr
	lastSend time.Time

	state      atomic.Int32
	connecting atomic.Bool

	groupAddr string
	dial      func() (net.PacketConn, error)
	sleep     func(time.Duration)
}

type Option func(*Device)

// WithGroup overrides the multicast group/port, host:port form.
func WithGroup(addr string) Option {
	return func(d *Device) { d.groupAddr = addr }
}

func New(name string, opts ...Option) *Device {
	d := &Device{
		groupAddr: DefaultGroup,
		dial: func() (net.PacketConn, error) {
			return net.ListenPacket("udp4", ":0")
		},
		sleep: time.Sleep,
	}
	prefix := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	d.Base = device.NewBase(name, "AtmoOrb UDP multicast device", func(r *device.Registry) {
		r.Register(prefix+"_send_delay", defaultSendDelayMs, "Send delay (ms)",
			device.WithBounds(0, 1000))
		r.Register(prefix+"_use_smoothing", true, "Use smoothing")
		r.Register(prefix+"_orb_ids", "1", "Orb IDs",
			device.WithRemark("comma-separated list of receiver ids"))
	})
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) key(suffix string) string {
	prefix := strings.ToLower(strings.ReplaceAll(d.Name(), " ", "_"))
	return prefix + "_" + suffix
}

// State reports the current connection state.
func (d *Device) State() State {
	return State(d.state.Load())
}

// Connect makes a single best-effort attempt to open the multicast socket.
// On failure it blocks the caller for the back-off interval and leaves the
// device disconnected so the next update retries. Concurrent calls while a
// connect is in flight are ignored.
func (d *Device) Connect() bool {
	if !d.connecting.CompareAndSwap(false, true) {
		return false
	}
	defer d.connecting.Store(false)

	d.state.Store(int32(Connecting))

	group, err := net.ResolveUDPAddr("udp4", d.groupAddr)
	if err == nil {
		var conn net.PacketConn
		conn, err = d.dial()
		if err == nil {
			d.mu.Lock()
			if d.conn != nil {
				_ = d.conn.Close()
			}
			d.conn = conn
			d.group = group
			d.mu.Unlock()

			d.state.Store(int32(Connected))
			log.Printf("[atmoorb] %s: connected to %s", d.Name(), d.groupAddr)
			return true
		}
	}

	d.state.Store(int32(Disconnected))
	log.Printf("[atmoorb] %s: connect to %s failed: %v (backing off %s)", d.Name(), d.groupAddr, err, connectBackoff)
	d.sleep(connectBackoff)
	return false
}

// Reconnect retries the connection unless one is already in progress.
func (d *Device) Reconnect() {
	if d.connecting.Load() {
		return
	}
	d.Connect()
}

func (d *Device) Initialize() bool {
	return device.Guarded(d.Name(), func() bool {
		if d.Initialized() {
			return true
		}
		return d.Connect()
	})
}

// Update sends the aggregate peripheral color to every configured orb,
// rate-limited by the send-delay variable. A disconnected device triggers a
// background reconnect and drops the frame without buffering it.
func (d *Device) Update(ctx context.Context, comp frame.Composition, forced bool) bool {
	return d.Track(ctx, func() bool {
		vars := d.Variables()
		delay := time.Duration(device.GetOr(vars, d.key("send_delay"), defaultSendDelayMs)) * time.Millisecond

		d.mu.Lock()
		gated := !forced && !d.lastSend.IsZero() && time.Since(d.lastSend) < delay
		d.mu.Unlock()
		if gated {
			return false
		}

		color, ok := comp[frame.ZonePeripheral]
		if !ok {
			return false
		}

		if d.State() != Connected {
			go d.Reconnect()
			return false
		}

		c := frame.CorrectWithAlpha(color)
		return d.sendColors(ctx, c.R, c.G, c.B)
	})
}

func (d *Device) sendColors(ctx context.Context, r, g, b uint8) bool {
	vars := d.Variables()
	opt := optValidateID
	if device.GetOr(vars, d.key("use_smoothing"), true) {
		opt = optSmoothing
	}
	ids := parseOrbIDs(device.GetOr(vars, d.key("orb_ids"), "1"))

	d.mu.Lock()
	conn, group := d.conn, d.group
	d.mu.Unlock()
	if conn == nil {
		return false
	}

	sent := false
	for _, id := range ids {
		if ctx.Err() != nil {
			return false
		}
		pkt := []byte{0xC0, 0xFF, 0xEE, opt, id, r, g, b}
		if _, err := conn.WriteTo(pkt, group); err != nil {
			// One bad receiver must not block the others.
			log.Printf("[atmoorb] %s: send to orb %d failed: %v", d.Name(), id, err)
			continue
		}
		sent = true
	}

	if sent {
		d.mu.Lock()
		d.lastSend = time.Now()
		d.mu.Unlock()
	}
	return sent
}

// Shutdown makes one best-effort all-lights-off write per orb, then closes
// the socket. It never fails outwardly.
func (d *Device) Shutdown() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[atmoorb] %s: recovered during shutdown: %v", d.Name(), r)
		}
	}()

	d.mu.Lock()
	conn, group := d.conn, d.group
	d.conn = nil
	d.lastSend = time.Time{}
	d.mu.Unlock()

	d.state.Store(int32(Disconnected))
	if conn == nil {
		return
	}

	for _, id := range parseOrbIDs(device.GetOr(d.Variables(), d.key("orb_ids"), "1")) {
		if _, err := conn.WriteTo([]byte{0xC0, 0xFF, 0xEE, optValidateID, id, 0, 0, 0}, group); err != nil {
			log.Printf("[atmoorb] %s: blackout for orb %d failed: %v", d.Name(), id, err)
		}
	}
	if err := conn.Close(); err != nil {
		log.Printf("[atmoorb] %s: close failed: %v", d.Name(), err)
	}
}

func (d *Device) Reset() { device.Reset(d) }

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// Units lists the configured orb ids.
func (d *Device) Units() []string {
	ids := parseOrbIDs(device.GetOr(d.Variables(), d.key("orb_ids"), "1"))
	units := make([]string, len(ids))
	for i, id := range ids {
		units[i] = fmt.Sprintf("orb-%d", id)
	}
	return units
}

// parseOrbIDs parses the comma-separated receiver list. Malformed entries
// are skipped; an empty or entirely unparseable list falls back to orb 1.
func parseOrbIDs(s string) []byte {
	var ids []byte
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 255 {
			continue
		}
		ids = append(ids, byte(n))
	}
	if len(ids) == 0 {
		return []byte{1}
	}
	return ids
}
