package lifx

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"chromaflow/internal/frame"
)

func TestToLifxColor(t *testing.T) {
	c := toLifxColor(frame.RGB(255, 0, 0), 3500)
	assert.Equal(t, uint16(0), c.Hue)
	assert.Equal(t, uint16(math.MaxUint16), c.Saturation)
	assert.Equal(t, uint16(math.MaxUint16), c.Brightness)
	assert.Equal(t, uint16(3500), c.Kelvin)

	black := toLifxColor(frame.RGB(0, 0, 0), 3500)
	assert.Equal(t, uint16(0), black.Brightness)
}

func TestInitializeWithoutAddress(t *testing.T) {
	d := New("Desk LIFX")
	assert.False(t, d.Initialize(), "no address configured")
	assert.False(t, d.Initialized())
	assert.Empty(t, d.Units())
}

func TestUpdateCancelledBeforeStart(t *testing.T) {
	d := New("Desk LIFX")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, d.Update(ctx, frame.Composition{frame.ZonePeripheral: frame.RGB(1, 2, 3)}, false))
}

func TestVariableKeysUseDevicePrefix(t *testing.T) {
	d := New("Desk LIFX")
	_, ok := d.Variables().Lookup("desk_lifx_addr")
	assert.True(t, ok)
	_, ok = d.Variables().Lookup("desk_lifx_send_delay")
	assert.True(t, ok)
}
