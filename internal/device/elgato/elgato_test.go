package elgato

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"chromaflow/internal/frame"
)

func TestBrightnessFor(t *testing.T) {
	assert.Equal(t, 100, brightnessFor(frame.RGB(255, 255, 255)))
	assert.Equal(t, 0, brightnessFor(frame.RGB(0, 0, 0)))
	// Green dominates perceived brightness.
	assert.Greater(t, brightnessFor(frame.RGB(0, 128, 0)), brightnessFor(frame.RGB(128, 0, 0)))
}

func TestClampKelvin(t *testing.T) {
	assert.Equal(t, 2900, clampKelvin(1000))
	assert.Equal(t, 7000, clampKelvin(9000))
	assert.Equal(t, 4000, clampKelvin(4000))
}

func TestInitializeWithoutAddress(t *testing.T) {
	d := New("Key Light")
	assert.False(t, d.Initialize())
	assert.False(t, d.Initialized())
}

func TestUpdateCancelledBeforeStart(t *testing.T) {
	d := New("Key Light")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, d.Update(ctx, frame.Composition{frame.ZonePeripheral: frame.RGB(1, 2, 3)}, false))
}
