package chroma

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromaflow/internal/frame"
)

// fakeSDK is an in-memory stand-in for the native adapter.
type fakeSDK struct {
	slots    []SlotID
	present  map[SlotID]bool
	classes  map[SlotID]Class
	enabled  map[SlotID]bool
	failed   map[SlotID]bool // Enable returns false for these
	writeErr error

	writes  int
	written map[SlotID][][]frame.Color
}

func newFakeSDK() *fakeSDK {
	return &fakeSDK{
		present: make(map[SlotID]bool),
		classes: make(map[SlotID]Class),
		enabled: make(map[SlotID]bool),
		failed:  make(map[SlotID]bool),
		written: make(map[SlotID][][]frame.Color),
	}
}

func (f *fakeSDK) addSlot(id SlotID, class Class, present bool) {
	f.slots = append(f.slots, id)
	f.present[id] = present
	f.classes[id] = class
}

func (f *fakeSDK) Enumerate() []SlotID      { return f.slots }
func (f *fakeSDK) IsPresent(id SlotID) bool { return f.present[id] }
func (f *fakeSDK) Class(id SlotID) Class    { return f.classes[id] }

func (f *fakeSDK) Enable(id SlotID, on bool) bool {
	if on && f.failed[id] {
		return false
	}
	f.enabled[id] = on
	return true
}

func (f *fakeSDK) WriteMatrix(id SlotID, matrix [][]frame.Color) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	cp := make([][]frame.Color, len(matrix))
	for r := range matrix {
		cp[r] = append([]frame.Color(nil), matrix[r]...)
	}
	f.written[id] = cp
	return nil
}

func TestInitializeEnablesPresentSlots(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)
	sdk.addSlot(1, ClassMouse, true)
	sdk.addSlot(2, ClassKeyboard, false) // unplugged
	sdk.failed[1] = false

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())
	assert.True(t, d.Initialized())
	assert.Len(t, d.Units(), 2)
	assert.True(t, sdk.enabled[0])
	assert.True(t, sdk.enabled[1])

	// Idempotent: a second call succeeds with no side effects.
	require.True(t, d.Initialize())
	assert.Len(t, d.Units(), 2)
}

func TestInitializePartialFailureIsNotFatal(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)
	sdk.addSlot(1, ClassMouse, true)
	sdk.failed[1] = true

	d := New("Chroma", sdk)
	assert.True(t, d.Initialize(), "one good slot is enough")
	assert.Len(t, d.Units(), 1)
}

func TestInitializeAllSlotsFail(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)
	sdk.failed[0] = true

	d := New("Chroma", sdk)
	assert.False(t, d.Initialize())
	assert.False(t, d.Initialized())
}

func TestUpdateWritesCorrectedColorsAtMappedPositions(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())

	comp := frame.Composition{
		frame.ZoneEsc:       {R: 200, G: 100, B: 50, A: 128},
		frame.ZoneMouseLogo: frame.RGB(1, 2, 3), // unmapped on keyboards, silently skipped
	}
	require.True(t, d.Update(context.Background(), comp, false))
	require.Equal(t, 1, sdk.writes, "one matrix submit per slot per update")

	// ZoneEsc maps to (0,1) on chroma keyboards; color is alpha-corrected.
	got := sdk.written[0][0][1]
	assert.Equal(t, frame.Color{R: 100, G: 50, B: 25, A: 255}, got)
}

func TestUpdateCancelledBeforeStart(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, d.Update(ctx, frame.Composition{frame.ZoneEsc: frame.RGB(1, 1, 1)}, false))
	assert.Equal(t, 0, sdk.writes, "cancelled update must perform zero writes")
}

func TestUpdateSkipsDisabledClass(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)
	sdk.addSlot(1, ClassMouse, true)

	disabled := map[Class]bool{ClassMouse: true}
	d := New("Chroma", sdk, WithClassDisabled(func(c Class) bool { return disabled[c] }))
	require.True(t, d.Initialize())

	require.True(t, d.Update(context.Background(), frame.Composition{frame.ZoneEsc: frame.RGB(9, 9, 9)}, false))
	assert.Equal(t, 1, sdk.writes)
	assert.Contains(t, sdk.written, SlotID(0))
	assert.NotContains(t, sdk.written, SlotID(1))
}

func TestUpdateISOAliasing(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	iso := true
	d := New("Chroma", sdk, WithISOLayout(func() bool { return iso }))
	require.True(t, d.Initialize())

	comp := frame.Composition{frame.ZoneBackslash: frame.RGB(10, 20, 30)}
	require.True(t, d.Update(context.Background(), comp, false))

	// ISO: backslash lands on the hash position (3,13), not (2,14).
	assert.Equal(t, frame.RGB(10, 20, 30), sdk.written[0][3][13])
	assert.Equal(t, frame.Color{}, sdk.written[0][2][14])

	// Switch to ANSI at runtime; the very next update uses the new mapping.
	iso = false
	require.True(t, d.Update(context.Background(), comp, false))
	assert.Equal(t, frame.RGB(10, 20, 30), sdk.written[0][2][14])
}

func TestUpdateUnknownFamilyUsesGenericFallback(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassHeadset, true) // no chroma-headset layout registered

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())

	comp := frame.Composition{frame.ZoneSpace: frame.RGB(7, 7, 7)}
	require.True(t, d.Update(context.Background(), comp, false))

	// Generic fallback places space at (5,7).
	assert.Equal(t, frame.RGB(7, 7, 7), sdk.written[0][5][7])
}

func TestUpdateWriteFailureDropsFrameOnly(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())

	sdk.writeErr = errors.New("device busy")
	assert.False(t, d.Update(context.Background(), frame.Composition{frame.ZoneEsc: frame.RGB(1, 1, 1)}, false))
	assert.True(t, d.Initialized(), "transient write failure must not tear the device down")

	sdk.writeErr = nil
	assert.True(t, d.Update(context.Background(), frame.Composition{frame.ZoneEsc: frame.RGB(1, 1, 1)}, false))
}

func TestShutdownClearsSlots(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())

	d.Shutdown()
	assert.False(t, d.Initialized())
	assert.False(t, sdk.enabled[0])
	assert.Empty(t, d.Units())

	// A fresh initialize establishes a new slot set.
	require.True(t, d.Initialize())
	assert.True(t, sdk.enabled[0])
}

func TestReset(t *testing.T) {
	sdk := newFakeSDK()
	sdk.addSlot(0, ClassKeyboard, true)

	d := New("Chroma", sdk)
	require.True(t, d.Initialize())
	d.Reset()
	assert.True(t, d.Initialized())
}
