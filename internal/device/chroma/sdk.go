package chroma

import "chromaflow/internal/frame"

// SlotID identifies one physical slot exposed by the native SDK.
type SlotID int

// Class is the broad device class behind a slot. Whole classes can be
// disabled through external configuration.
type Class int

const (
	ClassKeyboard Class = iota
	ClassMouse
	ClassHeadset
)

func (c Class) String() string {
	switch c {
	case ClassKeyboard:
		return "keyboard"
	case ClassMouse:
		return "mouse"
	case ClassHeadset:
		return "headset"
	default:
		return "unknown"
	}
}

// SDK is the boundary to the vendor's in-process native library. It is
// consumed as an opaque capability; calls may block for hundreds of
// milliseconds and must only ever happen under the backend's lock so a
// shutdown cannot race an update against a freed native handle.
type SDK interface {
	// Enumerate lists every slot the SDK knows about, present or not.
	Enumerate() []SlotID

	// IsPresent reports whether hardware is attached to the slot.
	IsPresent(id SlotID) bool

	// Class reports the device class behind the slot.
	Class(id SlotID) Class

	// Enable turns LED control for the slot on or off, reporting success.
	Enable(id SlotID, on bool) bool

	// WriteMatrix submits a full color matrix to the slot in one call.
	WriteMatrix(id SlotID, matrix [][]frame.Color) error
}
