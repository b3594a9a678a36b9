package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectWithAlpha(t *testing.T) {
	got := CorrectWithAlpha(Color{R: 200, G: 100, B: 50, A: 128})
	assert.Equal(t, uint8(100), got.R)
	assert.Equal(t, uint8(50), got.G)
	assert.Equal(t, uint8(25), got.B)
	assert.Equal(t, uint8(255), got.A)
}

func TestCorrectWithAlphaOpaqueIsIdentity(t *testing.T) {
	in := Color{R: 13, G: 200, B: 255, A: 255}
	got := CorrectWithAlpha(in)
	assert.Equal(t, in.R, got.R)
	assert.Equal(t, in.G, got.G)
	assert.Equal(t, in.B, got.B)
}

func TestCorrectWithAlphaZeroAlphaIsBlack(t *testing.T) {
	got := CorrectWithAlpha(Color{R: 255, G: 255, B: 255, A: 0})
	assert.Equal(t, Color{A: 255}, got)
}

func TestRGBToHSB(t *testing.T) {
	tests := []struct {
		name    string
		in      Color
		h, s, b float64
	}{
		{"red", RGB(255, 0, 0), 0, 1, 1},
		{"green", RGB(0, 255, 0), 120, 1, 1},
		{"blue", RGB(0, 0, 255), 240, 1, 1},
		{"white", RGB(255, 255, 255), 0, 0, 1},
		{"black", RGB(0, 0, 0), 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, b := RGBToHSB(tt.in)
			assert.InDelta(t, tt.h, h, 0.01)
			assert.InDelta(t, tt.s, s, 0.01)
			assert.InDelta(t, tt.b, b, 0.01)
		})
	}
}

func TestHSBRoundTrip(t *testing.T) {
	in := RGB(200, 64, 180)
	h, s, b := RGBToHSB(in)
	r, g, bl := HSBToRGB(h, s, b)
	assert.InDelta(t, in.R, r, 2)
	assert.InDelta(t, in.G, g, 2)
	assert.InDelta(t, in.B, bl, 2)
}
