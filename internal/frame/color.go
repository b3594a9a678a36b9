package frame

import "math"

// Color is an RGBA byte quad. It is a plain value type: compositions copy
// colors freely and nothing in the pipeline mutates one in place.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGB builds a fully opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// CorrectWithAlpha composites c against a black backplate: each channel is
// scaled by alpha/255, rounded and clamped. Physical devices have no alpha
// channel, so the result is always opaque.
func CorrectWithAlpha(c Color) Color {
	scale := float64(c.A) / 255.0
	return Color{
		R: scaleByte(c.R, scale),
		G: scaleByte(c.G, scale),
		B: scaleByte(c.B, scale),
		A: 255,
	}
}

func scaleByte(v uint8, scale float64) uint8 {
	s := math.Round(float64(v) * scale)
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return uint8(s)
}

func HSBToRGB(h, s, b float64) (r, g, bl uint8) {
	if s == 0 {
		v := uint8(b * 255)
		return v, v, v
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	hh := h / 60.0
	i := int(hh)
	ff := hh - float64(i)
	p := b * (1.0 - s)
	q := b * (1.0 - s*ff)
	t := b * (1.0 - s*(1.0-ff))

	var rr, gg, bb float64
	switch i {
	case 0:
		rr, gg, bb = b, t, p
	case 1:
		rr, gg, bb = q, b, p
	case 2:
		rr, gg, bb = p, b, t
	case 3:
		rr, gg, bb = p, q, b
	case 4:
		rr, gg, bb = t, p, b
	default:
		rr, gg, bb = b, p, q
	}

	return uint8(rr * 255), uint8(gg * 255), uint8(bb * 255)
}

// RGBToHSB is the inverse of HSBToRGB; hue in [0,360), saturation and
// brightness in [0,1].
func RGBToHSB(c Color) (h, s, b float64) {
	rf := float64(c.R) / 255.0
	gf := float64(c.G) / 255.0
	bf := float64(c.B) / 255.0

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	b = max
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, b
	}

	switch max {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, b
}
