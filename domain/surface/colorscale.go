package surface

import (
	"fmt"
	"image/color"
	"math"
)

// DivergingPalette is the 11-stop blue-to-red ramp used for height maps.
var DivergingPalette = []color.NRGBA{
	hex("#313695"), hex("#4575b4"), hex("#74add1"), hex("#abd9e9"),
	hex("#e0f3f8"), hex("#ffffbf"), hex("#fee090"), hex("#fdae61"),
	hex("#f46d43"), hex("#d73027"), hex("#a50026"),
}

// ColorScale maps values in [Min, Max] onto Colors. Values outside the range
// take the end colours.
type ColorScale struct {
	Min    float64
	Max    float64
	Colors []color.NRGBA
}

// NewColorScale builds a scale over the diverging palette.
func NewColorScale(min, max float64) ColorScale {
	return ColorScale{Min: min, Max: max, Colors: DivergingPalette}
}

// Position returns v normalised to [0, 1] with clamping. A degenerate or
// inverted range maps everything to the middle.
func (s ColorScale) Position(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	span := s.Max - s.Min
	if !(span > 0) || math.IsInf(span, 0) {
		return 0.5
	}
	t := (v - s.Min) / span
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// At returns the interpolated colour for v.
func (s ColorScale) At(v float64) color.NRGBA {
	cs := s.Colors
	if len(cs) == 0 {
		cs = DivergingPalette
	}
	if len(cs) == 1 {
		return cs[0]
	}
	t := s.Position(v) * float64(len(cs)-1)
	i := int(t)
	if i >= len(cs)-1 {
		return cs[len(cs)-1]
	}
	return lerp(cs[i], cs[i+1], t-float64(i))
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func hex(s string) color.NRGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		panic(fmt.Sprintf("surface: bad colour %q", s))
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Hex formats c as #rrggbb.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
