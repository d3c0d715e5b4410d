// Package mask maps an aperture radius given in source-image pixels onto the
// fixed-width preview used by the acquisition form.
package mask

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
)

// Geometry is the circular clip of the preview in display coordinates.
// It is derived on demand and never stored.
type Geometry struct {
	DisplayWidth  float64
	DisplayHeight float64
	CenterX       float64
	CenterY       float64
	Radius        float64
}

// Compute fits a naturalW x naturalH image into displayW and converts the
// radius into display units. naturalW must be positive; callers gate on known
// dimensions.
func Compute(naturalW, naturalH int, displayW float64, radius float64) Geometry {
	if naturalW <= 0 {
		panic(fmt.Sprintf("mask: natural width must be positive, got %d", naturalW))
	}
	if radius < 0 {
		radius = 0
	}
	scale := displayW / float64(naturalW)
	displayH := displayW * float64(naturalH) / float64(naturalW)
	return Geometry{
		DisplayWidth:  displayW,
		DisplayHeight: displayH,
		CenterX:       displayW / 2,
		CenterY:       displayH / 2,
		Radius:        radius * scale,
	}
}

// Size returns the display rectangle rounded to whole pixels, at least 1x1.
func (g Geometry) Size() (int, int) {
	w := int(g.DisplayWidth + 0.5)
	h := int(g.DisplayHeight + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Contains reports whether the display point (x, y) lies inside the clip circle.
func (g Geometry) Contains(x, y float64) bool {
	dx := x - g.CenterX
	dy := y - g.CenterY
	return dx*dx+dy*dy < g.Radius*g.Radius
}

// Fit scales src to the display rectangle without clipping.
func (g Geometry) Fit(src image.Image) *image.NRGBA {
	w, h := g.Size()
	if src == nil {
		return image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// Apply scales src to the display rectangle and clears every pixel outside the
// clip circle. A zero radius clears everything.
func (g Geometry) Apply(src image.Image) *image.NRGBA {
	out := g.Fit(src)
	b := out.Bounds()
	transparent := color.NRGBA{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// sample pixel centres
			if !g.Contains(float64(x)+0.5, float64(y)+0.5) {
				out.SetNRGBA(x, y, transparent)
			}
		}
	}
	return out
}

// Composite draws the clipped preview over a solid background, which is what
// the Tk photo shows.
func (g Geometry) Composite(src image.Image, bg color.Color) *image.NRGBA {
	clipped := g.Apply(src)
	b := clipped.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, b, clipped, b.Min, draw.Over)
	return dst
}

// SVG renders the overlay as inline SVG referencing href (usually a data URI).
// When clip is false the image is emitted without the clip path.
func (g Geometry) SVG(href string, clip bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(g.DisplayWidth), num(g.DisplayHeight), num(g.DisplayWidth), num(g.DisplayHeight))
	b.WriteString("<defs>")
	if clip {
		fmt.Fprintf(&b, `<clipPath id="circleMask"><circle cx="%s" cy="%s" r="%s"/></clipPath>`,
			num(g.CenterX), num(g.CenterY), num(g.Radius))
	}
	b.WriteString("</defs>")
	fmt.Fprintf(&b, `<image x="0" y="0" width="%s" height="%s" href="%s"`, num(g.DisplayWidth), num(g.DisplayHeight), href)
	if clip {
		b.WriteString(` clip-path="url(#circleMask)"`)
	}
	b.WriteString(` preserveAspectRatio="xMidYMid slice"/></svg>`)
	return b.String()
}

func num(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
