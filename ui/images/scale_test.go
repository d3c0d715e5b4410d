package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestScaleToFit_PreservesAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	out := ScaleToFit(src, 400, 400)
	if b := out.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("bounds %v", b)
	}
	if ScaleToFit(src, 1000, 1000) != image.Image(src) {
		t.Fatal("fitting image was resampled")
	}
	if ScaleToFit(nil, 10, 10) != nil {
		t.Fatal("nil source")
	}
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	img := Placeholder(4, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	data := EncodePNG(img)
	got, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds %v", b)
	}
	if EncodePNG(nil) != nil {
		t.Fatal("nil image encoded")
	}
}
