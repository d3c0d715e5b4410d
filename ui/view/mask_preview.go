package view

import (
	"image"
	"image/color"

	"github.com/Fettser/diplom-deploy/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// MaskPreview shows the selected image at display width, clipped by the mask
// when it is active.
type MaskPreview interface {
	ShowPreview(img image.Image)
	Reset()
}

type maskPreview struct {
	label     *LabelWidget
	width     int
	prevPhoto *Img // last Tk photo, deleted on replacement
}

// NewMaskPreview creates the preview label in parent at row.
func NewMaskPreview(parent *FrameWidget, row, width int) MaskPreview {
	v := &maskPreview{width: width}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(v.placeholder())))
	v.label = Label(Image(v.prevPhoto), Borderwidth(1), Relief("sunken"))
	Grid(v.label, In(parent), Row(row), Column(0), Columnspan(2), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func (v *maskPreview) placeholder() image.Image {
	return images.Placeholder(v.width, v.width*3/4, color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})
}

// ShowPreview replaces the photo; nil restores the placeholder. Very tall
// images are shrunk to at most twice the preview width in height.
func (v *maskPreview) ShowPreview(img image.Image) {
	if v.label == nil {
		return
	}
	if img == nil {
		v.Reset()
		return
	}
	v.swap(images.EncodePNG(images.ScaleToFit(img, v.width, 2*v.width)))
}

func (v *maskPreview) Reset() {
	if v.label == nil {
		return
	}
	v.swap(images.EncodePNG(v.placeholder()))
}

func (v *maskPreview) swap(png []byte) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(png))
	v.label.Configure(Image(v.prevPhoto))
}
