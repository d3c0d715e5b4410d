package view

import (
	"image"
	"strconv"
	"strings"

	"github.com/Fettser/diplom-deploy/domain/surface"
	"github.com/Fettser/diplom-deploy/ui/images"
	"github.com/Fettser/diplom-deploy/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SurfaceView is the result area: a status line above a photo label the
// surface engine presents frames into.
type SurfaceView struct {
	frame     *FrameWidget
	status    *LabelWidget
	canvas    *LabelWidget
	prevPhoto *Img
	fallbackW int
	fallbackH int
	visible   bool

	subs   map[int]func()
	nextID int
}

// NewSurfaceView builds the area in parent. w and h are used until the
// window reports a real size.
func NewSurfaceView(parent *FrameWidget, w, h int) *SurfaceView {
	v := &SurfaceView{frame: parent, fallbackW: w, fallbackH: h, subs: make(map[int]func())}
	v.status = Label(Txt("No data"), Anchor("center"))
	Grid(v.status, In(parent), Row(0), Column(0), Sticky("we"), Pady("0.3m"))
	v.canvas = Label(Borderwidth(0))
	Bind(parent, "<Configure>", Command(v.fireResize))
	return v
}

// ShowStatus updates the status line and shows the surface only for StatusSurface.
func (v *SurfaceView) ShowStatus(s presenter.Status, text string) {
	if v == nil || v.status == nil {
		return
	}
	v.status.Configure(Txt(text))
	show := s == presenter.StatusSurface
	if show == v.visible {
		return
	}
	v.visible = show
	if show {
		Grid(v.canvas, In(v.frame), Row(1), Column(0), Sticky("nsew"))
		return
	}
	GridForget(v.canvas.Window)
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
		v.prevPhoto = nil
	}
}

// SurfaceContainer returns the view as the engine's container.
func (v *SurfaceView) SurfaceContainer() surface.Container { return surfaceContainer{v} }

// Resizes returns the view as a resize source.
func (v *SurfaceView) Resizes() surface.ResizeSource { return resizeSource{v} }

func (v *SurfaceView) fireResize() {
	for _, fn := range v.subs {
		fn()
	}
}

// size returns the drawable size of the frame below the status line.
func (v *SurfaceView) size() (int, int) {
	w := winfoInt(WinfoWidth(v.frame.Window))
	h := winfoInt(WinfoHeight(v.frame.Window)) - winfoInt(WinfoHeight(v.status.Window))
	if w < 50 || h < 50 {
		return v.fallbackW, v.fallbackH
	}
	// keep a margin so the label never asks the frame to grow
	return w - 4, h - 8
}

func (v *SurfaceView) present(img image.Image) {
	if v.canvas == nil || img == nil {
		return
	}
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(img)))
	v.canvas.Configure(Image(v.prevPhoto))
}

func winfoInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

type surfaceContainer struct{ v *SurfaceView }

func (c surfaceContainer) Size() (int, int)        { return c.v.size() }
func (c surfaceContainer) Present(img image.Image) { c.v.present(img) }

type resizeSource struct{ v *SurfaceView }

var (
	_ surface.Container    = surfaceContainer{}
	_ surface.ResizeSource = resizeSource{}
)

func (r resizeSource) OnResize(fn func()) func() {
	id := r.v.nextID
	r.v.nextID++
	r.v.subs[id] = fn
	return func() { delete(r.v.subs, id) }
}
