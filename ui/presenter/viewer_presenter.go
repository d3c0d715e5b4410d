package presenter

import (
	"fmt"
	"time"

	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/domain/surface"
)

// Status is what the viewer area shows.
type Status int

const (
	StatusNoData Status = iota
	StatusLoading
	StatusError
	StatusSurface
)

func (s Status) String() string {
	switch s {
	case StatusNoData:
		return "no data"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// StatusOf resolves the viewer status. Loading wins over error, error over data.
func StatusOf(loading, failed, hasData bool) Status {
	switch {
	case loading:
		return StatusLoading
	case failed:
		return StatusError
	case hasData:
		return StatusSurface
	default:
		return StatusNoData
	}
}

const (
	textNoData = "No data"
	textError  = "Restoration failed. Check the image and parameters, then try again."
)

// RequestSource is the read side of the request model.
type RequestSource interface {
	Loading() bool
	Failed() bool
	Result() *restore.Result
	Elapsed(now time.Time) time.Duration
}

// SurfaceRenderer is the lifecycle surface of surface.Renderer.
type SurfaceRenderer interface {
	Mount(c surface.Container, resizes surface.ResizeSource)
	Unmount()
	SetData(res *restore.Result)
	Mounted() bool
}

// ViewerView is the result area: a status line and the surface container.
type ViewerView interface {
	ShowStatus(s Status, text string)
	SurfaceContainer() surface.Container
	Resizes() surface.ResizeSource
}

// ViewerPresenter keeps the status area and the surface renderer in step with
// the request model. The renderer is mounted only while the status is surface.
type ViewerPresenter struct {
	req      RequestSource
	renderer SurfaceRenderer
	view     ViewerView

	shown    bool
	last     Status
	lastText string
}

func NewViewerPresenter(req RequestSource, renderer SurfaceRenderer, view ViewerView) *ViewerPresenter {
	return &ViewerPresenter{req: req, renderer: renderer, view: view}
}

// Status returns the current viewer status.
func (p *ViewerPresenter) Status() Status {
	if p == nil || p.req == nil {
		return StatusNoData
	}
	return StatusOf(p.req.Loading(), p.req.Failed(), p.req.Result() != nil)
}

// Tick reconciles view and renderer with the request model.
func (p *ViewerPresenter) Tick(now time.Time) {
	if p == nil || p.req == nil || p.view == nil || p.renderer == nil {
		return
	}
	st := p.Status()
	text := p.statusText(st, now)
	if !p.shown || st != p.last || text != p.lastText {
		p.shown, p.last, p.lastText = true, st, text
		p.view.ShowStatus(st, text)
	}
	if st != StatusSurface {
		p.renderer.Unmount()
		return
	}
	p.renderer.SetData(p.req.Result())
	if !p.renderer.Mounted() {
		p.renderer.Mount(p.view.SurfaceContainer(), p.view.Resizes())
	}
}

func (p *ViewerPresenter) statusText(st Status, now time.Time) string {
	switch st {
	case StatusLoading:
		return fmt.Sprintf("Restoring... %ds", int(p.req.Elapsed(now).Seconds()))
	case StatusError:
		return textError
	case StatusSurface:
		res := p.req.Result()
		return fmt.Sprintf("%d x %d points", res.Cols(), res.Rows())
	default:
		return textNoData
	}
}

// Close releases the renderer.
func (p *ViewerPresenter) Close() {
	if p == nil || p.renderer == nil {
		return
	}
	p.renderer.Unmount()
}
