package presenter

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
)

// Snapshotter turns a screen region into an image resource.
type Snapshotter interface {
	Snapshot(region image.Rectangle) (*acquisition.Resource, error)
}

// RegionSource returns the saved grab region, nil for the full screen.
type RegionSource interface {
	ActiveRect() *image.Rectangle
}

// ResourceSink accepts a new selection and reports the current one.
type ResourceSink interface {
	SelectResource(res *acquisition.Resource)
	Selection() *acquisition.Resource
}

// CaptureView shows grab progress and failures.
type CaptureView interface {
	SetCaptureStatus(text string)
}

type grabOutcome struct {
	res *acquisition.Resource
	err error
	// base is the selection current when the grab started.
	base *acquisition.Resource
}

// CapturePresenter runs one screen grab at a time off the UI thread and hands
// the result to the intake form as a regular selection.
type CapturePresenter struct {
	svc    Snapshotter
	region RegionSource
	sink   ResourceSink
	view   CaptureView
	logger *slog.Logger

	busy     bool
	closed   bool
	resultCh chan grabOutcome
	done     chan struct{}
}

func NewCapturePresenter(svc Snapshotter, region RegionSource, sink ResourceSink, view CaptureView, logger *slog.Logger) *CapturePresenter {
	return &CapturePresenter{
		svc:      svc,
		region:   region,
		sink:     sink,
		view:     view,
		logger:   logger,
		resultCh: make(chan grabOutcome, 1),
		done:     make(chan struct{}),
	}
}

// Grab starts a screen grab. Idempotent while one is running. The result is
// dropped if the operator opens or removes a file before it arrives.
func (c *CapturePresenter) Grab() bool {
	if c == nil || c.svc == nil || c.sink == nil || c.closed || c.busy {
		return false
	}
	var rect image.Rectangle
	if c.region != nil {
		if r := c.region.ActiveRect(); r != nil {
			rect = *r
		}
	}
	base := c.sink.Selection()
	c.busy = true
	c.setStatus("Grabbing screen...")
	go func() {
		out := grabOutcome{base: base}
		func() {
			defer func() {
				if r := recover(); r != nil {
					out.err = fmt.Errorf("grab panic: %v", r)
				}
			}()
			out.res, out.err = c.svc.Snapshot(rect)
		}()
		select {
		case c.resultCh <- out:
		case <-c.done:
		}
	}()
	return true
}

// Busy reports whether a grab is running.
func (c *CapturePresenter) Busy() bool { return c != nil && c.busy }

// Tick hands a finished grab to the sink.
func (c *CapturePresenter) Tick() {
	if c == nil || c.closed {
		return
	}
	select {
	case out := <-c.resultCh:
		c.busy = false
		if out.err != nil {
			if c.logger != nil {
				c.logger.Error("screen grab", "error", out.err)
			}
			c.setStatus("Screen grab failed")
			return
		}
		c.setStatus("")
		if c.sink.Selection() != out.base {
			if c.logger != nil {
				c.logger.Info("screen grab superseded")
			}
			return
		}
		c.sink.SelectResource(out.res)
	default:
	}
}

func (c *CapturePresenter) setStatus(text string) {
	if c.view != nil {
		c.view.SetCaptureStatus(text)
	}
}

// Close drops any grab still running.
func (c *CapturePresenter) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
