package surface

import (
	"image"
	"log/slog"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

// Container is the display surface an engine draws into.
type Container interface {
	// Size returns the current drawable size in pixels.
	Size() (width, height int)
	// Present shows a finished frame.
	Present(frame image.Image)
}

// ResizeSource notifies about viewport size changes. The returned function
// removes the subscription.
type ResizeSource interface {
	OnResize(fn func()) (cancel func())
}

// Engine draws an Option into its container.
type Engine interface {
	SetOption(opt Option)
	// Resize adapts to the container size. Calling it repeatedly is safe.
	Resize()
	Dispose()
}

// EngineFactory creates an engine bound to a container.
type EngineFactory func(c Container) Engine

// Renderer owns at most one engine for the lifetime of a mount. Mounting and
// resizing touch the engine handle; data updates only apply options to it.
// Not safe for concurrent use.
type Renderer struct {
	logger  *slog.Logger
	factory EngineFactory

	engine      Engine
	unsubscribe func()

	data    *restore.Result
	applied bool
}

// NewRenderer builds a renderer; nil factory selects the raster engine.
func NewRenderer(logger *slog.Logger, factory EngineFactory) *Renderer {
	if factory == nil {
		factory = func(c Container) Engine { return NewRasterEngine(c, logger) }
	}
	return &Renderer{logger: logger, factory: factory}
}

// Mount creates the engine in c and subscribes to resizes. Mounting an
// already mounted renderer is a no-op.
func (r *Renderer) Mount(c Container, resizes ResizeSource) {
	if r == nil || c == nil || r.engine != nil {
		return
	}
	r.engine = r.factory(c)
	if resizes != nil {
		r.unsubscribe = resizes.OnResize(r.Resize)
	}
	r.applied = false
	r.apply()
	if r.logger != nil {
		r.logger.Debug("surface mounted")
	}
}

// Mounted reports whether an engine is live.
func (r *Renderer) Mounted() bool {
	return r != nil && r.engine != nil
}

// Resize forwards a viewport change to the engine. No-op when unmounted.
func (r *Renderer) Resize() {
	if r == nil || r.engine == nil {
		return
	}
	r.engine.Resize()
}

// SetData replaces the displayed result. The option is rebuilt in full and
// applied to the live engine; without one it is kept for the next mount.
func (r *Renderer) SetData(res *restore.Result) {
	if r == nil {
		return
	}
	if r.applied && res == r.data {
		return
	}
	r.data = res
	r.applied = false
	r.apply()
}

// Data returns the last result handed to SetData.
func (r *Renderer) Data() *restore.Result {
	if r == nil {
		return nil
	}
	return r.data
}

func (r *Renderer) apply() {
	if r.engine == nil {
		return
	}
	r.engine.SetOption(BuildOption(r.data))
	r.applied = true
}

// Unmount releases the engine and the resize subscription.
func (r *Renderer) Unmount() {
	if r == nil || r.engine == nil {
		return
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.engine.Dispose()
	r.engine = nil
	r.applied = false
	if r.logger != nil {
		r.logger.Debug("surface unmounted")
	}
}
