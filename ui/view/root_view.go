package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/Fettser/diplom-deploy/config"
	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/surface"
	"github.com/Fettser/diplom-deploy/ui/presenter"
	"github.com/Fettser/diplom-deploy/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	// Subviews
	Stats   RequestStats
	Form    FormPanel
	Preview MaskPreview
	Surface *SurfaceView

	// Widgets
	StateLabel *TLabelWidget
}

// UI is the subset of view operations needed by presenters, enabling
// decoupling from the concrete RootView implementation.
type UI interface {
	presenter.AcquisitionView
	presenter.SubmitView
	presenter.StateView
	presenter.StatsView
	presenter.CaptureView
	presenter.ViewerView
	Params() acquisition.Params
}

var _ UI = (*RootView)(nil)

// RootHandlers bundles the callbacks raised by the root layout.
type RootHandlers struct {
	Form        FormHandlers
	ToggleTheme func()
	Exit        func()
}

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout: a header row, the intake column on the left and
// the result area on the right.
func (rv *RootView) Build(h RootHandlers) {
	if rv == nil {
		return
	}
	GridColumnConfigure(App, 1, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	header := Frame()
	Grid(header, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.StateLabel = TLabel(Txt("State: no file"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(header), Row(0), Column(0), Sticky("w"), Padx("0.4m"))
	rv.Stats = NewRequestStats(header, 0, 1)
	Grid(Button(Txt("Theme"), Command(call(h.ToggleTheme))), In(header), Row(0), Column(3), Sticky("e"), Padx("0.2m"))
	Grid(Button(Txt("Exit"), Command(call(h.Exit))), In(header), Row(0), Column(4), Sticky("e"), Padx("0.2m"))

	left := Frame()
	Grid(left, Row(1), Column(0), Sticky("nsw"), Padx("0.4m"), Pady("0.3m"))
	rv.Form = NewFormPanel(rv.logger)
	endRow := rv.Form.Build(left, 0, h.Form)
	rv.Preview = NewMaskPreview(left, endRow, rv.cfg.PreviewWidth)

	right := Frame(Borderwidth(1), Relief("groove"))
	Grid(right, Row(1), Column(1), Sticky("nsew"), Padx("0.4m"), Pady("0.3m"))
	GridColumnConfigure(right.Window, 0, Weight(1))
	GridRowConfigure(right.Window, 1, Weight(1))
	rv.Surface = NewSurfaceView(right, rv.cfg.ViewerWidth, rv.cfg.ViewerHeight)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetStats(elapsed time.Duration, points int) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.SetStats(elapsed, points)
	}
}

// --- AcquisitionPresenter view contract ---

func (rv *RootView) SetFileName(name string) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetFileName(name)
	}
}

func (rv *RootView) SetDimensions(text string) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetDimensions(text)
	}
}

func (rv *RootView) SetMaskControls(available, enabled bool) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetMaskControls(available, enabled)
	}
}

func (rv *RootView) SetRadiusText(text string) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetRadiusText(text)
	}
}

func (rv *RootView) ShowPreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowPreview(img)
	}
}

func (rv *RootView) SetCaptureStatus(text string) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetCaptureStatus(text)
	}
}

// --- RestorePresenter view contract ---

func (rv *RootView) SetSubmitEnabled(enabled bool) {
	if rv != nil && rv.Form != nil {
		rv.Form.SetSubmitEnabled(enabled)
	}
}

// Params reads the acquisition fields.
func (rv *RootView) Params() acquisition.Params {
	if rv == nil || rv.Form == nil {
		return acquisition.Params{}
	}
	return rv.Form.Params()
}

// --- ViewerPresenter view contract ---

func (rv *RootView) ShowStatus(s presenter.Status, text string) {
	if rv != nil && rv.Surface != nil {
		rv.Surface.ShowStatus(s, text)
	}
}

func (rv *RootView) SurfaceContainer() surface.Container { return rv.Surface.SurfaceContainer() }

func (rv *RootView) Resizes() surface.ResizeSource { return rv.Surface.Resizes() }
