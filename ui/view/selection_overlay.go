package view

import (
	"image"
	"log/slog"

	"github.com/Fettser/diplom-deploy/config"
	"github.com/Fettser/diplom-deploy/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay is a see-through toplevel the operator drags over the
// camera software window to choose the screen grab region.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type selectionOverlay struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	region  *model.RegionModel
	win     *ToplevelWidget
}

// default overlay placement when no region was saved yet
var defaultRegion = image.Rect(320, 180, 1600, 900)

// NewSelectionOverlay creates the overlay manager around region, seeding it
// from the saved config.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, region *model.RegionModel, logger *slog.Logger) SelectionOverlay {
	if region == nil {
		region = &model.RegionModel{}
	}
	v := &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, region: region}
	if cfg != nil && cfg.SelectionW > 0 && cfg.SelectionH > 0 {
		region.SetRegion(image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH))
	}
	return v
}

// OpenOrFocus opens the overlay at the saved region. It is a no-op while open.
func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#008080"))
	win.WmTitle("Grab region")
	v.win = win
	r := v.region.Region()
	if r.Empty() {
		r = defaultRegion
	}
	WmGeometry(win.Window, model.FormatGeometry(r))
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.45)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	center := win.Frame(Background("#008080"))
	Grid(center, Row(0), Column(0), Sticky("nsew"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Sticky("we"))
	confirm := win.Button(Txt("Use region [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.cancel))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	full := win.Button(Txt("Full screen"), Command(func() {
		v.Clear()
		v.destroy()
	}))
	Grid(full, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.cancel))
}

// Clear forgets the region; grabs take the full screen again.
func (v *selectionOverlay) Clear() {
	v.region.SetRegion(image.Rectangle{})
	if v.cfg != nil {
		v.cfg.SelectionW, v.cfg.SelectionH = 0, 0
		v.save()
	}
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := model.ParseGeometry(WmGeometry(v.win.Window)); ok {
		v.region.SetRegion(rect)
		if v.cfg != nil {
			v.cfg.SelectionX, v.cfg.SelectionY = rect.Min.X, rect.Min.Y
			v.cfg.SelectionW, v.cfg.SelectionH = rect.Dx(), rect.Dy()
			v.save()
		}
		if v.logger != nil {
			v.logger.Info("grab region set", "region", rect.String())
		}
	}
	v.destroy()
}

func (v *selectionOverlay) save() {
	if v.cfgPath == "" {
		return
	}
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
	}
}

func (v *selectionOverlay) cancel() { v.destroy() }

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

func (v *selectionOverlay) ActiveRect() *image.Rectangle { return v.region.ActiveRect() }
