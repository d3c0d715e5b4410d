package presenter

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/mask"
)

// IntakeForm narrows acquisition.Form to what the presenter drives.
type IntakeForm interface {
	Select(res *acquisition.Resource)
	Remove()
	Process() bool
	Version() uint64
	State() acquisition.FormState
	File() *acquisition.Resource
	Dimensions() (acquisition.Dimensions, bool)
	Preview() (acquisition.Preview, bool)
	Overlay(displayW float64) (mask.Geometry, bool)
	Mask() acquisition.MaskConfig
	MaskAvailable() bool
	MaskActive() bool
	SetMaskEnabled(enabled bool) bool
	SetRadiusInput(s string) bool
}

// AcquisitionView is the intake side of the window.
type AcquisitionView interface {
	SetFileName(name string)
	SetDimensions(text string)
	// SetMaskControls enables the toggle and shows the radius field while enabled.
	SetMaskControls(available, enabled bool)
	// SetRadiusText shows the stored radius in the radius field.
	SetRadiusText(text string)
	// ShowPreview replaces the preview image; nil clears it.
	ShowPreview(img image.Image)
}

// AcquisitionPresenter forwards operator intake actions to the form and
// redraws the intake view whenever the form version moves.
type AcquisitionPresenter struct {
	form         IntakeForm
	view         AcquisitionView
	logger       *slog.Logger
	previewWidth float64
	readFile     func(string) ([]byte, error)

	drawn       bool
	lastVersion uint64
}

// NewAcquisitionPresenter returns a presenter drawing previews previewWidth px wide.
func NewAcquisitionPresenter(form IntakeForm, view AcquisitionView, previewWidth int, logger *slog.Logger) *AcquisitionPresenter {
	if previewWidth <= 0 {
		previewWidth = 280
	}
	return &AcquisitionPresenter{form: form, view: view, logger: logger, previewWidth: float64(previewWidth), readFile: os.ReadFile}
}

// OpenFile reads path and makes it the current selection.
func (p *AcquisitionPresenter) OpenFile(path string) error {
	if p == nil || p.form == nil || path == "" {
		return nil
	}
	data, err := p.readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res, err := acquisition.NewResource(path, data)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("rejected file", "file", filepath.Base(path), "error", err)
		}
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	p.form.Select(res)
	return nil
}

// SelectResource makes an already built resource the current selection.
func (p *AcquisitionPresenter) SelectResource(res *acquisition.Resource) {
	if p == nil || p.form == nil || res == nil {
		return
	}
	p.form.Select(res)
}

// Selection returns the current resource, nil when nothing is selected.
func (p *AcquisitionPresenter) Selection() *acquisition.Resource {
	if p == nil || p.form == nil {
		return nil
	}
	return p.form.File()
}

// Remove clears the selection.
func (p *AcquisitionPresenter) Remove() {
	if p == nil || p.form == nil {
		return
	}
	p.form.Remove()
}

// ToggleMask sets the mask flag; it is refused without a preview.
func (p *AcquisitionPresenter) ToggleMask(enabled bool) bool {
	if p == nil || p.form == nil {
		return false
	}
	ok := p.form.SetMaskEnabled(enabled)
	if !ok {
		// push the real state back into the checkbox
		p.drawn = false
	}
	return ok
}

// RadiusInput applies operator text to the radius. Invalid text is ignored.
func (p *AcquisitionPresenter) RadiusInput(text string) {
	if p == nil || p.form == nil {
		return
	}
	p.form.SetRadiusInput(text)
}

// Tick applies finished intake work and redraws on change.
func (p *AcquisitionPresenter) Tick() {
	if p == nil || p.form == nil || p.view == nil {
		return
	}
	p.form.Process()
	if v := p.form.Version(); p.drawn && v == p.lastVersion {
		return
	}
	p.lastVersion = p.form.Version()
	p.drawn = true
	p.redraw()
}

func (p *AcquisitionPresenter) redraw() {
	name := ""
	if f := p.form.File(); f != nil {
		name = f.Name
	}
	p.view.SetFileName(name)
	p.view.SetDimensions(p.dimensionsText())
	m := p.form.Mask()
	p.view.SetMaskControls(p.form.MaskAvailable(), m.Enabled)
	p.view.SetRadiusText(strconv.FormatFloat(m.Radius, 'f', -1, 64))
	p.view.ShowPreview(p.PreviewImage())
}

func (p *AcquisitionPresenter) dimensionsText() string {
	if d, ok := p.form.Dimensions(); ok && p.form.File() != nil {
		return fmt.Sprintf("%d x %d px, %s", d.Width, d.Height, humanize.Bytes(uint64(len(p.form.File().Data))))
	}
	switch {
	case p.form.File() == nil:
		return ""
	case p.form.State() == acquisition.StateProbing:
		return "reading..."
	default:
		return "unreadable image"
	}
}

// PreviewImage renders the preview at display width, clipped by the mask
// when it is active. Nil when no preview is available.
func (p *AcquisitionPresenter) PreviewImage() image.Image {
	if p == nil || p.form == nil {
		return nil
	}
	prev, ok := p.form.Preview()
	if !ok || prev.Image == nil {
		return nil
	}
	g, ok := p.form.Overlay(p.previewWidth)
	if !ok {
		b := prev.Image.Bounds()
		if b.Dx() <= 0 {
			return nil
		}
		return mask.Compute(b.Dx(), b.Dy(), p.previewWidth, 0).Fit(prev.Image)
	}
	if p.form.MaskActive() {
		return g.Apply(prev.Image)
	}
	return g.Fit(prev.Image)
}
