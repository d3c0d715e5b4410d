// Package batch drives the intake form without a window, for the restore
// command and scripted runs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/domain/surface"
)

// PreviewWidth is the display width the overlay is computed for.
const PreviewWidth = 280

// ErrMaskUnavailable is returned when a radius is requested but the image
// could not be decoded for preview.
var ErrMaskUnavailable = errors.New("batch: mask needs a decodable preview")

// Request describes one headless submission.
type Request struct {
	Path   string
	Params acquisition.Params
	// Radius enables the mask when non-nil.
	Radius *float64
}

// Prepared is a settled form and the payload built from it.
type Prepared struct {
	Form    *acquisition.Form
	Payload *restore.Payload
}

// Close releases the form.
func (p *Prepared) Close() {
	if p != nil {
		p.Form.Close()
	}
}

// Prepare reads the file, waits for the intake form to settle and builds the
// payload. ctx bounds the wait.
func Prepare(ctx context.Context, req Request, logger *slog.Logger) (*Prepared, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}
	res, err := acquisition.NewResource(req.Path, data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.Path, err)
	}
	form := acquisition.NewForm(logger, nil, nil)
	form.Select(res)
	if err := Settle(ctx, form); err != nil {
		form.Close()
		return nil, err
	}
	if req.Radius != nil {
		if !form.SetMaskEnabled(true) {
			form.Close()
			return nil, ErrMaskUnavailable
		}
		if !form.SetRadius(*req.Radius) {
			form.Close()
			return nil, fmt.Errorf("batch: invalid radius %v", *req.Radius)
		}
	}
	payload, err := form.Payload(req.Params)
	if err != nil {
		form.Close()
		return nil, err
	}
	return &Prepared{Form: form, Payload: payload}, nil
}

// Settle polls the form until it leaves Probing.
func Settle(ctx context.Context, form *acquisition.Form) error {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		form.Process()
		if form.State() != acquisition.StateProbing {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("batch: intake did not settle: %w", ctx.Err())
		case <-t.C:
		}
	}
}

// OverlaySVG returns the preview overlay markup for the prepared form. The
// clip is applied only when the mask is active.
func (p *Prepared) OverlaySVG() (string, bool) {
	g, ok := p.Form.Overlay(PreviewWidth)
	if !ok {
		return "", false
	}
	pv, ok := p.Form.Preview()
	if !ok {
		return "", false
	}
	return g.SVG(pv.URI, p.Form.MaskActive()), true
}

// SaveSurface renders res at w x h and writes it to path; the format follows
// the extension.
func SaveSurface(res *restore.Result, path string, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("batch: empty render %dx%d", w, h)
	}
	return imaging.Save(surface.Render(surface.BuildOption(res), w, h), path)
}

// Summary is a one-line description of res.
func Summary(res *restore.Result, elapsed time.Duration) string {
	return fmt.Sprintf("restored %d x %d points (%d total), peaks [%g, %g] in %s",
		res.Cols(), res.Rows(), res.Points(), res.Peaks.Min, res.Peaks.Max, elapsed.Round(time.Millisecond))
}
