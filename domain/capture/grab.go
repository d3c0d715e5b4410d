// Package capture grabs the screen, or a saved region of it, as an image
// resource for the intake form.
package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ErrOutOfBounds is returned when a region does not intersect the screen.
var ErrOutOfBounds = errors.New("capture: region outside screen")

// Grabber returns the pixels of region. An empty region means the full screen.
type Grabber interface {
	Grab(region image.Rectangle) (*image.RGBA, error)
}

// ScreenGrabber reads the primary display.
type ScreenGrabber struct{}

// Grab captures region clipped to the screen bounds.
func (ScreenGrabber) Grab(region image.Rectangle) (*image.RGBA, error) {
	if region.Empty() {
		img, err := screenshot.CaptureScreen()
		if err != nil {
			return nil, fmt.Errorf("capture screen: %w", err)
		}
		return img, nil
	}
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("capture screen rect: %w", err)
	}
	r := region.Intersect(screen)
	if r.Empty() {
		return nil, fmt.Errorf("%w: region=%v screen=%v", ErrOutOfBounds, region, screen)
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture rect %v: %w", r, err)
	}
	return img, nil
}
