package acquisition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Image format decoders
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrZeroSize is returned when an image header reports an empty raster.
var ErrZeroSize = errors.New("acquisition: image has zero size")

// ProbeDimensions resolves the natural size of res from its header only.
func ProbeDimensions(ctx context.Context, res *Resource) (Dimensions, error) {
	if res == nil || len(res.Data) == 0 {
		return Dimensions{}, fmt.Errorf("probe: empty resource")
	}
	if err := ctx.Err(); err != nil {
		return Dimensions{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("probe %s: %w", res.Name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("probe %s (%s): %w", res.Name, format, ErrZeroSize)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
