package acquisition

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
)

// DecodePreview decodes res for display and builds its data URI.
func DecodePreview(ctx context.Context, res *Resource) (Preview, error) {
	if res == nil || len(res.Data) == 0 {
		return Preview{}, fmt.Errorf("preview: empty resource")
	}
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}
	img, _, err := image.Decode(bytes.NewReader(res.Data))
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", res.Name, err)
	}
	return Preview{URI: DataURI(res.MIME, res.Data), Image: img}, nil
}

// DataURI encodes data as an RFC 2397 base64 URI.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
