package acquisition

import (
	"errors"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FormState enumerates the intake states.
type FormState int

const (
	StateNoFile FormState = iota
	StateProbing
	StateReady
)

func (s FormState) String() string {
	switch s {
	case StateNoFile:
		return "no file"
	case StateProbing:
		return "probing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// FormStateListener is called on each state transition.
type FormStateListener func(prev, next FormState)

// ErrNotImage is returned when a resource does not carry an image MIME type.
var ErrNotImage = errors.New("acquisition: resource is not an image")

// Resource is a raw image picked by the operator. ID identifies the selection
// instance; two selections of the same file get different IDs.
type Resource struct {
	ID   uuid.UUID
	Name string
	MIME string
	Data []byte
}

// NewResource wraps raw bytes, resolving the MIME type from the name first and
// the content second. Only image/* resources are accepted.
func NewResource(name string, data []byte) (*Resource, error) {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	if !strings.HasPrefix(mt, "image/") && len(data) > 0 {
		mt = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mt, "image/") {
		return nil, ErrNotImage
	}
	return &Resource{ID: uuid.New(), Name: filepath.Base(name), MIME: mt, Data: data}, nil
}

// Dimensions is the natural pixel size of a resource.
type Dimensions struct {
	Width  int
	Height int
}

// Preview is the displayable form of a resource.
type Preview struct {
	URI   string      // data:<mime>;base64,...
	Image image.Image // decoded pixels for native widgets
}

// MaskConfig is the aperture toggle and radius in source-pixel units.
type MaskConfig struct {
	Enabled bool
	Radius  float64
}

// Params holds the raw acquisition text fields as typed by the operator.
type Params struct {
	Lambda string // nm
	XAngle string // rad
	YAngle string // rad
	XSize  string // mm
	YSize  string // mm
}
