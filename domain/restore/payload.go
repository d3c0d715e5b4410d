package restore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// Multipart field names of the restoration contract.
const (
	FieldFile   = "file"
	FieldRadius = "radius"
	FieldLambda = "lambda"
	FieldXAngle = "xAngle"
	FieldYAngle = "yAngle"
	FieldXSize  = "xSize"
	FieldYSize  = "ySize"
)

// ErrNoFile is returned when a payload is built without an image.
var ErrNoFile = errors.New("restore: payload has no file")

// Payload is the submission bundle. Nil numeric fields are omitted from the
// request. A Payload is not modified after it is built.
type Payload struct {
	FileName    string
	ContentType string
	File        []byte

	Radius *float64 // source-pixel units, set only when the mask is enabled
	Lambda *float64 // nanometres
	XAngle *float64 // radians
	YAngle *float64 // radians
	XSize  *float64 // millimetres
	YSize  *float64 // millimetres
}

// Fields returns the non-file fields in wire order, skipping absent values.
func (p *Payload) Fields() [][2]string {
	if p == nil {
		return nil
	}
	var out [][2]string
	add := func(name string, v *float64) {
		if v != nil {
			out = append(out, [2]string{name, strconv.FormatFloat(*v, 'f', -1, 64)})
		}
	}
	add(FieldRadius, p.Radius)
	add(FieldLambda, p.Lambda)
	add(FieldXAngle, p.XAngle)
	add(FieldYAngle, p.YAngle)
	add(FieldXSize, p.XSize)
	add(FieldYSize, p.YSize)
	return out
}

// Encode writes the payload as multipart/form-data into w and returns the
// content type header value including the boundary.
func (p *Payload) Encode(w io.Writer) (string, error) {
	if p == nil || len(p.File) == 0 {
		return "", ErrNoFile
	}
	mw := multipart.NewWriter(w)
	for _, f := range p.Fields() {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	ct := p.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldFile, escapeQuotes(p.fileName())))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(p.File); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}
	return mw.FormDataContentType(), nil
}

// Body encodes the payload into memory.
func (p *Payload) Body() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	ct, err := p.Encode(&buf)
	if err != nil {
		return nil, "", err
	}
	return &buf, ct, nil
}

func (p *Payload) fileName() string {
	if strings.TrimSpace(p.FileName) == "" {
		return "image"
	}
	return p.FileName
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// ParseField parses an optional numeric form value. Empty input yields nil.
func ParseField(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	return &v, nil
}

// ErrNotNumber reports operator text that is not a single finite decimal.
var ErrNotNumber = errors.New("not a number")

// ParseNumber parses operator text as a finite decimal. One decimal comma is
// accepted in place of the point; grouping separators are not, so "1,000" and
// "1,5.0" are rejected rather than read as 1.
func ParseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	commas := strings.Count(raw, ",")
	if commas > 1 || (commas == 1 && strings.Contains(raw, ".")) {
		return 0, ErrNotNumber
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotNumber
	}
	return v, nil
}
