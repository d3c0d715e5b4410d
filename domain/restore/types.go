// Package restore is the client side of the restoration service contract:
// a multipart request in, a JSON surface out.
package restore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// State enumerates the request lifecycle of a submission.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Point is one (x, y, z) sample of the restored surface.
type Point [3]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }
func (p Point) Z() float64 { return p[2] }

// Peaks bounds the colour scale applied to the z component.
type Peaks struct {
	Min float64
	Max float64
}

// MarshalJSON encodes peaks as the two-element array used on the wire.
func (p Peaks) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Min, p.Max})
}

// UnmarshalJSON accepts exactly two numbers.
func (p *Peaks) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("peaks: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("peaks: expected 2 values, got %d", len(raw))
	}
	p.Min, p.Max = raw[0], raw[1]
	return nil
}

// Result is the restored wavefront returned by the service.
type Result struct {
	Matrix [][]Point `json:"matrix"`
	Peaks  Peaks     `json:"peaks"`
}

// ErrMalformedResult marks a 2xx response whose body is not a valid result.
var ErrMalformedResult = errors.New("restore: malformed result")

// Rows returns the number of matrix rows.
func (r *Result) Rows() int {
	if r == nil {
		return 0
	}
	return len(r.Matrix)
}

// Cols returns the length of the longest row.
func (r *Result) Cols() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, row := range r.Matrix {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Points returns the total number of samples.
func (r *Result) Points() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, row := range r.Matrix {
		n += len(row)
	}
	return n
}

// decodeResult parses a response body. Each sample must be a 3-tuple of numbers
// and peaks must hold two numbers.
func decodeResult(body []byte) (*Result, error) {
	var wire struct {
		Matrix [][][]float64 `json:"matrix"`
		Peaks  *Peaks        `json:"peaks"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if wire.Peaks == nil {
		return nil, fmt.Errorf("%w: missing peaks", ErrMalformedResult)
	}
	if wire.Matrix == nil {
		return nil, fmt.Errorf("%w: missing matrix", ErrMalformedResult)
	}
	res := &Result{Peaks: *wire.Peaks, Matrix: make([][]Point, len(wire.Matrix))}
	for i, row := range wire.Matrix {
		out := make([]Point, len(row))
		for j, p := range row {
			if len(p) != 3 {
				return nil, fmt.Errorf("%w: matrix[%d][%d] has %d components", ErrMalformedResult, i, j, len(p))
			}
			out[j] = Point{p[0], p[1], p[2]}
		}
		res.Matrix[i] = out
	}
	return res, nil
}
