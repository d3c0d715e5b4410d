package model

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// RegionModel holds the saved screen grab region in global coordinates. The
// zero value means "full screen" and is usable. Guarded by a mutex because
// grabs read it from worker goroutines.
type RegionModel struct {
	mu  sync.RWMutex
	roi image.Rectangle
}

func NewRegionModel(r image.Rectangle) *RegionModel {
	m := &RegionModel{}
	m.SetRegion(r)
	return m
}

// SetRegion stores r. Empty or inverted rectangles clear the region.
func (m *RegionModel) SetRegion(r image.Rectangle) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Empty() || r.Dx() <= 0 || r.Dy() <= 0 {
		m.roi = image.Rectangle{}
		return
	}
	m.roi = r
}

// Region returns the stored rectangle (may be empty).
func (m *RegionModel) Region() image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roi
}

// ActiveRect returns a copy of the region, or nil for the full screen.
func (m *RegionModel) ActiveRect() *image.Rectangle {
	r := m.Region()
	if r.Empty() {
		return nil
	}
	return &r
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry parses a Tk geometry string into a screen rectangle.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// FormatGeometry is the inverse of ParseGeometry.
func FormatGeometry(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}
