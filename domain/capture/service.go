package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
)

// Stats summarises grab behaviour for instrumentation.
type Stats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
}

// Service turns screen grabs into PNG resources. Snapshot may run on any
// goroutine; counters are atomic.
type Service struct {
	grabber Grabber
	logger  *slog.Logger

	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	last         atomic.Int64 // unix nanos
}

// NewService builds a service around g; nil selects ScreenGrabber.
func NewService(g Grabber, logger *slog.Logger) *Service {
	if g == nil {
		g = ScreenGrabber{}
	}
	return &Service{grabber: g, logger: logger}
}

// Snapshot grabs region and wraps it as a PNG resource.
func (s *Service) Snapshot(region image.Rectangle) (*acquisition.Resource, error) {
	start := time.Now()
	img, err := s.grabber.Grab(region)
	if err != nil {
		s.failures.Add(1)
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.failures.Add(1)
		return nil, fmt.Errorf("encode grab: %w", err)
	}
	s.captures.Add(1)
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.last.Store(start.UnixNano())
	if s.logger != nil {
		b := img.Bounds()
		s.logger.Debug("capture.snapshot", "w", b.Dx(), "h", b.Dy(), "bytes", buf.Len(), "took", time.Since(start))
	}
	return acquisition.NewResource(fmt.Sprintf("screen-%s.png", start.Format("20060102-150405")), buf.Bytes())
}

// Stats returns counters since construction.
func (s *Service) Stats() Stats {
	st := Stats{Captures: s.captures.Load(), Failures: s.failures.Load()}
	if st.Captures > 0 {
		st.AvgCapture = time.Duration(s.captureNanos.Load() / st.Captures)
	}
	if ns := s.last.Load(); ns != 0 {
		st.LastCapture = time.Unix(0, ns)
	}
	return st
}
