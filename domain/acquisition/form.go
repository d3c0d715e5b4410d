// Package acquisition owns image intake: picking a resource, probing it and
// building the submission payload.
package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Fettser/diplom-deploy/domain/mask"
	"github.com/Fettser/diplom-deploy/domain/restore"
)

// Prober resolves natural dimensions of a resource.
type Prober func(ctx context.Context, res *Resource) (Dimensions, error)

// Decoder converts a resource into a preview.
type Decoder func(ctx context.Context, res *Resource) (Preview, error)

type resultKind int

const (
	resultProbe resultKind = iota + 1
	resultDecode
)

type intakeResult struct {
	id      uuid.UUID
	kind    resultKind
	dims    Dimensions
	preview Preview
	err     error
}

// derived is everything computed from one selection. It is replaced as a
// whole when the first result of a newer selection lands.
type derived struct {
	id         uuid.UUID
	dims       *Dimensions
	preview    *Preview
	probeDone  bool
	decodeDone bool
	probeErr   error
	decodeErr  error
}

// Form is the acquisition state machine. All methods except the async workers
// it spawns must be called from one goroutine (the UI thread); worker results
// are applied by Process.
type Form struct {
	logger  *slog.Logger
	probe   Prober
	decode  Decoder
	ctx     context.Context
	cancel  context.CancelFunc
	results chan intakeResult
	done    chan struct{}
	closed  bool

	state     FormState
	file      *Resource
	derived   derived
	mask      MaskConfig
	version   uint64
	listeners []FormStateListener
}

// NewForm builds a form using probe and decode; nil selects the package defaults.
func NewForm(logger *slog.Logger, probe Prober, decode Decoder) *Form {
	if probe == nil {
		probe = ProbeDimensions
	}
	if decode == nil {
		decode = DecodePreview
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Form{
		logger:  logger,
		probe:   probe,
		decode:  decode,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan intakeResult, 8),
		done:    make(chan struct{}),
		state:   StateNoFile,
	}
}

// AddListener registers a transition listener.
func (f *Form) AddListener(l FormStateListener) {
	if f == nil || l == nil {
		return
	}
	f.listeners = append(f.listeners, l)
}

// Select makes res the current selection and starts probing it. Results of
// any earlier selection still in flight are discarded when they arrive.
func (f *Form) Select(res *Resource) {
	if f == nil || f.closed || res == nil {
		return
	}
	f.file = res
	f.changed()
	f.transition(StateProbing)
	if f.logger != nil {
		f.logger.Debug("form.select", "file", res.Name, "mime", res.MIME, "bytes", len(res.Data), "id", res.ID)
	}
	go f.run(res, resultProbe)
	go f.run(res, resultDecode)
}

// Remove clears the selection and every derived value.
func (f *Form) Remove() {
	if f == nil || f.closed {
		return
	}
	f.file = nil
	f.derived = derived{}
	f.mask = MaskConfig{}
	f.changed()
	f.transition(StateNoFile)
}

func (f *Form) run(res *Resource, kind resultKind) {
	r := intakeResult{id: res.ID, kind: kind}
	func() {
		// a panicking decoder still settles the selection
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("intake worker panic: %v", p)
			}
		}()
		switch kind {
		case resultProbe:
			r.dims, r.err = f.probe(f.ctx, res)
		case resultDecode:
			r.preview, r.err = f.decode(f.ctx, res)
		}
	}()
	select {
	case f.results <- r:
	case <-f.done:
	}
}

// Process applies finished worker results without blocking. It reports
// whether anything visible changed.
func (f *Form) Process() bool {
	if f == nil || f.closed {
		return false
	}
	changed := false
	for {
		select {
		case r := <-f.results:
			if f.apply(r) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (f *Form) apply(r intakeResult) bool {
	if f.file == nil || r.id != f.file.ID {
		if f.logger != nil {
			f.logger.Debug("form.stale_result", "id", r.id, "kind", int(r.kind))
		}
		return false
	}
	if f.derived.id != r.id {
		f.derived = derived{id: r.id}
	}
	switch r.kind {
	case resultProbe:
		f.derived.probeDone = true
		f.derived.probeErr = r.err
		if r.err == nil {
			d := r.dims
			f.derived.dims = &d
		} else {
			f.derived.dims = nil
		}
	case resultDecode:
		f.derived.decodeDone = true
		f.derived.decodeErr = r.err
		if r.err == nil {
			p := r.preview
			f.derived.preview = &p
		} else {
			f.derived.preview = nil
		}
	}
	if r.err != nil && f.logger != nil {
		f.logger.Warn("form.decode_failed", "file", f.file.Name, "error", r.err)
	}
	f.changed()
	if f.derived.probeDone && f.derived.decodeDone {
		f.transition(StateReady)
	}
	return true
}

// Close stops result application; in-flight workers finish and are dropped.
func (f *Form) Close() {
	if f == nil || f.closed {
		return
	}
	f.closed = true
	close(f.done)
	f.cancel()
}

func (f *Form) transition(next FormState) {
	prev := f.state
	if prev == next && next != StateProbing {
		return
	}
	f.state = next
	if f.logger != nil {
		f.logger.Debug("form state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range f.listeners {
		l(prev, next)
	}
}

func (f *Form) changed() { f.version++ }

// State returns the current intake state.
func (f *Form) State() FormState {
	if f == nil {
		return StateNoFile
	}
	return f.state
}

// Version increments on every visible change.
func (f *Form) Version() uint64 {
	if f == nil {
		return 0
	}
	return f.version
}

// File returns the current selection or nil.
func (f *Form) File() *Resource {
	if f == nil {
		return nil
	}
	return f.file
}

// Stale reports whether the displayed derived data belongs to an earlier selection.
func (f *Form) Stale() bool {
	if f == nil || f.file == nil {
		return false
	}
	return f.derived.id != f.file.ID
}

// Dimensions returns the displayed natural size.
func (f *Form) Dimensions() (Dimensions, bool) {
	if f == nil || f.derived.dims == nil {
		return Dimensions{}, false
	}
	return *f.derived.dims, true
}

// Preview returns the displayed preview.
func (f *Form) Preview() (Preview, bool) {
	if f == nil || f.derived.preview == nil {
		return Preview{}, false
	}
	return *f.derived.preview, true
}

// DecodeError returns the last probe or decode failure of the displayed selection.
func (f *Form) DecodeError() error {
	if f == nil {
		return nil
	}
	if f.derived.probeErr != nil {
		return f.derived.probeErr
	}
	return f.derived.decodeErr
}

// Mask returns the mask configuration.
func (f *Form) Mask() MaskConfig {
	if f == nil {
		return MaskConfig{}
	}
	return f.mask
}

// MaskAvailable reports whether the mask toggle is usable (a preview is shown).
func (f *Form) MaskAvailable() bool {
	return f != nil && f.file != nil && f.derived.preview != nil
}

// MaskActive reports whether the mask applies to the preview and payload.
func (f *Form) MaskActive() bool {
	return f.MaskAvailable() && f.mask.Enabled
}

// SetMaskEnabled toggles the mask. Enabling requires a preview.
func (f *Form) SetMaskEnabled(enabled bool) bool {
	if f == nil || f.closed {
		return false
	}
	if enabled && !f.MaskAvailable() {
		return false
	}
	if f.mask.Enabled != enabled {
		f.mask.Enabled = enabled
		f.changed()
	}
	return true
}

// SetRadius stores r when it is a finite, non-negative number and reports
// whether it was accepted.
func (f *Form) SetRadius(r float64) bool {
	if f == nil || f.closed {
		return false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return false
	}
	if f.mask.Radius != r {
		f.mask.Radius = r
		f.changed()
	}
	return true
}

// SetRadiusInput parses operator text. Empty input means 0; anything that is
// not a finite non-negative number leaves the radius unchanged.
func (f *Form) SetRadiusInput(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return f.SetRadius(0)
	}
	v, err := restore.ParseNumber(s)
	if err != nil {
		return false
	}
	return f.SetRadius(v)
}

// Overlay computes the preview geometry for displayW. It is available only
// when dimensions and preview of the same selection are known.
func (f *Form) Overlay(displayW float64) (mask.Geometry, bool) {
	if f == nil || f.file == nil || f.derived.dims == nil || f.derived.preview == nil {
		return mask.Geometry{}, false
	}
	if f.derived.dims.Width <= 0 || displayW <= 0 {
		return mask.Geometry{}, false
	}
	return mask.Compute(f.derived.dims.Width, f.derived.dims.Height, displayW, f.mask.Radius), true
}

// CanSubmit reports whether a payload can be built.
func (f *Form) CanSubmit() bool {
	return f != nil && !f.closed && f.file != nil
}

// Payload assembles the submission bundle for the current selection.
func (f *Form) Payload(params Params) (*restore.Payload, error) {
	if !f.CanSubmit() {
		return nil, restore.ErrNoFile
	}
	p := &restore.Payload{
		FileName:    f.file.Name,
		ContentType: f.file.MIME,
		File:        f.file.Data,
	}
	if f.MaskActive() {
		r := f.mask.Radius
		p.Radius = &r
	}
	var err error
	fields := []struct {
		name string
		raw  string
		dst  **float64
	}{
		{restore.FieldLambda, params.Lambda, &p.Lambda},
		{restore.FieldXAngle, params.XAngle, &p.XAngle},
		{restore.FieldYAngle, params.YAngle, &p.YAngle},
		{restore.FieldXSize, params.XSize, &p.XSize},
		{restore.FieldYSize, params.YSize, &p.YSize},
	}
	for _, fl := range fields {
		if *fl.dst, err = restore.ParseField(fl.name, fl.raw); err != nil {
			return nil, err
		}
	}
	return p, nil
}
