package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/ui/model"
)

// PayloadBuilder exposes the submission side of the intake form.
type PayloadBuilder interface {
	CanSubmit() bool
	Payload(params acquisition.Params) (*restore.Payload, error)
}

// SubmitView toggles the submit control.
type SubmitView interface {
	SetSubmitEnabled(enabled bool)
}

type restoreOutcome struct {
	seq      uint64
	result   *restore.Result
	err      error
	duration time.Duration
}

// RestorePresenter runs submissions on a worker goroutine and applies their
// outcomes to the request model on the UI thread. Only the newest submission
// may complete; anything older or arriving after Close is dropped.
type RestorePresenter struct {
	form    PayloadBuilder
	client  restore.Restorer
	model   *model.RequestModel
	params  func() acquisition.Params
	view    SubmitView
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	resultCh chan restoreOutcome
	done     chan struct{}
	closed   bool

	submitShown bool
	submitKnown bool
}

// NewRestorePresenter wires a presenter. params reads the acquisition fields
// at submit time. A timeout of zero or less leaves requests unbounded, the
// same as the client's zero timeout.
func NewRestorePresenter(form PayloadBuilder, client restore.Restorer, m *model.RequestModel, params func() acquisition.Params, view SubmitView, timeout time.Duration, logger *slog.Logger) *RestorePresenter {
	if params == nil {
		params = func() acquisition.Params { return acquisition.Params{} }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RestorePresenter{
		form:     form,
		client:   client,
		model:    m,
		params:   params,
		view:     view,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		resultCh: make(chan restoreOutcome, 1),
		done:     make(chan struct{}),
	}
}

// CanSubmit reports whether Submit would start a request.
func (p *RestorePresenter) CanSubmit() bool {
	return p != nil && !p.closed && p.form != nil && p.form.CanSubmit() && !p.model.Loading()
}

// Submit starts a restoration for the current selection. It does nothing
// without a file or while a request is in flight. A payload that cannot be
// built fails the submission without contacting the server.
func (p *RestorePresenter) Submit() bool {
	if !p.CanSubmit() || p.client == nil {
		return false
	}
	payload, buildErr := p.form.Payload(p.params())
	seq, ok := p.model.Begin(p.now())
	if !ok {
		return false
	}
	if buildErr != nil {
		if p.logger != nil {
			p.logger.Warn("restore rejected", "seq", seq, "error", buildErr)
		}
		p.model.Fail(seq, buildErr, p.now())
		p.syncView()
		return true
	}
	if p.logger != nil {
		p.logger.Info("restore submitted", "seq", seq, "file", payload.FileName, "fields", len(payload.Fields()))
	}
	go p.run(seq, payload)
	p.syncView()
	return true
}

func (p *RestorePresenter) run(seq uint64, payload *restore.Payload) {
	out := restoreOutcome{seq: seq}
	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				out.err = fmt.Errorf("restore worker panic: %v", r)
			}
		}()
		ctx, cancel := p.requestContext()
		defer cancel()
		out.result, out.err = p.client.Restore(ctx, payload)
	}()
	out.duration = time.Since(start)
	select {
	case p.resultCh <- out:
	case <-p.done:
	}
}

func (p *RestorePresenter) requestContext() (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(p.ctx, p.timeout)
	}
	return context.WithCancel(p.ctx)
}

// Tick applies a finished submission, if any.
func (p *RestorePresenter) Tick() {
	if p == nil || p.closed {
		return
	}
	for {
		select {
		case out := <-p.resultCh:
			p.handle(out)
		default:
			p.syncView()
			return
		}
	}
}

func (p *RestorePresenter) handle(out restoreOutcome) {
	now := p.now()
	var accepted bool
	if out.err != nil {
		accepted = p.model.Fail(out.seq, out.err, now)
	} else {
		accepted = p.model.Succeed(out.seq, out.result, now)
	}
	if p.logger == nil {
		return
	}
	switch {
	case !accepted:
		p.logger.Debug("restore.stale", "seq", out.seq)
	case out.err != nil:
		p.logger.Error("restore failed", "seq", out.seq, "took", out.duration, "error", out.err)
	default:
		p.logger.Info("restore done", "seq", out.seq, "took", out.duration, "rows", out.result.Rows(), "points", out.result.Points())
	}
}

func (p *RestorePresenter) syncView() {
	if p.view == nil {
		return
	}
	enabled := p.CanSubmit()
	if p.submitKnown && enabled == p.submitShown {
		return
	}
	p.submitKnown, p.submitShown = true, enabled
	p.view.SetSubmitEnabled(enabled)
}

// Close stops applying outcomes and cancels the in-flight request.
func (p *RestorePresenter) Close() {
	if p == nil || p.closed {
		return
	}
	p.closed = true
	p.model.Close()
	close(p.done)
	p.cancel()
}
