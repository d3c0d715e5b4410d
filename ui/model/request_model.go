package model

import (
	"time"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

// RequestModel tracks the lifecycle of restoration submissions. At most one
// request is in flight; every Begin hands out a sequence number and only the
// completion carrying the newest one is accepted.
// It is owned by the UI thread and performs no synchronisation.
type RequestModel struct {
	state    restore.State
	seq      uint64
	closed   bool
	current  *restore.Result
	previous *restore.Result
	lastErr  error
	started  time.Time
	finished time.Time
}

// NewRequestModel returns an idle model.
func NewRequestModel() *RequestModel { return &RequestModel{} }

// Begin enters Loading and returns the sequence of the new submission. It
// refuses while a request is already loading or after Close.
func (m *RequestModel) Begin(now time.Time) (uint64, bool) {
	if m == nil || m.closed || m.state == restore.StateLoading {
		return 0, false
	}
	if m.current != nil {
		m.previous = m.current
		m.current = nil
	}
	m.lastErr = nil
	m.seq++
	m.state = restore.StateLoading
	m.started = now
	m.finished = time.Time{}
	return m.seq, true
}

// Succeed stores res as the current result when seq is still the newest
// submission. It reports whether the completion was accepted.
func (m *RequestModel) Succeed(seq uint64, res *restore.Result, now time.Time) bool {
	if !m.accepts(seq) {
		return false
	}
	m.current = res
	m.previous = nil
	m.state = restore.StateSucceeded
	m.finished = now
	return true
}

// Fail records a failed submission. The previously retained result is dropped.
func (m *RequestModel) Fail(seq uint64, err error, now time.Time) bool {
	if !m.accepts(seq) {
		return false
	}
	m.current = nil
	m.previous = nil
	m.lastErr = err
	m.state = restore.StateError
	m.finished = now
	return true
}

func (m *RequestModel) accepts(seq uint64) bool {
	return m != nil && !m.closed && m.state == restore.StateLoading && seq == m.seq
}

// Close makes every later completion a no-op.
func (m *RequestModel) Close() {
	if m == nil {
		return
	}
	m.closed = true
}

// State returns the lifecycle state.
func (m *RequestModel) State() restore.State {
	if m == nil {
		return restore.StateIdle
	}
	return m.state
}

// Loading is shorthand for State() == StateLoading.
func (m *RequestModel) Loading() bool { return m.State() == restore.StateLoading }

// Failed is shorthand for State() == StateError.
func (m *RequestModel) Failed() bool { return m.State() == restore.StateError }

// Result returns the current result; nil while loading or after a failure.
func (m *RequestModel) Result() *restore.Result {
	if m == nil {
		return nil
	}
	return m.current
}

// Previous returns the last successful result retained during Loading.
func (m *RequestModel) Previous() *restore.Result {
	if m == nil {
		return nil
	}
	return m.previous
}

// Err returns the failure of the last submission, if any.
func (m *RequestModel) Err() error {
	if m == nil {
		return nil
	}
	return m.lastErr
}

// Seq returns the sequence of the newest submission.
func (m *RequestModel) Seq() uint64 {
	if m == nil {
		return 0
	}
	return m.seq
}

// Elapsed returns the running time of the loading request, or the duration of
// the last finished one.
func (m *RequestModel) Elapsed(now time.Time) time.Duration {
	if m == nil || m.started.IsZero() {
		return 0
	}
	if m.state == restore.StateLoading {
		return now.Sub(m.started)
	}
	return m.finished.Sub(m.started)
}
