package model

import (
	"errors"
	"testing"
	"time"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

func TestRequestModel_SingleLoading(t *testing.T) {
	m := NewRequestModel()
	base := time.Unix(0, 0)

	seq, ok := m.Begin(base)
	if !ok || seq != 1 {
		t.Fatalf("first begin: seq=%d ok=%v", seq, ok)
	}
	if _, ok := m.Begin(base); ok {
		t.Fatal("second begin accepted while loading")
	}
	if m.State() != restore.StateLoading {
		t.Fatalf("state %v", m.State())
	}
	if got := m.Elapsed(base.Add(3 * time.Second)); got != 3*time.Second {
		t.Fatalf("elapsed %v", got)
	}

	res := &restore.Result{Peaks: restore.Peaks{Min: 0, Max: 1}}
	if !m.Succeed(seq, res, base.Add(4*time.Second)) {
		t.Fatal("completion rejected")
	}
	if m.Result() != res || m.State() != restore.StateSucceeded {
		t.Fatalf("after success state=%v result=%v", m.State(), m.Result())
	}
	if got := m.Elapsed(base.Add(time.Hour)); got != 4*time.Second {
		t.Fatalf("finished elapsed %v", got)
	}
}

func TestRequestModel_FailureClearsPrevious(t *testing.T) {
	m := NewRequestModel()
	now := time.Now()
	seq, _ := m.Begin(now)
	res := &restore.Result{}
	m.Succeed(seq, res, now)

	seq, ok := m.Begin(now)
	if !ok {
		t.Fatal("begin after success refused")
	}
	if m.Result() != nil {
		t.Fatal("result still current while loading")
	}
	if m.Previous() != res {
		t.Fatal("previous result not retained while loading")
	}

	boom := errors.New("boom")
	m.Fail(seq, boom, now)
	if m.State() != restore.StateError || !m.Failed() {
		t.Fatalf("state %v", m.State())
	}
	if m.Result() != nil || m.Previous() != nil {
		t.Fatal("failure kept a result")
	}
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("err %v", m.Err())
	}

	if _, ok := m.Begin(now); !ok {
		t.Fatal("begin after error refused")
	}
	if m.Err() != nil {
		t.Fatal("error flag survived a new submission")
	}
}

func TestRequestModel_StaleAndClosed(t *testing.T) {
	m := NewRequestModel()
	now := time.Now()
	seq, _ := m.Begin(now)
	if m.Succeed(seq+1, &restore.Result{}, now) {
		t.Fatal("accepted a completion for an unknown sequence")
	}
	m.Close()
	if m.Succeed(seq, &restore.Result{}, now) || m.Fail(seq, errors.New("x"), now) {
		t.Fatal("accepted a completion after close")
	}
	if _, ok := m.Begin(now); ok {
		t.Fatal("begin after close")
	}
	if m.State() != restore.StateLoading {
		t.Fatalf("state changed after close: %v", m.State())
	}
}

func TestRequestModel_NilSafe(t *testing.T) {
	var m *RequestModel
	if m.State() != restore.StateIdle || m.Result() != nil || m.Loading() {
		t.Fatal("nil model not idle")
	}
	if _, ok := m.Begin(time.Now()); ok {
		t.Fatal("nil model began")
	}
}
