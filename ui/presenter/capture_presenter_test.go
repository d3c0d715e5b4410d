package presenter

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
)

type mockSnapshotter struct {
	mu      sync.Mutex
	regions []image.Rectangle
	err     error
	gate    chan struct{}
}

func (s *mockSnapshotter) Snapshot(r image.Rectangle) (*acquisition.Resource, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.regions = append(s.regions, r)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &acquisition.Resource{Name: "screen.png", MIME: "image/png", Data: []byte{1}}, nil
}

type mockRegion struct{ r *image.Rectangle }

func (m mockRegion) ActiveRect() *image.Rectangle { return m.r }

type mockSink struct {
	got     []*acquisition.Resource
	current *acquisition.Resource
}

func (m *mockSink) SelectResource(res *acquisition.Resource) {
	m.got = append(m.got, res)
	m.current = res
}

func (m *mockSink) Selection() *acquisition.Resource { return m.current }

type mockCaptureView struct{ texts []string }

func (v *mockCaptureView) SetCaptureStatus(text string) { v.texts = append(v.texts, text) }

func TestCapturePresenter_GrabSelectsResource(t *testing.T) {
	rect := image.Rect(5, 5, 105, 85)
	svc := &mockSnapshotter{gate: make(chan struct{})}
	sink := &mockSink{}
	view := &mockCaptureView{}
	c := NewCapturePresenter(svc, mockRegion{&rect}, sink, view, discardLogger())
	defer c.Close()

	if !c.Grab() {
		t.Fatal("grab refused")
	}
	if c.Grab() {
		t.Fatal("second grab accepted while busy")
	}
	close(svc.gate)
	waitFor(t, c.Tick, func() bool { return len(sink.got) == 1 })
	if c.Busy() {
		t.Fatal("still busy after result")
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.regions) != 1 || svc.regions[0] != rect {
		t.Fatalf("regions %v", svc.regions)
	}
	if last := view.texts[len(view.texts)-1]; last != "" {
		t.Fatalf("status after success %q", last)
	}
}

func TestCapturePresenter_FailureReported(t *testing.T) {
	svc := &mockSnapshotter{err: errors.New("no display")}
	sink := &mockSink{}
	view := &mockCaptureView{}
	c := NewCapturePresenter(svc, mockRegion{}, sink, view, discardLogger())
	defer c.Close()

	c.Grab()
	waitFor(t, c.Tick, func() bool { return !c.Busy() })
	if len(sink.got) != 0 {
		t.Fatal("failed grab reached the form")
	}
	if last := view.texts[len(view.texts)-1]; last != "Screen grab failed" {
		t.Fatalf("status %q", last)
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.regions[0] != (image.Rectangle{}) {
		t.Fatalf("full screen expected, got %v", svc.regions[0])
	}
}

func TestCapturePresenter_CloseDropsGrab(t *testing.T) {
	svc := &mockSnapshotter{gate: make(chan struct{})}
	sink := &mockSink{}
	c := NewCapturePresenter(svc, nil, sink, nil, nil)
	c.Grab()
	c.Close()
	close(svc.gate)
	time.Sleep(10 * time.Millisecond)
	c.Tick()
	if len(sink.got) != 0 {
		t.Fatal("grab applied after close")
	}
}

func TestCapturePresenter_DropsGrabAfterNewerSelection(t *testing.T) {
	svc := &mockSnapshotter{gate: make(chan struct{})}
	sink := &mockSink{}
	view := &mockCaptureView{}
	c := NewCapturePresenter(svc, mockRegion{}, sink, view, discardLogger())
	defer c.Close()

	if !c.Grab() {
		t.Fatal("grab refused")
	}
	opened := &acquisition.Resource{Name: "opened.png", MIME: "image/png", Data: []byte{2}}
	sink.SelectResource(opened)
	close(svc.gate)
	waitFor(t, c.Tick, func() bool { return !c.Busy() })
	if len(sink.got) != 1 || sink.current != opened {
		t.Fatalf("late grab replaced the opened file: %v", sink.got)
	}
}

func TestCapturePresenter_DropsGrabAfterRemove(t *testing.T) {
	svc := &mockSnapshotter{gate: make(chan struct{})}
	sink := &mockSink{current: &acquisition.Resource{Name: "a.png"}}
	c := NewCapturePresenter(svc, mockRegion{}, sink, nil, discardLogger())
	defer c.Close()

	c.Grab()
	sink.current = nil
	close(svc.gate)
	waitFor(t, c.Tick, func() bool { return !c.Busy() })
	if len(sink.got) != 0 || sink.current != nil {
		t.Fatal("late grab restored a selection after remove")
	}
}

func TestCapturePresenter_GrabReplacesUnchangedSelection(t *testing.T) {
	prev := &acquisition.Resource{Name: "a.png"}
	sink := &mockSink{current: prev}
	c := NewCapturePresenter(&mockSnapshotter{}, mockRegion{}, sink, nil, discardLogger())
	defer c.Close()

	c.Grab()
	waitFor(t, c.Tick, func() bool { return len(sink.got) == 1 })
	if sink.current == prev || sink.current.Name != "screen.png" {
		t.Fatalf("selection %v", sink.current)
	}
}

type labelView struct{ labels []string }

func (v *labelView) SetStateLabel(s string) { v.labels = append(v.labels, s) }

func TestStatePresenter_ShowsLatestTransition(t *testing.T) {
	v := &labelView{}
	p := NewStatePresenter(v)
	p.Tick(time.Now())
	p.OnState(acquisition.StateNoFile, acquisition.StateProbing)
	p.OnState(acquisition.StateProbing, acquisition.StateReady)
	p.Tick(time.Now())
	p.Tick(time.Now())
	want := []string{"State: no file", "State: ready"}
	if len(v.labels) != len(want) {
		t.Fatalf("labels %v", v.labels)
	}
	for i := range want {
		if v.labels[i] != want[i] {
			t.Fatalf("labels %v", v.labels)
		}
	}
}
