package presenter

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/domain/surface"
)

type fakeRenderer struct {
	mounted  bool
	mounts   int
	unmounts int
	data     []*restore.Result
}

func (r *fakeRenderer) Mount(surface.Container, surface.ResizeSource) {
	if r.mounted {
		return
	}
	r.mounted = true
	r.mounts++
}

func (r *fakeRenderer) Unmount() {
	if !r.mounted {
		return
	}
	r.mounted = false
	r.unmounts++
}

func (r *fakeRenderer) SetData(res *restore.Result) { r.data = append(r.data, res) }
func (r *fakeRenderer) Mounted() bool               { return r.mounted }

type statusCall struct {
	status Status
	text   string
}

type fakeViewerView struct {
	calls []statusCall
	last  statusCall
}

func (v *fakeViewerView) ShowStatus(s Status, text string) {
	v.last = statusCall{s, text}
	v.calls = append(v.calls, v.last)
}
func (v *fakeViewerView) SurfaceContainer() surface.Container { return nopContainer{} }
func (v *fakeViewerView) Resizes() surface.ResizeSource       { return nil }

type nopContainer struct{}

func (nopContainer) Size() (int, int)    { return 10, 10 }
func (nopContainer) Present(image.Image) {}

type fakeRequest struct {
	loading, failed bool
	result          *restore.Result
}

func (r *fakeRequest) Loading() bool                   { return r.loading }
func (r *fakeRequest) Failed() bool                    { return r.failed }
func (r *fakeRequest) Result() *restore.Result         { return r.result }
func (r *fakeRequest) Elapsed(time.Time) time.Duration { return 7 * time.Second }

func TestStatusOf_Precedence(t *testing.T) {
	cases := []struct {
		loading, failed, data bool
		want                  Status
	}{
		{false, false, false, StatusNoData},
		{true, false, false, StatusLoading},
		{true, true, true, StatusLoading},
		{true, false, true, StatusLoading},
		{false, true, true, StatusError},
		{false, true, false, StatusError},
		{false, false, true, StatusSurface},
	}
	for _, c := range cases {
		if got := StatusOf(c.loading, c.failed, c.data); got != c.want {
			t.Errorf("StatusOf(%v,%v,%v) = %v, want %v", c.loading, c.failed, c.data, got, c.want)
		}
	}
}

func TestViewerPresenter_MountsOnlyForSurface(t *testing.T) {
	req := &fakeRequest{}
	r := &fakeRenderer{}
	v := &fakeViewerView{}
	p := NewViewerPresenter(req, r, v)
	now := time.Now()

	p.Tick(now)
	if v.last.status != StatusNoData || v.last.text != "No data" {
		t.Fatalf("initial status %+v", v.last)
	}
	if r.mounts != 0 {
		t.Fatal("mounted without data")
	}

	req.loading = true
	p.Tick(now)
	if v.last.status != StatusLoading || !strings.Contains(v.last.text, "7s") {
		t.Fatalf("loading status %+v", v.last)
	}

	res := &restore.Result{Matrix: [][]restore.Point{{{0, 0, 0}}}}
	req.loading, req.result = false, res
	p.Tick(now)
	p.Tick(now)
	if !r.mounted || r.mounts != 1 {
		t.Fatalf("mounts %d mounted %v", r.mounts, r.mounted)
	}
	if len(r.data) == 0 || r.data[len(r.data)-1] != res {
		t.Fatal("renderer did not receive the result")
	}

	req.result, req.failed = nil, true
	p.Tick(now)
	if r.mounted || r.unmounts != 1 {
		t.Fatalf("unmounts %d mounted %v", r.unmounts, r.mounted)
	}
	if v.last.status != StatusError {
		t.Fatalf("status %+v", v.last)
	}
}

func TestViewerPresenter_StatusShownOncePerChange(t *testing.T) {
	req := &fakeRequest{}
	v := &fakeViewerView{}
	p := NewViewerPresenter(req, &fakeRenderer{}, v)
	for i := 0; i < 3; i++ {
		p.Tick(time.Now())
	}
	if len(v.calls) != 1 {
		t.Fatalf("status pushed %d times", len(v.calls))
	}
}

func TestViewerPresenter_WithSurfaceRenderer(t *testing.T) {
	req := &fakeRequest{result: sampleResult()}
	engines := 0
	r := surface.NewRenderer(discardLogger(), func(c surface.Container) surface.Engine {
		engines++
		return surface.NewRasterEngine(c, nil)
	})
	p := NewViewerPresenter(req, r, &fakeViewerView{})
	for i := 0; i < 4; i++ {
		p.Tick(time.Now())
	}
	if engines != 1 || !r.Mounted() {
		t.Fatalf("engines %d mounted %v", engines, r.Mounted())
	}
	p.Close()
	if r.Mounted() {
		t.Fatal("close left the surface mounted")
	}
}

func TestViewerPresenter_SurfaceTextIsColsByRows(t *testing.T) {
	// two rows of three points
	res := &restore.Result{Matrix: [][]restore.Point{
		{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}},
	}}
	v := &fakeViewerView{}
	p := NewViewerPresenter(&fakeRequest{result: res}, &fakeRenderer{}, v)
	p.Tick(time.Now())
	if v.last.status != StatusSurface || v.last.text != "3 x 2 points" {
		t.Fatalf("status %+v", v.last)
	}
}
