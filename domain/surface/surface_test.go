package surface

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeContainer struct {
	w, h      int
	presented int
	last      image.Image
}

func (c *fakeContainer) Size() (int, int) { return c.w, c.h }
func (c *fakeContainer) Present(img image.Image) {
	c.presented++
	c.last = img
}

type fakeResizes struct {
	subs    map[int]func()
	next    int
	cancels int
}

func (r *fakeResizes) OnResize(fn func()) func() {
	if r.subs == nil {
		r.subs = map[int]func(){}
	}
	id := r.next
	r.next++
	r.subs[id] = fn
	return func() {
		delete(r.subs, id)
		r.cancels++
	}
}

func (r *fakeResizes) fire() {
	for _, fn := range r.subs {
		fn()
	}
}

type fakeEngine struct {
	options  []Option
	resizes  int
	disposed bool
}

func (e *fakeEngine) SetOption(opt Option) { e.options = append(e.options, opt) }
func (e *fakeEngine) Resize()              { e.resizes++ }
func (e *fakeEngine) Dispose()             { e.disposed = true }

type engineLog struct{ engines []*fakeEngine }

func (l *engineLog) factory(Container) Engine {
	e := &fakeEngine{}
	l.engines = append(l.engines, e)
	return e
}

func sampleResult() *restore.Result {
	return &restore.Result{
		Matrix: [][]restore.Point{
			{{0, 0, 0}, {1, 0, 0.5}, {2, 0, 1}},
			{{0, 1, 0.25}, {1, 1, 0.75}, {2, 1, 1.5}},
		},
		Peaks: restore.Peaks{Min: 0, Max: 1},
	}
}

func TestColorScale_ClampsToEnds(t *testing.T) {
	s := NewColorScale(0, 1)
	top := DivergingPalette[len(DivergingPalette)-1]
	bottom := DivergingPalette[0]
	if got := s.At(1.5); got != top {
		t.Fatalf("z above max: got %s want %s", Hex(got), Hex(top))
	}
	if got := s.At(1); got != top {
		t.Fatalf("z at max: got %s want %s", Hex(got), Hex(top))
	}
	if got := s.At(-3); got != bottom {
		t.Fatalf("z below min: got %s want %s", Hex(got), Hex(bottom))
	}
	if got := s.At(0.5); got != DivergingPalette[5] {
		t.Fatalf("midpoint: got %s want %s", Hex(got), Hex(DivergingPalette[5]))
	}
}

func TestColorScale_DegenerateRangeUsesMiddle(t *testing.T) {
	s := NewColorScale(2, 2)
	for _, v := range []float64{-1, 2, 10} {
		if got := s.At(v); got != DivergingPalette[5] {
			t.Fatalf("At(%v) = %s, want middle stop", v, Hex(got))
		}
	}
}

func TestColorScale_Palette(t *testing.T) {
	if len(DivergingPalette) != 11 {
		t.Fatalf("palette has %d stops", len(DivergingPalette))
	}
	if Hex(DivergingPalette[0]) != "#313695" || Hex(DivergingPalette[10]) != "#a50026" {
		t.Fatalf("unexpected ends %s..%s", Hex(DivergingPalette[0]), Hex(DivergingPalette[10]))
	}
}

func TestBuildOption_PeaksAndAxes(t *testing.T) {
	res := sampleResult()
	opt := BuildOption(res)
	if opt.Scale.Min != 0 || opt.Scale.Max != 1 {
		t.Fatalf("scale bounds %v..%v", opt.Scale.Min, opt.Scale.Max)
	}
	if opt.Axes[0].Min != 0 || opt.Axes[0].Max != 2 {
		t.Fatalf("x axis %+v", opt.Axes[0])
	}
	if opt.Axes[2].Max != 1.5 {
		t.Fatalf("z axis %+v", opt.Axes[2])
	}
	top := DivergingPalette[len(DivergingPalette)-1]
	if got := opt.VertexColor(res.Matrix[1][2]); got != top {
		t.Fatalf("vertex above peaks got %s want %s", Hex(got), Hex(top))
	}
	if opt.Camera.Distance != 120 || opt.Camera.Alpha != 40 || opt.Camera.Beta != 70 {
		t.Fatalf("camera %+v", opt.Camera)
	}
	if !opt.Wireframe {
		t.Fatal("wireframe off")
	}
}

func TestBuildOption_NilIsDefault(t *testing.T) {
	opt := BuildOption(nil)
	if opt.Data != nil {
		t.Fatal("default scene carries data")
	}
	if opt.Background != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("background %+v", opt.Background)
	}
}

func TestRenderer_SingleEnginePerMount(t *testing.T) {
	var log engineLog
	r := NewRenderer(discardLogger(), log.factory)
	c := &fakeContainer{w: 200, h: 100}
	rs := &fakeResizes{}

	r.Mount(c, rs)
	r.Mount(c, rs)
	for i := 0; i < 5; i++ {
		rs.fire()
	}
	r.SetData(sampleResult())

	if len(log.engines) != 1 {
		t.Fatalf("engines created: %d", len(log.engines))
	}
	e := log.engines[0]
	if e.resizes != 5 {
		t.Fatalf("resizes forwarded: %d", e.resizes)
	}
	if len(rs.subs) != 1 {
		t.Fatalf("resize subscriptions: %d", len(rs.subs))
	}
	if len(e.options) != 2 {
		t.Fatalf("options applied: %d (mount + data)", len(e.options))
	}
}

func TestRenderer_ResizeAfterUnmountIsNoop(t *testing.T) {
	var log engineLog
	r := NewRenderer(discardLogger(), log.factory)
	rs := &fakeResizes{}
	r.Mount(&fakeContainer{w: 10, h: 10}, rs)
	r.Unmount()

	r.Resize()
	rs.fire()
	r.Unmount()

	e := log.engines[0]
	if !e.disposed {
		t.Fatal("engine not disposed")
	}
	if e.resizes != 0 {
		t.Fatalf("resize reached disposed engine: %d", e.resizes)
	}
	if rs.cancels != 1 || len(rs.subs) != 0 {
		t.Fatalf("subscription not released: cancels=%d subs=%d", rs.cancels, len(rs.subs))
	}
	if r.Mounted() {
		t.Fatal("still mounted")
	}
}

func TestRenderer_DataDoesNotRecreateEngine(t *testing.T) {
	var log engineLog
	r := NewRenderer(discardLogger(), log.factory)
	r.Mount(&fakeContainer{w: 10, h: 10}, nil)

	a, b := sampleResult(), sampleResult()
	b.Peaks = restore.Peaks{Min: -1, Max: 2}
	r.SetData(a)
	r.SetData(a)
	r.SetData(b)

	if len(log.engines) != 1 {
		t.Fatalf("engines created: %d", len(log.engines))
	}
	opts := log.engines[0].options
	if len(opts) != 3 {
		t.Fatalf("options applied: %d", len(opts))
	}
	if last := opts[len(opts)-1]; last.Scale.Min != -1 || last.Scale.Max != 2 {
		t.Fatalf("last scale %v..%v", last.Scale.Min, last.Scale.Max)
	}
}

func TestRenderer_DataBeforeMountAppliesOnMount(t *testing.T) {
	var log engineLog
	r := NewRenderer(discardLogger(), log.factory)
	r.SetData(sampleResult())
	if len(log.engines) != 0 {
		t.Fatal("engine created without mount")
	}
	r.Mount(&fakeContainer{w: 10, h: 10}, nil)
	opts := log.engines[0].options
	if len(opts) != 1 || len(opts[0].Data) != 2 {
		t.Fatalf("mount did not apply pending data: %+v", opts)
	}

	r.Unmount()
	r.Mount(&fakeContainer{w: 10, h: 10}, nil)
	if len(log.engines) != 2 {
		t.Fatalf("remount engines: %d", len(log.engines))
	}
	if len(log.engines[1].options) != 1 {
		t.Fatal("remount did not reapply data")
	}
}

func TestRasterEngine_DrawsSurface(t *testing.T) {
	c := &fakeContainer{w: 160, h: 120}
	e := NewRasterEngine(c, discardLogger())
	if c.presented != 1 {
		t.Fatalf("initial frames: %d", c.presented)
	}
	e.SetOption(BuildOption(sampleResult()))
	img, ok := c.last.(*image.RGBA)
	if !ok {
		t.Fatalf("frame type %T", c.last)
	}
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 120 {
		t.Fatalf("frame bounds %v", img.Bounds())
	}
	white := color.RGBA{255, 255, 255, 255}
	painted := 0
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			if img.RGBAAt(x, y) != white {
				painted++
			}
		}
	}
	if painted < 100 {
		t.Fatalf("only %d painted pixels", painted)
	}
}

func TestRasterEngine_ResizeIdempotent(t *testing.T) {
	c := &fakeContainer{w: 50, h: 40}
	e := NewRasterEngine(c, nil)
	e.Resize()
	e.Resize()
	if e.Frames() != 1 {
		t.Fatalf("frames after same-size resizes: %d", e.Frames())
	}
	c.w = 80
	e.Resize()
	if e.Frames() != 2 {
		t.Fatalf("frames after growth: %d", e.Frames())
	}
	e.Dispose()
	e.SetOption(DefaultOption())
	e.Resize()
	if e.Frames() != 2 {
		t.Fatalf("disposed engine drew: %d", e.Frames())
	}
}

func TestRasterEngine_ZeroSizeSkipsFrames(t *testing.T) {
	c := &fakeContainer{}
	e := NewRasterEngine(c, nil)
	e.SetOption(BuildOption(sampleResult()))
	if c.presented != 0 {
		t.Fatalf("presented on zero size: %d", c.presented)
	}
}

func TestRasterEngine_RevisitedSizeUsesCache(t *testing.T) {
	c := &fakeContainer{w: 60, h: 40}
	e := NewRasterEngine(c, nil)
	c.w = 90
	e.Resize()
	c.w = 60
	e.Resize()
	if e.Frames() != 3 || e.Renders() != 2 {
		t.Fatalf("frames %d renders %d, want 3 and 2", e.Frames(), e.Renders())
	}
	e.SetOption(BuildOption(sampleResult()))
	if e.Renders() != 3 {
		t.Fatalf("new scene served from cache: renders %d", e.Renders())
	}
	c.w = 90
	e.Resize()
	if e.Renders() != 4 {
		t.Fatalf("stale frame reused after scene change: renders %d", e.Renders())
	}
}
