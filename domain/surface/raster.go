package surface

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// frameCacheSize bounds the frames kept per scene. Resizing a window back and
// forth revisits a handful of sizes.
const frameCacheSize = 4

type frameKey struct{ w, h int }

// RasterEngine is a software engine: perspective projection, painter's
// ordering and flat Lambert shading over the quads of the data grid.
type RasterEngine struct {
	logger    *slog.Logger
	container Container
	opt       Option
	width     int
	height    int
	frame     *image.RGBA
	cache     *lru.Cache[frameKey, *image.RGBA]
	frames    int
	renders   int
	disposed  bool
}

// NewRasterEngine binds an engine to c and draws the default scene.
func NewRasterEngine(c Container, logger *slog.Logger) *RasterEngine {
	cache, _ := lru.New[frameKey, *image.RGBA](frameCacheSize)
	e := &RasterEngine{logger: logger, container: c, opt: DefaultOption(), cache: cache}
	e.width, e.height = c.Size()
	e.render()
	return e
}

// SetOption replaces the scene and redraws.
func (e *RasterEngine) SetOption(opt Option) {
	if e == nil || e.disposed {
		return
	}
	e.opt = opt
	e.cache.Purge()
	e.render()
}

// Resize redraws when the container size changed since the last frame.
func (e *RasterEngine) Resize() {
	if e == nil || e.disposed {
		return
	}
	w, h := e.container.Size()
	if w == e.width && h == e.height && e.frame != nil {
		return
	}
	e.width, e.height = w, h
	e.render()
}

// Dispose drops the container and the frame buffer.
func (e *RasterEngine) Dispose() {
	if e == nil || e.disposed {
		return
	}
	e.disposed = true
	e.container = nil
	e.frame = nil
	e.cache.Purge()
}

// Frames returns how many frames were presented.
func (e *RasterEngine) Frames() int {
	if e == nil {
		return 0
	}
	return e.frames
}

// Renders returns how many frames were rasterized; cached sizes are presented
// without rasterizing.
func (e *RasterEngine) Renders() int {
	if e == nil {
		return 0
	}
	return e.renders
}

func (e *RasterEngine) render() {
	if e.width <= 0 || e.height <= 0 {
		return
	}
	key := frameKey{e.width, e.height}
	frame, ok := e.cache.Get(key)
	if !ok {
		frame = Render(e.opt, e.width, e.height)
		e.cache.Add(key, frame)
		e.renders++
	}
	e.frame = frame
	e.frames++
	e.container.Present(e.frame)
	if e.logger != nil {
		e.logger.Debug("surface.frame", "w", e.width, "h", e.height, "rows", len(e.opt.Data))
	}
}

// Render draws opt into a new width x height image.
func Render(opt Option, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	sc := newScene(opt)
	pr := newProjector(opt.Camera, sc.corners(), width, height)
	cv := &canvas{dst: dst, z: vector.NewRasterizer(1, 1)}

	edge := color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	for _, ed := range boxEdges {
		a, b := sc.corners()[ed[0]], sc.corners()[ed[1]]
		ax, ay, _ := pr.project(a)
		bx, by, _ := pr.project(b)
		cv.line(ax, ay, bx, by, edge)
	}

	faces := sc.faces(opt, pr)
	sort.Slice(faces, func(i, j int) bool { return faces[i].depth > faces[j].depth })
	wire := color.NRGBA{A: 0x50}
	for _, f := range faces {
		cv.polygon(f.pts[:], f.fill)
		if opt.Wireframe {
			for k := range f.pts {
				p, q := f.pts[k], f.pts[(k+1)%len(f.pts)]
				cv.line(p[0], p[1], q[0], q[1], wire)
			}
		}
	}
	return dst
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

type scene struct {
	opt  Option
	half r3.Vec
}

func newScene(opt Option) scene {
	return scene{opt: opt, half: r3.Vec{X: opt.Box[0] / 2, Y: opt.Box[1] / 2, Z: opt.Box[2] / 2}}
}

func (s scene) corners() [8]r3.Vec {
	var out [8]r3.Vec
	for i := range out {
		v := r3.Vec{X: -s.half.X, Y: -s.half.Y, Z: -s.half.Z}
		if i&1 != 0 {
			v.X = s.half.X
		}
		if i&2 != 0 {
			v.Y = s.half.Y
		}
		if i&4 != 0 {
			v.Z = s.half.Z
		}
		out[i] = v
	}
	return out
}

func (s scene) place(x, y, z float64) r3.Vec {
	return r3.Vec{
		X: (unit(x, s.opt.Axes[0]) - 0.5) * s.opt.Box[0],
		Y: (unit(y, s.opt.Axes[1]) - 0.5) * s.opt.Box[1],
		Z: (unit(z, s.opt.Axes[2]) - 0.5) * s.opt.Box[2],
	}
}

func unit(v float64, a Axis) float64 {
	span := a.Max - a.Min
	if !(span > 0) {
		return 0.5
	}
	t := (v - a.Min) / span
	return math.Max(0, math.Min(1, t))
}

type face struct {
	pts   [4][2]float64
	depth float64
	fill  color.NRGBA
}

func (s scene) faces(opt Option, pr projector) []face {
	light := direction(opt.Light.MainAlpha, opt.Light.MainBeta)
	rows := opt.Data
	var out []face
	for i := 0; i+1 < len(rows); i++ {
		n := min(len(rows[i]), len(rows[i+1]))
		for j := 0; j+1 < n; j++ {
			quad := [4][3]float64{rows[i][j], rows[i][j+1], rows[i+1][j+1], rows[i+1][j]}
			var f face
			var vs [4]r3.Vec
			z := 0.0
			for k, p := range quad {
				vs[k] = s.place(p[0], p[1], p[2])
				x, y, d := pr.project(vs[k])
				f.pts[k] = [2]float64{x, y}
				f.depth += d / 4
				z += p[2] / 4
			}
			normal := r3.Cross(r3.Sub(vs[1], vs[0]), r3.Sub(vs[3], vs[0]))
			lambert := 0.0
			if r3.Norm(normal) > 0 {
				lambert = math.Abs(r3.Dot(r3.Unit(normal), light))
			}
			shade := math.Min(1, 0.5*(opt.Light.AmbientIntensity+opt.Light.MainIntensity*lambert))
			f.fill = shaded(opt.Scale.At(z), shade)
			out = append(out, f)
		}
	}
	return out
}

func shaded(c color.NRGBA, k float64) color.NRGBA {
	m := func(v uint8) uint8 { return uint8(math.Round(float64(v) * k)) }
	return color.NRGBA{R: m(c.R), G: m(c.G), B: m(c.B), A: c.A}
}

// direction is the unit vector for elevation alpha and azimuth beta in degrees.
func direction(alpha, beta float64) r3.Vec {
	a, b := alpha*math.Pi/180, beta*math.Pi/180
	return r3.Vec{X: math.Cos(a) * math.Sin(b), Y: -math.Cos(a) * math.Cos(b), Z: math.Sin(a)}
}

type projector struct {
	eye, right, up, fwd r3.Vec
	k, ox, oy           float64
}

// newProjector looks at the origin from the camera and fits the box corners
// into the viewport.
func newProjector(cam Camera, corners [8]r3.Vec, width, height int) projector {
	p := projector{eye: r3.Scale(cam.Distance, direction(cam.Alpha, cam.Beta)), k: 1}
	p.fwd = r3.Unit(r3.Scale(-1, p.eye))
	right := r3.Cross(p.fwd, r3.Vec{Z: 1})
	if r3.Norm(right) < 1e-9 {
		right = r3.Vec{X: 1}
	}
	p.right = r3.Unit(right)
	p.up = r3.Cross(p.right, p.fwd)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y, _ := p.project(c)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 || spanY <= 0 {
		return p
	}
	p.k = 0.9 * math.Min(float64(width)/spanX, float64(height)/spanY)
	p.ox = float64(width)/2 - (minX+maxX)/2*p.k
	p.oy = float64(height)/2 - (minY+maxY)/2*p.k
	return p
}

func (p projector) project(v r3.Vec) (x, y, depth float64) {
	d := r3.Sub(v, p.eye)
	depth = math.Max(r3.Dot(d, p.fwd), 1e-6)
	x = p.ox + r3.Dot(d, p.right)/depth*p.k
	y = p.oy - r3.Dot(d, p.up)/depth*p.k
	return x, y, depth
}

type canvas struct {
	dst *image.RGBA
	z   *vector.Rasterizer
}

func (cv *canvas) polygon(pts [][2]float64, c color.Color) {
	if len(pts) < 3 {
		return
	}
	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	if math.IsNaN(minX) || math.IsNaN(minY) {
		return
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	r := box.Intersect(cv.dst.Bounds())
	if r.Empty() {
		return
	}
	cv.z.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	cv.z.MoveTo(float32(pts[0][0]-ox), float32(pts[0][1]-oy))
	for _, p := range pts[1:] {
		cv.z.LineTo(float32(p[0]-ox), float32(p[1]-oy))
	}
	cv.z.ClosePath()
	cv.z.Draw(cv.dst, r, image.NewUniform(c), image.Point{})
}

// line strokes a one pixel wide segment as a thin quad.
func (cv *canvas) line(x0, y0, x1, y1 float64, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*0.5, dx/l*0.5
	cv.polygon([][2]float64{
		{x0 + nx, y0 + ny}, {x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny}, {x0 - nx, y0 - ny},
	}, c)
}
