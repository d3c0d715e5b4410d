// Package surface renders restored wavefronts as a shaded 3-D surface.
package surface

import (
	"image/color"

	"gonum.org/v1/gonum/floats"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

// Axis describes one bounding box axis.
type Axis struct {
	Name string
	Min  float64
	Max  float64
}

// Camera positions the viewer on a sphere around the box centre. Angles are
// degrees; Alpha is elevation, Beta azimuth.
type Camera struct {
	Distance float64
	Alpha    float64
	Beta     float64
}

// Light is a directional main light plus an ambient term.
type Light struct {
	MainIntensity    float64
	MainAlpha        float64
	MainBeta         float64
	AmbientIntensity float64
}

// Option is the full scene description applied to an engine.
type Option struct {
	Background color.NRGBA
	Axes       [3]Axis
	Box        [3]float64 // width, depth, height in scene units
	Camera     Camera
	Light      Light
	Wireframe  bool
	Scale      ColorScale
	Data       [][]restore.Point
}

// DefaultOption is the empty scene shown before any data arrives.
func DefaultOption() Option {
	return Option{
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Axes: [3]Axis{
			{Name: "x", Min: 0, Max: 1},
			{Name: "y", Min: 0, Max: 1},
			{Name: "z", Min: 0, Max: 1},
		},
		Box:       [3]float64{100, 100, 100},
		Camera:    Camera{Distance: 120, Alpha: 40, Beta: 70},
		Light:     Light{MainIntensity: 1.5, MainAlpha: 40, MainBeta: 40, AmbientIntensity: 0.7},
		Wireframe: true,
		Scale:     NewColorScale(0, 1),
	}
}

// BuildOption derives the complete scene for res. A nil result gives the
// default empty scene.
func BuildOption(res *restore.Result) Option {
	opt := DefaultOption()
	if res == nil {
		return opt
	}
	opt.Scale = NewColorScale(res.Peaks.Min, res.Peaks.Max)
	opt.Data = res.Matrix
	if res.Points() == 0 {
		return opt
	}
	var xs, ys, zs []float64
	for _, row := range res.Matrix {
		for _, p := range row {
			xs = append(xs, p.X())
			ys = append(ys, p.Y())
			zs = append(zs, p.Z())
		}
	}
	opt.Axes[0] = axis("x", xs)
	opt.Axes[1] = axis("y", ys)
	opt.Axes[2] = axis("z", zs)
	return opt
}

// VertexColor is the unshaded colour of p.
func (o Option) VertexColor(p restore.Point) color.NRGBA {
	return o.Scale.At(p.Z())
}

func axis(name string, vs []float64) Axis {
	lo, hi := floats.Min(vs), floats.Max(vs)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return Axis{Name: name, Min: lo, Max: hi}
}
