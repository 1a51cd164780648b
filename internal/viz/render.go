package viz

import (
	"math"

	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
)

// Bounds returns the world-space box enclosing every body in the frames.
func Bounds(frames ...sim.Frame) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, fr := range frames {
		for _, b := range fr.Bodies {
			hx, hy := extent(b)
			minX, maxX = math.Min(minX, b.X-hx), math.Max(maxX, b.X+hx)
			minY, maxY = math.Min(minY, b.Y-hy), math.Max(maxY, b.Y+hy)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}

func extent(b sim.BodyState) (float64, float64) {
	if b.Kind == physics.KindCircle {
		return b.Radius, b.Radius
	}
	return b.HalfWidth, b.HalfHeight
}

// FitFrames fits a viewport around the frames on the canvas.
func FitFrames(c *Canvas, frames ...sim.Frame) Viewport {
	minX, minY, maxX, maxY := Bounds(frames...)
	return Fit(minX, minY, maxX, maxY, c.PixelWidth(), c.PixelHeight())
}

// DrawFrame renders every body of the frame. Circles get a spoke showing
// their orientation.
func DrawFrame(c *Canvas, v Viewport, fr sim.Frame) {
	for _, b := range fr.Bodies {
		switch b.Kind {
		case physics.KindCircle:
			cx, cy := v.Project(b.X, b.Y)
			r := v.Length(b.Radius)
			c.DrawCircle(cx, cy, r)
			ex := cx + int(math.Round(float64(r)*math.Cos(b.Orientation)))
			ey := cy + int(math.Round(float64(r)*math.Sin(b.Orientation)))
			c.DrawLine(cx, cy, ex, ey)
		default:
			x0, y0 := v.Project(b.X-b.HalfWidth, b.Y-b.HalfHeight)
			x1, y1 := v.Project(b.X+b.HalfWidth, b.Y+b.HalfHeight)
			c.DrawRect(x0, y0, x1, y1)
		}
	}
}

// DrawTrails dots the centre of every dynamic body across the frames.
func DrawTrails(c *Canvas, v Viewport, frames []sim.Frame) {
	for _, fr := range frames {
		for _, b := range fr.Bodies {
			if b.Static {
				continue
			}
			c.Set(v.Project(b.X, b.Y))
		}
	}
}
