package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/viz"
)

const (
	background  = "#0a0a0a"
	staticFill  = "#333344"
	dynamicFill = "none"
	bodyStroke  = "#00ff88"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FrameToSVG draws every body of a frame, fitted to width x height. World y
// grows downward, which matches SVG.
func FrameToSVG(fr sim.Frame, width, height int) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	v := fit(width, height, fr)

	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1.5\">\n", bodyStroke)
	for _, b := range fr.Bodies {
		fill := dynamicFill
		if b.Static {
			fill = staticFill
		}
		switch b.Kind {
		case physics.KindCircle:
			cx, cy := v.Project(b.X, b.Y)
			r := b.Radius * v.Scale
			fmt.Fprintf(&sb, "<circle id=\"%s\" cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"%s\"/>\n", b.Name, cx, cy, r, fill)
			ex := float64(cx) + r*math.Cos(b.Orientation)
			ey := float64(cy) + r*math.Sin(b.Orientation)
			fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%.1f\" y2=\"%.1f\"/>\n", cx, cy, ex, ey)
		default:
			x, y := v.Project(b.X-b.HalfWidth, b.Y-b.HalfHeight)
			fmt.Fprintf(&sb, "<rect id=\"%s\" x=\"%d\" y=\"%d\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\"/>\n",
				b.Name, x, y, 2*b.HalfWidth*v.Scale, 2*b.HalfHeight*v.Scale, fill)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of one body over the frames, with its
// final shape for reference.
func TrajectoryToSVG(frames []sim.Frame, id uint64, width, height int, strokeColor string) string {
	var track []sim.BodyState
	var trackFrames []sim.Frame
	for _, fr := range frames {
		if b, ok := fr.Body(id); ok {
			track = append(track, b)
			trackFrames = append(trackFrames, sim.Frame{Bodies: []sim.BodyState{b}})
		}
	}
	if len(track) < 2 {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	v := fit(width, height, trackFrames...)

	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)
	for i, b := range track {
		x, y := v.Project(b.X, b.Y)
		if i == 0 {
			fmt.Fprintf(&sb, "%d,%d", x, y)
		} else {
			fmt.Fprintf(&sb, " L%d,%d", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	last := track[len(track)-1]
	x, y := v.Project(last.X, last.Y)
	fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"3\" fill=\"%s\"/>\n", x, y, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func fit(width, height int, frames ...sim.Frame) viz.Viewport {
	minX, minY, maxX, maxY := viz.Bounds(frames...)
	return viz.Fit(minX, minY, maxX, maxY, width, height)
}
