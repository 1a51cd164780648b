package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/rigid2d/internal/sim"
)

// Coord selects one scalar out of a recorded body state.
type Coord string

const (
	CoordX     Coord = "x"
	CoordY     Coord = "y"
	CoordVX    Coord = "vx"
	CoordVY    Coord = "vy"
	CoordAngle Coord = "angle"
	CoordOmega Coord = "omega"
	CoordSpeed Coord = "speed"
)

func ParseCoord(s string) (Coord, error) {
	switch c := Coord(s); c {
	case CoordX, CoordY, CoordVX, CoordVY, CoordAngle, CoordOmega, CoordSpeed:
		return c, nil
	}
	return "", fmt.Errorf("unknown coordinate: %s", s)
}

func (c Coord) Of(b sim.BodyState) float64 {
	switch c {
	case CoordX:
		return b.X
	case CoordY:
		return b.Y
	case CoordVX:
		return b.VX
	case CoordVY:
		return b.VY
	case CoordAngle:
		return b.Orientation
	case CoordOmega:
		return b.AngularVelocity
	case CoordSpeed:
		return b.Velocity().Length()
	}
	return 0
}

// Coordinate extracts one coordinate from every state of a track.
func Coordinate(track []sim.BodyState, c Coord) []float64 {
	out := make([]float64, len(track))
	for i, b := range track {
		out[i] = c.Of(b)
	}
	return out
}

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XCoord, YCoord Coord
	Points         []struct{ X, Y float64 }
}

// GeneratePhasePortrait pairs two coordinates of a recorded body track.
func GeneratePhasePortrait(track []sim.BodyState, xc, yc Coord) *PhasePortrait2D {
	portrait := &PhasePortrait2D{
		XCoord: xc,
		YCoord: yc,
		Points: make([]struct{ X, Y float64 }, 0, len(track)),
	}
	for _, b := range track {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{X: xc.Of(b), Y: yc.Of(b)})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return row, col
	}
	inside := func(row, col int) bool {
		return row >= 0 && row < height && col >= 0 && col < width
	}

	if minX <= 0 && minX+rangeX >= 0 {
		_, col := toCell(0, 0)
		for row := 0; row < height; row++ {
			if inside(row, col) {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && minY+rangeY >= 0 {
		row, _ := toCell(0, 0)
		for col := 0; col < width; col++ {
			if inside(row, col) {
				grid[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		if row, col := toCell(p.X, p.Y); inside(row, col) {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Impact is a bounce detected in a body track: the vertical velocity went
// from falling (positive y is down) to rising between two recorded states.
type Impact struct {
	Time        float64
	X, Y        float64
	SpeedIn     float64
	SpeedOut    float64
	Restitution float64
}

// FindImpacts scans a track for bounces faster than minSpeed.
func FindImpacts(track []sim.BodyState, times []float64, minSpeed float64) []Impact {
	impacts := make([]Impact, 0)
	for i := 1; i < len(track) && i < len(times); i++ {
		prev, cur := track[i-1], track[i]
		if prev.VY > minSpeed && cur.VY < -minSpeed {
			impacts = append(impacts, Impact{
				Time:        times[i],
				X:           cur.X,
				Y:           cur.Y,
				SpeedIn:     prev.VY,
				SpeedOut:    -cur.VY,
				Restitution: -cur.VY / prev.VY,
			})
		}
	}
	return impacts
}

// ImpactsToASCII lists impacts one per line.
func ImpactsToASCII(impacts []Impact) string {
	if len(impacts) == 0 {
		return "No impacts detected"
	}
	var sb strings.Builder
	for i, im := range impacts {
		fmt.Fprintf(&sb, "#%-3d t=%7.3f  y=%9.3f  in=%8.3f  out=%8.3f  e=%.3f\n",
			i+1, im.Time, im.Y, im.SpeedIn, im.SpeedOut, im.Restitution)
	}
	return sb.String()
}
