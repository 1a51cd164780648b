package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/sim"
)

// ScanPoint is the summary recorded for one parameter value.
type ScanPoint struct {
	Param  float64
	Values []float64
}

// Setter applies a parameter value to a scene copy.
type Setter func(cfg *config.Config, value float64)

// Summary reduces a run to the values plotted for one parameter value.
type Summary func(result *sim.Result) []float64

// Scan sweeps steps values in [lo, hi], running a copy of cfg for each.
func Scan(ctx context.Context, cfg *config.Config, set Setter, lo, hi float64, steps int, summarize Summary) ([]ScanPoint, error) {
	if steps <= 1 {
		steps = 2
	}
	stepSize := (hi - lo) / float64(steps-1)

	out := make([]ScanPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := lo + float64(i)*stepSize
		c := cfg.Clone()
		set(c, param)

		res, err := runQuiet(ctx, c)
		if err != nil {
			return out, fmt.Errorf("scan at %g: %w", param, err)
		}
		out = append(out, ScanPoint{Param: param, Values: summarize(res)})
	}
	return out, nil
}

// Bounces returns a Summary listing the apex heights of one body after each
// recorded bounce, measured as the smallest y between impacts.
func Bounces(body int) Summary {
	return func(res *sim.Result) []float64 {
		if len(res.Frames) == 0 || body >= len(res.Frames[0].Bodies) {
			return nil
		}
		id := res.Frames[0].Bodies[body].ID
		track := res.Track(id)
		impacts := FindImpacts(track, res.Times(), 1)

		apexes := make([]float64, 0, len(impacts))
		for k, im := range impacts {
			end := res.Final().Time
			if k+1 < len(impacts) {
				end = impacts[k+1].Time
			}
			apex := im.Y
			for i, b := range track {
				t := res.Frames[i].Time
				if t > im.Time && t < end {
					apex = min(apex, b.Y)
				}
			}
			apexes = append(apexes, apex)
		}
		return apexes
	}
}

// ScanToASCII converts scan data to ASCII art
func ScanToASCII(data []ScanPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal, maxVal = min(minVal, v), max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				grid[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
