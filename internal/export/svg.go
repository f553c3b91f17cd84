package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/tanksim/internal/sim"
)

type point struct{ X, Y float64 }

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(p point) {
	b.minX = min(b.minX, p.X)
	b.maxX = max(b.maxX, p.X)
	b.minY = min(b.minY, p.Y)
	b.maxY = max(b.maxY, p.Y)
}

// pad adds a 10% vertical margin and guards against flat ranges.
func (b *bounds) pad() {
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	ry := b.maxY - b.minY
	if ry == 0 {
		ry = 1
	}
	b.minY -= ry * 0.1
	b.maxY += ry * 0.1
}

// stairs turns setpoint values and their boundaries into the corner points of
// a step plot clipped to [from, to].
func stairs(values, boundaries []float64, from, to float64) []point {
	pts := make([]point, 0, 2*len(values))
	for i, v := range values {
		start, stop := max(boundaries[i], from), min(boundaries[i+1], to)
		if start > to {
			break
		}
		if stop < from {
			continue
		}
		pts = append(pts, point{start, v}, point{stop, v})
	}
	return pts
}

// WriteSVG renders the level trace and the setpoint stairs as an SVG line
// chart of the given pixel size.
func WriteSVG(w io.Writer, res *sim.Result, values, boundaries []float64, width, height int) error {
	if len(res.T) < 2 {
		return fmt.Errorf("need at least two samples to plot, got %d", len(res.T))
	}
	if len(boundaries) != len(values)+1 {
		return fmt.Errorf("got %d boundaries for %d setpoints", len(boundaries), len(values))
	}

	level := make([]point, len(res.T))
	for i, t := range res.T {
		level[i] = point{t, res.H[i]}
	}
	setpoint := stairs(values, boundaries, res.T[0], res.T[len(res.T)-1])

	b := bounds{minX: level[0].X, maxX: level[0].X, minY: level[0].Y, maxY: level[0].Y}
	for _, p := range level {
		b.add(p)
	}
	for _, p := range setpoint {
		b.add(p)
	}
	b.pad()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
	writePath(&sb, setpoint, b, width, height, "#ff8800")
	writePath(&sb, level, b, width, height, "#00ff00")
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writePath(sb *strings.Builder, pts []point, b bounds, width, height int, stroke string) {
	if len(pts) == 0 {
		return
	}
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range pts {
		x := (p.X - b.minX) / rx * float64(width)
		y := float64(height) - (p.Y-b.minY)/ry*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
