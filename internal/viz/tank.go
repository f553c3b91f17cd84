package viz

import "math"

// TankFrame draws an open tank of the given capacity filled to level, with a
// dashed line at the setpoint. w and h are in terminal cells.
func TankFrame(level, setpoint, capacity float64, w, h int) string {
	c := NewCanvas(w, h)
	pw, ph := c.PixelWidth(), c.PixelHeight()
	if pw < 4 || ph < 4 {
		return c.String()
	}
	if !(capacity > 0) {
		capacity = 1
	}

	left, right, bottom := 0, pw-1, ph-1
	c.DrawLine(left, 0, left, bottom)
	c.DrawLine(right, 0, right, bottom)
	c.DrawLine(left, bottom, right, bottom)

	toRow := func(v float64) int {
		frac := math.Max(0, math.Min(1, v/capacity))
		return bottom - int(math.Round(frac*float64(bottom-1)))
	}

	if level > 0 {
		c.FillRect(left+1, toRow(level), right-1, bottom-1)
	}

	sp := toRow(setpoint)
	for x := left + 1; x < right; x += 4 {
		c.DrawLine(x, sp, min(x+1, right-1), sp)
	}
	return c.String()
}
