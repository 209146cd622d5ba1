package engine

import (
	"math"

	"github.com/piwi3910/StuffGen/internal/model"
)

// CenterOfGravity returns the weighted centroid (x, y) of the committed box
// centers. An empty state reports the footprint center.
func CenterOfGravity(o *Occupancy) (x, y float64) {
	var total float64
	for i, p := range o.placements {
		cx, cy, _ := p.Box().Center()
		w := o.weights[i]
		x += cx * w
		y += cy * w
		total += w
	}
	if total <= 0 {
		return o.container.Length / 2, o.container.Width / 2
	}
	return x / total, y / total
}

// COGOffset returns the lateral offset of (x, y) from the footprint center,
// normalized by L and W independently.
func COGOffset(x, y float64, c model.Container) (dx, dy float64) {
	return math.Abs(x-c.Length/2) / c.Length, math.Abs(y-c.Width/2) / c.Width
}

// WithinTolerance reports whether both normalized offsets are at most delta.
func WithinTolerance(x, y float64, c model.Container, delta float64) bool {
	dx, dy := COGOffset(x, y, c)
	return dx <= delta+1e-12 && dy <= delta+1e-12
}

// Stable evaluates the tolerance for the current state. A state with at
// most one item is stable by definition.
func Stable(o *Occupancy, delta float64) bool {
	if o.Len() <= 1 {
		return true
	}
	x, y := CenterOfGravity(o)
	return WithinTolerance(x, y, o.container, delta)
}
