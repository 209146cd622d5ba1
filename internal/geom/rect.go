// Package geom provides the axis-aligned rectangle and box arithmetic used by
// the occupancy engine and the 2D tiler.
package geom

import "math"

// Eps is the tolerance used for all coordinate comparisons.
const Eps = 1e-9

// Rect is an axis-aligned rectangle on the container floor (or any z-plane).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the rectangle area.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Overlaps returns true if two rectangles overlap (not just touch).
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W-Eps && a.X+a.W > b.X+Eps &&
		a.Y < b.Y+b.H-Eps && a.Y+a.H > b.Y+Eps
}

// Contains returns true if outer fully contains inner.
func Contains(outer, inner Rect) bool {
	return outer.X <= inner.X+Eps && outer.Y <= inner.Y+Eps &&
		outer.X+outer.W >= inner.X+inner.W-Eps &&
		outer.Y+outer.H >= inner.Y+inner.H-Eps
}

// Intersect returns the overlapping region of a and b. The boolean is false
// when the rectangles do not overlap.
func Intersect(a, b Rect) (Rect, bool) {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.X+a.W, b.X+b.W)
	y1 := math.Min(a.Y+a.H, b.Y+b.H)
	if x1-x0 <= Eps || y1-y0 <= Eps {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Subtract removes sub from base and returns up to four disjoint rectangles
// covering what is left. Left and right strips span the full height of base;
// top and bottom strips are bounded by the intersection's x extent.
func Subtract(base, sub Rect) []Rect {
	in, ok := Intersect(base, sub)
	if !ok {
		return []Rect{base}
	}

	var result []Rect

	// Left portion
	if in.X > base.X+Eps {
		result = append(result, Rect{X: base.X, Y: base.Y, W: in.X - base.X, H: base.H})
	}

	// Right portion
	rightEnd := base.X + base.W
	inRight := in.X + in.W
	if inRight < rightEnd-Eps {
		result = append(result, Rect{X: inRight, Y: base.Y, W: rightEnd - inRight, H: base.H})
	}

	// Bottom portion (between left and right)
	if in.Y > base.Y+Eps {
		result = append(result, Rect{X: in.X, Y: base.Y, W: in.W, H: in.Y - base.Y})
	}

	// Top portion
	topEnd := base.Y + base.H
	inTop := in.Y + in.H
	if inTop < topEnd-Eps {
		result = append(result, Rect{X: in.X, Y: inTop, W: in.W, H: topEnd - inTop})
	}

	return result
}

// UncoveredArea returns the area of base not covered by the union of covers.
func UncoveredArea(base Rect, covers []Rect) float64 {
	free := []Rect{base}
	for _, c := range covers {
		if len(free) == 0 {
			break
		}
		var next []Rect
		for _, f := range free {
			next = append(next, Subtract(f, c)...)
		}
		free = next
	}

	var total float64
	for _, f := range free {
		total += f.Area()
	}
	return total
}

// Tiles reports whether rects exactly tile the w x h rectangle anchored at
// the origin: every rect lies inside, no two overlap, and the areas sum to
// the full area.
func Tiles(rects []Rect, w, h float64) bool {
	bounds := Rect{W: w, H: h}
	var area float64
	for i, a := range rects {
		if a.W <= 0 || a.H <= 0 || !Contains(bounds, a) {
			return false
		}
		for _, b := range rects[i+1:] {
			if Overlaps(a, b) {
				return false
			}
		}
		area += a.Area()
	}
	return math.Abs(area-bounds.Area()) <= Eps*math.Max(1, bounds.Area())
}
