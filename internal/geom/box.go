package geom

// Box is an axis-aligned box given by its lower corner and extents.
type Box struct {
	X float64
	Y float64
	Z float64
	L float64 // extent along x
	W float64 // extent along y
	H float64 // extent along z
}

// Footprint returns the projection of the box onto the z = 0 plane.
func (b Box) Footprint() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.L, H: b.W}
}

// Top returns the z coordinate of the box's top face.
func (b Box) Top() float64 {
	return b.Z + b.H
}

// Volume returns the box volume.
func (b Box) Volume() float64 {
	return b.L * b.W * b.H
}

// Center returns the box's geometric center.
func (b Box) Center() (x, y, z float64) {
	return b.X + b.L/2, b.Y + b.W/2, b.Z + b.H/2
}

// BoxesOverlap returns true if the open interiors of a and b intersect.
// Boxes that only share a face, edge or corner do not overlap.
func BoxesOverlap(a, b Box) bool {
	return a.X < b.X+b.L-Eps && a.X+a.L > b.X+Eps &&
		a.Y < b.Y+b.W-Eps && a.Y+a.W > b.Y+Eps &&
		a.Z < b.Z+b.H-Eps && a.Z+a.H > b.Z+Eps
}

// Inside returns true if b lies within [0,l]x[0,w]x[0,h].
func (b Box) Inside(l, w, h float64) bool {
	return b.X >= -Eps && b.Y >= -Eps && b.Z >= -Eps &&
		b.X+b.L <= l+Eps && b.Y+b.W <= w+Eps && b.Z+b.H <= h+Eps
}
