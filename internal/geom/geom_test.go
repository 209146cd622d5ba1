package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps_TouchingEdgesDoNotOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 1, H: 1}
	b := Rect{X: 1, Y: 0, W: 1, H: 1}
	assert.False(t, Overlaps(a, b))
	assert.True(t, Overlaps(a, Rect{X: 0.5, Y: 0.5, W: 1, H: 1}))
}

func TestSubtract_CenterHoleLeavesFourStrips(t *testing.T) {
	base := Rect{X: 0, Y: 0, W: 10, H: 10}
	hole := Rect{X: 3, Y: 3, W: 4, H: 4}

	parts := Subtract(base, hole)
	assert.Len(t, parts, 4)

	var area float64
	for i, p := range parts {
		assert.False(t, Overlaps(p, hole), "strip %d overlaps the hole", i)
		for _, q := range parts[i+1:] {
			assert.False(t, Overlaps(p, q))
		}
		area += p.Area()
	}
	assert.InDelta(t, 100-16, area, 1e-9)
}

func TestSubtract_Disjoint(t *testing.T) {
	base := Rect{X: 0, Y: 0, W: 2, H: 2}
	parts := Subtract(base, Rect{X: 5, Y: 5, W: 1, H: 1})
	assert.Equal(t, []Rect{base}, parts)
}

func TestUncoveredArea(t *testing.T) {
	base := Rect{X: 0, Y: 0, W: 4, H: 2}
	covers := []Rect{
		{X: 0, Y: 0, W: 2, H: 2},
		{X: 1, Y: 0, W: 2, H: 1}, // overlaps the first cover
	}
	assert.InDelta(t, 8-4-1, UncoveredArea(base, covers), 1e-9)
	assert.InDelta(t, 0, UncoveredArea(base, []Rect{{X: -1, Y: -1, W: 10, H: 10}}), 1e-9)
	assert.InDelta(t, 8, UncoveredArea(base, nil), 1e-9)
}

func TestTiles(t *testing.T) {
	tiling := []Rect{
		{X: 0, Y: 0, W: 2, H: 3},
		{X: 2, Y: 0, W: 1, H: 1},
		{X: 2, Y: 1, W: 1, H: 2},
	}
	assert.True(t, Tiles(tiling, 3, 3))

	gap := tiling[:2]
	assert.False(t, Tiles(gap, 3, 3))

	overlapping := append([]Rect{{X: 0, Y: 0, W: 1, H: 1}}, tiling...)
	assert.False(t, Tiles(overlapping, 3, 3))
}

func TestBoxesOverlap(t *testing.T) {
	a := Box{L: 1, W: 1, H: 1}
	stacked := Box{Z: 1, L: 1, W: 1, H: 1}
	sunk := Box{Z: 0.5, L: 1, W: 1, H: 1}

	assert.False(t, BoxesOverlap(a, stacked))
	assert.True(t, BoxesOverlap(a, sunk))
}

func TestBoxInside(t *testing.T) {
	assert.True(t, Box{L: 1, W: 1, H: 1}.Inside(1, 1, 1))
	assert.False(t, Box{Z: 0.5, L: 1, W: 1, H: 1}.Inside(1, 1, 1))
	assert.False(t, Box{X: -0.1, L: 0.5, W: 0.5, H: 0.5}.Inside(1, 1, 1))
}
