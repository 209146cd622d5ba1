package source

import (
	"fmt"
	"math/rand"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

// Tile cuts a gridW x gridH grid into exactly target rectangles with integer
// guillotine cuts. The free-region list starts with the whole grid; each
// round picks a splittable region with probability proportional to its area
// and cuts it along a random axis at a random cell boundary. The result
// tiles the grid with no gaps and no overlaps.
func Tile(gridW, gridH, target int, rng *rand.Rand) ([]geom.Rect, error) {
	if gridW <= 0 || gridH <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", model.ErrInvalidConfig, gridW, gridH)
	}
	if target < 1 || target > gridW*gridH {
		return nil, fmt.Errorf("%w: %d rectangles cannot tile a %dx%d grid", model.ErrInvalidConfig, target, gridW, gridH)
	}

	rects := []geom.Rect{{W: float64(gridW), H: float64(gridH)}}
	for len(rects) < target {
		idx := pickSplittable(rects, rng)
		a, b := split(rects[idx], rng)
		rects[idx] = a
		rects = append(rects, b)
	}
	return rects, nil
}

func splittable(r geom.Rect) bool {
	return r.W >= 2 || r.H >= 2
}

// pickSplittable returns the index of a splittable region, weighted by area.
// At least one region is splittable whenever fewer rectangles than cells
// exist.
func pickSplittable(rects []geom.Rect, rng *rand.Rand) int {
	total := 0
	for _, r := range rects {
		if splittable(r) {
			total += int(r.Area())
		}
	}
	pick := rng.Intn(total)
	for i, r := range rects {
		if !splittable(r) {
			continue
		}
		a := int(r.Area())
		if pick < a {
			return i
		}
		pick -= a
	}
	panic("no splittable region left")
}

// split cuts r in two along one axis.
func split(r geom.Rect, rng *rand.Rand) (geom.Rect, geom.Rect) {
	w, h := int(r.W), int(r.H)
	vertical := w >= 2 && (h < 2 || rng.Intn(2) == 0)
	if vertical {
		cut := float64(1 + rng.Intn(w-1))
		return geom.Rect{X: r.X, Y: r.Y, W: cut, H: r.H},
			geom.Rect{X: r.X + cut, Y: r.Y, W: r.W - cut, H: r.H}
	}
	cut := float64(1 + rng.Intn(h-1))
	return geom.Rect{X: r.X, Y: r.Y, W: r.W, H: cut},
		geom.Rect{X: r.X, Y: r.Y + cut, W: r.W, H: r.H - cut}
}
