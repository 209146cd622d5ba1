// Package source produces the item streams episodes are generated from.
// Every stream is a pure function of the settings, the catalog and the
// episode's random source.
package source

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/piwi3910/StuffGen/internal/model"
)

// Build returns the full item stream for one episode in stream order.
// Item ids are stream positions.
func Build(s model.Settings, rng *rand.Rand, catalog []model.ItemTemplate) ([]model.Item, error) {
	var items []model.Item
	switch s.Mode {
	case model.ModeRandom3D:
		items = draw(s, rng, catalog, s.SeqLen, nil)
	case model.ModeSameHeight:
		items = draw(s, rng, catalog, s.SeqLen, sameHeight(s))
	case model.ModeSemiOnline:
		items = draw(s, rng, catalog, s.KnownTotal, nil)
	case model.ModeFill100:
		var err error
		items, err = fill100(s, rng)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", model.ErrInvalidConfig, s.Mode)
	}

	for i := range items {
		items[i].ID = i
	}
	return items, nil
}

// heightFunc overrides the height of a drawn item.
type heightFunc func(rng *rand.Rand) float64

func sameHeight(s model.Settings) heightFunc {
	return func(rng *rand.Rand) float64 {
		if s.HeightBand <= 0 {
			return s.SameHeight
		}
		lo := s.SameHeight * (1 - s.HeightBand)
		hi := math.Min(s.SameHeight*(1+s.HeightBand), s.Height)
		return uniform(rng, lo, hi)
	}
}

// draw produces n independent items, either from uniform size ranges or
// from the catalog.
func draw(s model.Settings, rng *rand.Rand, catalog []model.ItemTemplate, n int, height heightFunc) []model.Item {
	picker := newCatalogPicker(catalog)
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		var item model.Item
		if picker != nil {
			t := picker.pick(rng)
			item = model.Item{Length: t.Length, Width: t.Width, Height: t.Height, Mass: t.Mass, SKU: t.Label}
		} else {
			item = model.Item{
				Length: uniform(rng, s.ItemMin, s.ItemMax) * s.Length,
				Width:  uniform(rng, s.ItemMin, s.ItemMax) * s.Width,
				Height: uniform(rng, s.ItemMin, s.ItemMax) * s.Height,
			}
		}
		if height != nil {
			item.Height = height(rng)
		}
		assignMass(&item, s, rng)
		items = append(items, item)
	}
	return items
}

// assignMass draws an explicit mass when configured. Catalog masses win.
// In volume mode the mass stays unset and volume is the proxy.
func assignMass(item *model.Item, s model.Settings, rng *rand.Rand) {
	if s.MassMode != model.MassExplicit {
		item.Mass = 0
		return
	}
	if item.Mass > 0 {
		return
	}
	item.Mass = item.Volume() * uniform(rng, s.DensityMin, s.DensityMax)
}

// fill100 extrudes successive 2D tilings of the grid into layers of items
// until the stream holds seq_len items.
func fill100(s model.Settings, rng *rand.Rand) ([]model.Item, error) {
	cellL := s.Length / float64(s.GridW)
	cellW := s.Width / float64(s.GridH)

	var items []model.Item
	for layer := 0; len(items) < s.SeqLen; layer++ {
		rects, err := Tile(s.GridW, s.GridH, s.TargetRects, rng)
		if err != nil {
			return nil, err
		}
		rng.Shuffle(len(rects), func(i, j int) { rects[i], rects[j] = rects[j], rects[i] })

		for _, r := range rects {
			var h float64
			if s.HeightMode == model.HeightFixed {
				h = s.SameHeight
			} else {
				h = uniform(rng, s.ItemMin, s.ItemMax) * s.Height
			}
			item := model.Item{
				Length: r.W * cellL,
				Width:  r.H * cellW,
				Height: h,
				Footprint: &model.Footprint{
					Layer: layer,
					X:     int(r.X),
					Y:     int(r.Y),
					W:     int(r.W),
					H:     int(r.H),
				},
			}
			assignMass(&item, s, rng)
			items = append(items, item)
		}
	}
	return items[:s.SeqLen], nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// catalogPicker samples templates weighted by their quantity.
type catalogPicker struct {
	templates []model.ItemTemplate
	total     int
}

func newCatalogPicker(catalog []model.ItemTemplate) *catalogPicker {
	if len(catalog) == 0 {
		return nil
	}
	p := &catalogPicker{templates: catalog}
	for _, t := range catalog {
		p.total += weightOf(t)
	}
	return p
}

func weightOf(t model.ItemTemplate) int {
	if t.Quantity < 1 {
		return 1
	}
	return t.Quantity
}

func (p *catalogPicker) pick(rng *rand.Rand) model.ItemTemplate {
	n := rng.Intn(p.total)
	for _, t := range p.templates {
		w := weightOf(t)
		if n < w {
			return t
		}
		n -= w
	}
	return p.templates[len(p.templates)-1]
}
