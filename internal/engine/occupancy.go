package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

// ErrDuplicateItem is returned when an item is committed twice.
var ErrDuplicateItem = errors.New("item already committed")

// Occupancy tracks the boxes committed to a container during one episode.
// Placements are only ever appended.
type Occupancy struct {
	container  model.Container
	placements []model.Placement
	weights    []float64
	committed  map[int]bool
	volume     float64
}

// NewOccupancy returns an empty occupancy state for c.
func NewOccupancy(c model.Container) *Occupancy {
	return &Occupancy{
		container: c,
		committed: make(map[int]bool),
	}
}

// Container returns the container the state belongs to.
func (o *Occupancy) Container() model.Container {
	return o.container
}

// Len returns the number of committed placements.
func (o *Occupancy) Len() int {
	return len(o.placements)
}

// Placements returns a copy of the committed placements in commit order.
func (o *Occupancy) Placements() []model.Placement {
	out := make([]model.Placement, len(o.placements))
	copy(out, o.placements)
	return out
}

// Fits reports whether p lies entirely inside c. Negative extents are a
// caller bug and panic.
func Fits(c model.Container, p model.Placement) bool {
	if p.Length < 0 || p.Width < 0 || p.Height < 0 {
		panic(fmt.Sprintf("placement of item %d has negative extents (%g, %g, %g)", p.ItemID, p.Length, p.Width, p.Height))
	}
	return p.Box().Inside(c.Length, c.Width, c.Height)
}

// Collides reports whether p overlaps the interior of any committed box.
// Touching faces are allowed.
func (o *Occupancy) Collides(p model.Placement) bool {
	box := p.Box()
	for _, q := range o.placements {
		if geom.BoxesOverlap(box, q.Box()) {
			return true
		}
	}
	return false
}

// SupportRatio returns the fraction of p's base face resting on the floor or
// on top faces of committed boxes at exactly p.Z.
func (o *Occupancy) SupportRatio(p model.Placement) float64 {
	if math.Abs(p.Z) <= geom.Eps {
		return 1
	}
	base := p.Box().Footprint()
	if base.Area() <= 0 {
		return 0
	}

	var tops []geom.Rect
	for _, q := range o.placements {
		qb := q.Box()
		if math.Abs(qb.Top()-p.Z) > geom.Eps {
			continue
		}
		if r, ok := geom.Intersect(base, qb.Footprint()); ok {
			tops = append(tops, r)
		}
	}
	if len(tops) == 0 {
		return 0
	}
	return 1 - geom.UncoveredArea(base, tops)/base.Area()
}

// IsSupported reports whether at least coverage of p's base is supported.
func (o *Occupancy) IsSupported(p model.Placement, coverage float64) bool {
	return o.SupportRatio(p) >= coverage-geom.Eps
}

// DropHeight returns the z at which a box with footprint r comes to rest:
// the highest top face among committed boxes whose footprint overlaps r.
func (o *Occupancy) DropHeight(r geom.Rect) float64 {
	var z float64
	for _, q := range o.placements {
		qb := q.Box()
		if geom.Overlaps(r, qb.Footprint()) && qb.Top() > z {
			z = qb.Top()
		}
	}
	return z
}

// Commit appends p with the given weight (mass or volume proxy).
func (o *Occupancy) Commit(p model.Placement, weight float64) error {
	if o.committed[p.ItemID] {
		return fmt.Errorf("%w: item %d", ErrDuplicateItem, p.ItemID)
	}
	o.committed[p.ItemID] = true
	o.placements = append(o.placements, p)
	o.weights = append(o.weights, weight)
	o.volume += p.Box().Volume()
	return nil
}

// FillRatio returns the committed volume as a fraction of the container.
func (o *Occupancy) FillRatio() float64 {
	v := o.container.Volume()
	if v == 0 {
		return 0
	}
	return o.volume / v
}
