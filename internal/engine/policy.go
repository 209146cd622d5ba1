package engine

import (
	"math"
	"math/rand"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

// Proposal is the policy's decision for one step. Placement is nil when no
// candidate pose fits the chosen item.
type Proposal struct {
	Item      model.Item
	Placement *model.Placement
	Negative  bool
}

// Policy is the synthetic placement policy. It picks a visible item and a
// pose for it, and now and then manufactures a deliberately bad pose so the
// dataset carries negative examples.
type Policy struct {
	orientations []model.Orientation
	selection    model.Selection
	negativeRate float64
	coverage     float64
	rng          *rand.Rand
}

// NewPolicy creates a policy drawing from rng.
func NewPolicy(s model.Settings, rng *rand.Rand) *Policy {
	return &Policy{
		orientations: s.Rotation.Orientations(),
		selection:    s.Selection,
		negativeRate: s.NegativeRate,
		coverage:     s.SupportCoverage,
		rng:          rng,
	}
}

// Propose chooses one of the visible items and a pose for it.
// visible must not be empty.
func (p *Policy) Propose(o *Occupancy, visible []model.Item) Proposal {
	item := p.choose(visible)

	if p.negativeRate > 0 && p.rng.Float64() < p.negativeRate {
		pl := p.negative(o, item)
		return Proposal{Item: item, Placement: &pl, Negative: true}
	}

	if pl, ok := p.search(o, item); ok {
		return Proposal{Item: item, Placement: &pl}
	}
	return Proposal{Item: item}
}

func (p *Policy) choose(visible []model.Item) model.Item {
	if p.selection == model.SelectFirst || len(visible) == 1 {
		return visible[0]
	}
	return visible[p.rng.Intn(len(visible))]
}

// search walks the candidate poses in order. The first pose that fits,
// does not collide and is supported wins; failing that, the first pose that
// merely fits and does not collide is returned so the validator can label
// it unsupported.
func (p *Policy) search(o *Occupancy, item model.Item) (model.Placement, bool) {
	var fallback *model.Placement
	for pose := range Candidates(o, item, p.orientations) {
		pl := pose.Placement(item.ID)
		if !Fits(o.container, pl) || o.Collides(pl) {
			continue
		}
		if o.IsSupported(pl, p.coverage) {
			return pl, true
		}
		if fallback == nil {
			f := pl
			fallback = &f
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return model.Placement{}, false
}

// negative builds a pose at a random footprint position that is either sunk
// into the boxes below it (collision) or left floating above them
// (unsupported).
func (p *Policy) negative(o *Occupancy, item model.Item) model.Placement {
	c := o.container
	orient := p.orientations[p.rng.Intn(len(p.orientations))]
	l, w, h := item.Dims(orient)

	x := p.rng.Float64() * math.Max(0, c.Length-l)
	y := p.rng.Float64() * math.Max(0, c.Width-w)
	drop := o.DropHeight(geom.Rect{X: x, Y: y, W: l, H: w})

	var z float64
	if drop > geom.Eps && p.rng.Intn(2) == 0 {
		z = drop - 0.5*math.Min(h, drop)
	} else {
		z = drop + (0.05+0.2*p.rng.Float64())*c.Height
	}

	return Pose{X: x, Y: y, Z: z, Orientation: orient, L: l, W: w, H: h}.Placement(item.ID)
}

// Evaluate checks a proposed placement against the committed state in the
// order bounds, collision, support. It returns the first violation found
// (ViolationNone when the placement may be committed) and the support ratio.
func Evaluate(o *Occupancy, pl model.Placement, coverage float64) (model.Violation, float64) {
	if !Fits(o.container, pl) {
		return model.ViolationOutOfBounds, 0
	}
	support := o.SupportRatio(pl)
	if o.Collides(pl) {
		return model.ViolationCollision, support
	}
	if support < coverage-geom.Eps {
		return model.ViolationUnsupported, support
	}
	return model.ViolationNone, support
}
