package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/piwi3910/StuffGen/internal/geom"
)

// Container is the fixed-size box items are stuffed into.
type Container struct {
	Length float64 `json:"L" msgpack:"L"`
	Width  float64 `json:"W" msgpack:"W"`
	Height float64 `json:"H" msgpack:"H"`
}

// Volume returns the container volume.
func (c Container) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// Footprint returns the container floor.
func (c Container) Footprint() geom.Rect {
	return geom.Rect{W: c.Length, H: c.Width}
}

// Footprint records where a fill100 item came from on the 2D grid.
type Footprint struct {
	Layer int `json:"layer" msgpack:"layer"`
	X     int `json:"x" msgpack:"x"`
	Y     int `json:"y" msgpack:"y"`
	W     int `json:"w" msgpack:"w"`
	H     int `json:"h" msgpack:"h"`
}

// Item is a single box drawn from an item source. ID is the item's position
// in the episode's stream.
type Item struct {
	ID        int        `json:"id" msgpack:"id"`
	Length    float64    `json:"l" msgpack:"l"`
	Width     float64    `json:"w" msgpack:"w"`
	Height    float64    `json:"h" msgpack:"h"`
	Mass      float64    `json:"mass,omitempty" msgpack:"mass,omitempty"`
	SKU       string     `json:"sku,omitempty" msgpack:"sku,omitempty"`
	Footprint *Footprint `json:"footprint,omitempty" msgpack:"footprint,omitempty"`
}

// Volume returns the item volume.
func (i Item) Volume() float64 {
	return i.Length * i.Width * i.Height
}

// Weight returns the item's mass, or its volume when no mass was drawn.
func (i Item) Weight() float64 {
	if i.Mass > 0 {
		return i.Mass
	}
	return i.Volume()
}

// Orientation is one of the six axis-aligned permutations of an item's
// extents. Orientation 0 is identity and 1 swaps length and width, so the
// yaw-only rotation set keeps the item's height vertical.
type Orientation int

const (
	OrientLWH Orientation = iota
	OrientWLH
	OrientLHW
	OrientHLW
	OrientWHL
	OrientHWL
)

// Dims returns the item's (x, y, z) extents in orientation o.
func (i Item) Dims(o Orientation) (l, w, h float64) {
	switch o {
	case OrientWLH:
		return i.Width, i.Length, i.Height
	case OrientLHW:
		return i.Length, i.Height, i.Width
	case OrientHLW:
		return i.Height, i.Length, i.Width
	case OrientWHL:
		return i.Width, i.Height, i.Length
	case OrientHWL:
		return i.Height, i.Width, i.Length
	default:
		return i.Length, i.Width, i.Height
	}
}

// Placement is an item pose: lower corner plus oriented extents.
type Placement struct {
	ItemID      int         `json:"item_id" msgpack:"item_id"`
	X           float64     `json:"x" msgpack:"x"`
	Y           float64     `json:"y" msgpack:"y"`
	Z           float64     `json:"z" msgpack:"z"`
	Orientation Orientation `json:"orientation" msgpack:"orientation"`
	Length      float64     `json:"l" msgpack:"l"`
	Width       float64     `json:"w" msgpack:"w"`
	Height      float64     `json:"h" msgpack:"h"`
}

// Box returns the placement as a geometric box.
func (p Placement) Box() geom.Box {
	return geom.Box{X: p.X, Y: p.Y, Z: p.Z, L: p.Length, W: p.Width, H: p.Height}
}

// Violation names why a step was not a clean placement.
type Violation string

const (
	ViolationNone           Violation = ""
	ViolationOutOfBounds    Violation = "out_of_bounds"
	ViolationCollision      Violation = "collision"
	ViolationUnsupported    Violation = "unsupported"
	ViolationNoPosition     Violation = "no_position"
	ViolationCOGOutOfBounds Violation = "cog_out_of_tolerance"
)

// Violations lists every violation kind in reporting order.
var Violations = []Violation{
	ViolationOutOfBounds,
	ViolationCollision,
	ViolationUnsupported,
	ViolationNoPosition,
	ViolationCOGOutOfBounds,
}

// StepRecord is one attempted item of an episode. Placement is set only when
// the item was committed; Attempt holds the rejected pose otherwise.
type StepRecord struct {
	Step      int        `json:"step" msgpack:"step"`
	ItemID    int        `json:"item_id" msgpack:"item_id"`
	Visible   []int      `json:"visible" msgpack:"visible"`
	Item      Item       `json:"item" msgpack:"item"`
	Placement *Placement `json:"placement" msgpack:"placement"`
	Attempt   *Placement `json:"attempt,omitempty" msgpack:"attempt,omitempty"`
	Placed    bool       `json:"placed" msgpack:"placed"`
	Feasible  bool       `json:"feasible" msgpack:"feasible"`
	Violation Violation  `json:"violation,omitempty" msgpack:"violation,omitempty"`
	Negative  bool       `json:"negative,omitempty" msgpack:"negative,omitempty"`
	Support   float64    `json:"support" msgpack:"support"`
	Stable    bool       `json:"stable" msgpack:"stable"`
	COG       [2]float64 `json:"cog" msgpack:"cog"`
	COGOffset [2]float64 `json:"cog_offset" msgpack:"cog_offset"`
	FillRatio float64    `json:"fill_ratio" msgpack:"fill_ratio"`
}

// Termination tells why an episode stopped.
type Termination string

const (
	TerminationSeqLen    Termination = "seq_len"
	TerminationExhausted Termination = "stream_exhausted"
)

// Episode is one simulated stuffing run; the unit of output.
type Episode struct {
	ID          string       `json:"id" msgpack:"id"`
	Index       int          `json:"index" msgpack:"index"`
	Mode        Mode         `json:"mode" msgpack:"mode"`
	Seed        int64        `json:"seed" msgpack:"seed"`
	EpisodeSeed int64        `json:"episode_seed" msgpack:"episode_seed"`
	Container   Container    `json:"container" msgpack:"container"`
	LookaheadK  int          `json:"lookahead_k" msgpack:"lookahead_k"`
	AccessibleK int          `json:"accessible_k,omitempty" msgpack:"accessible_k,omitempty"`
	KnownTotal  int          `json:"known_total,omitempty" msgpack:"known_total,omitempty"`
	DeltaCOG    float64      `json:"delta_cog" msgpack:"delta_cog"`
	SeqLen      int          `json:"seq_len" msgpack:"seq_len"`
	Termination Termination  `json:"termination" msgpack:"termination"`
	Steps       []StepRecord `json:"steps" msgpack:"steps"`
}

// FillRatio returns the fill ratio after the last step.
func (e Episode) FillRatio() float64 {
	if len(e.Steps) == 0 {
		return 0
	}
	return e.Steps[len(e.Steps)-1].FillRatio
}

// PlacedCount returns the number of committed items.
func (e Episode) PlacedCount() int {
	n := 0
	for _, s := range e.Steps {
		if s.Placed {
			n++
		}
	}
	return n
}

// FeasibleCount returns the number of steps labeled feasible.
func (e Episode) FeasibleCount() int {
	n := 0
	for _, s := range e.Steps {
		if s.Feasible {
			n++
		}
	}
	return n
}

// Placements returns the committed placements in step order.
func (e Episode) Placements() []Placement {
	var out []Placement
	for _, s := range e.Steps {
		if s.Placement != nil {
			out = append(out, *s.Placement)
		}
	}
	return out
}

// episodeNamespace scopes episode ids so they never collide with other
// name-based UUIDs.
var episodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/piwi3910/StuffGen/episode"))

// EpisodeID returns the stable id of episode index in a run.
func EpisodeID(mode Mode, seed int64, index int) string {
	return uuid.NewSHA1(episodeNamespace, []byte(fmt.Sprintf("%s/%d/%d", mode, seed, index))).String()
}

// RunID returns the stable id of a whole run.
func RunID(mode Mode, seed int64, n int) string {
	return uuid.NewSHA1(episodeNamespace, []byte(fmt.Sprintf("run/%s/%d/%d", mode, seed, n))).String()
}

// ItemTemplate is one SKU of an item catalog.
type ItemTemplate struct {
	Label    string  `json:"label"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Mass     float64 `json:"mass,omitempty"`
	Quantity int     `json:"quantity"`
}

// Validate rejects templates that cannot describe a physical item. Errors
// wrap ErrInvalidConfig.
func (t ItemTemplate) Validate() error {
	for _, side := range []struct {
		name string
		v    float64
	}{{"length", t.Length}, {"width", t.Width}, {"height", t.Height}} {
		if !(side.v > 0) || math.IsInf(side.v, 1) {
			return fmt.Errorf("%w: template %q: %s must be > 0, got %g", ErrInvalidConfig, t.Label, side.name, side.v)
		}
	}
	if !(t.Mass >= 0) || math.IsInf(t.Mass, 1) {
		return fmt.Errorf("%w: template %q: mass must be >= 0, got %g", ErrInvalidConfig, t.Label, t.Mass)
	}
	return nil
}

// ValidateCatalog checks every template of a catalog.
func ValidateCatalog(catalog []ItemTemplate) error {
	for i, t := range catalog {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return nil
}
