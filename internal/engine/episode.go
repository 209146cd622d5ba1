package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/piwi3910/StuffGen/internal/model"
	"github.com/piwi3910/StuffGen/internal/source"
	"github.com/piwi3910/StuffGen/internal/window"
)

// ErrFinalized is returned when a finalized generator is asked for more work.
var ErrFinalized = errors.New("episode already finalized")

type generatorState int

const (
	stateInit generatorState = iota
	stateRunning
	stateFinalized
)

// Generator runs a single episode step by step. It moves from INIT to
// RUNNING on the first step and to FINALIZED once Finalize is called.
type Generator struct {
	settings model.Settings
	episode  model.Episode
	occ      *Occupancy
	win      window.Window
	policy   *Policy
	state    generatorState
}

// NewGenerator prepares episode index of a run. The episode's random source is
// derived from the master seed and the index only. Invalid settings are
// rejected before any item is drawn.
func NewGenerator(s model.Settings, index int, catalog []model.ItemTemplate) (*Generator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	seed := DeriveSeed(s.Seed, index)
	rng := newRand(seed)
	items, err := source.Build(s, rng, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build item stream: %w", err)
	}

	ep := model.Episode{
		ID:          model.EpisodeID(s.Mode, s.Seed, index),
		Index:       index,
		Mode:        s.Mode,
		Seed:        s.Seed,
		EpisodeSeed: seed,
		Container:   s.Container(),
		LookaheadK:  s.LookaheadK,
		DeltaCOG:    s.DeltaCOG,
		SeqLen:      s.SeqLen,
		Steps:       make([]model.StepRecord, 0, s.SeqLen),
	}
	if s.Mode == model.ModeSemiOnline {
		ep.AccessibleK = s.AccessibleK
		ep.KnownTotal = s.KnownTotal
	}

	return &Generator{
		settings: s,
		episode:  ep,
		occ:      NewOccupancy(s.Container()),
		win:      window.New(s, items, rng),
		policy:   NewPolicy(s, rng),
	}, nil
}

// Done reports whether the episode has reached seq_len steps or run out of
// items.
func (g *Generator) Done() bool {
	return len(g.episode.Steps) >= g.settings.SeqLen || g.win.Len() == 0
}

// Step performs one step and returns its record. ok is false when the
// episode is already done and no step was taken.
func (g *Generator) Step() (rec model.StepRecord, ok bool, err error) {
	if g.state == stateFinalized {
		return model.StepRecord{}, false, ErrFinalized
	}
	if g.Done() {
		return model.StepRecord{}, false, nil
	}
	g.state = stateRunning

	visible := g.win.Visible()
	prop := g.policy.Propose(g.occ, visible)
	item, err := g.win.Take(prop.Item.ID)
	if err != nil {
		return model.StepRecord{}, false, fmt.Errorf("failed to consume item %d: %w", prop.Item.ID, err)
	}

	rec = model.StepRecord{
		Step:     len(g.episode.Steps),
		ItemID:   item.ID,
		Visible:  visibleIDs(visible),
		Item:     item,
		Negative: prop.Negative,
	}

	switch {
	case prop.Placement == nil:
		rec.Violation = model.ViolationNoPosition
	default:
		pl := *prop.Placement
		violation, support := Evaluate(g.occ, pl, g.settings.SupportCoverage)
		rec.Support = support
		if violation != model.ViolationNone {
			rec.Attempt = &pl
			rec.Violation = violation
			break
		}
		if err := g.occ.Commit(pl, item.Weight()); err != nil {
			return model.StepRecord{}, false, err
		}
		rec.Placement = &pl
		rec.Placed = true
		rec.Feasible = true
	}

	x, y := CenterOfGravity(g.occ)
	dx, dy := COGOffset(x, y, g.occ.container)
	rec.COG = [2]float64{x, y}
	rec.COGOffset = [2]float64{dx, dy}
	rec.Stable = Stable(g.occ, g.settings.DeltaCOG)
	rec.FillRatio = g.occ.FillRatio()

	// A commit that pushes the center of gravity out of tolerance stays
	// committed but is not a feasible label.
	if rec.Placed && !rec.Stable {
		rec.Feasible = false
		rec.Violation = model.ViolationCOGOutOfBounds
	}

	g.episode.Steps = append(g.episode.Steps, rec)
	return rec, true, nil
}

// Finalize closes the episode and returns it.
func (g *Generator) Finalize() (model.Episode, error) {
	if g.state == stateFinalized {
		return model.Episode{}, ErrFinalized
	}
	g.state = stateFinalized
	if len(g.episode.Steps) >= g.settings.SeqLen {
		g.episode.Termination = model.TerminationSeqLen
	} else {
		g.episode.Termination = model.TerminationExhausted
	}
	return g.episode, nil
}

// Run steps until the episode is done and finalizes it.
func (g *Generator) Run(ctx context.Context) (model.Episode, error) {
	for !g.Done() {
		if err := ctx.Err(); err != nil {
			return model.Episode{}, err
		}
		if _, _, err := g.Step(); err != nil {
			return model.Episode{}, err
		}
	}
	return g.Finalize()
}

// Generate builds episode index in one call.
func Generate(ctx context.Context, s model.Settings, index int, catalog []model.ItemTemplate) (model.Episode, error) {
	g, err := NewGenerator(s, index, catalog)
	if err != nil {
		return model.Episode{}, err
	}
	return g.Run(ctx)
}

func visibleIDs(items []model.Item) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
