package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

func scenarioSettings() model.Settings {
	s := model.DefaultSettings()
	s.Seed = 42
	s.SeqLen = 5
	s.LookaheadK = 3
	s.DeltaCOG = 0.05
	return s
}

func assertValidEpisode(t *testing.T, ep model.Episode) {
	t.Helper()
	placements := ep.Placements()
	for i, p := range placements {
		assert.True(t, Fits(ep.Container, p), "placement %d out of bounds", i)
		for j := i + 1; j < len(placements); j++ {
			assert.False(t, geom.BoxesOverlap(p.Box(), placements[j].Box()), "placements %d and %d overlap", i, j)
		}
	}

	seen := make(map[int]bool)
	prev := 0.0
	for i, st := range ep.Steps {
		assert.Equal(t, i, st.Step)
		assert.False(t, seen[st.ItemID], "item %d consumed twice", st.ItemID)
		seen[st.ItemID] = true
		assert.Contains(t, st.Visible, st.ItemID)
		assert.GreaterOrEqual(t, st.FillRatio, prev)
		assert.LessOrEqual(t, st.FillRatio, 1.0+1e-9)
		prev = st.FillRatio

		if st.Placed {
			assert.NotNil(t, st.Placement)
			assert.Nil(t, st.Attempt)
		} else {
			assert.Nil(t, st.Placement)
			assert.False(t, st.Feasible)
			assert.NotEqual(t, model.ViolationNone, st.Violation)
		}
		if st.Feasible {
			assert.True(t, st.Stable)
			assert.Equal(t, model.ViolationNone, st.Violation)
		}
	}
}

func TestGenerateScenario(t *testing.T) {
	s := scenarioSettings()
	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)

	assert.Len(t, ep.Steps, 5)
	assert.Equal(t, model.TerminationSeqLen, ep.Termination)
	assert.Equal(t, model.EpisodeID(s.Mode, 42, 0), ep.ID)
	assert.Equal(t, DeriveSeed(42, 0), ep.EpisodeSeed)
	for _, st := range ep.Steps {
		assert.LessOrEqual(t, len(st.Visible), 3)
	}
	assertValidEpisode(t, ep)
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, mode := range model.Modes {
		t.Run(string(mode), func(t *testing.T) {
			s := model.DefaultSettings()
			s.Mode = mode
			s.SeqLen = 20
			a, err := Generate(context.Background(), s, 3, nil)
			require.NoError(t, err)
			b, err := Generate(context.Background(), s, 3, nil)
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assertValidEpisode(t, a)
		})
	}
}

func TestGenerateEpisodesDiffer(t *testing.T) {
	s := scenarioSettings()
	a, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)
	b, err := Generate(context.Background(), s, 1, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Steps[0].Item, b.Steps[0].Item)
}

func TestGenerateSemiOnline(t *testing.T) {
	s := model.DefaultSettings()
	s.Mode = model.ModeSemiOnline
	s.AccessibleK = 5
	s.KnownTotal = 30
	s.SeqLen = 50

	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)
	assert.Len(t, ep.Steps, 30, "the pool runs out before seq_len")
	assert.Equal(t, model.TerminationExhausted, ep.Termination)
	assert.Equal(t, 5, ep.AccessibleK)
	assert.Equal(t, 30, ep.KnownTotal)

	ids := make(map[int]bool)
	for _, st := range ep.Steps {
		assert.LessOrEqual(t, len(st.Visible), 5)
		ids[st.ItemID] = true
	}
	assert.Len(t, ids, 30)
	assertValidEpisode(t, ep)
}

func TestGenerateFill100(t *testing.T) {
	s := model.DefaultSettings()
	s.Mode = model.ModeFill100
	s.NegativeRate = 0
	s.HeightMode = model.HeightFixed
	s.SameHeight = 0.2
	s.SeqLen = 24

	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)
	assert.Len(t, ep.Steps, 24)
	for _, st := range ep.Steps {
		assert.NotNil(t, st.Item.Footprint)
	}
	assertValidEpisode(t, ep)
}

func TestGenerateNoPosition(t *testing.T) {
	s := scenarioSettings()
	s.NegativeRate = 0
	catalog := []model.ItemTemplate{{Label: "oversize", Length: 0.5, Width: 0.5, Height: 2, Quantity: 1}}
	s.Rotation = model.RotationNone

	ep, err := Generate(context.Background(), s, 0, catalog)
	require.NoError(t, err)
	require.Len(t, ep.Steps, 5)
	for _, st := range ep.Steps {
		assert.Equal(t, model.ViolationNoPosition, st.Violation)
		assert.Nil(t, st.Placement)
		assert.Nil(t, st.Attempt)
		assert.False(t, st.Placed)
	}
	assert.Zero(t, ep.FillRatio())
}

func TestGenerateNegativeExamples(t *testing.T) {
	s := scenarioSettings()
	s.NegativeRate = 1
	s.SeqLen = 10
	s.LookaheadK = 3

	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)
	for _, st := range ep.Steps {
		assert.True(t, st.Negative)
		assert.False(t, st.Placed)
		assert.NotNil(t, st.Attempt)
	}
	assert.Zero(t, ep.FillRatio())
}

func TestGenerateRecordsCOG(t *testing.T) {
	s := model.DefaultSettings()
	s.NegativeRate = 0
	s.SeqLen = 30
	s.DeltaCOG = 0.5

	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)

	o := NewOccupancy(ep.Container)
	for _, st := range ep.Steps {
		if st.Placement != nil {
			require.NoError(t, o.Commit(*st.Placement, st.Item.Weight()))
		}
		x, y := CenterOfGravity(o)
		assert.InDelta(t, x, st.COG[0], 1e-9)
		assert.InDelta(t, y, st.COG[1], 1e-9)
		assert.True(t, st.Stable, "delta 0.5 accepts any center inside the footprint")
	}
}

func TestGenerateFlagsCOGViolation(t *testing.T) {
	s := scenarioSettings()
	s.NegativeRate = 0
	s.DeltaCOG = 0
	s.SeqLen = 10
	s.LookaheadK = 5

	ep, err := Generate(context.Background(), s, 0, nil)
	require.NoError(t, err)

	flagged := false
	for _, st := range ep.Steps {
		if st.Violation == model.ViolationCOGOutOfBounds {
			flagged = true
			assert.True(t, st.Placed)
			assert.False(t, st.Feasible)
			assert.False(t, st.Stable)
		}
	}
	assert.True(t, flagged)
}

func TestGeneratorLifecycle(t *testing.T) {
	g, err := NewGenerator(scenarioSettings(), 0, nil)
	require.NoError(t, err)

	rec, ok, err := g.Step()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, rec.Step)

	for !g.Done() {
		_, _, err := g.Step()
		require.NoError(t, err)
	}
	_, ok, err = g.Step()
	require.NoError(t, err)
	assert.False(t, ok)

	ep, err := g.Finalize()
	require.NoError(t, err)
	assert.Len(t, ep.Steps, 5)

	_, _, err = g.Step()
	assert.ErrorIs(t, err, ErrFinalized)
	_, err = g.Finalize()
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestNewGeneratorRejectsInvalidSettings(t *testing.T) {
	s := scenarioSettings()
	s.Length = 0
	_, err := NewGenerator(s, 0, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestGenerateRejectsBadCatalog(t *testing.T) {
	catalog := []model.ItemTemplate{{Label: "warped", Length: -0.2, Width: 0.2, Height: 0.2, Quantity: 1}}
	var err error
	assert.NotPanics(t, func() {
		_, err = Generate(context.Background(), scenarioSettings(), 0, catalog)
	})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, scenarioSettings(), 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
