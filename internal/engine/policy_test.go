package engine

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StuffGen/internal/model"
)

func testPolicy(rotation model.Rotation) *Policy {
	s := model.DefaultSettings()
	s.Rotation = rotation
	s.NegativeRate = 0
	s.Selection = model.SelectFirst
	return NewPolicy(s, rand.New(rand.NewSource(1)))
}

func TestCandidatesOrder(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.5), 1))
	item := model.Item{ID: 1, Length: 0.3, Width: 0.2, Height: 0.1}

	poses := slices.Collect(Candidates(o, item, model.RotationYaw.Orientations()))
	require.NotEmpty(t, poses)
	for i := 1; i < len(poses); i++ {
		a, b := poses[i-1], poses[i]
		less := a.Z < b.Z ||
			(a.Z == b.Z && a.Y < b.Y) ||
			(a.Z == b.Z && a.Y == b.Y && a.X < b.X) ||
			(a.Z == b.Z && a.Y == b.Y && a.X == b.X && a.Orientation <= b.Orientation)
		assert.True(t, less, "poses %d and %d out of order", i-1, i)
	}
	assert.Equal(t, 0.0, poses[0].Z)
	assert.Equal(t, 0.0, poses[0].Y)
	assert.Equal(t, 0.5, poses[0].X)

	again := slices.Collect(Candidates(o, item, model.RotationYaw.Orientations()))
	assert.Equal(t, poses, again, "the sequence can be ranged over again")
}

func TestCandidatesSkipDuplicateOrientations(t *testing.T) {
	o := NewOccupancy(unitContainer)
	cube := model.Item{Length: 0.2, Width: 0.2, Height: 0.2}
	poses := slices.Collect(Candidates(o, cube, model.RotationAll.Orientations()))
	assert.Len(t, poses, 1)
}

func TestProposeTooTallItem(t *testing.T) {
	o := NewOccupancy(unitContainer)
	p := testPolicy(model.RotationAll)
	prop := p.Propose(o, []model.Item{{ID: 0, Length: 2, Width: 0.5, Height: 0.5}})
	assert.Nil(t, prop.Placement)
	assert.False(t, prop.Negative)
}

func TestProposePrefersSupportedPose(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 1, 0.5), 1))
	p := testPolicy(model.RotationNone)

	prop := p.Propose(o, []model.Item{{ID: 1, Length: 0.5, Width: 0.5, Height: 0.2}})
	require.NotNil(t, prop.Placement)
	assert.Equal(t, 0.5, prop.Placement.X)
	assert.Equal(t, 0.0, prop.Placement.Z)
}

func TestProposeFallsBackToUnsupportedPose(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 1, 0.5), 1))
	p := testPolicy(model.RotationNone)

	prop := p.Propose(o, []model.Item{{ID: 1, Length: 1, Width: 1, Height: 0.2}})
	require.NotNil(t, prop.Placement)
	assert.InDelta(t, 0.5, prop.Placement.Z, 1e-12)

	violation, support := Evaluate(o, *prop.Placement, 0.8)
	assert.Equal(t, model.ViolationUnsupported, violation)
	assert.InDelta(t, 0.5, support, 1e-9)
}

func TestEvaluateOrder(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.5), 1))

	v, _ := Evaluate(o, place(1, 0.8, 0, 0, 0.5, 0.5, 0.5), 0.8)
	assert.Equal(t, model.ViolationOutOfBounds, v)

	v, _ = Evaluate(o, place(1, 0.25, 0, 0.25, 0.5, 0.5, 0.5), 0.8)
	assert.Equal(t, model.ViolationCollision, v)

	v, _ = Evaluate(o, place(1, 0, 0, 0.6, 0.5, 0.5, 0.2), 0.8)
	assert.Equal(t, model.ViolationUnsupported, v)

	v, s := Evaluate(o, place(1, 0, 0, 0.5, 0.5, 0.5, 0.2), 0.8)
	assert.Equal(t, model.ViolationNone, v)
	assert.InDelta(t, 1, s, 1e-9)
}

func TestNegativeProposalsAreInfeasible(t *testing.T) {
	s := model.DefaultSettings()
	s.NegativeRate = 1
	p := NewPolicy(s, rand.New(rand.NewSource(5)))

	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(100, 0, 0, 0, 1, 1, 0.3), 1))
	for i := 0; i < 50; i++ {
		item := model.Item{ID: i, Length: 0.3, Width: 0.3, Height: 0.2}
		prop := p.Propose(o, []model.Item{item})
		require.True(t, prop.Negative)
		require.NotNil(t, prop.Placement)
		v, _ := Evaluate(o, *prop.Placement, s.SupportCoverage)
		assert.Contains(t, []model.Violation{model.ViolationCollision, model.ViolationUnsupported, model.ViolationOutOfBounds}, v)
	}
}
