package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

var unitContainer = model.Container{Length: 1, Width: 1, Height: 1}

func place(id int, x, y, z, l, w, h float64) model.Placement {
	return model.Placement{ItemID: id, X: x, Y: y, Z: z, Length: l, Width: w, Height: h}
}

func TestFits(t *testing.T) {
	assert.True(t, Fits(unitContainer, place(0, 0, 0, 0, 1, 1, 1)))
	assert.True(t, Fits(unitContainer, place(0, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5)))
	assert.False(t, Fits(unitContainer, place(0, 0.6, 0, 0, 0.5, 0.5, 0.5)))
	assert.False(t, Fits(unitContainer, place(0, 0, 0, -0.1, 0.5, 0.5, 0.5)))
	assert.Panics(t, func() { Fits(unitContainer, place(0, 0, 0, 0, -1, 0.5, 0.5)) })
}

func TestCollidesAllowsTouchingFaces(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.5), 1))

	assert.False(t, o.Collides(place(1, 0.5, 0, 0, 0.5, 0.5, 0.5)), "side by side")
	assert.False(t, o.Collides(place(1, 0, 0, 0.5, 0.5, 0.5, 0.5)), "stacked")
	assert.True(t, o.Collides(place(1, 0.25, 0.25, 0.25, 0.5, 0.5, 0.5)))
}

func TestCommitRejectsDuplicates(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(3, 0, 0, 0, 0.2, 0.2, 0.2), 1))
	err := o.Commit(place(3, 0.5, 0.5, 0, 0.2, 0.2, 0.2), 1)
	assert.ErrorIs(t, err, ErrDuplicateItem)
	assert.Equal(t, 1, o.Len())
}

func TestSupportRatio(t *testing.T) {
	o := NewOccupancy(unitContainer)
	assert.Equal(t, 1.0, o.SupportRatio(place(0, 0.3, 0.3, 0, 0.2, 0.2, 0.2)), "floor")

	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 1, 0.5), 1))
	assert.InDelta(t, 0.5, o.SupportRatio(place(1, 0, 0, 0.5, 1, 1, 0.2)), 1e-9)
	assert.InDelta(t, 1.0, o.SupportRatio(place(1, 0, 0, 0.5, 0.5, 0.5, 0.2)), 1e-9)
	assert.Zero(t, o.SupportRatio(place(1, 0, 0, 0.6, 0.5, 0.5, 0.2)), "floating")

	require.NoError(t, o.Commit(place(1, 0.5, 0, 0, 0.5, 0.5, 0.5), 1))
	assert.InDelta(t, 0.75, o.SupportRatio(place(2, 0, 0, 0.5, 1, 1, 0.2)), 1e-9)
	assert.True(t, o.IsSupported(place(2, 0, 0, 0.5, 1, 1, 0.2), 0.75))
	assert.False(t, o.IsSupported(place(2, 0, 0, 0.5, 1, 1, 0.2), 0.8))
}

func TestDropHeight(t *testing.T) {
	o := NewOccupancy(unitContainer)
	assert.Zero(t, o.DropHeight(geom.Rect{W: 1, H: 1}))

	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.3), 1))
	require.NoError(t, o.Commit(place(1, 0.5, 0, 0, 0.5, 0.5, 0.6), 1))
	assert.InDelta(t, 0.6, o.DropHeight(geom.Rect{X: 0.25, W: 0.5, H: 0.5}), 1e-12)
	assert.InDelta(t, 0.3, o.DropHeight(geom.Rect{W: 0.5, H: 0.5}), 1e-12)
	assert.Zero(t, o.DropHeight(geom.Rect{Y: 0.5, W: 1, H: 0.5}), "touching edge is not overlap")
}

func TestFillRatio(t *testing.T) {
	o := NewOccupancy(unitContainer)
	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.5), 1))
	require.NoError(t, o.Commit(place(1, 0.5, 0, 0, 0.5, 0.5, 0.5), 1))
	assert.InDelta(t, 0.25, o.FillRatio(), 1e-12)
	assert.Len(t, o.Placements(), 2)
}

func TestCenterOfGravity(t *testing.T) {
	o := NewOccupancy(unitContainer)
	x, y := CenterOfGravity(o)
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 0.5, y)
	assert.True(t, Stable(o, 0))

	require.NoError(t, o.Commit(place(0, 0, 0, 0, 0.5, 0.5, 0.5), 3))
	assert.True(t, Stable(o, 0), "a single item is stable")

	require.NoError(t, o.Commit(place(1, 0.5, 0, 0, 0.5, 0.5, 0.5), 1))
	x, y = CenterOfGravity(o)
	assert.InDelta(t, (0.25*3+0.75)/4, x, 1e-12)
	assert.InDelta(t, 0.25, y, 1e-12)

	dx, dy := COGOffset(x, y, unitContainer)
	assert.InDelta(t, 0.5-0.375, dx, 1e-12)
	assert.InDelta(t, 0.25, dy, 1e-12)
	assert.False(t, Stable(o, 0.2))
	assert.True(t, Stable(o, 0.25))
}

func TestCOGOffsetNormalizesEachAxis(t *testing.T) {
	c := model.Container{Length: 4, Width: 2, Height: 1}
	dx, dy := COGOffset(3, 1.5, c)
	assert.InDelta(t, 0.25, dx, 1e-12)
	assert.InDelta(t, 0.25, dy, 1e-12)
	assert.True(t, WithinTolerance(3, 1.5, c, 0.25))
	assert.False(t, WithinTolerance(3, 1.5, c, 0.2))
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, DeriveSeed(42, 7), DeriveSeed(42, 7))
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		s := DeriveSeed(42, i)
		assert.False(t, seen[s], "index %d", i)
		seen[s] = true
	}
	assert.NotEqual(t, DeriveSeed(42, 0), DeriveSeed(43, 0))
}
