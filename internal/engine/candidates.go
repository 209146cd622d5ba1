package engine

import (
	"iter"
	"slices"
	"sort"

	"github.com/piwi3910/StuffGen/internal/geom"
	"github.com/piwi3910/StuffGen/internal/model"
)

// Pose is a candidate position and orientation for one item.
type Pose struct {
	X, Y, Z     float64
	Orientation model.Orientation
	L, W, H     float64
}

// Placement binds the pose to an item.
func (p Pose) Placement(itemID int) model.Placement {
	return model.Placement{
		ItemID:      itemID,
		X:           p.X,
		Y:           p.Y,
		Z:           p.Z,
		Orientation: p.Orientation,
		Length:      p.L,
		Width:       p.W,
		Height:      p.H,
	}
}

// Candidates yields the bottom-left-fill poses for item in deterministic
// order. X coordinates are 0 and the right faces of committed boxes, Y
// coordinates are 0 and their back faces; every (x, y, orientation) whose
// footprint lies on the floor is dropped to its resting height. Poses come
// out sorted by (z, y, x, orientation). The sequence is finite and can be
// ranged over again; it is computed when iteration starts.
func Candidates(o *Occupancy, item model.Item, orientations []model.Orientation) iter.Seq[Pose] {
	return func(yield func(Pose) bool) {
		for _, p := range candidatePoses(o, item, orientations) {
			if !yield(p) {
				return
			}
		}
	}
}

func candidatePoses(o *Occupancy, item model.Item, orientations []model.Orientation) []Pose {
	c := o.container
	xs := []float64{0}
	ys := []float64{0}
	for _, p := range o.placements {
		xs = append(xs, p.X+p.Length)
		ys = append(ys, p.Y+p.Width)
	}
	xs = uniqueSorted(xs)
	ys = uniqueSorted(ys)

	var poses []Pose
	seen := make(map[[3]float64]bool)
	for _, orient := range orientations {
		l, w, h := item.Dims(orient)
		// Orientations with identical extents produce identical poses.
		if seen[[3]float64{l, w, h}] {
			continue
		}
		seen[[3]float64{l, w, h}] = true

		for _, x := range xs {
			if x+l > c.Length+geom.Eps {
				continue
			}
			for _, y := range ys {
				if y+w > c.Width+geom.Eps {
					continue
				}
				z := o.DropHeight(geom.Rect{X: x, Y: y, W: l, H: w})
				poses = append(poses, Pose{X: x, Y: y, Z: z, Orientation: orient, L: l, W: w, H: h})
			}
		}
	}

	sort.SliceStable(poses, func(i, j int) bool {
		a, b := poses[i], poses[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Orientation < b.Orientation
	})
	return poses
}

// uniqueSorted sorts vals and drops values within geom.Eps of their
// predecessor.
func uniqueSorted(vals []float64) []float64 {
	slices.Sort(vals)
	out := vals[:0]
	for _, v := range vals {
		if len(out) > 0 && v-out[len(out)-1] <= geom.Eps {
			continue
		}
		out = append(out, v)
	}
	return out
}
