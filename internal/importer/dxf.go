package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/StuffGen/internal/model"
)

type point struct {
	X, Y float64
}

// outline is a closed polygon.
type outline []point

func (o outline) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range o {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// segment is a line segment, used for chaining disconnected LINE entities
// into closed outlines.
type segment struct {
	start point
	end   point
}

// ImportDXF reads item footprints from a floor-plan drawing. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes a box of its
// bounding rectangle and the given height. Identical footprints are merged
// into one template with a quantity.
func ImportDXF(path string, height float64) ImportResult {
	result := ImportResult{}

	if height <= 0 {
		result.Errors = append(result.Errors, "DXF import needs a positive item height")
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []outline
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := lwPolylineToOutline(e)
			if len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			outlines = append(outlines, outline{{cx - r, cy - r}, {cx + r, cy - r}, {cx + r, cy + r}, {cx - r, cy + r}})

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			for i := 0; i < len(pts)-1; i++ {
				segments = append(segments, segment{start: pts[i], end: pts[i+1]})
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	index := make(map[[2]float64]int)
	for _, o := range outlines {
		minX, minY, maxX, maxY := o.bounds()
		l, w := round(maxX-minX), round(maxY-minY)
		if l < 1e-6 || w < 1e-6 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped degenerate shape (%g x %g)", l, w))
			continue
		}
		key := [2]float64{l, w}
		if i, ok := index[key]; ok {
			result.Templates[i].Quantity++
			continue
		}
		index[key] = len(result.Templates)
		result.Templates = append(result.Templates, model.ItemTemplate{
			Label:    fmt.Sprintf("DXF Item %d", len(result.Templates)+1),
			Length:   l,
			Width:    w,
			Height:   height,
			Quantity: 1,
		})
	}

	return result
}

// round trims drawing noise to 1e-6 units.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// lwPolylineToOutline converts a LWPOLYLINE to an outline. Bulge values on
// vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) outline {
	var o outline
	for i, v := range lw.Vertices {
		current := point{v[0], v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			o = append(o, current)
			continue
		}
		nv := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgeArcPoints(current, point{nv[0], nv[1]}, bulge, 32)
		o = append(o, arc[:len(arc)-1]...)
	}
	return o
}

// bulgeArcPoints samples the arc between two vertices. The bulge is the
// tangent of a quarter of the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, n int) []point {
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX, perpY := -dy/chord, dx/chord
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	dist := radius - sagitta
	cx, cy := mx+perpX*dist, my+perpY*dist

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if end > start {
			end -= 2 * math.Pi
		}
	} else if end < start {
		end += 2 * math.Pi
	}

	pts := make([]point, n+1)
	for i := range pts {
		a := start + float64(i)/float64(n)*(end-start)
		pts[i] = point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

func arcToPoints(a *entity.Arc, n int) []point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}

	pts := make([]point, n+1)
	for i := range pts {
		ang := start + float64(i)/float64(n)*(end-start)
		pts[i] = point{cx + r*math.Cos(ang), cy + r*math.Sin(ang)}
	}
	return pts
}

// chainSegments connects segments whose endpoints lie within tolerance into
// closed outlines, largest first.
func chainSegments(segs []segment, tolerance float64) []outline {
	used := make([]bool, len(segs))
	var outlines []outline

	for start := range segs {
		if used[start] {
			continue
		}
		chain := outline{segs[start].start, segs[start].end}
		used[start] = true

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			outlines = append(outlines, chain)
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return area(outlines[i]) > area(outlines[j])
	})
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// area is the shoelace area of o.
func area(o outline) float64 {
	var s float64
	for i := range o {
		j := (i + 1) % len(o)
		s += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(s) / 2
}
