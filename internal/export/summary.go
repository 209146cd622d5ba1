// Package export renders datasets into reports: summary statistics, PDF
// previews with QR-coded reproduction labels, Excel workbooks and DXF floor
// plans.
package export

import (
	"math"

	"github.com/piwi3910/StuffGen/internal/model"
)

// VolumeBins is the number of buckets in the item volume histogram.
const VolumeBins = 10

// Bin is one bucket of a histogram over [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Summary aggregates a set of episodes.
type Summary struct {
	Episodes     int                     `json:"episodes"`
	Steps        int                     `json:"steps"`
	Placed       int                     `json:"placed"`
	Negative     int                     `json:"negative"`
	MeanFill     float64                 `json:"mean_fill"`
	MinFill      float64                 `json:"min_fill"`
	MaxFill      float64                 `json:"max_fill"`
	FeasibleRate float64                 `json:"feasible_rate"`
	StableRate   float64                 `json:"stable_rate"`
	Exhausted    int                     `json:"exhausted"`
	Violations   map[model.Violation]int `json:"violations"`
	ItemVolumes  []Bin                   `json:"item_volumes"`
	MeanDims     [3]float64              `json:"mean_dims"`
	Modes        []model.Mode            `json:"modes"`
}

// Summarize computes statistics over episodes. Fill ratios are taken after
// each episode's last step.
func Summarize(episodes []model.Episode) Summary {
	s := Summary{
		Episodes:   len(episodes),
		Violations: make(map[model.Violation]int),
	}
	if len(episodes) == 0 {
		return s
	}

	s.MinFill = math.Inf(1)
	var feasible, stable int
	var volumes []float64
	var maxVolume float64
	seenMode := make(map[model.Mode]bool)

	for _, ep := range episodes {
		if !seenMode[ep.Mode] {
			seenMode[ep.Mode] = true
			s.Modes = append(s.Modes, ep.Mode)
		}
		fill := ep.FillRatio()
		s.MeanFill += fill
		s.MinFill = math.Min(s.MinFill, fill)
		s.MaxFill = math.Max(s.MaxFill, fill)
		if ep.Termination == model.TerminationExhausted {
			s.Exhausted++
		}

		for _, st := range ep.Steps {
			s.Steps++
			if st.Placed {
				s.Placed++
			}
			if st.Feasible {
				feasible++
			}
			if st.Stable {
				stable++
			}
			if st.Negative {
				s.Negative++
			}
			if st.Violation != model.ViolationNone {
				s.Violations[st.Violation]++
			}

			v := st.Item.Volume()
			volumes = append(volumes, v)
			maxVolume = math.Max(maxVolume, v)
			s.MeanDims[0] += st.Item.Length
			s.MeanDims[1] += st.Item.Width
			s.MeanDims[2] += st.Item.Height
		}
	}

	s.MeanFill /= float64(len(episodes))
	if s.Steps > 0 {
		n := float64(s.Steps)
		s.FeasibleRate = float64(feasible) / n
		s.StableRate = float64(stable) / n
		for i := range s.MeanDims {
			s.MeanDims[i] /= n
		}
	}
	s.ItemVolumes = histogram(volumes, maxVolume, VolumeBins)
	return s
}

// histogram buckets vals into n equal bins over [0, upper]. The upper value
// falls into the last bin.
func histogram(vals []float64, upper float64, n int) []Bin {
	if len(vals) == 0 || upper <= 0 {
		return nil
	}
	width := upper / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = float64(i) * width
		bins[i].Hi = float64(i+1) * width
	}
	for _, v := range vals {
		i := int(v / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}
