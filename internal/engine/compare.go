package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/StuffGen/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the episodes generated for a single scenario and the
// statistics computed from them.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Episodes     []model.Episode
	Err          error
	MeanFill     float64
	BestFill     float64
	FeasibleRate float64
	StableRate   float64
	NoPosition   int
	Exhausted    int
}

// CompareScenarios generates n episodes under each scenario and returns the
// results in scenario order. A scenario with invalid settings reports its
// error in Err and does not stop the comparison.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, n int, catalog []model.ItemTemplate) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		s := scenario.Settings
		s.NSequences = n

		var sink Collector
		_, err := NewDriver(s, &sink, WithCatalog(catalog)).Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		results = append(results, summarizeScenario(scenario, sink.Episodes))
	}

	return results, nil
}

func summarizeScenario(scenario ComparisonScenario, episodes []model.Episode) ComparisonResult {
	r := ComparisonResult{Scenario: scenario, Episodes: episodes}

	var steps, feasible, stable int
	for _, ep := range episodes {
		fill := ep.FillRatio()
		r.MeanFill += fill
		if fill > r.BestFill {
			r.BestFill = fill
		}
		if ep.Termination == model.TerminationExhausted {
			r.Exhausted++
		}
		for _, st := range ep.Steps {
			steps++
			if st.Feasible {
				feasible++
			}
			if st.Stable {
				stable++
			}
			if st.Violation == model.ViolationNoPosition {
				r.NoPosition++
			}
		}
	}
	if len(episodes) > 0 {
		r.MeanFill /= float64(len(episodes))
	}
	if steps > 0 {
		r.FeasibleRate = float64(feasible) / float64(steps)
		r.StableRate = float64(stable) / float64(steps)
	}
	return r
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Same container and sizes under every other mode.
	for _, mode := range model.Modes {
		if mode == base.Mode {
			continue
		}
		alt := base
		alt.Mode = mode
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Mode %s", mode),
			Settings: alt,
		})
	}

	if base.NegativeRate > 0 {
		clean := base
		clean.NegativeRate = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Negative Examples",
			Settings: clean,
		})
	}

	if base.Rotation != model.RotationAll {
		all := base
		all.Rotation = model.RotationAll
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "All Rotations",
			Settings: all,
		})
	}
	if base.Rotation != model.RotationNone {
		fixed := base
		fixed.Rotation = model.RotationNone
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Rotation",
			Settings: fixed,
		})
	}

	if base.LookaheadK > 1 {
		greedy := base
		greedy.LookaheadK = 1
		greedy.AccessibleK = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Lookahead 1",
			Settings: greedy,
		})
	}

	return scenarios
}
