package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/piwi3910/StuffGen/internal/engine"
	"github.com/piwi3910/StuffGen/internal/export"
	"github.com/piwi3910/StuffGen/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AAFF")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Width(28)
	valueStyle = lipgloss.NewStyle().
			Bold(true)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF99"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))
)

func printField(w io.Writer, label string, value any) {
	fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(fmt.Sprint(value)))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// printReport shows the outcome of a generation run.
func printReport(w io.Writer, path string, r engine.Report) {
	fmt.Fprintln(w, titleStyle.Render("GENERATION COMPLETE"))
	printField(w, "Dataset", path)
	printField(w, "Run ID", r.RunID)
	printField(w, "Mode", r.Mode)
	printField(w, "Episodes written", fmt.Sprintf("%d / %d", r.Written, r.Requested))
	printField(w, "Steps", r.Steps)
	printField(w, "Placed items", r.Placed)
	printField(w, "Exhausted episodes", r.Exhausted)
	printField(w, "Duration", r.Duration.Round(1e6))
	if r.Dropped > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d episodes dropped: %v", r.Dropped, r.DroppedIDs)))
	}
}

// printSummary shows dataset statistics.
func printSummary(w io.Writer, path string, s export.Summary) {
	fmt.Fprintln(w, titleStyle.Render("DATASET SUMMARY"))
	printField(w, "Dataset", path)
	modes := make([]string, len(s.Modes))
	for i, m := range s.Modes {
		modes[i] = string(m)
	}
	printField(w, "Modes", strings.Join(modes, ", "))
	printField(w, "Episodes", s.Episodes)
	printField(w, "Steps", s.Steps)
	printField(w, "Placed items", s.Placed)
	printField(w, "Negative examples", s.Negative)
	printField(w, "Fill (mean / min / max)", fmt.Sprintf("%s / %s / %s", percent(s.MeanFill), percent(s.MinFill), percent(s.MaxFill)))
	printField(w, "Feasibility rate", percent(s.FeasibleRate))
	printField(w, "Stability rate", percent(s.StableRate))
	printField(w, "Exhausted episodes", s.Exhausted)
	printField(w, "Mean item (l x w x h)", fmt.Sprintf("%.3f x %.3f x %.3f", s.MeanDims[0], s.MeanDims[1], s.MeanDims[2]))

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Violations"))
	for _, v := range model.Violations {
		printField(w, "  "+string(v), s.Violations[v])
	}

	if len(s.ItemVolumes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Item volumes"))
		peak := 0
		for _, b := range s.ItemVolumes {
			peak = max(peak, b.Count)
		}
		for _, b := range s.ItemVolumes {
			bar := 0
			if peak > 0 {
				bar = b.Count * 40 / peak
			}
			label := fmt.Sprintf("  %.4f - %.4f", b.Lo, b.Hi)
			fmt.Fprintln(w, labelStyle.Render(label)+strings.Repeat("#", bar)+fmt.Sprintf(" %d", b.Count))
		}
	}
}

// printComparison renders scenario results as a table.
func printComparison(w io.Writer, results []engine.ComparisonResult) {
	fmt.Fprintln(w, titleStyle.Render("SCENARIO COMPARISON"))
	header := fmt.Sprintf("%-24s %10s %10s %10s %10s %8s %10s", "Scenario", "Mean fill", "Best fill", "Feasible", "Stable", "No pos", "Exhausted")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(w, fmt.Sprintf("%-24s ", r.Scenario.Name)+errorStyle.Render(r.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%-24s %10s %10s %10s %10s %8d %10d\n",
			r.Scenario.Name, percent(r.MeanFill), percent(r.BestFill), percent(r.FeasibleRate),
			percent(r.StableRate), r.NoPosition, r.Exhausted)
	}
}
