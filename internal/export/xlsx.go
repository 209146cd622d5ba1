package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/StuffGen/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetSummary    = "Summary"
	SheetEpisodes   = "Episodes"
	SheetViolations = "Violations"
)

var episodeHeader = []string{
	"Index", "ID", "Mode", "Seed", "Episode Seed", "Steps", "Placed",
	"Feasible", "Fill Ratio", "Termination",
}

// ExportXLSX writes a workbook with a summary sheet, one row per episode and
// the per-episode violation counts.
func ExportXLSX(path string, episodes []model.Episode) error {
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetEpisodes, SheetViolations} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeSummarySheet(f, Summarize(episodes), bold); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeEpisodeSheet(f, episodes, bold); err != nil {
		return fmt.Errorf("episode sheet: %w", err)
	}
	if err := writeViolationSheet(f, episodes, bold); err != nil {
		return fmt.Errorf("violation sheet: %w", err)
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, s Summary, bold int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Episodes", s.Episodes},
		{"Steps", s.Steps},
		{"Placed", s.Placed},
		{"Negative Examples", s.Negative},
		{"Mean Fill", s.MeanFill},
		{"Min Fill", s.MinFill},
		{"Max Fill", s.MaxFill},
		{"Feasible Rate", s.FeasibleRate},
		{"Stable Rate", s.StableRate},
		{"Exhausted", s.Exhausted},
	}
	for _, v := range model.Violations {
		rows = append(rows, []any{string(v), s.Violations[v]})
	}
	if err := setRows(f, SheetSummary, rows); err != nil {
		return err
	}
	return f.SetCellStyle(SheetSummary, "A1", "B1", bold)
}

func writeEpisodeSheet(f *excelize.File, episodes []model.Episode, bold int) error {
	rows := make([][]any, 0, len(episodes)+1)
	header := make([]any, len(episodeHeader))
	for i, h := range episodeHeader {
		header[i] = h
	}
	rows = append(rows, header)
	for _, ep := range episodes {
		rows = append(rows, []any{
			ep.Index, ep.ID, string(ep.Mode), ep.Seed, ep.EpisodeSeed, len(ep.Steps),
			ep.PlacedCount(), ep.FeasibleCount(), ep.FillRatio(), string(ep.Termination),
		})
	}
	if err := setRows(f, SheetEpisodes, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(episodeHeader), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetEpisodes, "A1", last, bold)
}

func writeViolationSheet(f *excelize.File, episodes []model.Episode, bold int) error {
	header := []any{"Index"}
	for _, v := range model.Violations {
		header = append(header, string(v))
	}
	rows := [][]any{header}
	for _, ep := range episodes {
		counts := make(map[model.Violation]int)
		for _, st := range ep.Steps {
			counts[st.Violation]++
		}
		row := []any{ep.Index}
		for _, v := range model.Violations {
			row = append(row, counts[v])
		}
		rows = append(rows, row)
	}
	if err := setRows(f, SheetViolations, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetViolations, "A1", last, bold)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
