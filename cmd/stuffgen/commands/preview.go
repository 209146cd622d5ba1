package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/StuffGen/internal/dataset"
	"github.com/piwi3910/StuffGen/internal/export"
)

type previewOptions struct {
	pdf     string
	xlsx    string
	dxf     string
	labels  string
	sample  int
	episode int
	asJSON  bool
}

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	po := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview <dataset>",
		Short: "Summarize a dataset and render reports",
		Long: `Read a generated dataset (.jsonl or .msgpack) and print its statistics.

Optional reports:
  --pdf     summary page plus top-down layouts of the first --sample episodes
  --xlsx    workbook with summary, per-episode and violation sheets
  --dxf     floor plan and elevation of episode --episode
  --labels  QR-coded reproduction labels, one per episode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts, po, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&po.pdf, "pdf", "", "write a PDF preview to this path")
	fs.StringVar(&po.xlsx, "xlsx", "", "write an Excel workbook to this path")
	fs.StringVar(&po.dxf, "dxf", "", "write a DXF floor plan to this path")
	fs.StringVar(&po.labels, "labels", "", "write a PDF label sheet to this path")
	fs.IntVar(&po.sample, "sample", 5, "episodes rendered in the PDF preview")
	fs.IntVar(&po.episode, "episode", 0, "episode position rendered in the DXF plan")
	fs.BoolVar(&po.asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func runPreview(cmd *cobra.Command, opts *globalOptions, po *previewOptions, path string) error {
	episodes, err := dataset.ReadFile(path)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		return fmt.Errorf("dataset %s holds no episodes", path)
	}

	summary := export.Summarize(episodes)
	out := cmd.OutOrStdout()
	if po.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		printSummary(out, path, summary)
	}

	if po.pdf != "" {
		if err := export.ExportPDF(po.pdf, episodes, po.sample); err != nil {
			return fmt.Errorf("PDF export failed: %w", err)
		}
		opts.logger.Info("report written", "format", "pdf", "path", po.pdf)
	}
	if po.xlsx != "" {
		if err := export.ExportXLSX(po.xlsx, episodes); err != nil {
			return fmt.Errorf("xlsx export failed: %w", err)
		}
		opts.logger.Info("report written", "format", "xlsx", "path", po.xlsx)
	}
	if po.dxf != "" {
		if po.episode < 0 || po.episode >= len(episodes) {
			return fmt.Errorf("episode %d out of range (dataset has %d)", po.episode, len(episodes))
		}
		if err := export.ExportDXF(po.dxf, episodes[po.episode]); err != nil {
			return fmt.Errorf("DXF export failed: %w", err)
		}
		opts.logger.Info("report written", "format", "dxf", "path", po.dxf)
	}
	if po.labels != "" {
		if err := export.ExportLabels(po.labels, episodes); err != nil {
			return fmt.Errorf("label export failed: %w", err)
		}
		opts.logger.Info("report written", "format", "labels", "path", po.labels)
	}
	return nil
}
