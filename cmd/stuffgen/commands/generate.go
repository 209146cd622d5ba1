package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/StuffGen/internal/dataset"
	"github.com/piwi3910/StuffGen/internal/engine"
	"github.com/piwi3910/StuffGen/internal/importer"
	"github.com/piwi3910/StuffGen/internal/model"
	"github.com/piwi3910/StuffGen/internal/project"
)

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset of episodes",
		Long: `Generate n_sequences episodes and write them to <out_dir>/<mode>/train.<format>
together with a manifest.json describing the run.

Settings are layered: defaults, then the preset or settings file, then
STUFFGEN_* environment variables, then flags.

Example:
  stuffgen generate --mode fill100 --n-sequences 500 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			return runGenerate(cmd, opts.logger, s)
		},
	}
	addSettingsFlags(cmd.Flags())
	return cmd
}

func runGenerate(cmd *cobra.Command, logger *slog.Logger, s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f, err := dataset.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(logger, s)
	if err != nil {
		return err
	}

	path := dataset.Path(s.OutDir, s.Mode, f)
	w, err := dataset.Create(path, f)
	if err != nil {
		return err
	}

	step := max(1, s.NSequences/10)
	d := engine.NewDriver(s, w,
		engine.WithLogger(logger),
		engine.WithCatalog(catalog),
		engine.WithProgress(func(done, total int) {
			if done%step == 0 || done == total {
				logger.Info("progress", "done", done, "total", total)
			}
		}),
	)

	report, runErr := d.Run(cmd.Context())
	if err := w.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close dataset: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	manifestPath := dataset.ManifestPath(s.OutDir, s.Mode)
	if err := project.WriteManifest(manifestPath, project.NewManifest(path, s, catalog, report)); err != nil {
		return err
	}
	logger.Info("dataset written", "dataset", path, "manifest", manifestPath)

	printReport(cmd.OutOrStdout(), path, report)
	return nil
}

// loadCatalog reads the configured SKU catalog. JSON files are saved
// catalogs; anything else goes through the importer.
func loadCatalog(logger *slog.Logger, s model.Settings) ([]model.ItemTemplate, error) {
	if s.Catalog == "" {
		return nil, nil
	}
	if strings.EqualFold(filepath.Ext(s.Catalog), ".json") {
		return project.LoadCatalog(s.Catalog)
	}
	catalog, warnings, err := importer.ImportCatalog(s.Catalog, s.SameHeight)
	for _, w := range warnings {
		logger.Warn("catalog import", "file", s.Catalog, "warning", w)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded", "file", s.Catalog, "templates", len(catalog))
	return catalog, nil
}
