package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/StuffGen/internal/importer"
	"github.com/piwi3910/StuffGen/internal/project"
)

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage SKU catalogs",
	}
	cmd.AddCommand(newCatalogImportCmd(opts))
	return cmd
}

func newCatalogImportCmd(opts *globalOptions) *cobra.Command {
	var (
		into   string
		height float64
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import SKUs from CSV, XLSX or DXF into a JSON catalog",
		Long: `Import item templates from a spreadsheet or floor-plan drawing and merge
them into a JSON catalog. Templates whose label already exists are skipped.
DXF footprints take the --height given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, warnings, err := importer.ImportCatalog(args[0], height)
			for _, w := range warnings {
				opts.logger.Warn("catalog import", "file", args[0], "warning", w)
			}
			if err != nil {
				return err
			}

			existing, err := project.LoadCatalog(into)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			merged := project.MergeCatalog(existing, imported)
			if err := project.SaveCatalog(into, merged); err != nil {
				return err
			}

			opts.logger.Info("catalog saved", "path", into, "imported", len(imported), "total", len(merged))
			fmt.Fprintf(cmd.OutOrStdout(), "%d templates imported, %d in %s\n", len(imported), len(merged), into)
			return nil
		},
	}
	cmd.Flags().StringVar(&into, "into", "catalog.json", "JSON catalog to merge into")
	cmd.Flags().Float64Var(&height, "height", 0.25, "item height for DXF footprints")
	return cmd
}
