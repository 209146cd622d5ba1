package commands

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/StuffGen/internal/engine"
)

func newCompareCmd(opts *globalOptions) *cobra.Command {
	var episodes int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare fill and feasibility across settings variants",
		Long: `Generate a small sample under the resolved settings and a set of variants
(every other mode, no negative examples, each rotation set, lookahead 1) and
print the statistics side by side.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return err
			}
			catalog, err := loadCatalog(opts.logger, s)
			if err != nil {
				return err
			}

			scenarios := engine.BuildDefaultScenarios(s)
			opts.logger.Info("comparing scenarios", "scenarios", len(scenarios), "episodes", episodes)
			results, err := engine.CompareScenarios(cmd.Context(), scenarios, episodes, catalog)
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), results)
			return nil
		},
	}
	addSettingsFlags(cmd.Flags())
	cmd.Flags().IntVar(&episodes, "episodes", 20, "episodes per scenario")
	return cmd
}
