// Package commands implements the stuffgen command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/StuffGen/internal/telemetry"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile   string
	preset       string
	logFormat    string
	verbose      bool
	otlpEndpoint string

	logger   *slog.Logger
	shutdown telemetry.Shutdown
}

// Execute runs the root command against os.Args.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

// NewRootCmd builds the command tree. Each call returns independent flag
// state.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "stuffgen",
		Short: "Synthetic 3D container-stuffing episode generator",
		Long: `stuffgen generates datasets of simulated container-stuffing episodes.

Each episode fills a box-shaped container one item at a time and records the
visible items, the chosen placement, its feasibility and the stability of the
load after every step.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			slog.SetDefault(logger)

			shutdown, err := telemetry.Init(cmd.Context(), version, opts.otlpEndpoint)
			if err != nil {
				return err
			}
			opts.shutdown = shutdown
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.shutdown == nil {
				return nil
			}
			return opts.shutdown(context.Background())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "settings file (YAML or JSON, default ~/.stuffgen/config.yaml)")
	pf.StringVar(&opts.preset, "preset", "", "start from a named preset instead of the settings file")
	pf.StringVar(&opts.logFormat, "log-format", "json", "log output format: json or text")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint for traces (default $OTEL_EXPORTER_OTLP_ENDPOINT)")

	root.AddCommand(
		newGenerateCmd(opts),
		newPreviewCmd(opts),
		newCompareCmd(opts),
		newConfigCmd(opts),
		newCatalogCmd(opts),
	)
	return root
}

// newLogger builds the slog logger selected by --log-format and --verbose.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "json", "":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", format)
	}
}
