package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/StuffGen/internal/project"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage settings",
	}
	cmd.AddCommand(
		newConfigShowCmd(opts),
		newConfigInitCmd(opts),
		newConfigPresetsCmd(),
		newConfigSavePresetCmd(opts),
	)
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			if err != nil {
				return err
			}
			if verr := s.Validate(); verr != nil {
				fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render(verr.Error()))
			}
			return nil
		},
	}
	addSettingsFlags(cmd.Flags())
	return cmd
}

func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the resolved settings to a settings file",
		Long: `Write the resolved settings to path (default ~/.stuffgen/config.yaml).
Files ending in .json are written as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := project.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return err
			}
			if err := project.SaveSettings(path, s); err != nil {
				return err
			}
			opts.logger.Info("settings written", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	addSettingsFlags(cmd.Flags())
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in and custom presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := project.LoadPresets(project.DefaultPresetsPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("PRESETS"))
			for _, p := range project.BuiltInPresets() {
				printField(out, p.Name, p.Description+" (built-in)")
			}
			for _, p := range custom {
				printField(out, p.Name, p.Description)
			}
			return nil
		},
	}
}

func newConfigSavePresetCmd(opts *globalOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "save-preset <name>",
		Short: "Save the resolved settings as a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return err
			}

			path := project.DefaultPresetsPath()
			custom, err := project.LoadPresets(path)
			if err != nil {
				return err
			}
			p := project.Preset{Name: args[0], Description: description, Settings: s}
			replaced := false
			for i := range custom {
				if custom[i].Name == p.Name {
					custom[i] = p
					replaced = true
				}
			}
			if !replaced {
				custom = append(custom, p)
			}
			if err := project.SavePresets(path, custom); err != nil {
				return err
			}
			opts.logger.Info("preset saved", "name", p.Name, "path", path)
			return nil
		},
	}
	addSettingsFlags(cmd.Flags())
	cmd.Flags().StringVar(&description, "description", "", "preset description")
	return cmd
}
