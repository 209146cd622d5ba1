package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/StuffGen/internal/model"
	"github.com/piwi3910/StuffGen/internal/project"
)

// EnvPrefix prefixes the environment variables that override settings,
// e.g. STUFFGEN_SEQ_LEN or STUFFGEN_GRID_W.
const EnvPrefix = "STUFFGEN"

// settingFlag maps a command-line flag to its settings key.
type settingFlag struct {
	flag string
	key  string
}

var settingFlags = []settingFlag{
	{"out-dir", "out_dir"},
	{"mode", "mode"},
	{"n-sequences", "n_sequences"},
	{"seq-len", "seq_len"},
	{"seed", "seed"},
	{"workers", "workers"},
	{"format", "format"},
	{"length", "L"},
	{"width", "W"},
	{"height", "H"},
	{"lookahead-k", "lookahead_k"},
	{"delta-cog", "delta_cog"},
	{"support-coverage", "support_coverage"},
	{"negative-rate", "negative_rate"},
	{"rotation", "rotation"},
	{"selection", "selection"},
	{"item-min", "item_min"},
	{"item-max", "item_max"},
	{"mass-mode", "mass_mode"},
	{"density-min", "density_min"},
	{"density-max", "density_max"},
	{"same-height", "same_height"},
	{"height-band", "height_band"},
	{"grid-w", "grid_W"},
	{"grid-h", "grid_H"},
	{"target-rects", "target_rects"},
	{"height-mode", "height_mode"},
	{"accessible-k", "accessible_k"},
	{"known-total", "known_total"},
	{"catalog", "catalog"},
}

// addSettingsFlags registers one flag per generation setting.
func addSettingsFlags(fs *pflag.FlagSet) {
	d := model.DefaultSettings()

	fs.String("out-dir", d.OutDir, "output directory")
	fs.String("mode", string(d.Mode), "generation mode: random3d, same-height, fill100, semi-online")
	fs.Int("n-sequences", d.NSequences, "number of episodes")
	fs.Int("seq-len", d.SeqLen, "items per episode")
	fs.Int64("seed", d.Seed, "base random seed")
	fs.Int("workers", d.Workers, "parallel episode workers")
	fs.String("format", d.Format, "dataset format: jsonl or msgpack")

	fs.Float64("length", d.Length, "container length L")
	fs.Float64("width", d.Width, "container width W")
	fs.Float64("height", d.Height, "container height H")

	fs.Int("lookahead-k", d.LookaheadK, "visible items per step")
	fs.Float64("delta-cog", d.DeltaCOG, "allowed COG offset as a fraction of the floor")
	fs.Float64("support-coverage", d.SupportCoverage, "minimum supported base fraction")
	fs.Float64("negative-rate", d.NegativeRate, "probability of an infeasible example step")
	fs.String("rotation", string(d.Rotation), "allowed rotations: none, yaw, all")
	fs.String("selection", string(d.Selection), "visible item choice: random or first")

	fs.Float64("item-min", d.ItemMin, "smallest item side as a container fraction")
	fs.Float64("item-max", d.ItemMax, "largest item side as a container fraction")
	fs.String("mass-mode", string(d.MassMode), "item mass: volume or explicit")
	fs.Float64("density-min", d.DensityMin, "lowest density in explicit mass mode")
	fs.Float64("density-max", d.DensityMax, "highest density in explicit mass mode")

	fs.Float64("same-height", d.SameHeight, "common item height (same-height, fill100 fixed)")
	fs.Float64("height-band", d.HeightBand, "relative jitter around same-height")

	fs.Int("grid-w", d.GridW, "fill100 grid columns")
	fs.Int("grid-h", d.GridH, "fill100 grid rows")
	fs.Int("target-rects", d.TargetRects, "fill100 rectangles per layer")
	fs.String("height-mode", string(d.HeightMode), "fill100 item height: random or fixed")

	fs.Int("accessible-k", d.AccessibleK, "semi-online accessible items")
	fs.Int("known-total", d.KnownTotal, "semi-online pool size")

	fs.String("catalog", d.Catalog, "SKU catalog (CSV, XLSX, DXF or JSON)")
}

// resolveSettings layers the generation settings: defaults, then the preset
// or settings file, then STUFFGEN_* environment variables, then flags the
// user set explicitly.
func resolveSettings(cmd *cobra.Command, opts *globalOptions) (model.Settings, error) {
	base, err := baseSettings(opts)
	if err != nil {
		return model.Settings{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults, err := settingsMap(base)
	if err != nil {
		return model.Settings{}, err
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, sf := range settingFlags {
		f := cmd.Flags().Lookup(sf.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(sf.key, f); err != nil {
			return model.Settings{}, fmt.Errorf("failed to bind flag %s: %w", sf.flag, err)
		}
	}

	var s model.Settings
	if err := v.Unmarshal(&s); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	return s, nil
}

// baseSettings returns the named preset, or the settings file layered over
// the defaults.
func baseSettings(opts *globalOptions) (model.Settings, error) {
	if opts.preset != "" {
		custom, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return model.Settings{}, err
		}
		p, ok := project.FindPreset(custom, opts.preset)
		if !ok {
			return model.Settings{}, fmt.Errorf("%w: unknown preset %q", model.ErrInvalidConfig, opts.preset)
		}
		return p.Settings, nil
	}

	path := opts.configFile
	if path == "" {
		path = project.DefaultConfigPath()
	}
	return project.LoadSettings(path)
}

// settingsMap flattens s into its option keys.
func settingsMap(s model.Settings) (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if _, ok := m["catalog"]; !ok {
		m["catalog"] = ""
	}
	return m, nil
}
