package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig wraps every configuration problem. It is fatal: no
// episode is generated once it is returned.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mode selects the item source and visibility regime of a dataset.
type Mode string

const (
	ModeRandom3D   Mode = "random3d"
	ModeSameHeight Mode = "same-height"
	ModeFill100    Mode = "fill100"
	ModeSemiOnline Mode = "semi-online"
)

// Modes lists all generation modes.
var Modes = []Mode{ModeRandom3D, ModeSameHeight, ModeFill100, ModeSemiOnline}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// HeightMode controls how fill100 rectangles are extruded.
type HeightMode string

const (
	HeightRandom HeightMode = "random"
	HeightFixed  HeightMode = "fixed"
)

// MassMode controls whether items carry an explicit mass.
type MassMode string

const (
	MassVolume   MassMode = "volume"   // volume is the mass proxy
	MassExplicit MassMode = "explicit" // mass = volume x random density
)

// Rotation names the allowed orientation set.
type Rotation string

const (
	RotationNone Rotation = "none"
	RotationYaw  Rotation = "yaw"
	RotationAll  Rotation = "all"
)

// Orientations returns the orientations allowed by r.
func (r Rotation) Orientations() []Orientation {
	switch r {
	case RotationNone:
		return []Orientation{OrientLWH}
	case RotationAll:
		return []Orientation{OrientLWH, OrientWLH, OrientLHW, OrientHLW, OrientWHL, OrientHWL}
	default:
		return []Orientation{OrientLWH, OrientWLH}
	}
}

// Selection controls which visible item the policy picks.
type Selection string

const (
	SelectRandom Selection = "random"
	SelectFirst  Selection = "first"
)

// Settings holds every generation parameter. Field tags follow the option
// names of the configuration surface.
type Settings struct {
	OutDir     string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`
	Mode       Mode   `json:"mode" yaml:"mode" mapstructure:"mode"`
	NSequences int    `json:"n_sequences" yaml:"n_sequences" mapstructure:"n_sequences"`
	SeqLen     int    `json:"seq_len" yaml:"seq_len" mapstructure:"seq_len"`
	Seed       int64  `json:"seed" yaml:"seed" mapstructure:"seed"`
	Workers    int    `json:"workers" yaml:"workers" mapstructure:"workers"`
	Format     string `json:"format" yaml:"format" mapstructure:"format"`

	// Container
	Length float64 `json:"L" yaml:"L" mapstructure:"L"`
	Width  float64 `json:"W" yaml:"W" mapstructure:"W"`
	Height float64 `json:"H" yaml:"H" mapstructure:"H"`

	// Feasibility
	LookaheadK      int     `json:"lookahead_k" yaml:"lookahead_k" mapstructure:"lookahead_k"`
	DeltaCOG        float64 `json:"delta_cog" yaml:"delta_cog" mapstructure:"delta_cog"`
	SupportCoverage float64 `json:"support_coverage" yaml:"support_coverage" mapstructure:"support_coverage"`

	// Policy
	NegativeRate float64   `json:"negative_rate" yaml:"negative_rate" mapstructure:"negative_rate"`
	Rotation     Rotation  `json:"rotation" yaml:"rotation" mapstructure:"rotation"`
	Selection    Selection `json:"selection" yaml:"selection" mapstructure:"selection"`

	// Item sizes, as fractions of the matching container dimension
	ItemMin float64 `json:"item_min" yaml:"item_min" mapstructure:"item_min"`
	ItemMax float64 `json:"item_max" yaml:"item_max" mapstructure:"item_max"`

	// Mass
	MassMode   MassMode `json:"mass_mode" yaml:"mass_mode" mapstructure:"mass_mode"`
	DensityMin float64  `json:"density_min" yaml:"density_min" mapstructure:"density_min"`
	DensityMax float64  `json:"density_max" yaml:"density_max" mapstructure:"density_max"`

	// same-height and fill100 (fixed height)
	SameHeight float64 `json:"same_height" yaml:"same_height" mapstructure:"same_height"`
	HeightBand float64 `json:"height_band" yaml:"height_band" mapstructure:"height_band"`

	// fill100
	GridW       int        `json:"grid_W" yaml:"grid_W" mapstructure:"grid_W"`
	GridH       int        `json:"grid_H" yaml:"grid_H" mapstructure:"grid_H"`
	TargetRects int        `json:"target_rects" yaml:"target_rects" mapstructure:"target_rects"`
	HeightMode  HeightMode `json:"height_mode" yaml:"height_mode" mapstructure:"height_mode"`

	// semi-online
	AccessibleK int `json:"accessible_k" yaml:"accessible_k" mapstructure:"accessible_k"`
	KnownTotal  int `json:"known_total" yaml:"known_total" mapstructure:"known_total"`

	// Optional SKU catalog (CSV or XLSX) replacing uniform item sizes
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty" mapstructure:"catalog"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		OutDir:          "data/synthetic",
		Mode:            ModeRandom3D,
		NSequences:      1000,
		SeqLen:          50,
		Seed:            42,
		Workers:         1,
		Format:          "jsonl",
		Length:          1.0,
		Width:           1.0,
		Height:          1.0,
		LookaheadK:      5,
		DeltaCOG:        0.1,
		SupportCoverage: 0.8,
		NegativeRate:    0.1,
		Rotation:        RotationYaw,
		Selection:       SelectRandom,
		ItemMin:         0.1,
		ItemMax:         0.5,
		MassMode:        MassVolume,
		DensityMin:      0.5,
		DensityMax:      1.5,
		SameHeight:      0.25,
		HeightBand:      0,
		GridW:           10,
		GridH:           10,
		TargetRects:     12,
		HeightMode:      HeightRandom,
		AccessibleK:     5,
		KnownTotal:      30,
	}
}

// Container returns the container described by the settings.
func (s Settings) Container() Container {
	return Container{Length: s.Length, Width: s.Width, Height: s.Height}
}

// Validate checks the settings for the configured mode. The returned error
// wraps ErrInvalidConfig.
func (s Settings) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := ParseMode(string(s.Mode)); err != nil {
		add("unknown mode %q", s.Mode)
	}
	if s.Length <= 0 || s.Width <= 0 || s.Height <= 0 {
		add("container dimensions must be > 0 (L=%g W=%g H=%g)", s.Length, s.Width, s.Height)
	}
	if s.SeqLen <= 0 {
		add("seq_len must be > 0")
	}
	if s.NSequences < 0 {
		add("n_sequences must be >= 0")
	}
	if s.Workers < 1 {
		add("workers must be >= 1")
	}
	if s.LookaheadK <= 0 {
		add("lookahead_k must be > 0")
	}
	if s.DeltaCOG < 0 {
		add("delta_cog must be >= 0")
	}
	if s.SupportCoverage <= 0 || s.SupportCoverage > 1 {
		add("support_coverage must be in (0, 1]")
	}
	if s.NegativeRate < 0 || s.NegativeRate > 1 {
		add("negative_rate must be in [0, 1]")
	}
	if s.ItemMin <= 0 || s.ItemMax > 1 || s.ItemMin > s.ItemMax {
		add("item size fractions must satisfy 0 < item_min <= item_max <= 1")
	}
	switch s.Rotation {
	case RotationNone, RotationYaw, RotationAll:
	default:
		add("unknown rotation %q", s.Rotation)
	}
	switch s.Selection {
	case SelectRandom, SelectFirst:
	default:
		add("unknown selection %q", s.Selection)
	}
	switch s.MassMode {
	case MassVolume:
	case MassExplicit:
		if s.DensityMin <= 0 || s.DensityMin > s.DensityMax {
			add("density range must satisfy 0 < density_min <= density_max")
		}
	default:
		add("unknown mass_mode %q", s.MassMode)
	}
	switch strings.ToLower(s.Format) {
	case "jsonl", "msgpack":
	default:
		add("unknown format %q", s.Format)
	}

	switch s.Mode {
	case ModeRandom3D:
		if s.LookaheadK > s.SeqLen {
			add("lookahead_k (%d) exceeds the item stream (%d)", s.LookaheadK, s.SeqLen)
		}
	case ModeSameHeight:
		if s.LookaheadK > s.SeqLen {
			add("lookahead_k (%d) exceeds the item stream (%d)", s.LookaheadK, s.SeqLen)
		}
		if s.SameHeight <= 0 || s.SameHeight > s.Height {
			add("same_height must be in (0, H]")
		}
		if s.HeightBand < 0 || s.HeightBand >= 1 {
			add("height_band must be in [0, 1)")
		}
	case ModeFill100:
		if s.LookaheadK > s.SeqLen {
			add("lookahead_k (%d) exceeds the item stream (%d)", s.LookaheadK, s.SeqLen)
		}
		if s.GridW <= 0 || s.GridH <= 0 {
			add("grid_W and grid_H must be > 0")
		}
		if s.TargetRects < 1 || s.TargetRects > s.GridW*s.GridH {
			add("target_rects (%d) is unreachable on a %dx%d grid", s.TargetRects, s.GridW, s.GridH)
		}
		switch s.HeightMode {
		case HeightRandom:
		case HeightFixed:
			if s.SameHeight <= 0 || s.SameHeight > s.Height {
				add("same_height must be in (0, H] for fixed height_mode")
			}
		default:
			add("unknown height_mode %q", s.HeightMode)
		}
	case ModeSemiOnline:
		if s.AccessibleK <= 0 {
			add("accessible_k must be > 0")
		}
		if s.KnownTotal <= 0 {
			add("known_total must be > 0")
		}
		if s.AccessibleK > s.KnownTotal {
			add("accessible_k (%d) exceeds the item pool known_total (%d)", s.AccessibleK, s.KnownTotal)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
