package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/StuffGen/internal/model"
)

// Preset is a named settings bundle.
type Preset struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	BuiltIn     bool           `yaml:"-"`
	Settings    model.Settings `yaml:"settings"`
}

// BuiltInPresets returns the bundled presets: one per mode with the
// reference parameters, plus a pallet-sized container.
func BuiltInPresets() []Preset {
	random := model.DefaultSettings()

	same := model.DefaultSettings()
	same.Mode = model.ModeSameHeight

	fill := model.DefaultSettings()
	fill.Mode = model.ModeFill100
	fill.HeightMode = model.HeightFixed

	semi := model.DefaultSettings()
	semi.Mode = model.ModeSemiOnline

	pallet := model.DefaultSettings()
	pallet.Length, pallet.Width, pallet.Height = 1.2, 0.8, 1.5
	pallet.Rotation = model.RotationYaw
	pallet.MassMode = model.MassExplicit

	return []Preset{
		{Name: "random3d", Description: "Random boxes with lookahead 5", BuiltIn: true, Settings: random},
		{Name: "same-height", Description: "Boxes of one common height", BuiltIn: true, Settings: same},
		{Name: "fill100", Description: "Perfect 10x10 tilings extruded to fixed-height layers", BuiltIn: true, Settings: fill},
		{Name: "semi-online", Description: "5 accessible boxes out of a known pool of 30", BuiltIn: true, Settings: semi},
		{Name: "euro-pallet", Description: "1.2 x 0.8 x 1.5 pallet with explicit masses", BuiltIn: true, Settings: pallet},
	}
}

// DefaultPresetsPath returns the default file path for custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.yaml")
}

// SavePresets saves custom presets to a YAML file.
func SavePresets(path string, presets []Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(presets)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPresets loads custom presets from a YAML file. Returns an empty slice
// if the file does not exist. Missing settings keys take the defaults.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Preset{}, nil
		}
		return nil, err
	}

	var raw []struct {
		Name        string    `yaml:"name"`
		Description string    `yaml:"description"`
		Settings    yaml.Node `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	presets := make([]Preset, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			return nil, errors.New("preset has no name")
		}
		s := model.DefaultSettings()
		if !r.Settings.IsZero() {
			if err := r.Settings.Decode(&s); err != nil {
				return nil, fmt.Errorf("failed to parse preset %q: %w", r.Name, err)
			}
		}
		presets = append(presets, Preset{Name: r.Name, Description: r.Description, Settings: s})
	}
	return presets, nil
}

// FindPreset looks name up among custom presets first, then the built-ins.
func FindPreset(custom []Preset, name string) (Preset, bool) {
	for _, p := range custom {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range BuiltInPresets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
