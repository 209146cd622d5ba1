// Package project persists generator settings, presets, catalogs and run
// manifests.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/StuffGen/internal/model"
)

// DefaultConfigDir returns the default directory for generator configuration.
// On all platforms this is ~/.stuffgen/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".stuffgen")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// SaveSettings persists settings to path. Files ending in .json are written
// as JSON, everything else as YAML. Missing parent directories are created.
func SaveSettings(path string, s model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// LoadSettings reads settings from path on top of the defaults, so a file
// only needs the keys it changes. A missing file yields the defaults with no
// error. The result is not validated.
func LoadSettings(path string) (model.Settings, error) {
	s := model.DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return model.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if isJSON(path) {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}
