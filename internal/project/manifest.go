package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/StuffGen/internal/engine"
	"github.com/piwi3910/StuffGen/internal/model"
)

// ManifestVersion is the manifest schema version.
const ManifestVersion = "1.0.0"

// Manifest describes one generated dataset: the settings it came from and
// what the run produced.
type Manifest struct {
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	RunID     string         `json:"run_id"`
	Dataset   string         `json:"dataset"`
	Settings  model.Settings `json:"settings"`
	Catalog   int            `json:"catalog_templates,omitempty"`
	Report    engine.Report  `json:"report"`
}

// NewManifest builds the manifest for a finished run.
func NewManifest(dataset string, s model.Settings, catalog []model.ItemTemplate, report engine.Report) Manifest {
	return Manifest{
		Version:   ManifestVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:     report.RunID,
		Dataset:   dataset,
		Settings:  s,
		Catalog:   len(catalog),
		Report:    report,
	}
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest JSON file.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest file: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest file: %w", err)
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("invalid manifest file: missing version field")
	}
	return m, nil
}
