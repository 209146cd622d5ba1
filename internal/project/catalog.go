package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/StuffGen/internal/model"
)

// SaveCatalog writes an item catalog to a JSON file.
func SaveCatalog(path string, catalog []model.ItemTemplate) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCatalog reads an item catalog from a JSON file. Templates with
// non-positive sides or negative mass are rejected with
// model.ErrInvalidConfig.
func LoadCatalog(path string) ([]model.ItemTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var catalog []model.ItemTemplate
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	if err := model.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// MergeCatalog appends the imported templates to existing. Templates whose
// label is already present are skipped.
func MergeCatalog(existing, imported []model.ItemTemplate) []model.ItemTemplate {
	labels := make(map[string]bool, len(existing))
	for _, t := range existing {
		labels[t.Label] = true
	}
	for _, t := range imported {
		if t.Label != "" && labels[t.Label] {
			continue
		}
		existing = append(existing, t)
		labels[t.Label] = true
	}
	return existing
}
