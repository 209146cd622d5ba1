package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StuffGen/internal/engine"
	"github.com/piwi3910/StuffGen/internal/model"
)

func TestSaveAndLoadSettings(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := model.DefaultSettings()
			s.Mode = model.ModeFill100
			s.GridW = 8
			s.DeltaCOG = 0.2

			require.NoError(t, SaveSettings(path, s))
			loaded, err := LoadSettings(path)
			require.NoError(t, err)
			assert.Equal(t, s, loaded)
		})
	}
}

func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: semi-online\nknown_total: 40\nL: 2\n"), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, model.ModeSemiOnline, s.Mode)
	assert.Equal(t, 40, s.KnownTotal)
	assert.Equal(t, 2.0, s.Length)
	assert.Equal(t, model.DefaultSettings().SeqLen, s.SeqLen)
	assert.NoError(t, s.Validate())
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)
}

func TestLoadSettingsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json}"), 0644))
	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestBuiltInPresetsAreValid(t *testing.T) {
	presets := BuiltInPresets()
	require.NotEmpty(t, presets)
	for _, p := range presets {
		assert.True(t, p.BuiltIn)
		assert.NoError(t, p.Settings.Validate(), p.Name)
	}
}

func TestSaveAndLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	s := model.DefaultSettings()
	s.SeqLen = 80
	require.NoError(t, SavePresets(path, []Preset{{Name: "long", Description: "long episodes", Settings: s}}))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "long", presets[0].Name)
	assert.Equal(t, 80, presets[0].Settings.SeqLen)
	assert.False(t, presets[0].BuiltIn)

	found, ok := FindPreset(presets, "long")
	assert.True(t, ok)
	assert.Equal(t, 80, found.Settings.SeqLen)

	found, ok = FindPreset(presets, "fill100")
	assert.True(t, ok)
	assert.Equal(t, model.ModeFill100, found.Settings.Mode)

	_, ok = FindPreset(presets, "missing")
	assert.False(t, ok)
}

func TestLoadPresetsDefaultsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: tall\n  settings:\n    H: 3\n"), 0644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, 3.0, presets[0].Settings.Height)
	assert.Equal(t, model.DefaultSettings().LookaheadK, presets[0].Settings.LookaheadK)
}

func TestLoadPresetsRequiresName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- description: nameless\n"), 0644))
	_, err := LoadPresets(path)
	assert.Error(t, err)
}

func TestLoadPresetsMissingFile(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestCatalogRoundTripAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	existing := []model.ItemTemplate{{Label: "crate", Length: 0.4, Width: 0.3, Height: 0.2, Quantity: 3}}
	require.NoError(t, SaveCatalog(path, existing))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, existing, loaded)

	merged := MergeCatalog(loaded, []model.ItemTemplate{
		{Label: "crate", Length: 9, Width: 9, Height: 9, Quantity: 1},
		{Label: "drum", Length: 0.6, Width: 0.6, Height: 0.9, Quantity: 2},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, 0.4, merged[0].Length)
	assert.Equal(t, "drum", merged[1].Label)
}

func TestLoadCatalogRejectsBadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[{"label":"crate","length":0.4,"width":0.3,"height":0.2,"quantity":1},
{"label":"warped","length":-0.2,"width":0.2,"height":0.2,"quantity":1}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "warped")
}

func TestWriteAndReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random3d", "manifest.json")
	s := model.DefaultSettings()
	report := engine.Report{RunID: model.RunID(s.Mode, s.Seed, 10), Mode: s.Mode, Requested: 10, Written: 9, Dropped: 1, DroppedIDs: []int{4}}

	m := NewManifest("data/synthetic/random3d/train.jsonl", s, nil, report)
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, got.Version)
	assert.NotEmpty(t, got.CreatedAt)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, s, got.Settings)
	assert.Equal(t, 9, got.Report.Written)
	assert.Equal(t, []int{4}, got.Report.DroppedIDs)
}

func TestReadManifestErrors(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	_, err = ReadManifest(path)
	assert.Error(t, err)
}
