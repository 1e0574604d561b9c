package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
layout:
  shrink_to_fit: false
  max_font_reduction_percent: 35
  workers: 8
fonts:
  default_family: DejaVu Sans
  directories: [/opt/fonts]
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Layout.ShrinkToFit)
	assert.Equal(t, 35.0, cfg.Layout.MaxFontReductionPercent)
	assert.Equal(t, 8, cfg.Layout.Workers)
	assert.Equal(t, 1.2, cfg.Layout.LineHeightFactor, "unset keys keep defaults")
	assert.Equal(t, 6.0, cfg.Layout.FitConstraints().MinSize)
	assert.Equal(t, "DejaVu Sans", cfg.Fonts.DefaultFamily)
	assert.Equal(t, []string{"/opt/fonts"}, cfg.Fonts.Directories)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  line_height_factor: -1\n  max_font_reduction_percent: 150\nlog:\n  format: xml\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line_height_factor")
	assert.Contains(t, err.Error(), "max_font_reduction_percent")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Layout.MinFontSize = 7.5
	cfg.Fonts.Directories = []string{"/usr/share/fonts"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
