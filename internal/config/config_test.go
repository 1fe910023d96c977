package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.4, cfg.Planner.PO2Ceiling)
	assert.False(t, cfg.Planner.Trimix)
	assert.Positive(t, cfg.Sync.BatchSize)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Planner, cfg.Planner)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
diver: ines
planner:
  po2_ceiling: 1.3
  trimix: true
  target_ead: 25
sync:
  batch_size: 100
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ines", cfg.Diver)
	assert.Equal(t, 1.3, cfg.Planner.PO2Ceiling)
	assert.True(t, cfg.Planner.Trimix)
	assert.Equal(t, 25.0, cfg.Planner.TargetEAD)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
	// Untouched keys keep defaults
	assert.Equal(t, Default().Sync.FlushInterval, cfg.Sync.FlushInterval)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"po2 too high":   "planner:\n  po2_ceiling: 2.0\n",
		"po2 zero":       "planner:\n  po2_ceiling: 0\n",
		"negative ead":   "planner:\n  po2_ceiling: 1.4\n  target_ead: -5\n",
		"bad batch":      "sync:\n  batch_size: -1\n",
		"bad log level":  "log_level: chatty\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Diver = "marco"
	cfg.Planner.PO2Ceiling = 1.2
	cfg.Sync.FlushInterval = 2 * time.Second
	require.NoError(t, cfg.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Diver, back.Diver)
	assert.Equal(t, cfg.Planner.PO2Ceiling, back.Planner.PO2Ceiling)
	assert.Equal(t, cfg.Sync.FlushInterval, back.Sync.FlushInterval)
}
