package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, 128, cfg.Waves.Rows)
	assert.Equal(t, 128, cfg.Waves.Cols)
	assert.InDelta(t, 0.03, float64(cfg.Waves.TimeStep), 1e-6)
	assert.InDelta(t, 0.25, float64(cfg.Disturb.Interval), 1e-6)
	assert.InDelta(t, 0.1, float64(cfg.Water.ScrollU), 1e-6)
	assert.InDelta(t, 0.02, float64(cfg.Water.ScrollV), 1e-6)
	assert.Empty(t, cfg.Telemetry.Dir)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "castle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("waves:\n  rows: 64\ndebug: true\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Waves.Rows)
	// Fields absent from the overlay keep their defaults.
	assert.Equal(t, 128, cfg.Waves.Cols)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"too few frames": "frames_in_flight: 1\n",
		"tiny grid":      "waves:\n  rows: 2\n",
		"zero interval":  "disturb:\n  interval: 0\n",
		"inverted range": "disturb:\n  min_magnitude: 0.9\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
