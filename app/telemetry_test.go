package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryWriterHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewTelemetryWriter(dir)
	require.NoError(t, err)
	require.NotNil(t, w)

	require.NoError(t, w.Write(FrameStats{Frame: 120, TotalTime: 2, AvgDelta: 0.016}))
	require.NoError(t, w.Write(FrameStats{Frame: 240, TotalTime: 4, AvgDelta: 0.017, SlotWaits: 3}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "frame")
	assert.Contains(t, lines[0], "slot_waits")
	assert.NotContains(t, lines[2], "frame,")
	assert.Contains(t, lines[2], "240")
}

func TestTelemetryWriterDisabled(t *testing.T) {
	w, err := NewTelemetryWriter("")
	require.NoError(t, err)
	assert.Nil(t, w)

	// A nil writer accepts writes and closes.
	assert.NoError(t, w.Write(FrameStats{}))
	assert.NoError(t, w.Close())
}
