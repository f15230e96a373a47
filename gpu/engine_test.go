package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerBookkeepingTracksSubmissions(t *testing.T) {
	e := &Engine{}

	for marker := uint64(1); marker <= 3; marker++ {
		e.lastSubmission++
		require.NoError(t, e.Signal(marker))
	}
	require.Len(t, e.inFlight, 3)

	// Retiring the oldest marker drops only its entry; newer frames
	// stay in flight.
	e.retire(1)
	assert.Equal(t, uint64(1), e.retired)
	require.Len(t, e.inFlight, 2)
	assert.Equal(t, uint64(2), e.inFlight[0].marker)

	// Retiring a high marker clears everything at or below it.
	e.retire(3)
	assert.Equal(t, uint64(3), e.retired)
	assert.Empty(t, e.inFlight)

	// A stale retire never moves the watermark backwards.
	e.retire(2)
	assert.Equal(t, uint64(3), e.retired)
}

func TestWaitUntilRetiredIsNoOpForRetiredMarkers(t *testing.T) {
	e := &Engine{retired: 5}
	require.NoError(t, e.WaitUntilRetired(4))
	require.NoError(t, e.WaitUntilRetired(5))
	assert.Equal(t, uint64(5), e.retired)
}
