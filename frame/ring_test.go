package frame

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine retires markers only when the test says so.
type countingEngine struct {
	mu       sync.Mutex
	cond     *sync.Cond
	retired  uint64
	signaled []uint64
	waits    int
}

func newCountingEngine() *countingEngine {
	e := &countingEngine{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *countingEngine) Completed() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retired
}

func (e *countingEngine) Signal(marker uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signaled = append(e.signaled, marker)
	return nil
}

func (e *countingEngine) WaitUntilRetired(marker uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waits++
	for e.retired < marker {
		e.cond.Wait()
	}
	return nil
}

// Retire simulates the GPU finishing all work up to marker.
func (e *countingEngine) Retire(marker uint64) {
	e.mu.Lock()
	e.retired = marker
	e.mu.Unlock()
	e.cond.Broadcast()
}

func memorySlots(t *testing.T) SlotAllocator {
	t.Helper()
	return func(i int) (*Slot, error) {
		return &Slot{
			Objects:   NewMemoryBuffer(16, 4),
			Materials: NewMemoryBuffer(16, 2),
			Pass:      NewMemoryBuffer(64, 1),
			Vertices:  NewMemoryBuffer(32, 8),
		}, nil
	}
}

func TestNewRingValidation(t *testing.T) {
	engine := newCountingEngine()

	_, err := NewRing(1, engine, memorySlots(t))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewRing(3, nil, memorySlots(t))
	require.ErrorAs(t, err, &cfgErr)

	ring, err := NewRing(3, engine, memorySlots(t))
	require.NoError(t, err)
	assert.Equal(t, 3, ring.Len())
}

func TestColdStartNeverWaits(t *testing.T) {
	engine := newCountingEngine()
	ring, err := NewRing(3, engine, memorySlots(t))
	require.NoError(t, err)

	// All slots start free: the first N acquires must not touch the wait
	// primitive even though nothing has retired.
	for i := 0; i < 3; i++ {
		slot, err := ring.Acquire()
		require.NoError(t, err)
		assert.Equal(t, i, ring.Index())
		require.NoError(t, ring.Submit(uint64(i+1)))
		assert.Equal(t, uint64(i+1), slot.Fence)
	}
	assert.Equal(t, 0, engine.waits)
	assert.Equal(t, []uint64{1, 2, 3}, engine.signaled)
}

func TestAcquireBlocksUntilOldestRetires(t *testing.T) {
	engine := newCountingEngine()
	ring, err := NewRing(3, engine, memorySlots(t))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := ring.Acquire()
		require.NoError(t, err)
		require.NoError(t, ring.Submit(uint64(i)))
	}

	// The 4th acquire reclaims slot 0, whose marker 1 is still in flight.
	acquired := make(chan error, 1)
	go func() {
		_, err := ring.Acquire()
		acquired <- err
	}()

	select {
	case <-acquired:
		t.Fatal("acquire returned before the oldest marker retired")
	case <-time.After(50 * time.Millisecond):
	}

	engine.Retire(1)
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after retirement")
	}
	assert.Equal(t, 0, ring.Index())
	assert.Equal(t, 1, engine.waits)
}

func TestAcquireSkipsWaitWhenAlreadyRetired(t *testing.T) {
	engine := newCountingEngine()
	ring, err := NewRing(2, engine, memorySlots(t))
	require.NoError(t, err)

	_, err = ring.Acquire()
	require.NoError(t, err)
	require.NoError(t, ring.Submit(1))
	_, err = ring.Acquire()
	require.NoError(t, err)
	require.NoError(t, ring.Submit(2))

	engine.Retire(2)

	// Both slots' markers have retired; cycling the whole ring again must
	// be wait-free.
	for i := 3; i <= 4; i++ {
		_, err := ring.Acquire()
		require.NoError(t, err)
		require.NoError(t, ring.Submit(uint64(i)))
	}
	assert.Equal(t, 0, engine.waits)
}

func TestSubmitRejectsNonMonotonicMarker(t *testing.T) {
	engine := newCountingEngine()
	ring, err := NewRing(2, engine, memorySlots(t))
	require.NoError(t, err)

	_, err = ring.Acquire()
	require.NoError(t, err)
	require.NoError(t, ring.Submit(5))

	engine.Retire(5)
	_, err = ring.Acquire()
	require.NoError(t, err)
	require.NoError(t, ring.Submit(6))

	engine.Retire(6)
	slot, err := ring.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), slot.Fence)
	assert.ErrorIs(t, ring.Submit(5), ErrSubmission)
}

func TestMemoryBufferBounds(t *testing.T) {
	buf := NewMemoryBuffer(8, 2)
	assert.Equal(t, 2, buf.Capacity())

	require.NoError(t, buf.CopyData(1, []byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, buf.Record(1))

	assert.Error(t, buf.CopyData(2, []byte{1}))
	assert.Error(t, buf.CopyData(0, make([]byte, 9)))
}
