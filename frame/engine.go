package frame

import "fmt"

// ExecutionEngine is the GPU-side collaborator of the ring: an opaque
// concurrent actor that retires submitted work on a monotonic timeline.
// The real implementation wraps the wgpu queue; tests drive a synchronous
// counter.
type ExecutionEngine interface {
	// Completed reports the highest marker known to have retired.
	Completed() uint64

	// Signal asks the engine to retire marker once all work submitted so
	// far has finished. Markers are monotonically increasing and never 0.
	Signal(marker uint64) error

	// WaitUntilRetired blocks the caller until marker has retired. A wait
	// failure is unrecoverable: a frame cannot proceed without its slot.
	WaitUntilRetired(marker uint64) error
}

// ErrSynchronization wraps failures of the engine's wait primitive. The
// tick loop treats it as fatal.
var ErrSynchronization = fmt.Errorf("frame: synchronization failure")

// ErrSubmission wraps command submissions rejected by the engine, also
// fatal.
var ErrSubmission = fmt.Errorf("frame: submission failure")

// ConfigurationError reports invalid construction parameters: ring too
// short, or buffer capacities smaller than the scene needs them.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "frame: configuration: " + e.Reason
}
