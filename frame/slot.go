package frame

// UploadBuffer is a capacity-bounded CPU-writable, GPU-visible region of
// fixed-size records. The GPU backend maps it onto a wgpu buffer written
// through the queue; tests use a plain in-memory implementation.
type UploadBuffer interface {
	// CopyData writes one record at the given element index.
	CopyData(index int, data []byte) error

	// Capacity is the number of records the region holds.
	Capacity() int
}

// Slot is one ring position's bundle of per-frame resources: the constant
// and dynamic-vertex regions the CPU rewrites each time the slot comes
// around, plus the fence marker of the slot's last submission.
//
// A slot's regions may be written only between Ring.Acquire and
// Ring.Submit, while the ring guarantees the GPU has retired every command
// that referenced them.
type Slot struct {
	// Fence is the completion marker of the last submission that used this
	// slot's buffers. 0 means the slot has never been submitted.
	Fence uint64

	Objects   UploadBuffer // one record per render item
	Materials UploadBuffer // one record per material
	Pass      UploadBuffer // a single per-frame record
	Vertices  UploadBuffer // dynamic vertex region for the height field
}

// SlotAllocator builds the resources for ring position i. The GPU backend
// allocates device buffers here; the test harness allocates byte slices.
type SlotAllocator func(i int) (*Slot, error)
