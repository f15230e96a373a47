package frame

import "fmt"

// MemoryBuffer is an UploadBuffer backed by process memory, for headless
// runs and tests where no GPU device exists.
type MemoryBuffer struct {
	stride int
	data   []byte
}

// NewMemoryBuffer allocates capacity records of elementSize bytes each.
func NewMemoryBuffer(elementSize, capacity int) *MemoryBuffer {
	return &MemoryBuffer{
		stride: elementSize,
		data:   make([]byte, elementSize*capacity),
	}
}

func (b *MemoryBuffer) CopyData(index int, data []byte) error {
	if index < 0 || index >= b.Capacity() {
		return fmt.Errorf("frame: record index %d out of range [0,%d)", index, b.Capacity())
	}
	if len(data) > b.stride {
		return fmt.Errorf("frame: record of %d bytes exceeds stride %d", len(data), b.stride)
	}
	copy(b.data[index*b.stride:(index+1)*b.stride], data)
	return nil
}

func (b *MemoryBuffer) Capacity() int { return len(b.data) / b.stride }

// Record returns the stored bytes of record index, for inspection.
func (b *MemoryBuffer) Record(index int) []byte {
	return b.data[index*b.stride : (index+1)*b.stride]
}
