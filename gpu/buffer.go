package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// uniformAlign is the minimum stride between dynamic-offset uniform
// regions required by WebGPU.
const uniformAlign = 256

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// UploadBuffer is a GPU buffer sliced into capacity regions of a fixed
// stride. CopyData rewrites one region through the queue; regions the
// caller leaves alone keep their previous contents, which is what the
// frames-dirty protocol relies on.
type UploadBuffer struct {
	queue    *wgpu.Queue
	buffer   *wgpu.Buffer
	stride   int
	capacity int
}

func newUploadBuffer(e *Engine, label string, elementSize, capacity int, usage wgpu.BufferUsage, align int) (*UploadBuffer, error) {
	if elementSize <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("upload buffer %q: bad shape %dx%d", label, elementSize, capacity)
	}
	stride := elementSize
	if align > 1 {
		stride = alignUp(elementSize, align)
	}
	buf, err := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(stride * capacity),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("upload buffer %q: %w", label, err)
	}
	return &UploadBuffer{queue: e.queue, buffer: buf, stride: stride, capacity: capacity}, nil
}

// NewUniformBuffer builds an upload buffer bindable at dynamic uniform
// offsets, so regions are padded out to the 256-byte alignment.
func NewUniformBuffer(e *Engine, label string, elementSize, capacity int) (*UploadBuffer, error) {
	return newUploadBuffer(e, label, elementSize, capacity, wgpu.BufferUsageUniform, uniformAlign)
}

// NewVertexUploadBuffer builds a tightly packed vertex buffer rewritten
// from the CPU every frame.
func NewVertexUploadBuffer(e *Engine, label string, elementSize, capacity int) (*UploadBuffer, error) {
	return newUploadBuffer(e, label, elementSize, capacity, wgpu.BufferUsageVertex, 1)
}

func (b *UploadBuffer) CopyData(index int, data []byte) error {
	if index < 0 || index >= b.capacity {
		return fmt.Errorf("upload index %d out of range [0,%d)", index, b.capacity)
	}
	if len(data) > b.stride {
		return fmt.Errorf("upload of %d bytes exceeds region stride %d", len(data), b.stride)
	}
	b.queue.WriteBuffer(b.buffer, uint64(index*b.stride), data)
	return nil
}

func (b *UploadBuffer) Capacity() int { return b.capacity }

// Stride is the region spacing in bytes, used to compute dynamic bind
// offsets.
func (b *UploadBuffer) Stride() int { return b.stride }

func (b *UploadBuffer) Raw() *wgpu.Buffer { return b.buffer }

func (b *UploadBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
