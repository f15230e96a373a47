package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/frame"
)

// SlotShape sizes the per-slot upload buffers: one pass block, one
// object region per item, one material region per material, and a
// streamed vertex region per simulated water vertex.
type SlotShape struct {
	ObjectCount     int
	MaterialCount   int
	WaveVertexCount int
}

// SlotResources is the GPU side of one frame slot: the upload buffers
// the frame ring exposes through its interfaces, plus the bind groups
// the render pass binds them with.
type SlotResources struct {
	Pass     *UploadBuffer
	Object   *UploadBuffer
	Material *UploadBuffer
	Vertices *UploadBuffer

	PassBG     *wgpu.BindGroup
	ObjectBG   *wgpu.BindGroup
	MaterialBG *wgpu.BindGroup
}

// ObjectOffset is the dynamic offset of an item's constant region.
func (s *SlotResources) ObjectOffset(objectIndex int) uint32 {
	return uint32(objectIndex * s.Object.Stride())
}

// MaterialOffset is the dynamic offset of a material's constant region.
func (s *SlotResources) MaterialOffset(materialIndex int) uint32 {
	return uint32(materialIndex * s.Material.Stride())
}

func (s *SlotResources) Release() {
	s.PassBG.Release()
	s.ObjectBG.Release()
	s.MaterialBG.Release()
	s.Pass.Release()
	s.Object.Release()
	s.Material.Release()
	if s.Vertices != nil {
		s.Vertices.Release()
	}
}

func newSlotResources(e *Engine, p *Pipelines, shape SlotShape, index int) (*SlotResources, error) {
	var (
		passSize     = int(unsafe.Sizeof(core.PassConstants{}))
		objectSize   = int(unsafe.Sizeof(core.ObjectConstants{}))
		materialSize = int(unsafe.Sizeof(core.MaterialConstants{}))
		vertexSize   = int(unsafe.Sizeof(core.Vertex{}))
	)

	res := &SlotResources{}
	var err error

	label := func(kind string) string { return fmt.Sprintf("slot%d/%s", index, kind) }

	if res.Pass, err = NewUniformBuffer(e, label("pass"), passSize, 1); err != nil {
		return nil, err
	}
	if res.Object, err = NewUniformBuffer(e, label("objects"), objectSize, shape.ObjectCount); err != nil {
		return nil, err
	}
	if res.Material, err = NewUniformBuffer(e, label("materials"), materialSize, shape.MaterialCount); err != nil {
		return nil, err
	}
	if shape.WaveVertexCount > 0 {
		if res.Vertices, err = NewVertexUploadBuffer(e, label("waves"), vertexSize, shape.WaveVertexCount); err != nil {
			return nil, err
		}
	}

	res.PassBG, err = e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label("passBG"),
		Layout: p.PassBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: res.Pass.Raw(), Size: uint64(passSize)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("slot %d pass bind group: %w", index, err)
	}

	res.ObjectBG, err = e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label("objectBG"),
		Layout: p.ObjectBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: res.Object.Raw(), Size: uint64(objectSize)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("slot %d object bind group: %w", index, err)
	}

	res.MaterialBG, err = e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label("materialBG"),
		Layout: p.MaterialBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: res.Material.Raw(), Size: uint64(materialSize)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("slot %d material bind group: %w", index, err)
	}

	return res, nil
}

// Allocator returns a slot allocator for the frame ring and keeps the
// GPU-side resources addressable by slot index for the render pass.
func (r *Renderer) Allocator(shape SlotShape) frame.SlotAllocator {
	return func(i int) (*frame.Slot, error) {
		res, err := newSlotResources(r.engine, r.pipelines, shape, i)
		if err != nil {
			return nil, err
		}
		r.slots = append(r.slots, res)
		slot := &frame.Slot{
			Pass:      res.Pass,
			Objects:   res.Object,
			Materials: res.Material,
		}
		if res.Vertices != nil {
			slot.Vertices = res.Vertices
		}
		return slot, nil
	}
}
