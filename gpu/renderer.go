package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/castle/core"
)

// Renderer records and submits the forward pass for one frame slot.
type Renderer struct {
	engine    *Engine
	pipelines *Pipelines
	registry  *Registry
	log       core.Logger
	slots     []*SlotResources
	materials []core.TextureHandle
}

func NewRenderer(engine *Engine, pipelines *Pipelines, registry *Registry, log core.Logger) *Renderer {
	return &Renderer{engine: engine, pipelines: pipelines, registry: registry, log: log}
}

func (r *Renderer) Registry() *Registry { return r.registry }

// DrawFrame renders the scene using the constants already flushed into
// slot slotIndex, submits the command buffer and presents. Opaque
// items draw first, transparent last with depth writes off.
func (r *Renderer) DrawFrame(slotIndex int, scene *core.Scene) error {
	if slotIndex < 0 || slotIndex >= len(r.slots) {
		return fmt.Errorf("draw frame: no resources for slot %d", slotIndex)
	}
	res := r.slots[slotIndex]

	tex, view, err := r.engine.AcquireFrame()
	if err != nil {
		return err
	}
	defer tex.Release()
	defer view.Release()

	encoder, err := r.engine.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "ForwardPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.69, G: 0.77, B: 0.87, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.engine.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	pass.SetBindGroup(0, res.PassBG, nil)

	pass.SetPipeline(r.pipelines.Opaque)
	r.drawLayer(pass, res, scene.Layer(core.LayerOpaque))
	r.drawLayer(pass, res, scene.Layer(core.LayerAlphaTested))

	pass.SetPipeline(r.pipelines.Transparent)
	r.drawLayer(pass, res, scene.Layer(core.LayerTransparent))

	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}

	r.engine.Submit(cmd)
	r.engine.Present()
	return nil
}

func (r *Renderer) drawLayer(pass *wgpu.RenderPassEncoder, res *SlotResources, items []*core.RenderItem) {
	for _, item := range items {
		geo := r.registry.Geometry(item.Geometry)

		pass.SetBindGroup(1, res.ObjectBG, []uint32{res.ObjectOffset(item.ObjectIndex)})
		pass.SetBindGroup(2, res.MaterialBG, []uint32{res.MaterialOffset(item.MaterialIdx)})

		mat := r.registry.Texture(r.materialTexture(item))
		pass.SetBindGroup(3, mat.BindGroup, nil)

		if item.DynamicVertices {
			pass.SetVertexBuffer(0, res.Vertices.Raw(), 0, wgpu.WholeSize)
		} else {
			pass.SetVertexBuffer(0, geo.VertexBuf, 0, wgpu.WholeSize)
		}
		pass.SetIndexBuffer(geo.IndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(item.IndexCount, 1, item.StartIndexLocation, item.BaseVertexLocation, 0)
	}
}

// materialTexture resolves the diffuse map bound for an item. Material
// handles come from the scene, texture handles from the registry.
func (r *Renderer) materialTexture(item *core.RenderItem) core.TextureHandle {
	return r.materials[item.MaterialIdx]
}

// BindMaterials records, per material index, which diffuse texture its
// items bind. Call once after scene construction and again if material
// texture assignments change.
func (r *Renderer) BindMaterials(scene *core.Scene) {
	r.materials = r.materials[:0]
	for _, m := range scene.Materials() {
		r.materials = append(r.materials, m.DiffuseMap)
	}
}

func (r *Renderer) Release() {
	for _, s := range r.slots {
		s.Release()
	}
	r.slots = nil
}
