package core

import "github.com/go-gl/mathgl/mgl32"

// GeometryHandle and TextureHandle are stable indices into the gpu
// package's resource registries. Zero is a valid handle.
type (
	GeometryHandle int
	TextureHandle  int
)

// Topology selects the primitive assembly mode for an item.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyLineList
	TopologyPointList
)

// Material carries the shading parameters for one surface. A material
// may be shared by any number of render items; its constants live at a
// fixed MaterialIndex region in every frame slot.
type Material struct {
	Name          string
	MaterialIndex int
	DiffuseMap    TextureHandle
	DiffuseAlbedo mgl32.Vec4
	FresnelR0     mgl32.Vec3
	Roughness     float32
	MatTransform  mgl32.Mat4

	// framesDirty counts how many frame slots still hold stale
	// constants for this material.
	framesDirty int
}

// Constants snapshots the material into its constant-block form.
func (m *Material) Constants() MaterialConstants {
	return MaterialConstants{
		DiffuseAlbedo: m.DiffuseAlbedo,
		FresnelR0:     m.FresnelR0,
		Roughness:     m.Roughness,
		MatTransform:  m.MatTransform,
	}
}

// RenderItem is one draw call: a geometry range, a material, and a
// world placement. Items reference geometry and materials by handle
// and never own them.
type RenderItem struct {
	Name         string
	World        mgl32.Mat4
	TexTransform mgl32.Mat4
	ObjectIndex  int
	MaterialIdx  int
	Geometry     GeometryHandle
	Topology     Topology

	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32

	// DynamicVertices marks items whose vertex data is rewritten
	// every frame from a per-slot upload buffer instead of the
	// static geometry store.
	DynamicVertices bool

	framesDirty int
}

// Constants snapshots the item into its constant-block form.
func (r *RenderItem) Constants() ObjectConstants {
	return ObjectConstants{
		World:        r.World,
		TexTransform: r.TexTransform,
	}
}
