package core

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex format shared by all meshes. The
// struct tags drive vertex buffer layout generation in the gpu package.
type Vertex struct {
	Pos    mgl32.Vec3 `castle:"layout" format:"float3" location:"0"`
	Normal mgl32.Vec3 `castle:"layout" format:"float3" location:"1"`
	TexC   mgl32.Vec2 `castle:"layout" format:"float2" location:"2"`
}

// ObjectConstants is the per-item constant block, one region per item
// in every frame slot.
type ObjectConstants struct {
	World        mgl32.Mat4
	TexTransform mgl32.Mat4
}

// MaterialConstants is the per-material constant block.
type MaterialConstants struct {
	DiffuseAlbedo mgl32.Vec4
	FresnelR0     mgl32.Vec3
	Roughness     float32
	MatTransform  mgl32.Mat4
}

// PassConstants is the once-per-frame block: camera matrices, timing,
// ambient term and the light array. Field order and padding mirror the
// shader struct exactly.
type PassConstants struct {
	View        mgl32.Mat4
	InvView     mgl32.Mat4
	Proj        mgl32.Mat4
	InvProj     mgl32.Mat4
	ViewProj    mgl32.Mat4
	InvViewProj mgl32.Mat4

	EyePosW       mgl32.Vec3
	pad0          float32
	RenderTarget  mgl32.Vec2
	InvRenderTarget mgl32.Vec2
	NearZ         float32
	FarZ          float32
	TotalTime     float32
	DeltaTime     float32

	AmbientLight mgl32.Vec4
	Lights       [MaxLights]Light
}

// Bytes views the struct as raw bytes for buffer uploads. The view
// aliases the receiver, so it must be consumed before the struct is
// mutated again.
func (c *ObjectConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c)), unsafe.Sizeof(*c))
}

func (c *MaterialConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c)), unsafe.Sizeof(*c))
}

func (c *PassConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c)), unsafe.Sizeof(*c))
}

// VertexBytes views a vertex slice as raw bytes for buffer uploads.
func VertexBytes(verts []Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*int(unsafe.Sizeof(Vertex{})))
}
