package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/geometry"
)

// AssetId names a registered asset. Ids are opaque; handles are what
// the render path uses.
type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// Geometry is an uploaded mesh: static vertex and index buffers plus
// draw counts. Dynamic items bind a per-slot vertex buffer instead of
// VertexBuf and use only the index data here.
type Geometry struct {
	Name        AssetId
	VertexBuf   *wgpu.Buffer
	IndexBuf    *wgpu.Buffer
	IndexCount  uint32
	VertexCount uint32
}

// Texture is an uploaded 2D texture with a full mip chain.
type Texture struct {
	Name AssetId
	tex  *wgpu.Texture
	View *wgpu.TextureView
	// BindGroup pairs the view with the shared sampler for group 3.
	BindGroup *wgpu.BindGroup
}

// Registry owns every static GPU asset. Registration returns dense
// integer handles; lookup by handle is an index.
type Registry struct {
	engine     *Engine
	geometries []*Geometry
	textures   []*Texture
}

func NewRegistry(engine *Engine) *Registry {
	return &Registry{engine: engine}
}

// RegisterMesh uploads mesh data into static buffers and returns the
// geometry handle.
func (r *Registry) RegisterMesh(mesh geometry.MeshData) (core.GeometryHandle, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return 0, fmt.Errorf("register mesh: empty mesh")
	}
	id := makeAssetId()

	vbytes := core.VertexBytes(mesh.Vertices)
	vbuf, err := r.engine.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: string(id) + "/vertices",
		Size:  uint64(len(vbytes)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("register mesh vertices: %w", err)
	}
	r.engine.queue.WriteBuffer(vbuf, 0, vbytes)

	ibytes := unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Indices[0])), len(mesh.Indices)*4)
	ibuf, err := r.engine.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: string(id) + "/indices",
		Size:  uint64(len(ibytes)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return 0, fmt.Errorf("register mesh indices: %w", err)
	}
	r.engine.queue.WriteBuffer(ibuf, 0, ibytes)

	r.geometries = append(r.geometries, &Geometry{
		Name:        id,
		VertexBuf:   vbuf,
		IndexBuf:    ibuf,
		IndexCount:  uint32(len(mesh.Indices)),
		VertexCount: uint32(len(mesh.Vertices)),
	})
	return core.GeometryHandle(len(r.geometries) - 1), nil
}

// RegisterIndexOnlyMesh uploads just the index data, for items whose
// vertices stream from a per-slot buffer.
func (r *Registry) RegisterIndexOnlyMesh(indices []uint32, vertexCount int) (core.GeometryHandle, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("register mesh: no indices")
	}
	id := makeAssetId()
	ibytes := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
	ibuf, err := r.engine.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: string(id) + "/indices",
		Size:  uint64(len(ibytes)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("register mesh indices: %w", err)
	}
	r.engine.queue.WriteBuffer(ibuf, 0, ibytes)

	r.geometries = append(r.geometries, &Geometry{
		Name:        id,
		IndexBuf:    ibuf,
		IndexCount:  uint32(len(indices)),
		VertexCount: uint32(vertexCount),
	})
	return core.GeometryHandle(len(r.geometries) - 1), nil
}

// RegisterTexture uploads an RGBA image with a mip chain, halving with
// Catmull-Rom until 1x1, and builds its group-3 bind group against the
// pipeline's shared sampler and layout.
func (r *Registry) RegisterTexture(img *image.RGBA, pipelines *Pipelines) (core.TextureHandle, error) {
	id := makeAssetId()
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mips := mipLevelCount(w, h)

	tex, err := r.engine.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: string(id),
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("register texture: %w", err)
	}

	level := img
	for mip := uint32(0); mip < mips; mip++ {
		lb := level.Bounds()
		r.engine.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: mip,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			level.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(level.Stride),
				RowsPerImage: uint32(lb.Dy()),
			},
			&wgpu.Extent3D{
				Width:              uint32(lb.Dx()),
				Height:             uint32(lb.Dy()),
				DepthOrArrayLayers: 1,
			},
		)
		if mip+1 < mips {
			level = downsample(level)
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("register texture view: %w", err)
	}
	bg, err := pipelines.TextureBindGroup(r.engine, string(id), view)
	if err != nil {
		view.Release()
		tex.Release()
		return 0, err
	}

	r.textures = append(r.textures, &Texture{Name: id, tex: tex, View: view, BindGroup: bg})
	return core.TextureHandle(len(r.textures) - 1), nil
}

func (r *Registry) Geometry(h core.GeometryHandle) *Geometry { return r.geometries[h] }
func (r *Registry) Texture(h core.TextureHandle) *Texture    { return r.textures[h] }

func (r *Registry) Release() {
	for _, g := range r.geometries {
		if g.VertexBuf != nil {
			g.VertexBuf.Release()
		}
		g.IndexBuf.Release()
	}
	for _, t := range r.textures {
		t.BindGroup.Release()
		t.View.Release()
		t.tex.Release()
	}
	r.geometries = nil
	r.textures = nil
}

func mipLevelCount(w, h int) uint32 {
	n := uint32(1)
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		n++
	}
	return n
}

func downsample(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/2, 1), max(b.Dy()/2, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
