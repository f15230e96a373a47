// Package geometry builds procedural meshes in the shared vertex
// format: grids for terrain and water, boxes for walls, cylinders for
// towers and their roofs.
package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/castle/core"
)

// MeshData is a CPU-side mesh ready for upload.
type MeshData struct {
	Vertices []core.Vertex
	Indices  []uint32
}

// Grid builds an m x n vertex grid in the xz-plane centered at the
// origin, normals up, texture coordinates spanning [0,1].
func Grid(width, depth float32, m, n int) MeshData {
	vertexCount := m * n
	faceCount := (m - 1) * (n - 1) * 2

	halfWidth := 0.5 * width
	halfDepth := 0.5 * depth

	dx := width / float32(n-1)
	dz := depth / float32(m-1)
	du := 1.0 / float32(n-1)
	dv := 1.0 / float32(m-1)

	mesh := MeshData{
		Vertices: make([]core.Vertex, vertexCount),
		Indices:  make([]uint32, faceCount*3),
	}

	for i := 0; i < m; i++ {
		z := halfDepth - float32(i)*dz
		for j := 0; j < n; j++ {
			x := -halfWidth + float32(j)*dx
			mesh.Vertices[i*n+j] = core.Vertex{
				Pos:    mgl32.Vec3{x, 0, z},
				Normal: mgl32.Vec3{0, 1, 0},
				TexC:   mgl32.Vec2{float32(j) * du, float32(i) * dv},
			}
		}
	}

	k := 0
	for i := 0; i < m-1; i++ {
		for j := 0; j < n-1; j++ {
			mesh.Indices[k+0] = uint32(i*n + j)
			mesh.Indices[k+1] = uint32(i*n + j + 1)
			mesh.Indices[k+2] = uint32((i+1)*n + j)
			mesh.Indices[k+3] = uint32((i+1)*n + j)
			mesh.Indices[k+4] = uint32(i*n + j + 1)
			mesh.Indices[k+5] = uint32((i+1)*n + j + 1)
			k += 6
		}
	}
	return mesh
}

// Box builds an axis-aligned box centered at the origin, 24 vertices
// with per-face normals.
func Box(width, height, depth float32) MeshData {
	w2, h2, d2 := 0.5*width, 0.5*height, 0.5*depth

	v := func(x, y, z, nx, ny, nz, u, tv float32) core.Vertex {
		return core.Vertex{
			Pos:    mgl32.Vec3{x, y, z},
			Normal: mgl32.Vec3{nx, ny, nz},
			TexC:   mgl32.Vec2{u, tv},
		}
	}

	vertices := []core.Vertex{
		// front
		v(-w2, -h2, -d2, 0, 0, -1, 0, 1), v(-w2, h2, -d2, 0, 0, -1, 0, 0),
		v(w2, h2, -d2, 0, 0, -1, 1, 0), v(w2, -h2, -d2, 0, 0, -1, 1, 1),
		// back
		v(-w2, -h2, d2, 0, 0, 1, 1, 1), v(w2, -h2, d2, 0, 0, 1, 0, 1),
		v(w2, h2, d2, 0, 0, 1, 0, 0), v(-w2, h2, d2, 0, 0, 1, 1, 0),
		// top
		v(-w2, h2, -d2, 0, 1, 0, 0, 1), v(-w2, h2, d2, 0, 1, 0, 0, 0),
		v(w2, h2, d2, 0, 1, 0, 1, 0), v(w2, h2, -d2, 0, 1, 0, 1, 1),
		// bottom
		v(-w2, -h2, -d2, 0, -1, 0, 1, 1), v(w2, -h2, -d2, 0, -1, 0, 0, 1),
		v(w2, -h2, d2, 0, -1, 0, 0, 0), v(-w2, -h2, d2, 0, -1, 0, 1, 0),
		// left
		v(-w2, -h2, d2, -1, 0, 0, 0, 1), v(-w2, h2, d2, -1, 0, 0, 0, 0),
		v(-w2, h2, -d2, -1, 0, 0, 1, 0), v(-w2, -h2, -d2, -1, 0, 0, 1, 1),
		// right
		v(w2, -h2, -d2, 1, 0, 0, 0, 1), v(w2, h2, -d2, 1, 0, 0, 0, 0),
		v(w2, h2, d2, 1, 0, 0, 1, 0), v(w2, -h2, d2, 1, 0, 0, 1, 1),
	}

	indices := []uint32{
		0, 1, 2, 0, 2, 3,
		4, 5, 6, 4, 6, 7,
		8, 9, 10, 8, 10, 11,
		12, 13, 14, 12, 14, 15,
		16, 17, 18, 16, 18, 19,
		20, 21, 22, 20, 22, 23,
	}

	return MeshData{Vertices: vertices, Indices: indices}
}

// Cylinder builds a capped cylinder along the y-axis centered at the
// origin. A topRadius of zero makes a cone.
func Cylinder(bottomRadius, topRadius, height float32, sliceCount, stackCount int) MeshData {
	var mesh MeshData

	stackHeight := height / float32(stackCount)
	radiusStep := (topRadius - bottomRadius) / float32(stackCount)
	ringCount := stackCount + 1

	for i := 0; i < ringCount; i++ {
		y := -0.5*height + float32(i)*stackHeight
		r := bottomRadius + float32(i)*radiusStep

		for j := 0; j <= sliceCount; j++ {
			theta := float32(j) * 2 * math32.Pi / float32(sliceCount)
			c, s := math32.Cos(theta), math32.Sin(theta)

			// The slant normal comes from the tangent along the
			// side profile, constant per slice.
			dr := bottomRadius - topRadius
			bitangent := mgl32.Vec3{dr * c, -height, dr * s}
			tangent := mgl32.Vec3{-s, 0, c}
			normal := tangent.Cross(bitangent).Normalize()

			mesh.Vertices = append(mesh.Vertices, core.Vertex{
				Pos:    mgl32.Vec3{r * c, y, r * s},
				Normal: normal,
				TexC:   mgl32.Vec2{float32(j) / float32(sliceCount), 1 - float32(i)/float32(stackCount)},
			})
		}
	}

	ringVertexCount := sliceCount + 1
	for i := 0; i < stackCount; i++ {
		for j := 0; j < sliceCount; j++ {
			mesh.Indices = append(mesh.Indices,
				uint32(i*ringVertexCount+j),
				uint32((i+1)*ringVertexCount+j),
				uint32((i+1)*ringVertexCount+j+1),
				uint32(i*ringVertexCount+j),
				uint32((i+1)*ringVertexCount+j+1),
				uint32(i*ringVertexCount+j+1),
			)
		}
	}

	buildCap(&mesh, topRadius, 0.5*height, sliceCount, true)
	buildCap(&mesh, bottomRadius, -0.5*height, sliceCount, false)
	return mesh
}

func buildCap(mesh *MeshData, radius, y float32, sliceCount int, top bool) {
	base := uint32(len(mesh.Vertices))
	ny := float32(1)
	if !top {
		ny = -1
	}

	for j := 0; j <= sliceCount; j++ {
		theta := float32(j) * 2 * math32.Pi / float32(sliceCount)
		x := radius * math32.Cos(theta)
		z := radius * math32.Sin(theta)
		uv := mgl32.Vec2{0.5, 0.5}
		if radius > 0 {
			uv = mgl32.Vec2{x/radius*0.5 + 0.5, z/radius*0.5 + 0.5}
		}
		mesh.Vertices = append(mesh.Vertices, core.Vertex{
			Pos:    mgl32.Vec3{x, y, z},
			Normal: mgl32.Vec3{0, ny, 0},
			TexC:   uv,
		})
	}
	mesh.Vertices = append(mesh.Vertices, core.Vertex{
		Pos:    mgl32.Vec3{0, y, 0},
		Normal: mgl32.Vec3{0, ny, 0},
		TexC:   mgl32.Vec2{0.5, 0.5},
	})

	center := uint32(len(mesh.Vertices) - 1)
	for j := 0; j < sliceCount; j++ {
		if top {
			mesh.Indices = append(mesh.Indices, center, base+uint32(j+1), base+uint32(j))
		} else {
			mesh.Indices = append(mesh.Indices, center, base+uint32(j), base+uint32(j+1))
		}
	}
}
