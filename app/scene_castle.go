package app

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/geometry"
	"github.com/gekko3d/castle/waves"
)

// MeshRegistry is what scene construction needs from the gpu asset
// registry. Tests satisfy it with an in-memory fake.
type MeshRegistry interface {
	RegisterMesh(mesh geometry.MeshData) (core.GeometryHandle, error)
	RegisterIndexOnlyMesh(indices []uint32, vertexCount int) (core.GeometryHandle, error)
}

// SceneAssets carries the registry and the pre-registered diffuse
// textures the castle materials bind.
type SceneAssets struct {
	Meshes   MeshRegistry
	GrassTex core.TextureHandle
	WaterTex core.TextureHandle
	StoneTex core.TextureHandle
	RoofTex  core.TextureHandle
}

// islandHeight shapes the terrain: a central plateau falling off into
// the water that surrounds it.
func islandHeight(x, z float32) float32 {
	r2 := x*x + z*z
	return 6.5*math32.Exp(-r2/2000) - 1.3
}

func islandNormal(x, z float32) mgl32.Vec3 {
	const h = 0.5
	dhdx := (islandHeight(x+h, z) - islandHeight(x-h, z)) / (2 * h)
	dhdz := (islandHeight(x, z+h) - islandHeight(x, z-h)) / (2 * h)
	return mgl32.Vec3{-dhdx, 1, -dhdz}.Normalize()
}

// BuildCastleScene assembles the island, the surrounding water and the
// castle on top, and returns the scene plus the water binding the
// orchestrator animates.
func BuildCastleScene(cfg *Config, field *waves.HeightField, assets SceneAssets) (*core.Scene, WaterBinding, error) {
	scene := core.NewScene(cfg.FramesInFlight)

	grass := scene.AddMaterial(&core.Material{
		Name:          "grass",
		DiffuseMap:    assets.GrassTex,
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 1},
		FresnelR0:     mgl32.Vec3{0.01, 0.01, 0.01},
		Roughness:     0.125,
		MatTransform:  mgl32.Ident4(),
	})
	water := scene.AddMaterial(&core.Material{
		Name:          "water",
		DiffuseMap:    assets.WaterTex,
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 0.5},
		FresnelR0:     mgl32.Vec3{0.1, 0.1, 0.1},
		Roughness:     0,
		MatTransform:  mgl32.Ident4(),
	})
	stone := scene.AddMaterial(&core.Material{
		Name:          "stone",
		DiffuseMap:    assets.StoneTex,
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 1},
		FresnelR0:     mgl32.Vec3{0.05, 0.05, 0.05},
		Roughness:     0.3,
		MatTransform:  mgl32.Ident4(),
	})
	roof := scene.AddMaterial(&core.Material{
		Name:          "roof",
		DiffuseMap:    assets.RoofTex,
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 1},
		FresnelR0:     mgl32.Vec3{0.02, 0.02, 0.02},
		Roughness:     0.5,
		MatTransform:  mgl32.Ident4(),
	})

	// Terrain: a grid displaced by the island profile.
	land := geometry.Grid(160, 160, 64, 64)
	for i := range land.Vertices {
		p := land.Vertices[i].Pos
		land.Vertices[i].Pos = mgl32.Vec3{p.X(), islandHeight(p.X(), p.Z()), p.Z()}
		land.Vertices[i].Normal = islandNormal(p.X(), p.Z())
	}
	landGeo, err := assets.Meshes.RegisterMesh(land)
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("land mesh: %w", err)
	}
	scene.AddItem(core.LayerOpaque, &core.RenderItem{
		Name:         "land",
		World:        mgl32.Ident4(),
		TexTransform: mgl32.Scale3D(8, 8, 1),
		MaterialIdx:  grass.MaterialIndex,
		Geometry:     landGeo,
		IndexCount:   uint32(len(land.Indices)),
	})

	// Water streams its vertices from the simulation, so only the
	// index topology is static.
	waterMesh := geometry.Grid(field.Width(), field.Depth(), field.RowCount(), field.ColumnCount())
	waterGeo, err := assets.Meshes.RegisterIndexOnlyMesh(waterMesh.Indices, field.VertexCount())
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("water mesh: %w", err)
	}
	waterItem := scene.AddItem(core.LayerTransparent, &core.RenderItem{
		Name:            "water",
		World:           mgl32.Ident4(),
		TexTransform:    mgl32.Scale3D(5, 5, 1),
		MaterialIdx:     water.MaterialIndex,
		Geometry:        waterGeo,
		IndexCount:      uint32(len(waterMesh.Indices)),
		DynamicVertices: true,
	})

	base := islandHeight(0, 0)

	wallGeo, err := assets.Meshes.RegisterMesh(geometry.Box(30, 6, 2))
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("wall mesh: %w", err)
	}
	wallCount := uint32(36)
	walls := []struct {
		name string
		at   mgl32.Vec3
		rotY float32
	}{
		{"wall-north", mgl32.Vec3{0, base + 3, 15}, 0},
		{"wall-south", mgl32.Vec3{0, base + 3, -15}, 0},
		{"wall-east", mgl32.Vec3{15, base + 3, 0}, math32.Pi / 2},
		{"wall-west", mgl32.Vec3{-15, base + 3, 0}, math32.Pi / 2},
	}
	for _, w := range walls {
		world := mgl32.Translate3D(w.at.X(), w.at.Y(), w.at.Z()).
			Mul4(mgl32.HomogRotate3DY(w.rotY))
		scene.AddItem(core.LayerOpaque, &core.RenderItem{
			Name:         w.name,
			World:        world,
			TexTransform: mgl32.Scale3D(4, 1, 1),
			MaterialIdx:  stone.MaterialIndex,
			Geometry:     wallGeo,
			IndexCount:   wallCount,
		})
	}

	towerMesh := geometry.Cylinder(3, 2.6, 10, 20, 4)
	towerGeo, err := assets.Meshes.RegisterMesh(towerMesh)
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("tower mesh: %w", err)
	}
	roofMesh := geometry.Cylinder(3.4, 0, 4, 20, 2)
	roofGeo, err := assets.Meshes.RegisterMesh(roofMesh)
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("roof mesh: %w", err)
	}

	for _, corner := range []mgl32.Vec3{
		{15, 0, 15}, {-15, 0, 15}, {15, 0, -15}, {-15, 0, -15},
	} {
		scene.AddItem(core.LayerOpaque, &core.RenderItem{
			Name:         fmt.Sprintf("tower(%+.0f,%+.0f)", corner.X(), corner.Z()),
			World:        mgl32.Translate3D(corner.X(), base+5, corner.Z()),
			TexTransform: mgl32.Scale3D(2, 2, 1),
			MaterialIdx:  stone.MaterialIndex,
			Geometry:     towerGeo,
			IndexCount:   uint32(len(towerMesh.Indices)),
		})
		scene.AddItem(core.LayerOpaque, &core.RenderItem{
			Name:         fmt.Sprintf("roof(%+.0f,%+.0f)", corner.X(), corner.Z()),
			World:        mgl32.Translate3D(corner.X(), base+12, corner.Z()),
			TexTransform: mgl32.Ident4(),
			MaterialIdx:  roof.MaterialIndex,
			Geometry:     roofGeo,
			IndexCount:   uint32(len(roofMesh.Indices)),
		})
	}

	keepGeo, err := assets.Meshes.RegisterMesh(geometry.Box(10, 9, 10))
	if err != nil {
		return nil, WaterBinding{}, fmt.Errorf("keep mesh: %w", err)
	}
	scene.AddItem(core.LayerOpaque, &core.RenderItem{
		Name:         "keep",
		World:        mgl32.Translate3D(0, base+4.5, 0),
		TexTransform: mgl32.Scale3D(3, 3, 1),
		MaterialIdx:  stone.MaterialIndex,
		Geometry:     keepGeo,
		IndexCount:   wallCount,
	})

	return scene, WaterBinding{Item: waterItem, Material: water}, nil
}
