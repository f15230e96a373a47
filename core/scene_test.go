package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemAssignsStableIndices(t *testing.T) {
	s := NewScene(3)

	a := s.AddItem(LayerOpaque, &RenderItem{Name: "a"})
	b := s.AddItem(LayerTransparent, &RenderItem{Name: "b"})
	c := s.AddItem(LayerOpaque, &RenderItem{Name: "c"})

	assert.Equal(t, 0, a.ObjectIndex)
	assert.Equal(t, 1, b.ObjectIndex)
	assert.Equal(t, 2, c.ObjectIndex)

	require.Len(t, s.Layer(LayerOpaque), 2)
	require.Len(t, s.Layer(LayerTransparent), 1)
	assert.Equal(t, 3, s.ItemCount())
}

func TestNewItemStartsFullyDirty(t *testing.T) {
	s := NewScene(3)
	item := s.AddItem(LayerOpaque, &RenderItem{})

	for i := 0; i < 3; i++ {
		assert.True(t, item.Dirty(), "tick %d", i)
		item.Retire()
	}
	assert.False(t, item.Dirty())

	// Retiring a clean item stays a no-op.
	item.Retire()
	assert.False(t, item.Dirty())
}

func TestMarkDirtyResetsCounter(t *testing.T) {
	s := NewScene(3)
	item := s.AddItem(LayerOpaque, &RenderItem{})

	item.Retire()
	item.Retire()
	s.MarkDirty(item)

	count := 0
	for item.Dirty() {
		item.Retire()
		count++
	}
	assert.Equal(t, 3, count)
}

func TestMaterialDirtyProtocol(t *testing.T) {
	s := NewScene(2)
	m := s.AddMaterial(&Material{Name: "water"})

	assert.Equal(t, 0, m.MaterialIndex)
	assert.True(t, m.Dirty())
	m.Retire()
	m.Retire()
	assert.False(t, m.Dirty())

	m.Roughness = 0.5
	s.MarkMaterialDirty(m)
	assert.True(t, m.Dirty())
}

func TestMaterialConstantsSnapshot(t *testing.T) {
	m := Material{
		DiffuseAlbedo: mgl32.Vec4{1, 0.5, 0.3, 1},
		FresnelR0:     mgl32.Vec3{0.02, 0.02, 0.02},
		Roughness:     0.9,
		MatTransform:  mgl32.Ident4(),
	}
	c := m.Constants()
	assert.Equal(t, m.DiffuseAlbedo, c.DiffuseAlbedo)
	assert.Equal(t, m.FresnelR0, c.FresnelR0)
	assert.Equal(t, m.Roughness, c.Roughness)
}

func TestCameraLensAndOrientation(t *testing.T) {
	c := NewCamera()
	c.SetLens(mgl32.DegToRad(60), 16.0/9.0, 0.1, 500)
	assert.InDelta(t, 0.1, float64(c.NearZ()), 1e-6)
	assert.InDelta(t, 500, float64(c.FarZ()), 1e-6)

	// Default orientation looks down +Z.
	f := c.Forward()
	assert.InDelta(t, 0, float64(f.X()), 1e-6)
	assert.InDelta(t, 0, float64(f.Y()), 1e-6)
	assert.InDelta(t, 1, float64(f.Z()), 1e-6)

	// Pitch clamps short of straight up.
	c.Rotate(0, 10)
	assert.Less(t, float64(c.Forward().Y()), 1.0)
	assert.Greater(t, float64(c.Forward().Len()), 0.999)
}

func TestConstantBlockSizes(t *testing.T) {
	var oc ObjectConstants
	var mc MaterialConstants
	var pc PassConstants

	assert.Equal(t, 128, len(oc.Bytes()))
	assert.Equal(t, 96, len(mc.Bytes()))
	assert.Equal(t, 1216, len(pc.Bytes()))

	verts := []Vertex{{}, {}}
	assert.Equal(t, 64, len(VertexBytes(verts)))
	assert.Nil(t, VertexBytes(nil))
}
