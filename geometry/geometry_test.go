package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCounts(t *testing.T) {
	mesh := Grid(10, 20, 4, 5)

	assert.Len(t, mesh.Vertices, 20)
	assert.Len(t, mesh.Indices, 3*2*12)

	// Corners span the full extents, centered at the origin.
	first := mesh.Vertices[0].Pos
	last := mesh.Vertices[len(mesh.Vertices)-1].Pos
	assert.InDelta(t, -5, float64(first.X()), 1e-5)
	assert.InDelta(t, 10, float64(first.Z()), 1e-5)
	assert.InDelta(t, 5, float64(last.X()), 1e-5)
	assert.InDelta(t, -10, float64(last.Z()), 1e-5)
}

func TestGridIndicesInRange(t *testing.T) {
	mesh := Grid(1, 1, 3, 3)
	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), len(mesh.Vertices))
	}
}

func TestBoxCounts(t *testing.T) {
	mesh := Box(2, 4, 6)
	require.Len(t, mesh.Vertices, 24)
	require.Len(t, mesh.Indices, 36)

	for _, v := range mesh.Vertices {
		assert.LessOrEqual(t, float64(v.Pos.X()), 1.0)
		assert.LessOrEqual(t, float64(v.Pos.Y()), 2.0)
		assert.LessOrEqual(t, float64(v.Pos.Z()), 3.0)
		assert.InDelta(t, 1, float64(v.Normal.Len()), 1e-5)
	}
}

func TestCylinderUnitNormals(t *testing.T) {
	mesh := Cylinder(1, 0.7, 3, 16, 4)
	require.NotEmpty(t, mesh.Vertices)
	assert.Zero(t, len(mesh.Indices)%3)

	for _, v := range mesh.Vertices {
		assert.InDelta(t, 1, float64(v.Normal.Len()), 1e-4)
	}
}

func TestConeHasNoDegenerateCap(t *testing.T) {
	mesh := Cylinder(1, 0, 2, 8, 2)
	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), len(mesh.Vertices))
	}
}
