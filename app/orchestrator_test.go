package app

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/frame"
	"github.com/gekko3d/castle/geometry"
	"github.com/gekko3d/castle/waves"
)

// instantEngine retires every submission as soon as it is signaled, so
// the ring never blocks.
type instantEngine struct {
	signaled uint64
}

func (e *instantEngine) Completed() uint64               { return e.signaled }
func (e *instantEngine) Signal(marker uint64) error      { e.signaled = marker; return nil }
func (e *instantEngine) WaitUntilRetired(m uint64) error { return nil }

type fakeMeshes struct {
	registered int
}

func (f *fakeMeshes) RegisterMesh(mesh geometry.MeshData) (core.GeometryHandle, error) {
	f.registered++
	return core.GeometryHandle(f.registered - 1), nil
}

func (f *fakeMeshes) RegisterIndexOnlyMesh(indices []uint32, vertexCount int) (core.GeometryHandle, error) {
	f.registered++
	return core.GeometryHandle(f.registered - 1), nil
}

type nullRenderer struct {
	draws     int
	lastSlot  int
	bindCalls int
}

func (r *nullRenderer) BindMaterials(scene *core.Scene) { r.bindCalls++ }

func (r *nullRenderer) DrawFrame(slotIndex int, scene *core.Scene) error {
	r.draws++
	r.lastSlot = slotIndex
	return nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	// Small grid keeps vertex streaming cheap in tests.
	cfg.Waves.Rows = 16
	cfg.Waves.Cols = 16
	cfg.Disturb.Seed = 7
	return cfg
}

func buildTestField(t *testing.T, cfg *Config) *waves.HeightField {
	t.Helper()
	field, err := waves.New(cfg.Waves.Rows, cfg.Waves.Cols,
		cfg.Waves.SpatialStep, cfg.Waves.TimeStep, cfg.Waves.Speed, cfg.Waves.Damping)
	require.NoError(t, err)
	return field
}

func memorySlotAllocator(scene *core.Scene, field *waves.HeightField) frame.SlotAllocator {
	passSize := int(unsafe.Sizeof(core.PassConstants{}))
	objSize := int(unsafe.Sizeof(core.ObjectConstants{}))
	matSize := int(unsafe.Sizeof(core.MaterialConstants{}))
	vertSize := int(unsafe.Sizeof(core.Vertex{}))

	return func(i int) (*frame.Slot, error) {
		return &frame.Slot{
			Pass:      frame.NewMemoryBuffer(passSize, 1),
			Objects:   frame.NewMemoryBuffer(objSize, scene.ItemCount()),
			Materials: frame.NewMemoryBuffer(matSize, scene.MaterialCount()),
			Vertices:  frame.NewMemoryBuffer(vertSize, field.VertexCount()),
		}, nil
	}
}

func buildTestOrchestrator(t *testing.T) (*Orchestrator, *instantEngine, *nullRenderer) {
	t.Helper()
	cfg := testConfig(t)
	field := buildTestField(t, cfg)

	scene, water, err := BuildCastleScene(cfg, field, SceneAssets{Meshes: &fakeMeshes{}})
	require.NoError(t, err)

	engine := &instantEngine{}
	ring, err := frame.NewRing(cfg.FramesInFlight, engine, memorySlotAllocator(scene, field))
	require.NoError(t, err)

	renderer := &nullRenderer{}
	o, err := NewOrchestrator(cfg, core.NewNopLogger(), scene, core.NewCamera(),
		field, water, ring, renderer, nil)
	require.NoError(t, err)
	o.Initialize()
	return o, engine, renderer
}

// tick advances the orchestrator n frames with a fixed step small
// enough that the raindrop timer never fires.
func tick(t *testing.T, o *Orchestrator, n int) {
	t.Helper()
	const dt = 0.016
	total := float32(o.frame) * dt
	for i := 0; i < n; i++ {
		total += dt
		require.NoError(t, o.Tick(dt, total))
	}
}

func TestBuildCastleSceneShape(t *testing.T) {
	cfg := testConfig(t)
	field := buildTestField(t, cfg)

	scene, water, err := BuildCastleScene(cfg, field, SceneAssets{Meshes: &fakeMeshes{}})
	require.NoError(t, err)

	assert.Equal(t, 4, scene.MaterialCount())
	assert.Equal(t, 15, scene.ItemCount())

	require.NotNil(t, water.Item)
	require.NotNil(t, water.Material)
	assert.True(t, water.Item.DynamicVertices)
	assert.Contains(t, scene.Layer(core.LayerTransparent), water.Item)
	assert.Equal(t, "water", water.Material.Name)
}

func TestTickDrawsAndSubmits(t *testing.T) {
	o, engine, renderer := buildTestOrchestrator(t)

	tick(t, o, 5)

	assert.Equal(t, 5, renderer.draws)
	assert.Equal(t, uint64(5), engine.signaled)
	assert.Equal(t, 1, renderer.bindCalls)
}

func TestDirtyCountersDrainOverFramesInFlight(t *testing.T) {
	o, _, _ := buildTestOrchestrator(t)
	n := o.scene.FramesInFlight()

	// Everything starts fully dirty and drains one slot per tick.
	for i := 0; i < n; i++ {
		for _, item := range o.scene.Items() {
			assert.True(t, item.Dirty(), "tick %d", i)
		}
		tick(t, o, 1)
	}
	for _, item := range o.scene.Items() {
		if item == o.water.Item {
			continue
		}
		assert.False(t, item.Dirty(), "item %s", item.Name)
	}

	// A mutation re-dirties for exactly n ticks.
	land := o.scene.Items()[0]
	o.MarkDirty(land)
	for i := 0; i < n; i++ {
		assert.True(t, land.Dirty())
		tick(t, o, 1)
	}
	assert.False(t, land.Dirty())
}

func TestMutationReachesEverySlotAfterFramesInFlight(t *testing.T) {
	o, _, _ := buildTestOrchestrator(t)
	n := o.scene.FramesInFlight()

	// Drain the initial full-dirty state so every slot agrees.
	tick(t, o, n)

	land := o.scene.Items()[0]
	land.World = mgl32.Translate3D(0, 3, 0)
	o.MarkDirty(land)
	want := land.Constants()

	objectBytes := func(i int) []byte {
		buf := o.ring.Slot(i).Objects.(*frame.MemoryBuffer)
		return buf.Record(land.ObjectIndex)
	}

	// One slot per tick picks up the new transform, so after n-1 ticks
	// exactly one still holds the old bytes.
	tick(t, o, n-1)
	stale := 0
	for i := 0; i < n; i++ {
		if !bytes.Equal(objectBytes(i), want.Bytes()) {
			stale++
		}
	}
	assert.Equal(t, 1, stale)

	tick(t, o, 1)
	for i := 0; i < n; i++ {
		assert.Equal(t, want.Bytes(), objectBytes(i), "slot %d", i)
	}
}

func TestWaterMaterialStaysDirtyWhileScrolling(t *testing.T) {
	o, _, _ := buildTestOrchestrator(t)

	// The scroll mutation happens every tick, so the water material
	// never drains completely.
	tick(t, o, 10)
	assert.True(t, o.water.Material.Dirty())
}

func TestScrollWaterWraps(t *testing.T) {
	o, _, _ := buildTestOrchestrator(t)

	o.scrollWater(10) // 10s * 0.1/s == a full wrap in u
	assert.InDelta(t, 0, float64(o.texU), 1e-5)
	assert.InDelta(t, 0.2, float64(o.texV), 1e-5)
	assert.True(t, o.water.Material.Dirty())
}

func TestDisturbAbsorbsBoundaryImpulses(t *testing.T) {
	o, _, _ := buildTestOrchestrator(t)

	// Edge cells are silently dropped: the surface stays flat.
	o.Disturb(0, 5, 0.5)
	o.Disturb(1, 5, 0.5)
	o.Disturb(5, o.field.ColumnCount()-1, 0.5)
	for i := 0; i < o.field.VertexCount(); i++ {
		require.Zero(t, o.field.Position(i).Y(), "vertex %d", i)
	}

	// An interior impulse lands.
	o.Disturb(5, 5, 0.5)
	center := o.field.Position(5*o.field.ColumnCount() + 5)
	assert.InDelta(t, 0.5, float64(center.Y()), 1e-5)
}

func TestFenceAdvancesEveryTick(t *testing.T) {
	o, engine, _ := buildTestOrchestrator(t)

	tick(t, o, 1)
	assert.Equal(t, uint64(2), o.nextFence)
	assert.Equal(t, uint64(1), engine.signaled)

	tick(t, o, 1)
	assert.Equal(t, uint64(3), o.nextFence)
	assert.Equal(t, uint64(2), engine.signaled)
}

func TestNewOrchestratorRejectsUndersizedSlots(t *testing.T) {
	cfg := testConfig(t)
	field := buildTestField(t, cfg)

	scene, water, err := BuildCastleScene(cfg, field, SceneAssets{Meshes: &fakeMeshes{}})
	require.NoError(t, err)

	objSize := int(unsafe.Sizeof(core.ObjectConstants{}))
	tiny := func(i int) (*frame.Slot, error) {
		slot, err := memorySlotAllocator(scene, field)(i)
		if err != nil {
			return nil, err
		}
		slot.Objects = frame.NewMemoryBuffer(objSize, scene.ItemCount()-1)
		return slot, nil
	}

	ring, err := frame.NewRing(cfg.FramesInFlight, &instantEngine{}, tiny)
	require.NoError(t, err)

	_, err = NewOrchestrator(cfg, core.NewNopLogger(), scene, core.NewCamera(),
		field, water, ring, &nullRenderer{}, nil)
	var cfgErr *frame.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "object regions")
}
