package app

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/frame"
	"github.com/gekko3d/castle/waves"
)

// Renderer is what the orchestrator needs from the draw path. The gpu
// package provides the real one; tests substitute a null renderer.
type Renderer interface {
	BindMaterials(scene *core.Scene)
	DrawFrame(slotIndex int, scene *core.Scene) error
}

// WaterBinding ties the simulated height field to its scene objects:
// the streamed render item and the scrolling material.
type WaterBinding struct {
	Item     *core.RenderItem
	Material *core.Material
}

// Orchestrator drives one frame per Tick: reclaim the next frame slot,
// animate and step the wave simulation, flush everything stale into
// the slot, draw and submit.
type Orchestrator struct {
	log      core.Logger
	cfg      *Config
	scene    *core.Scene
	camera   *core.Camera
	field    *waves.HeightField
	water    WaterBinding
	ring     *frame.Ring
	renderer Renderer

	telemetry *TelemetryWriter

	nextFence    uint64
	frame        int64
	disturbTimer float32
	texU, texV   float32

	rowDist, colDist, magDist distuv.Uniform

	// scratch avoids a per-vertex allocation while streaming the
	// water surface.
	scratch []core.Vertex

	// telemetry window accumulators
	winFrames    int
	winDeltaSum  float32
	winDeltaMax  float32
	winWaitsBase uint64
}

func NewOrchestrator(cfg *Config, log core.Logger, scene *core.Scene, camera *core.Camera,
	field *waves.HeightField, water WaterBinding, ring *frame.Ring, renderer Renderer,
	telemetry *TelemetryWriter) (*Orchestrator, error) {

	if ring.Len() != cfg.FramesInFlight {
		return nil, &frame.ConfigurationError{
			Reason: fmt.Sprintf("ring has %d slots, config wants %d in flight", ring.Len(), cfg.FramesInFlight),
		}
	}
	if water.Item == nil || water.Material == nil {
		return nil, &frame.ConfigurationError{Reason: "water binding incomplete"}
	}
	for i := 0; i < ring.Len(); i++ {
		slot := ring.Slot(i)
		if slot.Objects.Capacity() < scene.ItemCount() {
			return nil, &frame.ConfigurationError{
				Reason: fmt.Sprintf("slot %d holds %d object regions, scene has %d items",
					i, slot.Objects.Capacity(), scene.ItemCount()),
			}
		}
		if slot.Materials.Capacity() < scene.MaterialCount() {
			return nil, &frame.ConfigurationError{
				Reason: fmt.Sprintf("slot %d holds %d material regions, scene has %d materials",
					i, slot.Materials.Capacity(), scene.MaterialCount()),
			}
		}
		if slot.Vertices != nil && slot.Vertices.Capacity() < field.VertexCount() {
			return nil, &frame.ConfigurationError{
				Reason: fmt.Sprintf("slot %d holds %d vertex regions, field has %d vertices",
					i, slot.Vertices.Capacity(), field.VertexCount()),
			}
		}
	}

	seed := cfg.Disturb.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)

	o := &Orchestrator{
		log:       log,
		cfg:       cfg,
		scene:     scene,
		camera:    camera,
		field:     field,
		water:     water,
		ring:      ring,
		renderer:  renderer,
		telemetry: telemetry,
		nextFence: 1,
		rowDist:   distuv.Uniform{Min: 4, Max: float64(field.RowCount() - 4), Src: src},
		colDist:   distuv.Uniform{Min: 4, Max: float64(field.ColumnCount() - 4), Src: src},
		magDist: distuv.Uniform{
			Min: float64(cfg.Disturb.MinMagnitude),
			Max: float64(cfg.Disturb.MaxMagnitude),
			Src: src,
		},
		scratch: make([]core.Vertex, 1),
	}
	return o, nil
}

// Initialize binds material textures. Call once before the first Tick.
func (o *Orchestrator) Initialize() {
	o.renderer.BindMaterials(o.scene)
}

func (o *Orchestrator) Camera() *core.Camera { return o.camera }
func (o *Orchestrator) Scene() *core.Scene   { return o.scene }

// Disturb drops an impulse into the water surface. Out-of-range cells
// are absorbed with a log line rather than failing the frame.
func (o *Orchestrator) Disturb(row, col int, magnitude float32) {
	if err := o.field.Disturb(row, col, magnitude); err != nil {
		o.log.Debugf("disturb (%d,%d) absorbed: %v", row, col, err)
	}
}

// MarkDirty flags an item whose transform or texture scroll changed.
func (o *Orchestrator) MarkDirty(item *core.RenderItem) { o.scene.MarkDirty(item) }

// MarkMaterialDirty flags a material whose shading constants changed.
func (o *Orchestrator) MarkMaterialDirty(m *core.Material) { o.scene.MarkMaterialDirty(m) }

// Tick runs one frame: the slot is reclaimed first, then every
// mutation of this tick lands in it before the draw is submitted.
func (o *Orchestrator) Tick(dt, total float32) error {
	slot, err := o.ring.Acquire()
	if err != nil {
		return fmt.Errorf("tick %d: %w", o.frame, err)
	}

	o.randomDisturb(dt)
	o.scrollWater(dt)
	o.field.Update(dt)

	dirtyObjects, dirtyMaterials, err := o.flushConstants(slot, dt, total)
	if err != nil {
		return fmt.Errorf("tick %d: %w", o.frame, err)
	}
	if err := o.streamWaves(slot); err != nil {
		return fmt.Errorf("tick %d: %w", o.frame, err)
	}

	if err := o.renderer.DrawFrame(o.ring.Index(), o.scene); err != nil {
		return fmt.Errorf("tick %d: %w", o.frame, err)
	}

	if err := o.ring.Submit(o.nextFence); err != nil {
		return fmt.Errorf("tick %d: %w", o.frame, err)
	}
	o.nextFence++
	o.frame++

	o.recordTelemetry(dt, total, dirtyObjects, dirtyMaterials)
	return nil
}

// randomDisturb drops one random raindrop whenever the interval timer
// elapses.
func (o *Orchestrator) randomDisturb(dt float32) {
	o.disturbTimer += dt
	for o.disturbTimer >= o.cfg.Disturb.Interval {
		o.disturbTimer -= o.cfg.Disturb.Interval
		o.Disturb(int(o.rowDist.Rand()), int(o.colDist.Rand()), float32(o.magDist.Rand()))
	}
}

// scrollWater advances the water texture offset and marks the material
// so every slot picks up the new transform.
func (o *Orchestrator) scrollWater(dt float32) {
	o.texU += o.cfg.Water.ScrollU * dt
	o.texV += o.cfg.Water.ScrollV * dt
	if o.texU >= 1.0 {
		o.texU -= 1.0
	}
	if o.texV >= 1.0 {
		o.texV -= 1.0
	}
	o.water.Material.MatTransform = mgl32.Translate3D(o.texU, o.texV, 0)
	o.scene.MarkMaterialDirty(o.water.Material)
}

// flushConstants copies stale constants into the acquired slot and
// decrements each object's dirty counter, then rewrites the per-pass
// block unconditionally.
func (o *Orchestrator) flushConstants(slot *frame.Slot, dt, total float32) (int, int, error) {
	dirtyObjects := 0
	for _, item := range o.scene.Items() {
		if !item.Dirty() {
			continue
		}
		c := item.Constants()
		if err := slot.Objects.CopyData(item.ObjectIndex, c.Bytes()); err != nil {
			return 0, 0, fmt.Errorf("flushing item %q: %w", item.Name, err)
		}
		item.Retire()
		dirtyObjects++
	}

	dirtyMaterials := 0
	for _, m := range o.scene.Materials() {
		if !m.Dirty() {
			continue
		}
		c := m.Constants()
		if err := slot.Materials.CopyData(m.MaterialIndex, c.Bytes()); err != nil {
			return 0, 0, fmt.Errorf("flushing material %q: %w", m.Name, err)
		}
		m.Retire()
		dirtyMaterials++
	}

	pass := o.passConstants(dt, total)
	if err := slot.Pass.CopyData(0, pass.Bytes()); err != nil {
		return 0, 0, fmt.Errorf("flushing pass constants: %w", err)
	}
	return dirtyObjects, dirtyMaterials, nil
}

func (o *Orchestrator) passConstants(dt, total float32) core.PassConstants {
	view := o.camera.View()
	proj := o.camera.Proj()
	viewProj := proj.Mul4(view)

	w := float32(o.cfg.Window.Width)
	h := float32(o.cfg.Window.Height)

	pc := core.PassConstants{
		View:            view,
		InvView:         view.Inv(),
		Proj:            proj,
		InvProj:         proj.Inv(),
		ViewProj:        viewProj,
		InvViewProj:     viewProj.Inv(),
		EyePosW:         o.camera.Position,
		RenderTarget:    mgl32.Vec2{w, h},
		InvRenderTarget: mgl32.Vec2{1 / w, 1 / h},
		NearZ:           o.camera.NearZ(),
		FarZ:            o.camera.FarZ(),
		TotalTime:       total,
		DeltaTime:       dt,
		AmbientLight:    mgl32.Vec4{0.4, 0.4, 0.4, 1.0},
	}
	pc.Lights[0] = core.DirectionalLight(mgl32.Vec3{-0.5, -0.35, 0.5}, mgl32.Vec3{1.0, 0.5, 0.3})
	pc.Lights[1] = core.DirectionalLight(mgl32.Vec3{0.5, -0.35, 0.5}, mgl32.Vec3{0.25, 0.2, 0.2})
	pc.Lights[2] = core.DirectionalLight(mgl32.Vec3{0, -0.707, -0.707}, mgl32.Vec3{0.15, 0.15, 0.2})
	return pc
}

// streamWaves rewrites the acquired slot's vertex region from the
// simulation: the wave item always streams because every Update moves
// the whole surface.
func (o *Orchestrator) streamWaves(slot *frame.Slot) error {
	if slot.Vertices == nil {
		return nil
	}
	width := o.field.Width()
	depth := o.field.Depth()

	for i := 0; i < o.field.VertexCount(); i++ {
		pos := o.field.Position(i)
		o.scratch[0] = core.Vertex{
			Pos:    pos,
			Normal: o.field.Normal(i),
			TexC: mgl32.Vec2{
				0.5 + pos.X()/width,
				0.5 - pos.Z()/depth,
			},
		}
		if err := slot.Vertices.CopyData(i, core.VertexBytes(o.scratch)); err != nil {
			return fmt.Errorf("streaming wave vertex %d: %w", i, err)
		}
	}
	return nil
}

func (o *Orchestrator) recordTelemetry(dt, total float32, dirtyObjects, dirtyMaterials int) {
	if o.telemetry == nil {
		return
	}
	o.winFrames++
	o.winDeltaSum += dt
	if dt > o.winDeltaMax {
		o.winDeltaMax = dt
	}
	window := o.cfg.Telemetry.WindowFrames
	if window <= 0 {
		window = 120
	}
	if o.winFrames < window {
		return
	}

	stats := FrameStats{
		Frame:          o.frame,
		TotalTime:      total,
		AvgDelta:       o.winDeltaSum / float32(o.winFrames),
		MaxDelta:       o.winDeltaMax,
		SlotWaits:      int64(o.ring.Waits() - o.winWaitsBase),
		DirtyObjects:   dirtyObjects,
		DirtyMaterials: dirtyMaterials,
	}
	if err := o.telemetry.Write(stats); err != nil {
		o.log.Warnf("telemetry: %v", err)
	}
	o.winFrames = 0
	o.winDeltaSum = 0
	o.winDeltaMax = 0
	o.winWaitsBase = o.ring.Waits()
}
