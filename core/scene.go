package core

// Layer buckets render items by pipeline state. Layers draw in
// declaration order: opaque first, transparent last.
type Layer int

const (
	LayerOpaque Layer = iota
	LayerAlphaTested
	LayerTransparent

	layerCount
)

// Scene owns every render item and material and tracks, per object,
// how many frame slots still hold stale constants. Mutating an item or
// material through the Mark methods resets its counter to the number
// of frames in flight; the renderer decrements it once per flushed
// slot, so after that many ticks every slot is fresh again.
type Scene struct {
	framesInFlight int
	items          []*RenderItem
	materials      []*Material
	layers         [layerCount][]*RenderItem
}

func NewScene(framesInFlight int) *Scene {
	if framesInFlight < 1 {
		framesInFlight = 1
	}
	return &Scene{framesInFlight: framesInFlight}
}

// AddItem registers an item, assigns its stable ObjectIndex and places
// it in the given layer. New items start fully dirty.
func (s *Scene) AddItem(layer Layer, item *RenderItem) *RenderItem {
	item.ObjectIndex = len(s.items)
	item.framesDirty = s.framesInFlight
	s.items = append(s.items, item)
	s.layers[layer] = append(s.layers[layer], item)
	return item
}

// AddMaterial registers a material and assigns its stable
// MaterialIndex. New materials start fully dirty.
func (s *Scene) AddMaterial(m *Material) *Material {
	m.MaterialIndex = len(s.materials)
	m.framesDirty = s.framesInFlight
	s.materials = append(s.materials, m)
	return m
}

func (s *Scene) Items() []*RenderItem        { return s.items }
func (s *Scene) Materials() []*Material      { return s.materials }
func (s *Scene) Layer(l Layer) []*RenderItem { return s.layers[l] }

func (s *Scene) ItemCount() int      { return len(s.items) }
func (s *Scene) MaterialCount() int  { return len(s.materials) }
func (s *Scene) FramesInFlight() int { return s.framesInFlight }

// MarkDirty records that an item's constants changed and every frame
// slot must be refreshed before it is safe to reuse.
func (s *Scene) MarkDirty(item *RenderItem) {
	item.framesDirty = s.framesInFlight
}

// MarkMaterialDirty is MarkDirty for materials.
func (s *Scene) MarkMaterialDirty(m *Material) {
	m.framesDirty = s.framesInFlight
}

// Dirty reports whether the item still has slots holding stale
// constants.
func (r *RenderItem) Dirty() bool { return r.framesDirty > 0 }

// Retire consumes one dirty count after the item's constants were
// copied into the current slot. It is a no-op on a clean item.
func (r *RenderItem) Retire() {
	if r.framesDirty > 0 {
		r.framesDirty--
	}
}

func (m *Material) Dirty() bool { return m.framesDirty > 0 }

func (m *Material) Retire() {
	if m.framesDirty > 0 {
		m.framesDirty--
	}
}
