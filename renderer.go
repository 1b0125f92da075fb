package canvas

import (
	"errors"

	"github.com/gogpu/canvas/internal/parallel"
)

// Arena capacities per draw batch.
const (
	// MaxElements is the default element arena capacity.
	MaxElements = 4096

	// MaxBrushes is the default brush arena capacity.
	MaxBrushes = 4096
)

// ErrRendererClosed is returned when drawing with a closed renderer.
var ErrRendererClosed = errors.New("canvas: renderer is closed")

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// MaxElements is the element arena capacity. Defaults to MaxElements.
	MaxElements int

	// MaxBrushes is the brush arena capacity. Defaults to MaxBrushes.
	MaxBrushes int

	// Workers is the CPU rasterizer worker count. 0 means GOMAXPROCS.
	Workers int
}

// DefaultRendererOptions returns options with the default capacities.
func DefaultRendererOptions() RendererOptions {
	return RendererOptions{
		MaxElements: MaxElements,
		MaxBrushes:  MaxBrushes,
	}
}

// Renderer owns the host side of the shading core: the append-only element
// and brush arenas, the texture array, and the CPU execution of both shading
// stages. Records are appended between draws and snapshot-read during one;
// the shading stages themselves never mutate them.
//
// Renderer is not safe for concurrent use. One renderer per frame producer.
type Renderer struct {
	elements []Element
	brushes  []Brush
	nElem    int
	nBrush   int

	textures *TextureArray
	pool     *parallel.Pool
	closed   bool
}

// NewRenderer creates a renderer with default options.
func NewRenderer() *Renderer {
	return NewRendererWith(DefaultRendererOptions())
}

// NewRendererWith creates a renderer with the given options.
func NewRendererWith(opts RendererOptions) *Renderer {
	if opts.MaxElements <= 0 {
		opts.MaxElements = MaxElements
	}
	if opts.MaxBrushes <= 0 {
		opts.MaxBrushes = MaxBrushes
	}
	return &Renderer{
		elements: make([]Element, opts.MaxElements),
		brushes:  make([]Brush, opts.MaxBrushes),
		textures: NewTextureArray(),
		pool:     parallel.New(opts.Workers),
	}
}

// Textures returns the texture array bound to the fragment stage.
func (r *Renderer) Textures() *TextureArray {
	return r.textures
}

// PushElement appends an element to the arena and returns its index.
// When the arena is full the element is dropped: the overflow is logged and
// index 0 returned. A frame that overflows renders incompletely rather
// than failing.
func (r *Renderer) PushElement(e Element) uint32 {
	if r.nElem >= len(r.elements) {
		Logger().Warn("canvas: element arena full, element dropped", "capacity", len(r.elements))
		return 0
	}
	r.elements[r.nElem] = e
	r.nElem++
	return uint32(r.nElem - 1)
}

// PushBrush appends a brush to the arena and returns its index.
// Overflow behaves like PushElement.
func (r *Renderer) PushBrush(b Brush) uint32 {
	if r.nBrush >= len(r.brushes) {
		Logger().Warn("canvas: brush arena full, brush dropped", "capacity", len(r.brushes))
		return 0
	}
	r.brushes[r.nBrush] = b
	r.nBrush++
	return uint32(r.nBrush - 1)
}

// Render queues one element for the current batch, wiring its texture and
// brush indices. The texture is stored in the texture array on first sight
// and its slot written to Attrs[1]; the brush is appended and its index
// written to Attrs[2].
func (r *Renderer) Render(e Element, b Brush, t *Texture) error {
	slot, err := r.textures.Store(t)
	if err != nil {
		return err
	}
	e.Attrs[AttrTexture] = slot
	e.Attrs[AttrBrush] = r.PushBrush(b)
	r.PushElement(e)
	return nil
}

// Glyph is one pre-laid-out glyph quad. Layout (shaping, positioning, line
// breaking) happens upstream; the renderer only turns each quad into an
// image-mode element sampling the glyph atlas.
type Glyph struct {
	// Position is the quad origin in world units.
	Position Vec2

	// Src is the atlas region origin in normalized UV space.
	Src Vec2

	// UV is the atlas region extent in normalized UV space.
	UV Vec2

	// Size is the quad extent in pixels.
	Size Vec2
}

// RenderGlyphs queues one image-mode element per glyph, all sampling the
// given atlas texture with the default brush.
func (r *Renderer) RenderGlyphs(glyphs []Glyph, atlas *Texture) error {
	for _, g := range glyphs {
		e := Element{
			Position: g.Position,
			Src:      g.Src,
			UV:       g.UV,
			Size:     g.Size,
			Attrs:    [4]uint32{KindImage, 0, 0, 0},
		}
		if err := r.Render(e, DefaultBrush(), atlas); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the current batch has no elements.
func (r *Renderer) IsEmpty() bool {
	return r.nElem == 0
}

// Batch returns read-only views of the current arenas. The gpu subpackage
// uploads these; they stay valid until the next Push or Reset.
func (r *Renderer) Batch() ([]Element, []Brush) {
	return r.elements[:r.nElem], r.brushes[:r.nBrush]
}

// Reset empties both arenas for the next batch. Texture slots persist:
// slot assignment is per texture identity, not per frame.
func (r *Renderer) Reset() {
	r.nElem = 0
	r.nBrush = 0
}

// Draw executes both shading stages over the target for every queued
// element, then resets the arenas. Equivalent to one instanced GPU draw of
// QuadVertexCount vertices times the element count.
func (r *Renderer) Draw(target *Pixmap, transform Transform) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.IsEmpty() {
		return nil
	}

	elements, brushes := r.Batch()
	Logger().Debug("canvas: draw batch", "elements", len(elements), "brushes", len(brushes))
	rasterize(target, elements, brushes, r.textures, transform, r.pool)
	r.Reset()
	return nil
}

// Close releases the worker pool. The renderer cannot draw afterwards.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
}
