package canvas

// Element kinds, stored in Attrs[0]. Any value other than KindRect
// composites as a plain image.
const (
	// KindImage passes the texture sample through unchanged.
	KindImage uint32 = 0

	// KindRect composites an anti-aliased rounded rectangle with an
	// optional border, using the brush referenced by Attrs[2].
	KindRect uint32 = 1
)

// Attrs component indices.
const (
	// AttrKind selects the compositing mode.
	AttrKind = 0

	// AttrTexture indexes the bound texture array.
	AttrTexture = 1

	// AttrBrush indexes the brush array.
	AttrBrush = 2

	// AttrReserved is unused.
	AttrReserved = 3
)

// Element is one drawable rectangular instance. Elements live in an
// append-only, index-addressed array shared by both shading stages; the
// host populates them before a draw and must not touch them while that draw
// is in flight.
//
// The field order and padding mirror the 64-byte GPU record layout; see
// gpu.ElementStride. Texture and brush indices are not bounds checked by the
// shading core. The host guarantees they are valid for every element drawn
// in a frame, and that Size.Y > 0.
type Element struct {
	// Position is the quad origin in world units.
	Position Vec2

	// Image is reserved. It participates in the record layout but carries
	// no semantics.
	Image Vec2

	// Src is the origin of the texture region, in normalized UV space.
	Src Vec2

	// UV is the extent of the texture region, in normalized UV space.
	UV Vec2

	// Size is the quad extent in pixels.
	Size Vec2

	// Unused is reserved padding.
	Unused [2]float32

	// Attrs packs [kind, textureIndex, brushIndex, reserved].
	Attrs [4]uint32
}

// Kind returns the compositing mode tag.
func (e *Element) Kind() uint32 { return e.Attrs[AttrKind] }

// Brush is a style record shared by reference across elements. Only
// Border.X (the border width in pixels) is consumed today; the remaining
// border components and any radius a quadrant never selects are reserved.
type Brush struct {
	// FG is the foreground (border) color, normalized RGBA.
	FG Vec4

	// BG is the background (fill) color, normalized RGBA.
	BG Vec4

	// Radius holds per-quadrant corner radii in pixels. The compositor
	// selects the active component from the sign of the fragment's local
	// offset: X for +x+y, Y for +x-y, Z for -x+y, W for -x-y.
	Radius Vec4

	// Border is the border descriptor; X is the border width in pixels.
	Border Vec4
}

// DefaultBrush returns the brush used for plain images: opaque white
// colors, no radius, no border. Multiplying by white leaves the texture
// sample unchanged.
func DefaultBrush() Brush {
	return Brush{
		FG: V4(1, 1, 1, 1),
		BG: V4(1, 1, 1, 1),
	}
}
