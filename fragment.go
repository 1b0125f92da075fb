package canvas

import "github.com/chewxy/math32"

// Fragment carries the rasterizer-interpolated attributes consumed by one
// shape-compositor invocation. Color, UV, and Local are interpolated across
// the covered triangle; the index fields are flat (taken from the
// provoking vertex, which for a quad is the same for all six vertices).
type Fragment struct {
	Color        Vec4
	UV           Vec2
	TextureIndex uint32
	Instance     uint32
	Corner       uint32
	Local        Vec2
}

// ShadeFragment runs one shape-compositor invocation and returns the final
// straight-alpha RGBA color for the fragment. It reads the element by
// instance index, samples the indicated texture, and dispatches on the
// element kind: anything but KindRect is a pure pass-through of the texture
// sample, KindRect composites an anti-aliased rounded rectangle.
//
// All arithmetic is total; the host guarantees valid indices and a positive
// element height (see Element).
func ShadeFragment(frag Fragment, elements []Element, brushes []Brush, textures *TextureArray) Vec4 {
	e := &elements[frag.Instance]

	texColor := textures.At(frag.TextureIndex).Sample(frag.UV).Mul(frag.Color)

	if e.Kind() != KindRect {
		return texColor
	}
	return shadeRoundedRect(e, &brushes[e.Attrs[AttrBrush]], texColor, frag.Local)
}

// shadeRoundedRect composites the rounded-rectangle-with-border shape.
//
// All distances are normalized by the element height so the shape keeps its
// appearance at any size: a border of 5 on a 100-pixel-tall element covers
// the same fraction as 10 on 200. The anti-aliasing half-width is calibrated
// to 0.001 for a 100-pixel reference height and shrinks as elements grow.
func shadeRoundedRect(e *Element, brush *Brush, texColor Vec4, local Vec2) Vec4 {
	fg := brush.FG.Mul(texColor)
	bg := brush.BG.Mul(texColor)

	res := e.Size.Y
	border := brush.Border.X
	borderFix := border / res

	// With no border the band color collapses to the fill, leaving a plain
	// rounded rectangle with no visible ring.
	borderColor := bg.XYZ()
	if border > 0 {
		borderColor = fg.XYZ()
	}

	radius := brush.Radius.SubScalar(border)
	smoothness := (100 / res) * 0.001

	offset := local.Sub(e.Size.Scale(0.5)).Div(res)
	halfExtent := V2(e.Size.X/2/res-borderFix, 0.5-borderFix)
	d := RoundedBoxSDF(offset, halfExtent, radius.Div(res))

	rgb := V3(1, 1, 1)
	if d <= 0 {
		rgb = bg.XYZ()
	}

	borderCoverage := 1 - smoothstep(borderFix-smoothness, borderFix+smoothness, math32.Abs(d))
	rgb = mix(rgb, borderColor, borderCoverage)

	alpha := float32(1)
	if d > 0 {
		alpha = borderCoverage
	}
	return V4(rgb.X, rgb.Y, rgb.Z, alpha)
}
