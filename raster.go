package canvas

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/canvas/internal/parallel"
)

// rasterBandRows is the pixel-band height handed to one worker. Small bands
// balance load when elements cluster in one screen region.
const rasterBandRows = 16

// rasterize runs the full pipeline on the CPU: quad generation for every
// instance, viewport transform, triangle rasterization, and one
// ShadeFragment invocation per covered pixel center.
//
// The screen is split into horizontal pixel bands, one work item per band.
// Every pixel belongs to exactly one band and each band visits instances in
// draw order, so the output is identical for any worker count.
func rasterize(target *Pixmap, elements []Element, brushes []Brush, textures *TextureArray, transform Transform, pool *parallel.Pool) {
	width, height := target.Width(), target.Height()
	if width == 0 || height == 0 {
		return
	}

	camera := transform.Camera()

	verts := make([]Vertex, len(elements)*QuadVertexCount)
	screen := make([]Vec2, len(verts))
	for i := range elements {
		for v := 0; v < QuadVertexCount; v++ {
			j := i*QuadVertexCount + v
			verts[j] = GenerateVertex(elements, uint32(i), v, camera)
			screen[j] = viewport(verts[j].Position, width, height)
		}
	}

	var work []func()
	for y := 0; y < height; y += rasterBandRows {
		y0, y1 := y, min(y+rasterBandRows, height)
		work = append(work, func() {
			shadeBand(target, y0, y1, verts, screen, elements, brushes, textures)
		})
	}
	pool.ExecuteAll(work)
}

// viewport maps a clip-space position to pixel coordinates. With the usual
// Orthographic(0, w, 0, h, 0, 1) projection, world (0,0) lands on the
// top-left pixel and y grows downward.
func viewport(clip Vec4, width, height int) Vec2 {
	ndcX := clip.X / clip.W
	ndcY := clip.Y / clip.W
	return Vec2{
		X: (ndcX + 1) * 0.5 * float32(width),
		Y: (ndcY + 1) * 0.5 * float32(height),
	}
}

// shadeBand rasterizes every instance's two triangles restricted to the
// pixel rows [y0, y1). Bands touch disjoint pixels; the only shared state
// they read (vertices, arenas, textures) is immutable during the draw.
func shadeBand(target *Pixmap, y0, y1 int, verts []Vertex, screen []Vec2, elements []Element, brushes []Brush, textures *TextureArray) {
	instances := len(verts) / QuadVertexCount
	for i := 0; i < instances; i++ {
		base := i * QuadVertexCount
		shadeTriangle(target, y0, y1, verts, screen, base+0, base+1, base+2, elements, brushes, textures)
		shadeTriangle(target, y0, y1, verts, screen, base+3, base+4, base+5, elements, brushes, textures)
	}
}

func shadeTriangle(target *Pixmap, bandY0, bandY1 int, verts []Vertex, screen []Vec2, i0, i1, i2 int, elements []Element, brushes []Brush, textures *TextureArray) {
	p0, p1, p2 := screen[i0], screen[i1], screen[i2]

	area := edge(p0, p1, p2)
	if area == 0 {
		return
	}
	if area < 0 {
		// Flip to counter-clockwise so the edge tests below share one sign.
		i1, i2 = i2, i1
		p1, p2 = p2, p1
		area = -area
	}

	minX := clampInt(int(math32.Floor(min3(p0.X, p1.X, p2.X))), 0, target.Width()-1)
	maxX := clampInt(int(math32.Ceil(max3(p0.X, p1.X, p2.X))), 0, target.Width()-1)
	minY := clampInt(int(math32.Floor(min3(p0.Y, p1.Y, p2.Y))), bandY0, bandY1-1)
	maxY := clampInt(int(math32.Ceil(max3(p0.Y, p1.Y, p2.Y))), bandY0, bandY1-1)
	if minY > maxY || minX > maxX {
		return
	}

	v0, v1, v2 := &verts[i0], &verts[i1], &verts[i2]

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}

			w0 := edge(p1, p2, p)
			w1 := edge(p2, p0, p)
			w2 := edge(p0, p1, p)
			if !covers(w0, p1, p2) || !covers(w1, p2, p0) || !covers(w2, p0, p1) {
				continue
			}

			l0, l1, l2 := w0/area, w1/area, w2/area
			frag := Fragment{
				Color:        bary4(v0.Color, v1.Color, v2.Color, l0, l1, l2),
				UV:           bary2(v0.UV, v1.UV, v2.UV, l0, l1, l2),
				TextureIndex: v0.TextureIndex,
				Instance:     v0.Instance,
				Corner:       v0.Corner,
				Local:        bary2(v0.Local, v1.Local, v2.Local, l0, l1, l2),
			}

			out := ShadeFragment(frag, elements, brushes, textures)
			target.Blend(x, y, RGBA{R: out.X, G: out.Y, B: out.Z, A: out.W})
		}
	}
}

// edge is the signed parallelogram area of (b-a, p-a); positive when p lies
// left of a->b.
func edge(a, b, p Vec2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// covers applies the top-left fill rule: a pixel exactly on an edge belongs
// to the triangle only if that edge is a top or left edge. The two quad
// triangles share a diagonal, and without this rule its pixels would be
// shaded twice and double-blend.
func covers(w float32, a, b Vec2) bool {
	if w > 0 {
		return true
	}
	if w < 0 {
		return false
	}
	if a.Y == b.Y {
		return b.X > a.X // top edge
	}
	return b.Y < a.Y // left edge
}

func bary2(a, b, c Vec2, l0, l1, l2 float32) Vec2 {
	return Vec2{
		X: a.X*l0 + b.X*l1 + c.X*l2,
		Y: a.Y*l0 + b.Y*l1 + c.Y*l2,
	}
}

func bary4(a, b, c Vec4, l0, l1, l2 float32) Vec4 {
	return Vec4{
		X: a.X*l0 + b.X*l1 + c.X*l2,
		Y: a.Y*l0 + b.Y*l1 + c.Y*l2,
		Z: a.Z*l0 + b.Z*l1 + c.Z*l2,
		W: a.W*l0 + b.W*l1 + c.W*l2,
	}
}

func min3(a, b, c float32) float32 {
	return math32.Min(a, math32.Min(b, c))
}

func max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}
