package canvas

import "github.com/chewxy/math32"

// RoundedBoxSDF computes the signed distance from point p to a rounded box
// centered at the origin with half-extents b and per-quadrant corner radii
// r. Negative inside, zero on the boundary, positive outside.
//
// The active radius is selected from the sign of p: positive x picks the
// (X, Y) pair, negative the (Z, W) pair; positive y then picks the first
// component of that pair, negative the second.
func RoundedBoxSDF(p, b Vec2, r Vec4) float32 {
	rx, ry := r.X, r.Y
	if p.X <= 0 {
		rx, ry = r.Z, r.W
	}
	if p.Y <= 0 {
		rx = ry
	}

	q := p.Abs().Sub(b).Add(V2(rx, rx))
	return math32.Min(math32.Max(q.X, q.Y), 0) + q.Max(0).Length() - rx
}

// smoothstep is the GLSL cubic Hermite interpolation: 0 for x <= edge0,
// 1 for x >= edge1, and 3t^2 - 2t^3 in between.
func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 >= edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// mix is the GLSL linear blend a*(1-t) + b*t, componentwise over RGB.
func mix(a, b Vec3, t float32) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
