package canvas

// Mat4 is a column-major 4x4 float32 matrix. Element (row, col) lives at
// index col*4+row, matching the memory layout WGSL expects for a mat4x4<f32>
// so the same bytes drive both the CPU and GPU paths.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a translation matrix.
func Translation(t Vec3) Mat4 {
	m := Identity()
	m[12] = t.X
	m[13] = t.Y
	m[14] = t.Z
	return m
}

// Scaling returns a scaling matrix.
func Scaling(s Vec3) Mat4 {
	m := Identity()
	m[0] = s.X
	m[5] = s.Y
	m[10] = s.Z
	return m
}

// Mul returns the matrix product m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// MulVec4 returns the product m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Orthographic returns a GL-style orthographic projection mapping the given
// view cuboid to clip space. A 2D canvas uses Orthographic(0, w, 0, h, 0, 1)
// so that one world unit is one pixel.
func Orthographic(left, right, bottom, top, zNear, zFar float32) Mat4 {
	m := Identity()
	m[0] = 2 / (right - left)
	m[12] = -(right + left) / (right - left)
	m[5] = 2 / (top - bottom)
	m[13] = -(top + bottom) / (top - bottom)
	m[10] = -2 / (zFar - zNear)
	m[14] = -(zFar + zNear) / (zFar - zNear)
	return m
}

// LookAt returns a right-handed view matrix looking from eye toward target.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return Mat4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// Transform is the per-batch camera transform. The quad generator combines
// the three matrices as Proj * View * Model. All instances of a draw batch
// share one Transform; it must not change while that draw is in flight.
type Transform struct {
	Model Mat4
	View  Mat4
	Proj  Mat4
}

// IdentityTransform returns a Transform with all three matrices set to
// identity.
func IdentityTransform() Transform {
	return Transform{Model: Identity(), View: Identity(), Proj: Identity()}
}

// Camera returns the combined camera matrix Proj * View * Model.
func (t Transform) Camera() Mat4 {
	return t.Proj.Mul(t.View).Mul(t.Model)
}
