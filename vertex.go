package canvas

// quadCorner is one of the six fixed unit-square corners the quad generator
// expands an instance into. Pos doubles as the texture-coordinate factor.
type quadCorner struct {
	Pos Vec2
	ID  uint32
}

// quadCorners lists two counter-clockwise triangles covering the unit
// square, sharing the (1,0)-(0,1) diagonal. Corner ids tag the four
// distinct corners 0..3 so the fragment stage can tell them apart after
// interpolation.
var quadCorners = [6]quadCorner{
	{Pos: Vec2{0, 0}, ID: 0},
	{Pos: Vec2{1, 0}, ID: 1},
	{Pos: Vec2{0, 1}, ID: 2},
	{Pos: Vec2{1, 0}, ID: 1},
	{Pos: Vec2{1, 1}, ID: 3},
	{Pos: Vec2{0, 1}, ID: 2},
}

// QuadVertexCount is the number of vertices the quad generator emits per
// instance.
const QuadVertexCount = 6

// Vertex is the output of one quad-generator invocation: a clip-space
// position plus the attributes forwarded to the fragment stage.
// Color, UV, and Local are interpolated across the triangle; TextureIndex,
// Instance, and Corner are flat.
type Vertex struct {
	// Position is the clip-space vertex position.
	Position Vec4

	// Color is the vertex color, currently always opaque white. It is
	// multiplied into every texture sample, reserved for future
	// per-vertex tinting.
	Color Vec4

	// UV is the texture coordinate: element.Src + corner * element.UV.
	UV Vec2

	// TextureIndex is element.Attrs[1], forwarded flat.
	TextureIndex uint32

	// Instance is the element index this vertex belongs to.
	Instance uint32

	// Corner is the quad corner id in {0,1,2,3}.
	Corner uint32

	// Local is the vertex position in the element's own pixel space,
	// corner * element.Size. The fragment stage does all shape math in
	// this space, independent of the camera transform.
	Local Vec2
}

// GenerateVertex runs one quad-generator invocation: it maps an instance
// index and a vertex index in [0, QuadVertexCount) to a transformed vertex.
// camera is Proj * View * Model, fixed per batch (see Transform.Camera).
//
// The function is pure: no side effects, no shared mutable state, so
// invocations may run in any order or in parallel.
func GenerateVertex(elements []Element, instance uint32, vertexIndex int, camera Mat4) Vertex {
	e := &elements[instance]
	corner := quadCorners[vertexIndex]

	world := corner.Pos.Mul(e.Size).Add(e.Position)

	return Vertex{
		Position:     camera.MulVec4(V4(world.X, world.Y, 0, 1)),
		Color:        V4(1, 1, 1, 1),
		UV:           e.Src.Add(corner.Pos.Mul(e.UV)),
		TextureIndex: e.Attrs[AttrTexture],
		Instance:     instance,
		Corner:       corner.ID,
		Local:        corner.Pos.Mul(e.Size),
	}
}
