package canvas

import "testing"

func TestGenerateVertex_UnitQuadCoverage(t *testing.T) {
	elements := []Element{{
		Position: V2(10, 20),
		Size:     V2(30, 40),
		Attrs:    [4]uint32{KindRect, 7, 3, 0},
	}}

	camera := Identity()

	wantPos := [QuadVertexCount]Vec2{
		{10, 20}, {40, 20}, {10, 60},
		{40, 20}, {40, 60}, {10, 60},
	}
	wantCorner := [QuadVertexCount]uint32{0, 1, 2, 1, 3, 2}

	for i := 0; i < QuadVertexCount; i++ {
		v := GenerateVertex(elements, 0, i, camera)

		if v.Position.X != wantPos[i].X || v.Position.Y != wantPos[i].Y {
			t.Errorf("vertex %d: position = (%v, %v), want %v",
				i, v.Position.X, v.Position.Y, wantPos[i])
		}
		if v.Position.W != 1 {
			t.Errorf("vertex %d: w = %v, want 1", i, v.Position.W)
		}
		if v.Corner != wantCorner[i] {
			t.Errorf("vertex %d: corner = %d, want %d", i, v.Corner, wantCorner[i])
		}
		if v.TextureIndex != 7 {
			t.Errorf("vertex %d: texture index = %d, want 7", i, v.TextureIndex)
		}
		if v.Instance != 0 {
			t.Errorf("vertex %d: instance = %d, want 0", i, v.Instance)
		}
		if v.Color != V4(1, 1, 1, 1) {
			t.Errorf("vertex %d: color = %v, want opaque white", i, v.Color)
		}
	}
}

func TestGenerateVertex_UVWindow(t *testing.T) {
	// The element samples the quarter of the texture starting at (0.5, 0.25).
	elements := []Element{{
		Position: V2(0, 0),
		Src:      V2(0.5, 0.25),
		UV:       V2(0.25, 0.5),
		Size:     V2(10, 10),
	}}

	tests := []struct {
		vertex int
		want   Vec2
	}{
		{vertex: 0, want: V2(0.5, 0.25)},  // corner (0,0)
		{vertex: 1, want: V2(0.75, 0.25)}, // corner (1,0)
		{vertex: 2, want: V2(0.5, 0.75)},  // corner (0,1)
		{vertex: 4, want: V2(0.75, 0.75)}, // corner (1,1)
	}

	for _, tt := range tests {
		v := GenerateVertex(elements, 0, tt.vertex, Identity())
		if !approxEq(v.UV.X, tt.want.X) || !approxEq(v.UV.Y, tt.want.Y) {
			t.Errorf("vertex %d: uv = %v, want %v", tt.vertex, v.UV, tt.want)
		}
	}
}

func TestGenerateVertex_LocalSpace(t *testing.T) {
	// Local position is independent of Position and of the camera.
	elements := []Element{{
		Position: V2(500, -300),
		Size:     V2(80, 60),
	}}
	camera := Orthographic(0, 1024, 0, 768, 0, 1)

	v := GenerateVertex(elements, 0, 4, camera) // corner (1,1)
	if v.Local != V2(80, 60) {
		t.Errorf("local = %v, want (80, 60)", v.Local)
	}
	v = GenerateVertex(elements, 0, 0, camera) // corner (0,0)
	if v.Local != V2(0, 0) {
		t.Errorf("local = %v, want (0, 0)", v.Local)
	}
}

func TestGenerateVertex_OrthographicClipSpace(t *testing.T) {
	// A full-screen element maps exactly onto the clip cube in x and y.
	elements := []Element{{
		Position: V2(0, 0),
		Size:     V2(640, 480),
	}}
	camera := Transform{
		Model: Identity(),
		View:  Identity(),
		Proj:  Orthographic(0, 640, 0, 480, 0, 1),
	}.Camera()

	v0 := GenerateVertex(elements, 0, 0, camera)
	if !approxEq(v0.Position.X, -1) || !approxEq(v0.Position.Y, -1) {
		t.Errorf("origin corner = (%v, %v), want (-1, -1)", v0.Position.X, v0.Position.Y)
	}

	v4 := GenerateVertex(elements, 0, 4, camera)
	if !approxEq(v4.Position.X, 1) || !approxEq(v4.Position.Y, 1) {
		t.Errorf("far corner = (%v, %v), want (1, 1)", v4.Position.X, v4.Position.Y)
	}
}

func TestGenerateVertex_InstanceSelection(t *testing.T) {
	elements := []Element{
		{Position: V2(0, 0), Size: V2(1, 1)},
		{Position: V2(100, 100), Size: V2(2, 2), Attrs: [4]uint32{KindImage, 5, 0, 0}},
	}

	v := GenerateVertex(elements, 1, 0, Identity())
	if v.Position.X != 100 || v.Position.Y != 100 {
		t.Errorf("position = (%v, %v), want (100, 100)", v.Position.X, v.Position.Y)
	}
	if v.Instance != 1 {
		t.Errorf("instance = %d, want 1", v.Instance)
	}
	if v.TextureIndex != 5 {
		t.Errorf("texture index = %d, want 5", v.TextureIndex)
	}
}
