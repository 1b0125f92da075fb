package canvas

import (
	"bytes"
	"testing"
)

// drawScene renders a small mixed batch and returns the pixmap.
func drawScene(t *testing.T, workers int) *Pixmap {
	t.Helper()

	r := NewRendererWith(RendererOptions{Workers: workers})
	defer r.Close()

	white := SolidTexture(White)
	if err := r.Render(Element{
		Position: V2(4, 4),
		Size:     V2(24, 24),
		Attrs:    [4]uint32{KindRect, 0, 0, 0},
	}, Brush{
		FG:     V4(0, 1, 0, 1),
		BG:     V4(1, 0, 0, 1),
		Radius: V4(6, 6, 6, 6),
		Border: V4(2, 0, 0, 0),
	}, white); err != nil {
		t.Fatalf("Render: %v", err)
	}

	checker := NewTexture(2, 2)
	checker.SetPixel(0, 0, Black)
	checker.SetPixel(1, 0, White)
	checker.SetPixel(0, 1, White)
	checker.SetPixel(1, 1, Black)
	if err := r.Render(Element{
		Position: V2(34, 8),
		Src:      V2(0, 0),
		UV:       V2(1, 1),
		Size:     V2(16, 16),
		Attrs:    [4]uint32{KindImage, 0, 0, 0},
	}, DefaultBrush(), checker); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(64, 64)
	target := NewPixmap(64, 64)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	return target
}

func TestRasterize_SolidRect(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	if err := r.Render(Element{
		Position: V2(10, 10),
		Size:     V2(20, 20),
		Attrs:    [4]uint32{KindRect, 0, 0, 0},
	}, Brush{FG: V4(1, 0, 0, 1), BG: V4(1, 0, 0, 1)}, SolidTexture(White)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(64, 64)
	target := NewPixmap(64, 64)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	tests := []struct {
		name   string
		x, y   int
		filled bool
	}{
		{name: "center", x: 20, y: 20, filled: true},
		{name: "inside near edge", x: 12, y: 12, filled: true},
		{name: "left of rect", x: 5, y: 20, filled: false},
		{name: "above rect", x: 20, y: 5, filled: false},
		{name: "beyond far corner", x: 35, y: 35, filled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := target.GetPixel(tt.x, tt.y)
			if tt.filled && (got.R < 0.95 || got.A < 0.95) {
				t.Errorf("pixel (%d,%d) = %+v, want red", tt.x, tt.y, got)
			}
			if !tt.filled && got.A > 0.05 {
				t.Errorf("pixel (%d,%d) = %+v, want untouched", tt.x, tt.y, got)
			}
		})
	}
}

func TestRasterize_FullCoverageNoSeams(t *testing.T) {
	// A rect covering the whole target must fill every pixel exactly once:
	// a missed diagonal shows up as a transparent seam, a double-shaded
	// one would not hold at alpha 1 for a translucent fill.
	r := NewRenderer()
	defer r.Close()

	if err := r.Render(Element{
		Position: V2(0, 0),
		Size:     V2(32, 32),
		Attrs:    [4]uint32{KindRect, 0, 0, 0},
	}, Brush{FG: V4(0, 0, 1, 1), BG: V4(0, 0, 1, 1)}, SolidTexture(White)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(32, 32)
	target := NewPixmap(32, 32)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			got := target.GetPixel(x, y)
			if got.B < 0.95 || got.A < 0.95 {
				t.Fatalf("pixel (%d,%d) = %+v, want opaque blue", x, y, got)
			}
		}
	}
}

func TestRasterize_ImageElement(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, RGBA{R: 1, A: 1})
	tex.SetPixel(1, 0, RGBA{G: 1, A: 1})
	tex.SetPixel(0, 1, RGBA{B: 1, A: 1})
	tex.SetPixel(1, 1, White)

	if err := r.Render(Element{
		Position: V2(0, 0),
		Src:      V2(0, 0),
		UV:       V2(1, 1),
		Size:     V2(16, 16),
		Attrs:    [4]uint32{KindImage, 0, 0, 0},
	}, DefaultBrush(), tex); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(16, 16)
	target := NewPixmap(16, 16)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	tests := []struct {
		name string
		x, y int
		want RGBA
	}{
		{name: "top-left quadrant", x: 3, y: 3, want: RGBA{R: 1, A: 1}},
		{name: "top-right quadrant", x: 12, y: 3, want: RGBA{G: 1, A: 1}},
		{name: "bottom-left quadrant", x: 3, y: 12, want: RGBA{B: 1, A: 1}},
		{name: "bottom-right quadrant", x: 12, y: 12, want: White},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := target.GetPixel(tt.x, tt.y)
			if !approxEq(got.R, tt.want.R) || !approxEq(got.G, tt.want.G) ||
				!approxEq(got.B, tt.want.B) || !approxEq(got.A, tt.want.A) {
				t.Errorf("pixel (%d,%d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRasterize_RoundedCornersClipped(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	if err := r.Render(Element{
		Position: V2(0, 0),
		Size:     V2(32, 32),
		Attrs:    [4]uint32{KindRect, 0, 0, 0},
	}, Brush{
		FG:     V4(1, 0, 0, 1),
		BG:     V4(1, 0, 0, 1),
		Radius: V4(12, 12, 12, 12),
	}, SolidTexture(White)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(32, 32)
	target := NewPixmap(32, 32)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Square corners are cut away, the center and edge midpoints survive.
	for _, pt := range [][2]int{{0, 0}, {31, 0}, {0, 31}, {31, 31}} {
		if got := target.GetPixel(pt[0], pt[1]); got.A > 0.05 {
			t.Errorf("corner (%d,%d) = %+v, want clipped", pt[0], pt[1], got)
		}
	}
	for _, pt := range [][2]int{{16, 16}, {16, 2}, {2, 16}} {
		if got := target.GetPixel(pt[0], pt[1]); got.R < 0.95 {
			t.Errorf("pixel (%d,%d) = %+v, want red", pt[0], pt[1], got)
		}
	}
}

func TestRasterize_DeterministicAcrossWorkers(t *testing.T) {
	reference := drawScene(t, 1)
	for _, workers := range []int{2, 4, 8} {
		got := drawScene(t, workers)
		if !bytes.Equal(got.Data(), reference.Data()) {
			t.Errorf("output with %d workers differs from single-worker output", workers)
		}
	}
}

func TestRasterize_ZeroSizeElementIsNoop(t *testing.T) {
	r := NewRenderer()
	defer r.Close()

	if err := r.Render(Element{
		Position: V2(10, 10),
		Size:     V2(0, 0),
		Attrs:    [4]uint32{KindImage, 0, 0, 0},
	}, DefaultBrush(), SolidTexture(White)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	c := NewCamera(32, 32)
	target := NewPixmap(32, 32)
	if err := r.Draw(target, c.Transform()); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	for i, b := range target.Data() {
		if b != 0 {
			t.Fatalf("byte %d = %d, want untouched target", i, b)
		}
	}
}
