package canvas

import "testing"

func TestPixmap_SetGetPixel(t *testing.T) {
	p := NewPixmap(4, 4)

	p.SetPixel(1, 2, RGBA{R: 1, G: 0.5, B: 0, A: 1})
	got := p.GetPixel(1, 2)
	if !approxEq(got.R, 1) || got.G < 0.49 || got.G > 0.51 || !approxEq(got.A, 1) {
		t.Errorf("GetPixel = %+v", got)
	}

	// Out of bounds reads are transparent, writes are dropped.
	if p.GetPixel(-1, 0) != Transparent || p.GetPixel(4, 0) != Transparent {
		t.Error("out-of-bounds read is not transparent")
	}
	p.SetPixel(-1, -1, White)
	p.SetPixel(100, 100, White)
}

func TestPixmap_BlendOpaqueReplaces(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, White)

	p.Blend(0, 0, RGBA{R: 1, A: 1})
	got := p.GetPixel(0, 0)
	if !approxEq(got.R, 1) || !approxEq(got.G, 0) || !approxEq(got.B, 0) {
		t.Errorf("opaque blend = %+v, want red", got)
	}
}

func TestPixmap_BlendZeroAlphaKeeps(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, RGBA{G: 1, A: 1})

	p.Blend(0, 0, RGBA{R: 1, A: 0})
	got := p.GetPixel(0, 0)
	if !approxEq(got.G, 1) {
		t.Errorf("zero-alpha blend = %+v, want green untouched", got)
	}
}

func TestPixmap_BlendCoverage(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, Black)

	// Half-coverage white over opaque black is mid gray, still opaque.
	p.Blend(0, 0, RGBA{R: 1, G: 1, B: 1, A: 0.5})
	got := p.GetPixel(0, 0)
	if got.R < 0.45 || got.R > 0.55 || !approxEq(got.A, 1) {
		t.Errorf("half blend = %+v, want mid gray opaque", got)
	}
}

func TestPixmap_BlendOverTransparent(t *testing.T) {
	p := NewPixmap(2, 2)

	// Fractional coverage over nothing keeps the fractional alpha, so
	// shape edges stay feathered against whatever is composited beneath.
	p.Blend(0, 0, RGBA{R: 1, A: 0.25})
	got := p.GetPixel(0, 0)
	if got.A < 0.2 || got.A > 0.3 {
		t.Errorf("alpha = %v, want ~0.25", got.A)
	}
	if got.R < 0.95 {
		t.Errorf("red = %v, want ~1", got.R)
	}
}

func TestPixmap_Clear(t *testing.T) {
	p := NewPixmap(3, 3)
	p.Clear(RGBA{B: 1, A: 1})
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := p.GetPixel(x, y); !approxEq(got.B, 1) || !approxEq(got.A, 1) {
				t.Fatalf("pixel (%d,%d) = %+v after Clear", x, y, got)
			}
		}
	}
}

func TestPixmap_ToImage(t *testing.T) {
	p := NewPixmap(2, 1)
	p.SetPixel(0, 0, RGBA{R: 1, A: 1})

	img := p.ToImage()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	r, _, _, a := img.At(0, 0).RGBA()
	if r == 0 || a == 0 {
		t.Errorf("At(0,0) = %v, want red", img.At(0, 0))
	}
}
