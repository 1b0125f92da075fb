package canvas

import (
	"errors"
	"image"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"
)

// Texture errors.
var (
	// ErrTextureSize is returned when a texture page does not match the
	// array's page size.
	ErrTextureSize = errors.New("canvas: texture size does not match array page size")

	// ErrTexturesFull is returned when the texture array has no free slot.
	ErrTexturesFull = errors.New("canvas: texture array is full")
)

// SampleMode selects how a texture is sampled.
type SampleMode uint8

const (
	// SampleNearest selects the texel containing the coordinate. This is
	// the "pixel perfect" mode UI atlases want.
	SampleNearest SampleMode = iota

	// SampleBilinear interpolates the four surrounding texels.
	SampleBilinear
)

// Texture is a read-only RGBA8 pixel page sampled by the shape compositor.
type Texture struct {
	width  int
	height int
	pix    []uint8
	mode   SampleMode
}

// NewTexture creates a blank texture page.
func NewTexture(width, height int) *Texture {
	return &Texture{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// TextureFromImage converts an image to a texture, scaling it to the given
// page size when it differs. Scaling uses x/image bilinear interpolation.
func TextureFromImage(img image.Image, width, height int) *Texture {
	t := NewTexture(width, height)
	dst := &image.RGBA{
		Pix:    t.pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
		xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(dst, dst.Rect, img, img.Bounds(), xdraw.Src, nil)
	}
	return t
}

// SolidTexture creates a 1x1 texture of a single color. Rounded rectangles
// with plain (untextured) fills sample a solid white page.
func SolidTexture(c RGBA) *Texture {
	t := NewTexture(1, 1)
	t.SetPixel(0, 0, c)
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// SetMode sets the sampling mode.
func (t *Texture) SetMode(mode SampleMode) { t.mode = mode }

// SetPixel writes one texel.
func (t *Texture) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	i := (y*t.width + x) * 4
	t.pix[i+0] = uint8(clamp255(c.R * 255))
	t.pix[i+1] = uint8(clamp255(c.G * 255))
	t.pix[i+2] = uint8(clamp255(c.B * 255))
	t.pix[i+3] = uint8(clamp255(c.A * 255))
}

// Pix returns the raw RGBA texel data, row-major.
func (t *Texture) Pix() []uint8 { return t.pix }

// Sample returns the color at normalized coordinates uv, clamped to the
// edge. (0,0) is the top-left, (1,1) the bottom-right.
func (t *Texture) Sample(uv Vec2) Vec4 {
	if t.mode == SampleBilinear {
		return t.sampleBilinear(uv)
	}
	return t.sampleNearest(uv)
}

func (t *Texture) sampleNearest(uv Vec2) Vec4 {
	x := clampInt(int(math32.Floor(uv.X*float32(t.width))), 0, t.width-1)
	y := clampInt(int(math32.Floor(uv.Y*float32(t.height))), 0, t.height-1)
	return t.texel(x, y)
}

func (t *Texture) sampleBilinear(uv Vec2) Vec4 {
	fx := uv.X*float32(t.width) - 0.5
	fy := uv.Y*float32(t.height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x0c := clampInt(x0, 0, t.width-1)
	x1c := clampInt(x0+1, 0, t.width-1)
	y0c := clampInt(y0, 0, t.height-1)
	y1c := clampInt(y0+1, 0, t.height-1)

	top := lerp4(t.texel(x0c, y0c), t.texel(x1c, y0c), tx)
	bottom := lerp4(t.texel(x0c, y1c), t.texel(x1c, y1c), tx)
	return lerp4(top, bottom, ty)
}

func (t *Texture) texel(x, y int) Vec4 {
	i := (y*t.width + x) * 4
	return Vec4{
		X: float32(t.pix[i+0]) / 255,
		Y: float32(t.pix[i+1]) / 255,
		Z: float32(t.pix[i+2]) / 255,
		W: float32(t.pix[i+3]) / 255,
	}
}

func lerp4(a, b Vec4, t float32) Vec4 {
	return Vec4{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// MaxTextures is the capacity of a TextureArray. It bounds the layer count
// of the texture binding on the GPU path.
const MaxTextures = 256

// TextureArray is the index-addressed, read-only texture arena bound to the
// fragment stage. Slots are assigned once per texture identity and reused
// across elements and frames.
type TextureArray struct {
	pages []*Texture
}

// NewTextureArray creates an empty texture array.
func NewTextureArray() *TextureArray {
	return &TextureArray{}
}

// Store returns the slot index for the texture, assigning the next free
// slot on first sight. The same *Texture always maps to the same slot.
func (a *TextureArray) Store(t *Texture) (uint32, error) {
	for i, p := range a.pages {
		if p == t {
			return uint32(i), nil
		}
	}
	if len(a.pages) >= MaxTextures {
		return 0, ErrTexturesFull
	}
	a.pages = append(a.pages, t)
	return uint32(len(a.pages) - 1), nil
}

// At returns the texture at the given slot. The index must have been
// produced by Store; the shading core relies on the host for validity.
func (a *TextureArray) At(index uint32) *Texture {
	return a.pages[index]
}

// Len returns the number of occupied slots.
func (a *TextureArray) Len() int {
	return len(a.pages)
}
