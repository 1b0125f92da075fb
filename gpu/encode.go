package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/canvas"
)

// GPU-side record strides, matching the std430/std140 layouts in
// shaders/canvas.wgsl.
//
// Element packs five vec2<f32> plus one padding vec2 into 48 bytes, then a
// vec4<u32> aligned to 16 at offset 48. Brush is four vec4<f32>. Transform
// is three column-major mat4x4<f32>.
const (
	ElementStride = 64
	BrushStride   = 64
	TransformSize = 192

	elementAttrsOffset = 48
)

// EncodeElements serializes the element arena into storage-buffer bytes.
func EncodeElements(elements []canvas.Element) []byte {
	buf := make([]byte, len(elements)*ElementStride)
	for i := range elements {
		encodeElement(buf[i*ElementStride:], &elements[i])
	}
	return buf
}

func encodeElement(buf []byte, e *canvas.Element) {
	putVec2(buf[0:], e.Position)
	putVec2(buf[8:], e.Image)
	putVec2(buf[16:], e.Src)
	putVec2(buf[24:], e.UV)
	putVec2(buf[32:], e.Size)
	putF32(buf[40:], e.Unused[0])
	putF32(buf[44:], e.Unused[1])
	for i, a := range e.Attrs {
		binary.LittleEndian.PutUint32(buf[elementAttrsOffset+i*4:], a)
	}
}

// EncodeBrushes serializes the brush arena into storage-buffer bytes.
func EncodeBrushes(brushes []canvas.Brush) []byte {
	buf := make([]byte, len(brushes)*BrushStride)
	for i := range brushes {
		b := &brushes[i]
		off := i * BrushStride
		putVec4(buf[off+0:], b.FG)
		putVec4(buf[off+16:], b.BG)
		putVec4(buf[off+32:], b.Radius)
		putVec4(buf[off+48:], b.Border)
	}
	return buf
}

// EncodeTransform serializes the model, view, and projection matrices into
// uniform-buffer bytes. canvas.Mat4 is column-major, which is exactly the
// mat4x4<f32> memory order, so the columns stream straight through.
func EncodeTransform(t canvas.Transform) []byte {
	buf := make([]byte, TransformSize)
	putMat4(buf[0:], t.Model)
	putMat4(buf[64:], t.View)
	putMat4(buf[128:], t.Proj)
	return buf
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func putVec2(buf []byte, v canvas.Vec2) {
	putF32(buf[0:], v.X)
	putF32(buf[4:], v.Y)
}

func putVec4(buf []byte, v canvas.Vec4) {
	putF32(buf[0:], v.X)
	putF32(buf[4:], v.Y)
	putF32(buf[8:], v.Z)
	putF32(buf[12:], v.W)
}

func putMat4(buf []byte, m canvas.Mat4) {
	for i, v := range m {
		putF32(buf[i*4:], v)
	}
}
