// Package gpu renders canvas element batches through a wgpu render pipeline.
//
// The pipeline is the hardware twin of the package canvas software path: the
// same element, brush, and transform records are encoded into GPU buffers,
// the WGSL shader expands each element into an instanced quad and composites
// rounded rectangles per fragment, and the result is read back into a
// canvas.Pixmap. Both paths produce the same image up to rasterization
// rounding.
package gpu
