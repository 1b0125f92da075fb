// Package canvas implements the shading core of a 2D UI renderer: an
// instanced quad generator (vertex stage) and an SDF-based shape compositor
// (fragment stage) for anti-aliased images and rounded rectangles with
// borders.
//
// The core is a pair of pure, stateless per-invocation functions,
// [GenerateVertex] and [ShadeFragment], that read indexed records from
// shared, read-only arrays: elements (one per drawable quad), brushes (one
// per style), and a texture array. The host populates these arrays through
// [Renderer] before a draw; the core only ever reads by index and never
// mutates a record.
//
// Two execution paths share the same semantics: a CPU rasterizer
// ([Renderer.Draw]) that runs both stages over a [Pixmap], and a WGSL render
// pipeline in the gpu subpackage that runs the identical algorithm on the
// GPU through gogpu/wgpu.
package canvas
