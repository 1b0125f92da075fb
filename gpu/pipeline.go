package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas"
)

// gpuTimeout bounds how long a submitted batch may take before readback
// gives up on the fence.
const gpuTimeout = 5 * time.Second

// Pipeline owns the GPU resources of the canvas shading core: the shader
// module, the four bind group layouts (elements, textures, transform,
// brushes), the render pipeline, and the offscreen color target.
//
// A Pipeline is created once per device and reused across frames. Per-batch
// resources (storage and uniform buffers, bind groups, the staging buffer)
// are created inside RenderBatch and destroyed before it returns.
type Pipeline struct {
	device hal.Device
	queue  hal.Queue

	shader          hal.ShaderModule
	elementLayout   hal.BindGroupLayout
	textureLayout   hal.BindGroupLayout
	transformLayout hal.BindGroupLayout
	brushLayout     hal.BindGroupLayout
	pipeLayout      hal.PipelineLayout
	pipeline        hal.RenderPipeline
	sampler         hal.Sampler

	// Offscreen color target, recreated when the requested size changes.
	colorTex      hal.Texture
	colorView     hal.TextureView
	width, height uint32

	// Layered texture array mirroring the host-side canvas.TextureArray.
	// Recreated when the page size or layer count grows.
	texArray     hal.Texture
	texArrayView hal.TextureView
	pageWidth    uint32
	pageHeight   uint32
	layers       uint32
}

// NewPipeline creates a pipeline bound to the given device and queue. GPU
// objects are allocated lazily on the first RenderBatch call.
func NewPipeline(device hal.Device, queue hal.Queue) *Pipeline {
	return &Pipeline{
		device: device,
		queue:  queue,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times or on a pipeline with no allocated resources.
func (p *Pipeline) Destroy() {
	p.destroyPipeline()
	p.destroyTextureArray()
	p.destroyColorTarget()
}

// RenderBatch draws one element batch into target. The batch is uploaded as
// storage buffers, drawn with one instanced call (6 vertices per element),
// and the offscreen color texture is read back into target's pixel data.
//
// Returns nil for an empty batch.
func (p *Pipeline) RenderBatch(target *canvas.Pixmap, elements []canvas.Element, brushes []canvas.Brush, textures *canvas.TextureArray, transform canvas.Transform) error {
	if len(elements) == 0 {
		return nil
	}

	w, h := uint32(target.Width()), uint32(target.Height()) //nolint:gosec // dimensions always fit uint32
	if err := p.ensureReady(w, h, textures); err != nil {
		return err
	}

	elemBuf, err := p.createAndUploadBuffer("canvas_elements", EncodeElements(elements),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create element buffer: %w", err)
	}
	defer p.device.DestroyBuffer(elemBuf)

	// The brush bind group requires at least one record even for batches
	// that only draw images.
	if len(brushes) == 0 {
		brushes = []canvas.Brush{canvas.DefaultBrush()}
	}
	brushBuf, err := p.createAndUploadBuffer("canvas_brushes", EncodeBrushes(brushes),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create brush buffer: %w", err)
	}
	defer p.device.DestroyBuffer(brushBuf)

	transformBuf, err := p.createAndUploadBuffer("canvas_transform", EncodeTransform(transform),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create transform buffer: %w", err)
	}
	defer p.device.DestroyBuffer(transformBuf)

	groups, cleanup, err := p.createBindGroups(elemBuf, brushBuf, transformBuf,
		uint64(len(elements)*ElementStride), uint64(len(brushes)*BrushStride))
	if err != nil {
		return err
	}
	defer cleanup()

	return p.encodeAndReadback(w, h, uint32(len(elements)), groups, target) //nolint:gosec // element count fits uint32
}

// ensureReady creates the color target, texture array, and pipeline as
// needed for the requested frame.
func (p *Pipeline) ensureReady(w, h uint32, textures *canvas.TextureArray) error {
	if err := p.ensureColorTarget(w, h); err != nil {
		return fmt.Errorf("ensure color target: %w", err)
	}
	if err := p.ensureTextureArray(textures); err != nil {
		return fmt.Errorf("ensure texture array: %w", err)
	}
	if p.pipeline == nil {
		if err := p.createPipeline(); err != nil {
			return fmt.Errorf("create pipeline: %w", err)
		}
	}
	return nil
}

// ensureColorTarget creates or recreates the offscreen color texture when
// the requested dimensions differ from the current size.
func (p *Pipeline) ensureColorTarget(w, h uint32) error {
	if p.width == w && p.height == h && p.colorTex != nil {
		return nil
	}
	p.destroyColorTarget()

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "canvas_color",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	p.colorTex = tex

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "canvas_color_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyColorTarget()
		return fmt.Errorf("create color view: %w", err)
	}
	p.colorView = view

	p.width = w
	p.height = h
	return nil
}

func (p *Pipeline) destroyColorTarget() {
	if p.colorView != nil {
		p.device.DestroyTextureView(p.colorView)
		p.colorView = nil
	}
	if p.colorTex != nil {
		p.device.DestroyTexture(p.colorTex)
		p.colorTex = nil
	}
	p.width = 0
	p.height = 0
}

// ensureTextureArray mirrors the host texture arena into a layered GPU
// texture and uploads every page. All pages must share one size; a page
// that differs returns canvas.ErrTextureSize.
//
// Slots are stable across frames, so the array only grows. Pages are
// re-uploaded every batch; UI atlases are small and mutate often enough
// that tracking dirtiness is not worth the bookkeeping.
func (p *Pipeline) ensureTextureArray(textures *canvas.TextureArray) error {
	layers := uint32(textures.Len()) //nolint:gosec // slot count is capped at canvas.MaxTextures
	if layers == 0 {
		// The bind group needs a texture even before the first page is
		// stored. A single transparent layer serves.
		return p.ensureBlankTextureArray()
	}

	first := textures.At(0)
	pw, ph := uint32(first.Width()), uint32(first.Height()) //nolint:gosec // page size fits uint32

	if p.texArray == nil || p.pageWidth != pw || p.pageHeight != ph || p.layers < layers {
		p.destroyTextureArray()
		if err := p.createTextureArray(pw, ph, layers); err != nil {
			return err
		}
	}

	for i := uint32(0); i < layers; i++ {
		page := textures.At(i)
		if uint32(page.Width()) != pw || uint32(page.Height()) != ph { //nolint:gosec // page size fits uint32
			return fmt.Errorf("page %d is %dx%d, array is %dx%d: %w",
				i, page.Width(), page.Height(), pw, ph, canvas.ErrTextureSize)
		}
		p.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  p.texArray,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: 0, Y: 0, Z: i},
				Aspect:   gputypes.TextureAspectAll,
			},
			page.Pix(),
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  pw * 4,
				RowsPerImage: ph,
			},
			&hal.Extent3D{Width: pw, Height: ph, DepthOrArrayLayers: 1},
		)
	}
	return nil
}

func (p *Pipeline) ensureBlankTextureArray() error {
	if p.texArray != nil {
		return nil
	}
	if err := p.createTextureArray(1, 1, 1); err != nil {
		return err
	}
	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  p.texArray,
			MipLevel: 0,
			Origin:   hal.Origin3D{},
			Aspect:   gputypes.TextureAspectAll,
		},
		[]byte{0, 0, 0, 0},
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	return nil
}

func (p *Pipeline) createTextureArray(pw, ph, layers uint32) error {
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "canvas_textures",
		Size:          hal.Extent3D{Width: pw, Height: ph, DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture array: %w", err)
	}
	p.texArray = tex

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "canvas_textures_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2DArray,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextureArray()
		return fmt.Errorf("create texture array view: %w", err)
	}
	p.texArrayView = view

	p.pageWidth = pw
	p.pageHeight = ph
	p.layers = layers
	return nil
}

func (p *Pipeline) destroyTextureArray() {
	if p.texArrayView != nil {
		p.device.DestroyTextureView(p.texArrayView)
		p.texArrayView = nil
	}
	if p.texArray != nil {
		p.device.DestroyTexture(p.texArray)
		p.texArray = nil
	}
	p.pageWidth = 0
	p.pageHeight = 0
	p.layers = 0
}

// samplerDescriptor is the pixel-perfect sampler bound alongside the texture
// array: nearest filtering, matching the CPU path's SampleNearest default, so
// both paths return the same texel at page boundaries.
func samplerDescriptor() *hal.SamplerDescriptor {
	return &hal.SamplerDescriptor{
		Label:        "canvas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	}
}

// createPipeline compiles the canvas shader and creates the render pipeline
// with straight-alpha blending. The bind group layouts follow the shader's
// group numbering: elements, textures+sampler, transform, brushes.
func (p *Pipeline) createPipeline() error {
	if canvasShaderSource == "" {
		return fmt.Errorf("canvas shader source is empty")
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "canvas_shader",
		Source: hal.ShaderSource{WGSL: canvasShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile canvas shader: %w", err)
	}
	p.shader = shader

	elementLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "canvas_element_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create element layout: %w", err)
	}
	p.elementLayout = elementLayout

	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "canvas_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture layout: %w", err)
	}
	p.textureLayout = textureLayout

	transformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "canvas_transform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create transform layout: %w", err)
	}
	p.transformLayout = transformLayout

	brushLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "canvas_brush_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create brush layout: %w", err)
	}
	p.brushLayout = brushLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "canvas_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{
			p.elementLayout, p.textureLayout, p.transformLayout, p.brushLayout,
		},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(samplerDescriptor())
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.sampler = sampler

	// The fragment stage emits straight-alpha colors where alpha carries
	// edge coverage, so blend with SrcAlpha/OneMinusSrcAlpha.
	blend := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "canvas_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// destroyPipeline releases all pipeline resources in reverse creation order.
func (p *Pipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	for _, layout := range []*hal.BindGroupLayout{
		&p.brushLayout, &p.transformLayout, &p.textureLayout, &p.elementLayout,
	} {
		if *layout != nil {
			p.device.DestroyBindGroupLayout(*layout)
			*layout = nil
		}
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// createBindGroups builds the four per-batch bind groups. The returned
// cleanup destroys whatever was created, in all paths.
func (p *Pipeline) createBindGroups(elemBuf, brushBuf, transformBuf hal.Buffer, elemSize, brushSize uint64) ([4]hal.BindGroup, func(), error) {
	var groups [4]hal.BindGroup
	cleanup := func() {
		for _, g := range groups {
			if g != nil {
				p.device.DestroyBindGroup(g)
			}
		}
	}

	descs := []struct {
		label   string
		layout  hal.BindGroupLayout
		entries []gputypes.BindGroupEntry
	}{
		{
			label:  "canvas_element_bind",
			layout: p.elementLayout,
			entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: elemBuf.NativeHandle(), Offset: 0, Size: elemSize,
				}},
			},
		},
		{
			label:  "canvas_texture_bind",
			layout: p.textureLayout,
			entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: p.texArrayView.NativeHandle()}},
				{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
			},
		},
		{
			label:  "canvas_transform_bind",
			layout: p.transformLayout,
			entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: transformBuf.NativeHandle(), Offset: 0, Size: TransformSize,
				}},
			},
		},
		{
			label:  "canvas_brush_bind",
			layout: p.brushLayout,
			entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: brushBuf.NativeHandle(), Offset: 0, Size: brushSize,
				}},
			},
		},
	}

	for i, d := range descs {
		group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   d.label,
			Layout:  d.layout,
			Entries: d.entries,
		})
		if err != nil {
			cleanup()
			return groups, func() {}, fmt.Errorf("create %s: %w", d.label, err)
		}
		groups[i] = group
	}
	return groups, cleanup, nil
}

// encodeAndReadback encodes the render pass, copies the color texture to a
// staging buffer, submits, waits, and reads pixels back into target.
func (p *Pipeline) encodeAndReadback(w, h, instanceCount uint32, groups [4]hal.BindGroup, target *canvas.Pixmap) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "canvas_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("canvas_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "canvas_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       p.colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(p.pipeline)
	for i, g := range groups {
		rp.SetBindGroup(uint32(i), g, nil) //nolint:gosec // group index is 0..3
	}
	rp.Draw(6, instanceCount, 0, 0)
	rp.End()

	// After the pass the color texture is in attachment layout;
	// CopyTextureToBuffer needs transfer source. No-op on non-Vulkan
	// backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "canvas_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.colorTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: p.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if err := p.queue.ReadBuffer(stagingBuf, 0, target.Data()); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (p *Pipeline) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	p.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Size returns the current color target dimensions.
func (p *Pipeline) Size() (uint32, uint32) {
	return p.width, p.height
}
