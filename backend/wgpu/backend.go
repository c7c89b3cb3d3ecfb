// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements gpu.Backend on github.com/gogpu/wgpu.
//
// The backend renders offscreen: the zero texture target resolves to an
// internal color texture whose pixels are read back with ReadPixels. WGSL
// shaders are compiled to SPIR-V through naga, memoized by source text.
//
// The renderer's binding model (one uniform, one texture, one sampler at
// fixed slots) maps to a single HAL bind group built lazily at draw time.
package wgpu

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glaze"
	"github.com/gogpu/glaze/gpu"
)

// submitTimeout bounds the fence wait after queue submission.
const submitTimeout = 5 * time.Second

// Options configures a Backend.
type Options struct {
	// Width and Height are the offscreen surface dimensions. Required.
	Width, Height uint32

	// Format is the surface color format.
	// Defaults to TextureFormatBGRA8Unorm.
	Format gpu.TextureFormat
}

type bufferEntry struct {
	buf  hal.Buffer
	size uint64
}

type textureEntry struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	format gpu.TextureFormat
}

type pipelineEntry struct {
	pipeline   hal.RenderPipeline
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	bindings   gpu.BindingFlags
}

// Backend is a gpu.Backend over a HAL device. It is used from a single
// goroutine; no internal locking.
type Backend struct {
	instance   hal.Instance
	device     hal.Device
	queue      hal.Queue
	ownsDevice bool

	width         uint32
	height        uint32
	surfaceFormat gpu.TextureFormat
	surface       *textureEntry

	nextID    uint64
	buffers   map[gpu.BufferID]*bufferEntry
	textures  map[gpu.TextureID]*textureEntry
	pipelines map[gpu.PipelineID]*pipelineEntry
	samplers  map[gpu.SamplerID]hal.Sampler

	shaders *shaderCache

	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder

	curPipeline     *pipelineEntry
	curVertex       *bufferEntry
	curVertexOffset uint64
	curUniform      *bufferEntry
	curUniformOff   uint64
	curTexture      *textureEntry
	curSampler      hal.Sampler
	bindDirty       bool

	frameBindGroups []hal.BindGroup
	frameEphemerals []gpu.BufferID

	// pendingErr carries a recording failure to the next Submit, since the
	// pass recording methods cannot return errors.
	pendingErr error
}

// New opens the Vulkan HAL backend, picks a GPU adapter and creates the
// offscreen surface.
func New(opts Options) (*Backend, error) {
	api, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	b, err := NewWithDevice(openDev.Device, openDev.Queue, opts)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.ownsDevice = true
	logger().Info("wgpu backend initialized", "adapter", selected.Info.Name)
	return b, nil
}

// NewWithDevice wraps an existing HAL device and queue. The caller retains
// ownership of both; Close will not destroy them.
func NewWithDevice(device hal.Device, queue hal.Queue, opts Options) (*Backend, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("wgpu: invalid surface size %dx%d", opts.Width, opts.Height)
	}
	if opts.Format == 0 {
		opts.Format = gpu.TextureFormatBGRA8Unorm
	}

	b := &Backend{
		device:        device,
		queue:         queue,
		surfaceFormat: opts.Format,
		buffers:       make(map[gpu.BufferID]*bufferEntry),
		textures:      make(map[gpu.TextureID]*textureEntry),
		pipelines:     make(map[gpu.PipelineID]*pipelineEntry),
		samplers:      make(map[gpu.SamplerID]hal.Sampler),
		shaders:       newShaderCache(),
	}
	if err := b.createSurface(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	return b, nil
}

func logger() *slog.Logger { return glaze.Logger() }

func (b *Backend) allocID() uint64 {
	b.nextID++
	return b.nextID
}

// Size returns the offscreen surface dimensions.
func (b *Backend) Size() (uint32, uint32) { return b.width, b.height }

func (b *Backend) createSurface(width, height uint32) error {
	entry, err := b.createTextureEntry(width, height, b.surfaceFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc,
		"glaze_surface")
	if err != nil {
		return fmt.Errorf("wgpu: surface: %w", err)
	}
	if b.surface != nil {
		b.destroyTextureEntry(b.surface)
	}
	b.surface = entry
	b.width = width
	b.height = height
	return nil
}

// Resize recreates the offscreen surface.
func (b *Backend) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	return b.createSurface(width, height)
}

func (b *Backend) createTextureEntry(width, height uint32, format gpu.TextureFormat, usage gputypes.TextureUsage, label string) (*textureEntry, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        convertTextureFormat(format),
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	return &textureEntry{tex: tex, view: view, width: width, height: height, format: format}, nil
}

func (b *Backend) destroyTextureEntry(e *textureEntry) {
	b.device.DestroyTextureView(e.view)
	b.device.DestroyTexture(e.tex)
}

// CreateBuffer allocates a GPU buffer.
func (b *Backend) CreateBuffer(sizeBytes uint64, usage gpu.BufferUsage, label string) (gpu.BufferID, error) {
	if sizeBytes == 0 {
		return gpu.InvalidID, fmt.Errorf("wgpu: zero-size buffer %q", label)
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  sizeBytes,
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	id := gpu.BufferID(b.allocID())
	b.buffers[id] = &bufferEntry{buf: buf, size: sizeBytes}
	return id, nil
}

// WriteBuffer copies data into a buffer through the queue.
func (b *Backend) WriteBuffer(buf gpu.BufferID, offset uint64, data []byte) error {
	entry, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("wgpu: write buffer %d: %w", buf, gpu.ErrInvalidHandle)
	}
	if len(data) == 0 {
		return nil
	}
	b.queue.WriteBuffer(entry.buf, offset, data)
	return nil
}

// UploadEphemeral stages data in a transient buffer released after the
// next Submit.
func (b *Backend) UploadEphemeral(data []byte) (gpu.BufferID, error) {
	id, err := b.CreateBuffer(uint64(len(data)),
		gpu.BufferUsageVertex|gpu.BufferUsageCopyDst, "glaze_ephemeral")
	if err != nil {
		return gpu.InvalidID, err
	}
	if err := b.WriteBuffer(id, 0, data); err != nil {
		b.DestroyBuffer(id)
		return gpu.InvalidID, err
	}
	b.frameEphemerals = append(b.frameEphemerals, id)
	return id, nil
}

// CreateTexture allocates a sampleable 2D texture.
func (b *Backend) CreateTexture(width, height uint32, format gpu.TextureFormat, usage gpu.TextureUsage, label string) (gpu.TextureID, error) {
	entry, err := b.createTextureEntry(width, height, format, convertTextureUsage(usage), label)
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: texture %q: %w", label, err)
	}
	id := gpu.TextureID(b.allocID())
	b.textures[id] = entry
	return id, nil
}

// UploadTextureRegion writes tightly packed pixel rows into a texture
// region through the queue.
func (b *Backend) UploadTextureRegion(tex gpu.TextureID, r gpu.Region, data []byte) error {
	entry, ok := b.textures[tex]
	if !ok {
		return fmt.Errorf("wgpu: upload texture %d: %w", tex, gpu.ErrInvalidHandle)
	}
	bpp := entry.format.BytesPerPixel()
	if want := int(r.Width) * int(r.Height) * bpp; len(data) != want {
		return fmt.Errorf("wgpu: upload texture %d: %dx%d region needs %d bytes, got %d",
			tex, r.Width, r.Height, want, len(data))
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  entry.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: r.X, Y: r.Y, Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  r.Width * uint32(bpp),
			RowsPerImage: r.Height,
		},
		&hal.Extent3D{Width: r.Width, Height: r.Height, DepthOrArrayLayers: 1},
	)
	return nil
}

// CreatePipeline compiles WGSL and builds a render pipeline with the fixed
// bind group layout the descriptor declares.
func (b *Backend) CreatePipeline(desc gpu.PipelineDesc) (gpu.PipelineID, error) {
	spirv, err := b.shaders.compile(desc.ShaderSource)
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: pipeline %q: %w: %w", desc.Label, gpu.ErrPipelineCreation, err)
	}

	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: pipeline %q: shader module: %w", desc.Label, err)
	}

	entry := &pipelineEntry{shader: shader, bindings: desc.Bindings}
	cleanup := func() { b.destroyPipelineEntry(entry) }

	var layouts []hal.BindGroupLayout
	if desc.Bindings != 0 {
		bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   desc.Label + "_bind_layout",
			Entries: bindLayoutEntries(desc.Bindings),
		})
		if err != nil {
			cleanup()
			return gpu.InvalidID, fmt.Errorf("wgpu: pipeline %q: bind layout: %w", desc.Label, err)
		}
		entry.bindLayout = bindLayout
		layouts = []hal.BindGroupLayout{bindLayout}
	}

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_pipe_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		cleanup()
		return gpu.InvalidID, fmt.Errorf("wgpu: pipeline %q: pipeline layout: %w", desc.Label, err)
	}
	entry.pipeLayout = pipeLayout

	vertexEntry := desc.VertexEntry
	if vertexEntry == "" {
		vertexEntry = "vs_main"
	}
	fragmentEntry := desc.FragmentEntry
	if fragmentEntry == "" {
		fragmentEntry = "fs_main"
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: vertexEntry,
			Buffers:    convertVertexLayouts(desc.Buffers),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    convertTextureFormat(desc.TargetFormat),
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
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
		cleanup()
		return gpu.InvalidID, fmt.Errorf("wgpu: pipeline %q: %w: %w", desc.Label, gpu.ErrPipelineCreation, err)
	}
	entry.pipeline = pipeline

	id := gpu.PipelineID(b.allocID())
	b.pipelines[id] = entry
	return id, nil
}

// bindLayoutEntries builds the fixed slot layout: 0 uniform, 1 texture,
// 2 sampler, filtered by the declared flags.
func bindLayoutEntries(flags gpu.BindingFlags) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	if flags.Has(gpu.BindingUniform) {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	if flags.Has(gpu.BindingTexture) {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	if flags.Has(gpu.BindingSampler) {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}
	return entries
}

// CreateSampler creates a clamp-to-edge sampler.
func (b *Backend) CreateSampler(desc gpu.SamplerDesc) (gpu.SamplerID, error) {
	filter := gputypes.FilterModeNearest
	if desc.Linear {
		filter = gputypes.FilterModeLinear
	}
	sampler, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: sampler %q: %w", desc.Label, err)
	}
	id := gpu.SamplerID(b.allocID())
	b.samplers[id] = sampler
	return id, nil
}

// BeginPass opens a render pass on the target texture, or the offscreen
// surface for the zero target. Recording failures surface at Submit.
func (b *Backend) BeginPass(target gpu.TextureID) {
	if b.encoder == nil {
		encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
			Label: "glaze_frame",
		})
		if err != nil {
			b.fail(fmt.Errorf("create command encoder: %w", err))
			return
		}
		if err := encoder.BeginEncoding("glaze_frame"); err != nil {
			b.fail(fmt.Errorf("begin encoding: %w", err))
			return
		}
		b.encoder = encoder
	}

	entry := b.surface
	if target != gpu.InvalidID {
		var ok bool
		entry, ok = b.textures[target]
		if !ok {
			b.fail(fmt.Errorf("begin pass on texture %d: %w", target, gpu.ErrInvalidHandle))
			return
		}
	}

	b.rp = b.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glaze_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       entry.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	b.resetBindings()
}

func (b *Backend) resetBindings() {
	b.curPipeline = nil
	b.curVertex = nil
	b.curVertexOffset = 0
	b.curUniform = nil
	b.curUniformOff = 0
	b.curTexture = nil
	b.curSampler = nil
	b.bindDirty = true
}

func (b *Backend) fail(err error) {
	if b.pendingErr == nil {
		b.pendingErr = err
	}
	logger().Warn("wgpu recording failure", "error", err)
}

// BindPipeline selects the pipeline for subsequent draws.
func (b *Backend) BindPipeline(p gpu.PipelineID) {
	entry, ok := b.pipelines[p]
	if !ok {
		b.fail(fmt.Errorf("bind pipeline %d: %w", p, gpu.ErrInvalidHandle))
		return
	}
	b.curPipeline = entry
	b.bindDirty = true
}

// BindVertexBuffer binds the instance buffer for slot 0.
func (b *Backend) BindVertexBuffer(buf gpu.BufferID, offset uint64, slot uint32) {
	entry, ok := b.buffers[buf]
	if !ok {
		b.fail(fmt.Errorf("bind vertex buffer %d: %w", buf, gpu.ErrInvalidHandle))
		return
	}
	b.curVertex = entry
	b.curVertexOffset = offset
}

// BindUniformBuffer binds the uniform buffer for binding slot 0.
func (b *Backend) BindUniformBuffer(buf gpu.BufferID, offset uint64, slot uint32) {
	entry, ok := b.buffers[buf]
	if !ok {
		b.fail(fmt.Errorf("bind uniform buffer %d: %w", buf, gpu.ErrInvalidHandle))
		return
	}
	b.curUniform = entry
	b.curUniformOff = offset
	b.bindDirty = true
}

// BindTexture binds the sampled texture for binding slot 1.
func (b *Backend) BindTexture(tex gpu.TextureID, slot uint32) {
	entry, ok := b.textures[tex]
	if !ok {
		b.fail(fmt.Errorf("bind texture %d: %w", tex, gpu.ErrInvalidHandle))
		return
	}
	b.curTexture = entry
	b.bindDirty = true
}

// BindSampler binds the sampler for binding slot 2.
func (b *Backend) BindSampler(s gpu.SamplerID, slot uint32) {
	sampler, ok := b.samplers[s]
	if !ok {
		b.fail(fmt.Errorf("bind sampler %d: %w", s, gpu.ErrInvalidHandle))
		return
	}
	b.curSampler = sampler
	b.bindDirty = true
}

// Draw flushes the current bindings into a bind group and records an
// instanced draw.
func (b *Backend) Draw(vertexCount, instanceCount uint32) {
	if b.rp == nil || b.curPipeline == nil {
		return
	}
	b.rp.SetPipeline(b.curPipeline.pipeline)

	if b.curPipeline.bindLayout != nil && b.bindDirty {
		bg, err := b.createBindGroup()
		if err != nil {
			b.fail(err)
			return
		}
		b.frameBindGroups = append(b.frameBindGroups, bg)
		b.rp.SetBindGroup(0, bg, nil)
		b.bindDirty = false
	}

	if b.curVertex != nil {
		b.rp.SetVertexBuffer(0, b.curVertex.buf, b.curVertexOffset)
	}
	b.rp.Draw(vertexCount, instanceCount, 0, 0)
}

// createBindGroup materializes the current binding state against the
// pipeline's layout.
func (b *Backend) createBindGroup() (hal.BindGroup, error) {
	var entries []gputypes.BindGroupEntry
	flags := b.curPipeline.bindings

	if flags.Has(gpu.BindingUniform) {
		if b.curUniform == nil {
			return nil, fmt.Errorf("draw without bound uniform buffer")
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: b.curUniform.buf.NativeHandle(),
				Offset: b.curUniformOff,
				Size:   b.curUniform.size - b.curUniformOff,
			},
		})
	}
	if flags.Has(gpu.BindingTexture) {
		if b.curTexture == nil {
			return nil, fmt.Errorf("draw without bound texture")
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 1,
			Resource: gputypes.TextureViewBinding{
				TextureView: b.curTexture.view.NativeHandle(),
			},
		})
	}
	if flags.Has(gpu.BindingSampler) {
		if b.curSampler == nil {
			return nil, fmt.Errorf("draw without bound sampler")
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 2,
			Resource: gputypes.SamplerBinding{
				Sampler: b.curSampler.NativeHandle(),
			},
		})
	}

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "glaze_draw_bind",
		Layout:  b.curPipeline.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return bg, nil
}

// EndPass closes the current render pass.
func (b *Backend) EndPass() {
	if b.rp != nil {
		b.rp.End()
		b.rp = nil
	}
}

// Submit finishes encoding, submits the frame and waits for the GPU, then
// releases the frame's transient bind groups and ephemeral buffers.
func (b *Backend) Submit() error {
	if err := b.pendingErr; err != nil {
		b.pendingErr = nil
		b.abortFrame()
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if b.encoder == nil {
		return nil
	}

	cmdBuf, err := b.encoder.EndEncoding()
	b.encoder = nil
	if err != nil {
		b.releaseFrameResources()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		b.releaseFrameResources()
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		b.releaseFrameResources()
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, submitTimeout)
	if err != nil {
		b.releaseFrameResources()
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		b.releaseFrameResources()
		return fmt.Errorf("wgpu: wait for GPU: timeout after %v", submitTimeout)
	}

	b.releaseFrameResources()
	return nil
}

// abortFrame drops a partially recorded frame after a recording failure.
func (b *Backend) abortFrame() {
	if b.rp != nil {
		b.rp.End()
		b.rp = nil
	}
	if b.encoder != nil {
		b.encoder.DiscardEncoding()
		b.encoder = nil
	}
	b.releaseFrameResources()
}

func (b *Backend) releaseFrameResources() {
	for _, bg := range b.frameBindGroups {
		b.device.DestroyBindGroup(bg)
	}
	b.frameBindGroups = b.frameBindGroups[:0]
	for _, id := range b.frameEphemerals {
		b.DestroyBuffer(id)
	}
	b.frameEphemerals = b.frameEphemerals[:0]
}

// ReadPixels copies the offscreen surface into a tightly packed pixel
// slice, row-major, in the surface format.
func (b *Backend) ReadPixels() ([]byte, error) {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glaze_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glaze_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: readback begin: %w", err)
	}

	// Copy pitch must be 256-byte aligned.
	bpp := uint32(b.surfaceFormat.BytesPerPixel())
	bytesPerRow := b.width * bpp
	const pitchAlign = 256
	alignedBytesPerRow := (bytesPerRow + pitchAlign - 1) &^ (pitchAlign - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(b.height)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glaze_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.surface.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(b.surface.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: b.height},
		TextureBase:  hal.ImageCopyTexture{Texture: b.surface.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.surface.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("wgpu: readback submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, submitTimeout)
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback wait: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("wgpu: readback wait: timeout after %v", submitTimeout)
	}

	raw := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}

	// Strip the pitch alignment.
	out := make([]byte, uint64(bytesPerRow)*uint64(b.height))
	for y := uint32(0); y < b.height; y++ {
		src := uint64(y) * uint64(alignedBytesPerRow)
		dst := uint64(y) * uint64(bytesPerRow)
		copy(out[dst:dst+uint64(bytesPerRow)], raw[src:src+uint64(bytesPerRow)])
	}
	return out, nil
}

// DestroyBuffer releases a buffer.
func (b *Backend) DestroyBuffer(buf gpu.BufferID) {
	if entry, ok := b.buffers[buf]; ok {
		delete(b.buffers, buf)
		b.device.DestroyBuffer(entry.buf)
	}
}

// DestroyTexture releases a texture and its view.
func (b *Backend) DestroyTexture(tex gpu.TextureID) {
	if entry, ok := b.textures[tex]; ok {
		delete(b.textures, tex)
		b.destroyTextureEntry(entry)
	}
}

func (b *Backend) destroyPipelineEntry(e *pipelineEntry) {
	if e.pipeline != nil {
		b.device.DestroyRenderPipeline(e.pipeline)
	}
	if e.pipeLayout != nil {
		b.device.DestroyPipelineLayout(e.pipeLayout)
	}
	if e.bindLayout != nil {
		b.device.DestroyBindGroupLayout(e.bindLayout)
	}
	if e.shader != nil {
		b.device.DestroyShaderModule(e.shader)
	}
}

// DestroySampler releases a sampler.
func (b *Backend) DestroySampler(s gpu.SamplerID) {
	if sampler, ok := b.samplers[s]; ok {
		delete(b.samplers, s)
		b.device.DestroySampler(sampler)
	}
}

// DestroyPipeline releases a pipeline and its layouts.
func (b *Backend) DestroyPipeline(p gpu.PipelineID) {
	if entry, ok := b.pipelines[p]; ok {
		delete(b.pipelines, p)
		b.destroyPipelineEntry(entry)
	}
}

// Close releases all tracked resources and, when owned, the device and
// instance.
func (b *Backend) Close() {
	b.abortFrame()

	for id := range b.buffers {
		b.DestroyBuffer(id)
	}
	for id := range b.textures {
		b.DestroyTexture(id)
	}
	for id := range b.samplers {
		b.DestroySampler(id)
	}
	for id := range b.pipelines {
		b.DestroyPipeline(id)
	}
	if b.surface != nil {
		b.destroyTextureEntry(b.surface)
		b.surface = nil
	}

	if b.ownsDevice {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
}

var _ gpu.Backend = (*Backend)(nil)
