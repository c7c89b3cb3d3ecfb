// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

// Resource IDs
//
// These opaque IDs represent GPU resources. Each backend implementation
// maintains a mapping between IDs and actual API objects. IDs are uint64
// to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
// The zero TextureID additionally denotes the presentable surface when
// passed to Backend.BeginPass.
type TextureID uint64

// PipelineID is an opaque handle to a compiled render pipeline.
type PipelineID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex indicates the buffer feeds vertex/instance fetch.
	BufferUsageVertex BufferUsage = 1 << 0

	// BufferUsageUniform indicates the buffer backs a uniform binding.
	BufferUsageUniform BufferUsage = 1 << 1

	// BufferUsageCopyDst indicates the buffer is written from the CPU.
	BufferUsageCopyDst BufferUsage = 1 << 2
)

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopyDst indicates the texture receives CPU uploads.
	TextureUsageCopyDst TextureUsage = 1 << 0

	// TextureUsageBinding indicates the texture can be sampled in shaders.
	TextureUsageBinding TextureUsage = 1 << 1

	// TextureUsageRenderAttachment indicates the texture is a render target.
	TextureUsageRenderAttachment TextureUsage = 1 << 2
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatR8Unorm is 8-bit single channel, used for alpha atlases.
	TextureFormatR8Unorm TextureFormat = iota + 1

	// TextureFormatRGBA8Unorm is 8-bit RGBA.
	TextureFormatRGBA8Unorm

	// TextureFormatBGRA8Unorm is 8-bit BGRA, the usual surface format.
	TextureFormatBGRA8Unorm
)

// BytesPerPixel returns the pixel stride of the format.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	case TextureFormatRGBA8Unorm, TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// Region is a rectangular texture area in texels.
type Region struct {
	X, Y          uint32
	Width, Height uint32
}

// VertexFormat specifies the type of a single vertex attribute.
type VertexFormat uint32

// Vertex attribute formats.
const (
	VertexFormatFloat32 VertexFormat = iota + 1
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
)

// VertexAttribute describes one attribute within a vertex buffer layout.
type VertexAttribute struct {
	// Format is the attribute data type.
	Format VertexFormat

	// Offset is the byte offset within one element.
	Offset uint32

	// ShaderLocation is the attribute index in the shader.
	ShaderLocation uint32
}

// StepMode controls whether a vertex buffer advances per vertex or per
// instance.
type StepMode uint32

// Step modes.
const (
	StepModeVertex StepMode = iota
	StepModeInstance
)

// VertexLayout describes the memory layout of one vertex buffer slot.
type VertexLayout struct {
	// Stride is the byte distance between consecutive elements.
	Stride uint32

	// StepMode selects per-vertex or per-instance advance.
	StepMode StepMode

	// Attributes lists the attributes fetched from this buffer.
	Attributes []VertexAttribute
}

// BindingFlags declares which of the fixed shader binding slots a pipeline
// uses: slot 0 uniform buffer, slot 1 sampled texture, slot 2 sampler.
type BindingFlags uint32

// Binding slot flags.
const (
	BindingUniform BindingFlags = 1 << 0
	BindingTexture BindingFlags = 1 << 1
	BindingSampler BindingFlags = 1 << 2
)

// Has reports whether all flags in mask are set.
func (f BindingFlags) Has(mask BindingFlags) bool { return f&mask == mask }

// PipelineDesc describes a render pipeline.
type PipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// ShaderSource is the WGSL source containing both entry points.
	ShaderSource string

	// VertexEntry is the vertex shader entry point. Defaults to "vs_main".
	VertexEntry string

	// FragmentEntry is the fragment shader entry point. Defaults to "fs_main".
	FragmentEntry string

	// Buffers are the vertex buffer slot layouts, in slot order.
	Buffers []VertexLayout

	// Bindings declares the binding slots the shader interface uses.
	Bindings BindingFlags

	// TargetFormat is the color attachment format the pipeline renders to.
	TargetFormat TextureFormat
}

// SamplerDesc describes a texture sampler.
type SamplerDesc struct {
	// Label is an optional debug label.
	Label string

	// Linear enables bilinear filtering; false selects nearest.
	Linear bool
}
