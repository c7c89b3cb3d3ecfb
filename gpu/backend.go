// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu defines the backend capability interface the renderer draws
// through, with opaque uint64 resource handles.
//
// The renderer never touches a graphics API directly; every buffer,
// texture, pipeline and draw goes through a Backend. backend/wgpu provides
// the real implementation; NoopBackend serves headless use and tests.
package gpu

import "errors"

// Backend errors.
var (
	// ErrInvalidHandle is returned when an operation references an unknown
	// or destroyed resource ID.
	ErrInvalidHandle = errors.New("gpu: invalid resource handle")

	// ErrOutOfMemory is returned when a resource allocation fails.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrPipelineCreation is returned when pipeline or shader compilation
	// fails.
	ErrPipelineCreation = errors.New("gpu: pipeline creation failed")
)

// Backend is the capability surface the render pipeline requires from a
// graphics API.
//
// Call pattern per frame: resource creation and writes in any order, then
// one or more BeginPass..EndPass blocks with Bind*/Draw inside, then a
// single Submit. Backends are used from a single goroutine and need no
// internal locking.
type Backend interface {
	// CreateBuffer allocates a GPU buffer of the given byte size.
	CreateBuffer(sizeBytes uint64, usage BufferUsage, label string) (BufferID, error)

	// WriteBuffer copies data into a buffer at the given byte offset.
	WriteBuffer(buf BufferID, offset uint64, data []byte) error

	// UploadEphemeral stages a small payload in transient memory and
	// returns a buffer handle valid only until the next Submit. Used for
	// payloads too small to justify a slot in a persistent ring buffer.
	UploadEphemeral(data []byte) (BufferID, error)

	// CreateTexture allocates a 2D texture.
	CreateTexture(width, height uint32, format TextureFormat, usage TextureUsage, label string) (TextureID, error)

	// UploadTextureRegion copies tightly packed row-major pixel data into
	// a rectangular region of the texture.
	UploadTextureRegion(tex TextureID, r Region, data []byte) error

	// CreatePipeline compiles a render pipeline from the descriptor.
	CreatePipeline(desc PipelineDesc) (PipelineID, error)

	// CreateSampler creates a texture sampler.
	CreateSampler(desc SamplerDesc) (SamplerID, error)

	// BeginPass starts a render pass targeting the given texture.
	// A zero TextureID targets the presentable surface.
	BeginPass(target TextureID)

	// BindPipeline selects the pipeline for subsequent draws.
	BindPipeline(p PipelineID)

	// BindVertexBuffer binds a buffer region to a vertex buffer slot.
	BindVertexBuffer(buf BufferID, offset uint64, slot uint32)

	// BindUniformBuffer binds a buffer region to a uniform binding slot.
	BindUniformBuffer(buf BufferID, offset uint64, slot uint32)

	// BindTexture binds a texture to a shader binding slot.
	BindTexture(tex TextureID, slot uint32)

	// BindSampler binds a sampler to a shader binding slot.
	BindSampler(s SamplerID, slot uint32)

	// Draw issues an instanced draw with the current bindings.
	Draw(vertexCount, instanceCount uint32)

	// EndPass finishes the current render pass.
	EndPass()

	// Submit flushes all recorded work to the GPU.
	Submit() error

	// DestroyBuffer releases a buffer.
	DestroyBuffer(buf BufferID)

	// DestroyTexture releases a texture.
	DestroyTexture(tex TextureID)

	// DestroyPipeline releases a pipeline.
	DestroyPipeline(p PipelineID)

	// DestroySampler releases a sampler.
	DestroySampler(s SamplerID)
}
