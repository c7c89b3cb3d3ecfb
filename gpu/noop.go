// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

// NoopBackend is a Backend that accepts every operation and renders
// nothing. It hands out distinct resource IDs and counts draws and
// submits, which makes it useful for headless runs and benchmarks.
type NoopBackend struct {
	nextID uint64

	// DrawCalls counts Draw invocations since creation.
	DrawCalls int

	// Submits counts Submit invocations since creation.
	Submits int
}

// NewNoopBackend creates a no-op backend.
func NewNoopBackend() *NoopBackend {
	return &NoopBackend{}
}

func (b *NoopBackend) allocID() uint64 {
	b.nextID++
	return b.nextID
}

// CreateBuffer returns a fresh buffer ID.
func (b *NoopBackend) CreateBuffer(sizeBytes uint64, usage BufferUsage, label string) (BufferID, error) {
	return BufferID(b.allocID()), nil
}

// WriteBuffer discards the data.
func (b *NoopBackend) WriteBuffer(buf BufferID, offset uint64, data []byte) error {
	return nil
}

// UploadEphemeral returns a fresh buffer ID.
func (b *NoopBackend) UploadEphemeral(data []byte) (BufferID, error) {
	return BufferID(b.allocID()), nil
}

// CreateTexture returns a fresh texture ID.
func (b *NoopBackend) CreateTexture(width, height uint32, format TextureFormat, usage TextureUsage, label string) (TextureID, error) {
	return TextureID(b.allocID()), nil
}

// UploadTextureRegion discards the data.
func (b *NoopBackend) UploadTextureRegion(tex TextureID, r Region, data []byte) error {
	return nil
}

// CreatePipeline returns a fresh pipeline ID.
func (b *NoopBackend) CreatePipeline(desc PipelineDesc) (PipelineID, error) {
	return PipelineID(b.allocID()), nil
}

// CreateSampler returns a fresh sampler ID.
func (b *NoopBackend) CreateSampler(desc SamplerDesc) (SamplerID, error) {
	return SamplerID(b.allocID()), nil
}

// BeginPass does nothing.
func (b *NoopBackend) BeginPass(target TextureID) {}

// BindPipeline does nothing.
func (b *NoopBackend) BindPipeline(p PipelineID) {}

// BindVertexBuffer does nothing.
func (b *NoopBackend) BindVertexBuffer(buf BufferID, offset uint64, slot uint32) {}

// BindUniformBuffer does nothing.
func (b *NoopBackend) BindUniformBuffer(buf BufferID, offset uint64, slot uint32) {}

// BindTexture does nothing.
func (b *NoopBackend) BindTexture(tex TextureID, slot uint32) {}

// BindSampler does nothing.
func (b *NoopBackend) BindSampler(s SamplerID, slot uint32) {}

// Draw counts the call.
func (b *NoopBackend) Draw(vertexCount, instanceCount uint32) {
	b.DrawCalls++
}

// EndPass does nothing.
func (b *NoopBackend) EndPass() {}

// Submit counts the call.
func (b *NoopBackend) Submit() error {
	b.Submits++
	return nil
}

// DestroyBuffer does nothing.
func (b *NoopBackend) DestroyBuffer(buf BufferID) {}

// DestroyTexture does nothing.
func (b *NoopBackend) DestroyTexture(tex TextureID) {}

// DestroyPipeline does nothing.
func (b *NoopBackend) DestroyPipeline(p PipelineID) {}

// DestroySampler does nothing.
func (b *NoopBackend) DestroySampler(s SamplerID) {}

var _ Backend = (*NoopBackend)(nil)
