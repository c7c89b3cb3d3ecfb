package render

import (
	"github.com/gogpu/glaze/gpu"
)

// fakeBackend records every backend call for assertions and supports
// per-operation error injection.
type fakeBackend struct {
	nextID uint64

	// Error injection. A non-nil error fails the matching operation.
	createBufferErr  error
	writeBufferErr   error
	ephemeralErr     error
	createTextureErr error
	uploadTexErr     error
	pipelineErr      error
	samplerErr       error
	submitErr        error

	bufferSizes   map[gpu.BufferID]uint64
	bufferWrites  []fakeBufferWrite
	ephemerals    [][]byte
	textureLabels map[gpu.TextureID]string
	texUploads    []fakeTexUpload
	pipelineNames map[gpu.PipelineID]string

	destroyedBuffers  []gpu.BufferID
	destroyedTextures []gpu.TextureID

	passes  []fakePass
	inPass  bool
	submits int

	createTextureCalls int
	uploadTexCalls     int
}

type fakeBufferWrite struct {
	buf    gpu.BufferID
	offset uint64
	size   int
}

type fakeTexUpload struct {
	tex  gpu.TextureID
	r    gpu.Region
	size int
}

type fakeDraw struct {
	pipeline      gpu.PipelineID
	vertexCount   uint32
	instanceCount uint32
	buffer        gpu.BufferID
	bufferOffset  uint64
	texture       gpu.TextureID
}

type fakePass struct {
	target gpu.TextureID

	// Current binding state while recording.
	pipeline gpu.PipelineID
	buffer   gpu.BufferID
	offset   uint64
	texture  gpu.TextureID

	draws []fakeDraw
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		bufferSizes:   make(map[gpu.BufferID]uint64),
		textureLabels: make(map[gpu.TextureID]string),
		pipelineNames: make(map[gpu.PipelineID]string),
	}
}

func (b *fakeBackend) allocID() uint64 {
	b.nextID++
	return b.nextID
}

func (b *fakeBackend) current() *fakePass {
	return &b.passes[len(b.passes)-1]
}

func (b *fakeBackend) CreateBuffer(sizeBytes uint64, usage gpu.BufferUsage, label string) (gpu.BufferID, error) {
	if b.createBufferErr != nil {
		return gpu.InvalidID, b.createBufferErr
	}
	id := gpu.BufferID(b.allocID())
	b.bufferSizes[id] = sizeBytes
	return id, nil
}

func (b *fakeBackend) WriteBuffer(buf gpu.BufferID, offset uint64, data []byte) error {
	if b.writeBufferErr != nil {
		return b.writeBufferErr
	}
	b.bufferWrites = append(b.bufferWrites, fakeBufferWrite{buf: buf, offset: offset, size: len(data)})
	return nil
}

func (b *fakeBackend) UploadEphemeral(data []byte) (gpu.BufferID, error) {
	if b.ephemeralErr != nil {
		return gpu.InvalidID, b.ephemeralErr
	}
	id := gpu.BufferID(b.allocID())
	b.ephemerals = append(b.ephemerals, append([]byte(nil), data...))
	return id, nil
}

func (b *fakeBackend) CreateTexture(width, height uint32, format gpu.TextureFormat, usage gpu.TextureUsage, label string) (gpu.TextureID, error) {
	b.createTextureCalls++
	if b.createTextureErr != nil {
		return gpu.InvalidID, b.createTextureErr
	}
	id := gpu.TextureID(b.allocID())
	b.textureLabels[id] = label
	return id, nil
}

func (b *fakeBackend) UploadTextureRegion(tex gpu.TextureID, r gpu.Region, data []byte) error {
	b.uploadTexCalls++
	if b.uploadTexErr != nil {
		return b.uploadTexErr
	}
	b.texUploads = append(b.texUploads, fakeTexUpload{tex: tex, r: r, size: len(data)})
	return nil
}

func (b *fakeBackend) CreatePipeline(desc gpu.PipelineDesc) (gpu.PipelineID, error) {
	if b.pipelineErr != nil {
		return gpu.InvalidID, b.pipelineErr
	}
	id := gpu.PipelineID(b.allocID())
	b.pipelineNames[id] = desc.Label
	return id, nil
}

func (b *fakeBackend) CreateSampler(desc gpu.SamplerDesc) (gpu.SamplerID, error) {
	if b.samplerErr != nil {
		return gpu.InvalidID, b.samplerErr
	}
	return gpu.SamplerID(b.allocID()), nil
}

func (b *fakeBackend) BeginPass(target gpu.TextureID) {
	b.inPass = true
	b.passes = append(b.passes, fakePass{target: target})
}

func (b *fakeBackend) BindPipeline(p gpu.PipelineID) {
	b.current().pipeline = p
}

func (b *fakeBackend) BindVertexBuffer(buf gpu.BufferID, offset uint64, slot uint32) {
	b.current().buffer = buf
	b.current().offset = offset
}

func (b *fakeBackend) BindUniformBuffer(buf gpu.BufferID, offset uint64, slot uint32) {}

func (b *fakeBackend) BindTexture(tex gpu.TextureID, slot uint32) {
	b.current().texture = tex
}

func (b *fakeBackend) BindSampler(s gpu.SamplerID, slot uint32) {}

func (b *fakeBackend) Draw(vertexCount, instanceCount uint32) {
	p := b.current()
	p.draws = append(p.draws, fakeDraw{
		pipeline:      p.pipeline,
		vertexCount:   vertexCount,
		instanceCount: instanceCount,
		buffer:        p.buffer,
		bufferOffset:  p.offset,
		texture:       p.texture,
	})
}

func (b *fakeBackend) EndPass() {
	b.inPass = false
}

func (b *fakeBackend) Submit() error {
	b.submits++
	return b.submitErr
}

func (b *fakeBackend) DestroyBuffer(buf gpu.BufferID) {
	b.destroyedBuffers = append(b.destroyedBuffers, buf)
}

func (b *fakeBackend) DestroyTexture(tex gpu.TextureID) {
	b.destroyedTextures = append(b.destroyedTextures, tex)
}

func (b *fakeBackend) DestroyPipeline(p gpu.PipelineID) {}

func (b *fakeBackend) DestroySampler(s gpu.SamplerID) {}

// totalDraws counts draws across all passes.
func (b *fakeBackend) totalDraws() int {
	n := 0
	for i := range b.passes {
		n += len(b.passes[i].draws)
	}
	return n
}

var _ gpu.Backend = (*fakeBackend)(nil)
