// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/scene"
)

// Vertices per primitive quad: two triangles generated from vertex_index.
const verticesPerQuad = 6

// texturedStride is the byte size of one textured instance record:
// pos(2) + size(2) + uv(4) + color(4) + clip(4) floats.
const texturedStride = 16 * 4

// unifiedVertexLayout describes the 128-byte quad/shadow instance record.
func unifiedVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:   scene.UnifiedSize,
		StepMode: gpu.StepModeInstance,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},   // pos
			{Format: gpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},   // size
			{Format: gpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},  // color
			{Format: gpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},  // radii
			{Format: gpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4},  // clip
			{Format: gpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 5},  // border color
			{Format: gpu.VertexFormatFloat32x4, Offset: 80, ShaderLocation: 6},  // border widths
			{Format: gpu.VertexFormatFloat32x3, Offset: 96, ShaderLocation: 7},  // blur + offset
			{Format: gpu.VertexFormatUint32, Offset: 108, ShaderLocation: 8},    // kind
		},
	}
}

// texturedVertexLayout describes the 64-byte glyph/svg/image instance record.
func texturedVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:   texturedStride,
		StepMode: gpu.StepModeInstance,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // pos
			{Format: gpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // size
			{Format: gpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // uv rect
			{Format: gpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, // color
			{Format: gpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4}, // clip
		},
	}
}

// unifiedPipeline draws quad and shadow batches through the shared
// 128-byte instance record.
type unifiedPipeline struct {
	backend  gpu.Backend
	pipeline gpu.PipelineID
	store    *InstanceStore

	scratch []scene.UnifiedPrimitive
	encoded []byte
}

func newUnifiedPipeline(backend gpu.Backend, target gpu.TextureFormat, initialCapacity uint64) (*unifiedPipeline, error) {
	pipeline, err := backend.CreatePipeline(gpu.PipelineDesc{
		Label:        "glaze/unified",
		ShaderSource: unifiedShaderSource,
		Buffers:      []gpu.VertexLayout{unifiedVertexLayout()},
		Bindings:     gpu.BindingUniform,
		TargetFormat: target,
	})
	if err != nil {
		return nil, fmt.Errorf("unified pipeline: %w", err)
	}
	return &unifiedPipeline{
		backend:  backend,
		pipeline: pipeline,
		store:    NewInstanceStore(backend, initialCapacity, "glaze/unified-instances"),
	}, nil
}

// draw packs the batch into unified records, uploads them and issues one
// instanced draw. An upload failure drops the batch for this frame.
func (p *unifiedPipeline) draw(sc *scene.Scene, b scene.Batch, stats *FrameStats) {
	p.scratch = p.scratch[:0]
	switch b.Kind {
	case scene.KindShadow:
		for _, s := range sc.Shadows()[b.Start : b.Start+b.Count] {
			p.scratch = append(p.scratch, scene.PackShadow(&s))
		}
	case scene.KindQuad:
		for _, q := range sc.Quads()[b.Start : b.Start+b.Count] {
			p.scratch = append(p.scratch, scene.PackQuad(&q))
		}
	default:
		panic(fmt.Sprintf("unified pipeline cannot draw %v batch", b.Kind))
	}

	p.encoded = appendUnified(p.encoded[:0], p.scratch)
	buf, offset, err := p.store.Upload(p.encoded)
	if err != nil {
		stats.SkippedBatches++
		logger().Debug("dropping batch after upload failure",
			"kind", b.Kind.String(), "count", b.Count, "error", err)
		return
	}
	recordUpload(stats, len(p.encoded))

	p.backend.BindPipeline(p.pipeline)
	p.backend.BindVertexBuffer(buf, offset, 0)
	p.backend.Draw(verticesPerQuad, uint32(len(p.scratch)))
	stats.DrawCalls++
	stats.Instances += len(p.scratch)
}

func (p *unifiedPipeline) destroy() {
	p.store.Destroy()
	p.backend.DestroyPipeline(p.pipeline)
}

// texturedPipeline draws glyph, svg or image batches. Each owns its
// instance store, atlas texture cache and sampler.
type texturedPipeline struct {
	backend  gpu.Backend
	kind     scene.Kind
	pipeline gpu.PipelineID
	store    *InstanceStore
	cache    *AtlasCache
	sampler  gpu.SamplerID

	encoded []byte
}

func newTexturedPipeline(backend gpu.Backend, kind scene.Kind, target gpu.TextureFormat, initialCapacity uint64) (*texturedPipeline, error) {
	source := texturedShaderSource
	atlasFormat := gpu.TextureFormatRGBA8Unorm
	if kind == scene.KindGlyph {
		source = glyphShaderSource
		atlasFormat = gpu.TextureFormatR8Unorm
	}

	label := "glaze/" + kind.String()
	pipeline, err := backend.CreatePipeline(gpu.PipelineDesc{
		Label:        label,
		ShaderSource: source,
		Buffers:      []gpu.VertexLayout{texturedVertexLayout()},
		Bindings:     gpu.BindingUniform | gpu.BindingTexture | gpu.BindingSampler,
		TargetFormat: target,
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", kind, err)
	}

	sampler, err := backend.CreateSampler(gpu.SamplerDesc{Label: label, Linear: true})
	if err != nil {
		backend.DestroyPipeline(pipeline)
		return nil, fmt.Errorf("%s sampler: %w", kind, err)
	}

	return &texturedPipeline{
		backend:  backend,
		kind:     kind,
		pipeline: pipeline,
		store:    NewInstanceStore(backend, initialCapacity, label+"-instances"),
		cache:    NewAtlasCache(backend, atlasFormat, label+"-atlas"),
		sampler:  sampler,
	}, nil
}

// sync refreshes the pipeline's atlas texture. Failures keep the previous
// texture bound and only warn; stale pixels beat missing ones.
func (p *texturedPipeline) sync(atlas scene.Atlas, stats *FrameStats) {
	if atlas == nil {
		return
	}
	if _, err := p.cache.Sync(atlas, stats); err != nil {
		logger().Warn("atlas sync failed, keeping stale texture",
			"kind", p.kind.String(), "error", err)
	}
}

// draw packs the batch into textured records, uploads them and issues one
// instanced draw. Batches are dropped when no atlas texture exists yet or
// when the upload fails.
func (p *texturedPipeline) draw(sc *scene.Scene, b scene.Batch, atlas scene.Atlas, stats *FrameStats) {
	tex := p.cache.Texture()
	if atlas == nil || tex == gpu.InvalidID {
		stats.SkippedBatches++
		logger().Debug("dropping batch without atlas texture", "kind", b.Kind.String(), "count", b.Count)
		return
	}

	inv := 1 / float32(atlas.Size())
	p.encoded = p.encoded[:0]
	switch b.Kind {
	case scene.KindGlyph:
		for _, g := range sc.Glyphs()[b.Start : b.Start+b.Count] {
			p.encoded = appendTextured(p.encoded, g.Bounds, g.UV, inv, g.Color, g.Clip)
		}
	case scene.KindSvg:
		for _, v := range sc.SvgInstances()[b.Start : b.Start+b.Count] {
			p.encoded = appendTextured(p.encoded, v.Bounds, v.UV, inv, v.Color, v.Clip)
		}
	case scene.KindImage:
		for _, img := range sc.Images()[b.Start : b.Start+b.Count] {
			tint := scene.RGBA{R: 1, G: 1, B: 1, A: img.Opacity}
			p.encoded = appendTextured(p.encoded, img.Bounds, img.UV, inv, tint, img.Clip)
		}
	default:
		panic(fmt.Sprintf("textured pipeline cannot draw %v batch", b.Kind))
	}

	buf, offset, err := p.store.Upload(p.encoded)
	if err != nil {
		stats.SkippedBatches++
		logger().Debug("dropping batch after upload failure",
			"kind", b.Kind.String(), "count", b.Count, "error", err)
		return
	}
	recordUpload(stats, len(p.encoded))

	p.backend.BindPipeline(p.pipeline)
	p.backend.BindVertexBuffer(buf, offset, 0)
	p.backend.BindTexture(tex, 1)
	p.backend.BindSampler(p.sampler, 2)
	p.backend.Draw(verticesPerQuad, uint32(b.Count))
	stats.DrawCalls++
	stats.Instances += b.Count
}

func (p *texturedPipeline) destroy() {
	p.store.Destroy()
	p.cache.Destroy()
	p.backend.DestroySampler(p.sampler)
	p.backend.DestroyPipeline(p.pipeline)
}

// appendUnified encodes the records to little-endian bytes, reusing dst.
func appendUnified(dst []byte, prims []scene.UnifiedPrimitive) []byte {
	for i := range prims {
		start := len(dst)
		dst = append(dst, make([]byte, scene.UnifiedSize)...)
		prims[i].EncodeTo(dst[start:])
	}
	return dst
}

// appendTextured encodes one textured instance record. The UV rectangle is
// given in atlas texels and normalized here.
func appendTextured(dst []byte, bounds, uv scene.Rect, invAtlasSize float32, color scene.RGBA, clip scene.Rect) []byte {
	fields := [16]float32{
		bounds.X, bounds.Y,
		bounds.Width, bounds.Height,
		uv.X * invAtlasSize, uv.Y * invAtlasSize,
		uv.Width * invAtlasSize, uv.Height * invAtlasSize,
		color.R, color.G, color.B, color.A,
		clip.X, clip.Y, clip.Width, clip.Height,
	}
	var b [4]byte
	for _, f := range fields {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		dst = append(dst, b[:]...)
	}
	return dst
}

// recordUpload classifies an upload for the stats accumulator.
func recordUpload(stats *FrameStats, n int) {
	if n < ephemeralThreshold {
		stats.EphemeralUploads++
	} else {
		stats.RingUploads++
	}
	stats.BytesUploaded += n
}
