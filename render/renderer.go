// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render turns a scene's primitive lists into GPU draw calls.
//
// A Renderer owns one pipeline per primitive family: a unified pipeline for
// quads and shadows sharing a 128-byte instance record, and textured
// pipelines for glyphs, SVGs and images, each with its own atlas texture
// cache. Per-frame instance data lives in triple-buffered ring stores so a
// frame never overwrites buffers the GPU may still be reading.
//
// All methods must be called from a single goroutine. Rendering is
// fire-and-forget: Submit hands the frame to the backend without waiting.
package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/scene"
)

// Config configures a Renderer. Zero values select defaults where noted.
type Config struct {
	// Width and Height are the surface dimensions in pixels. Required.
	Width, Height uint32

	// TargetFormat is the surface color format.
	// Defaults to TextureFormatBGRA8Unorm.
	TargetFormat gpu.TextureFormat

	// InstanceCapacity is the initial byte capacity of each instance ring
	// slot. Defaults to 64 KiB.
	InstanceCapacity uint64

	// PostEffects is the ordered post-process chain. Empty disables
	// offscreen rendering entirely.
	PostEffects []PostEffect

	// GlyphAtlas, SvgAtlas and ImageAtlas are the bitmap caches backing the
	// textured pipelines. A nil atlas drops batches of that kind.
	GlyphAtlas scene.Atlas
	SvgAtlas   scene.Atlas
	ImageAtlas scene.Atlas
}

// Renderer executes the per-frame pipeline: merge-ordered batches in, draw
// calls out.
type Renderer struct {
	backend gpu.Backend
	config  Config

	globals gpu.BufferID

	unified *unifiedPipeline
	glyphs  *texturedPipeline
	svgs    *texturedPipeline
	images  *texturedPipeline

	post *postProcess

	scratchStats FrameStats
}

// New creates a renderer and compiles all pipelines up front. Any pipeline,
// shader or sampler failure aborts construction.
func New(backend gpu.Backend, config Config) (*Renderer, error) {
	if config.Width == 0 || config.Height == 0 {
		return nil, fmt.Errorf("render: invalid surface size %dx%d", config.Width, config.Height)
	}
	if config.TargetFormat == 0 {
		config.TargetFormat = gpu.TextureFormatBGRA8Unorm
	}

	r := &Renderer{backend: backend, config: config}

	globals, err := backend.CreateBuffer(16,
		gpu.BufferUsageUniform|gpu.BufferUsageCopyDst, "glaze/globals")
	if err != nil {
		return nil, fmt.Errorf("render: globals buffer: %w", err)
	}
	r.globals = globals
	if err := r.writeGlobals(); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: globals write: %w", err)
	}

	if r.unified, err = newUnifiedPipeline(backend, config.TargetFormat, config.InstanceCapacity); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: %w", err)
	}
	if r.glyphs, err = newTexturedPipeline(backend, scene.KindGlyph, config.TargetFormat, config.InstanceCapacity); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: %w", err)
	}
	if r.svgs, err = newTexturedPipeline(backend, scene.KindSvg, config.TargetFormat, config.InstanceCapacity); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: %w", err)
	}
	if r.images, err = newTexturedPipeline(backend, scene.KindImage, config.TargetFormat, config.InstanceCapacity); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: %w", err)
	}

	if len(config.PostEffects) > 0 {
		if r.post, err = newPostProcess(backend, config.TargetFormat, config.PostEffects, config.Width, config.Height); err != nil {
			r.Destroy()
			return nil, fmt.Errorf("render: %w", err)
		}
	}

	logger().Debug("renderer created",
		"size", fmt.Sprintf("%dx%d", config.Width, config.Height),
		"postEffects", len(config.PostEffects))
	return r, nil
}

// writeGlobals uploads the viewport size uniform.
func (r *Renderer) writeGlobals() error {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(r.config.Width)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(r.config.Height)))
	return r.backend.WriteBuffer(r.globals, 0, buf[:])
}

// Resize updates the surface size and recreates the post-process targets.
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("render: invalid surface size %dx%d", width, height)
	}
	r.config.Width = width
	r.config.Height = height
	if err := r.writeGlobals(); err != nil {
		return fmt.Errorf("render: globals write: %w", err)
	}
	if r.post != nil {
		r.post.resize(width, height)
	}
	return nil
}

// SetGlyphAtlas replaces the glyph atlas collaborator.
func (r *Renderer) SetGlyphAtlas(a scene.Atlas) { r.config.GlyphAtlas = a }

// SetSvgAtlas replaces the SVG atlas collaborator.
func (r *Renderer) SetSvgAtlas(a scene.Atlas) { r.config.SvgAtlas = a }

// SetImageAtlas replaces the image atlas collaborator.
func (r *Renderer) SetImageAtlas(a scene.Atlas) { r.config.ImageAtlas = a }

// RenderFrame renders one scene and submits it to the backend.
//
// stats receives this frame's counters; nil uses an internal scratch
// accumulator. Recoverable per-batch and per-pass failures are absorbed
// (the batch or pass is dropped and counted); only submission failure is
// returned.
func (r *Renderer) RenderFrame(sc *scene.Scene, stats *FrameStats) error {
	if stats == nil {
		stats = &r.scratchStats
	}
	stats.Reset()

	r.unified.store.PrepareFrame()
	r.glyphs.store.PrepareFrame()
	r.svgs.store.PrepareFrame()
	r.images.store.PrepareFrame()

	// Atlas textures refresh before the pass so batches can bind them.
	r.glyphs.sync(r.config.GlyphAtlas, stats)
	r.svgs.sync(r.config.SvgAtlas, stats)
	r.images.sync(r.config.ImageAtlas, stats)

	target := gpu.TextureID(gpu.InvalidID)
	usePost := r.post != nil && r.post.enabled()
	if usePost {
		target = r.post.front
	}

	r.backend.BeginPass(target)
	if !sc.IsEmpty() {
		r.backend.BindUniformBuffer(r.globals, 0, 0)
		it := sc.Batches()
		for {
			b, ok := it.Next()
			if !ok {
				break
			}
			stats.Batches++
			switch b.Kind {
			case scene.KindShadow, scene.KindQuad:
				r.unified.draw(sc, b, stats)
			case scene.KindGlyph:
				r.glyphs.draw(sc, b, r.config.GlyphAtlas, stats)
			case scene.KindSvg:
				r.svgs.draw(sc, b, r.config.SvgAtlas, stats)
			case scene.KindImage:
				r.images.draw(sc, b, r.config.ImageAtlas, stats)
			}
		}
	}
	r.backend.EndPass()

	if usePost {
		r.post.run(stats)
		r.post.blitToSurface()
	} else if r.post != nil {
		stats.SkippedPasses += len(r.post.passes)
	}

	if err := r.backend.Submit(); err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}
	return nil
}

// Destroy releases all GPU resources. The renderer must not be used after.
func (r *Renderer) Destroy() {
	if r.unified != nil {
		r.unified.destroy()
		r.unified = nil
	}
	for _, p := range []*texturedPipeline{r.glyphs, r.svgs, r.images} {
		if p != nil {
			p.destroy()
		}
	}
	r.glyphs, r.svgs, r.images = nil, nil, nil
	if r.post != nil {
		r.post.destroy()
		r.post = nil
	}
	if r.globals != gpu.InvalidID {
		r.backend.DestroyBuffer(r.globals)
		r.globals = gpu.InvalidID
	}
}
