// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/glaze/gpu"
)

// PostEffect is one fullscreen post-process pass. The shader follows the
// blit shader's binding layout: source texture at binding 1, sampler at
// binding 2, drawn as a single fullscreen triangle.
type PostEffect struct {
	// Name identifies the pass in logs.
	Name string

	// ShaderSource is the WGSL source with vs_main/fs_main entry points.
	ShaderSource string
}

// postPass is one compiled effect.
type postPass struct {
	name     string
	pipeline gpu.PipelineID
}

// postProcess owns the ping-pong offscreen targets and the ordered pass
// pipelines. The scene renders into front; every pass reads front, writes
// back and swaps, so front always holds the latest composed image. The
// final blit to the surface therefore always reads front.
type postProcess struct {
	backend gpu.Backend
	format  gpu.TextureFormat

	front, back   gpu.TextureID
	width, height uint32

	passes  []postPass
	blit    gpu.PipelineID
	sampler gpu.SamplerID
}

// newPostProcess compiles the pass and blit pipelines and allocates the
// ping-pong targets. Pipeline or sampler failure aborts construction;
// target allocation failure does not, it just disables passes until a
// resize succeeds.
func newPostProcess(backend gpu.Backend, format gpu.TextureFormat, effects []PostEffect, width, height uint32) (*postProcess, error) {
	p := &postProcess{
		backend: backend,
		format:  format,
	}

	for _, e := range effects {
		pipeline, err := backend.CreatePipeline(gpu.PipelineDesc{
			Label:        "glaze/post-" + e.Name,
			ShaderSource: e.ShaderSource,
			Bindings:     gpu.BindingTexture | gpu.BindingSampler,
			TargetFormat: format,
		})
		if err != nil {
			p.destroy()
			return nil, fmt.Errorf("post pass %q: %w", e.Name, err)
		}
		p.passes = append(p.passes, postPass{name: e.Name, pipeline: pipeline})
	}

	blit, err := backend.CreatePipeline(gpu.PipelineDesc{
		Label:        "glaze/post-blit",
		ShaderSource: blitShaderSource,
		Bindings:     gpu.BindingTexture | gpu.BindingSampler,
		TargetFormat: format,
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("post blit: %w", err)
	}
	p.blit = blit

	sampler, err := backend.CreateSampler(gpu.SamplerDesc{Label: "glaze/post", Linear: false})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("post sampler: %w", err)
	}
	p.sampler = sampler

	p.resize(width, height)
	return p, nil
}

// enabled reports whether the offscreen front target exists, i.e. the scene
// can render offscreen and the chain can run.
func (p *postProcess) enabled() bool { return p.front != gpu.InvalidID }

// resize recreates the ping-pong targets. On allocation failure the chain
// is disabled for subsequent frames and the scene renders straight to the
// surface.
func (p *postProcess) resize(width, height uint32) {
	p.destroyTargets()
	p.width = width
	p.height = height

	usage := gpu.TextureUsageRenderAttachment | gpu.TextureUsageBinding
	front, err := p.backend.CreateTexture(width, height, p.format, usage, "glaze/post-front")
	if err != nil {
		logger().Warn("post-process front target allocation failed", "error", err)
		return
	}
	back, err := p.backend.CreateTexture(width, height, p.format, usage, "glaze/post-back")
	if err != nil {
		logger().Warn("post-process back target allocation failed", "error", err)
		p.backend.DestroyTexture(front)
		return
	}
	p.front = front
	p.back = back
}

// run executes the pass chain. Each pass needs both targets; without them
// the pass is skipped and the current front carries through.
func (p *postProcess) run(stats *FrameStats) {
	for _, pass := range p.passes {
		if p.front == gpu.InvalidID || p.back == gpu.InvalidID {
			stats.SkippedPasses++
			logger().Debug("skipping post pass without targets", "pass", pass.name)
			continue
		}
		p.backend.BeginPass(p.back)
		p.backend.BindPipeline(pass.pipeline)
		p.backend.BindTexture(p.front, 1)
		p.backend.BindSampler(p.sampler, 2)
		p.backend.Draw(3, 1)
		p.backend.EndPass()
		p.front, p.back = p.back, p.front
		stats.PostPasses++
	}
}

// blitToSurface copies the latest composed image to the presentable
// surface.
func (p *postProcess) blitToSurface() {
	p.backend.BeginPass(gpu.InvalidID)
	p.backend.BindPipeline(p.blit)
	p.backend.BindTexture(p.front, 1)
	p.backend.BindSampler(p.sampler, 2)
	p.backend.Draw(3, 1)
	p.backend.EndPass()
}

func (p *postProcess) destroyTargets() {
	if p.front != gpu.InvalidID {
		p.backend.DestroyTexture(p.front)
		p.front = gpu.InvalidID
	}
	if p.back != gpu.InvalidID {
		p.backend.DestroyTexture(p.back)
		p.back = gpu.InvalidID
	}
}

func (p *postProcess) destroy() {
	p.destroyTargets()
	for _, pass := range p.passes {
		p.backend.DestroyPipeline(pass.pipeline)
	}
	p.passes = nil
	if p.blit != gpu.InvalidID {
		p.backend.DestroyPipeline(p.blit)
		p.blit = gpu.InvalidID
	}
	if p.sampler != gpu.InvalidID {
		p.backend.DestroySampler(p.sampler)
		p.sampler = gpu.InvalidID
	}
}
