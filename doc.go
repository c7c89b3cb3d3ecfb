// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glaze is the per-frame GPU rendering pipeline of a retained-mode
// UI toolkit.
//
// Each frame, an external layout/text pass produces a flat set of drawable
// primitives (shadows, quads, glyphs, SVG instances, images), each tagged
// with a draw order. glaze merges the five independently sorted primitive
// streams into one globally ordered sequence of maximal same-type batches,
// packs them into GPU-layout records, uploads them through ring-buffered
// instance stores, and issues one draw call per batch: painter's algorithm
// with minimal pipeline switching. An optional post-process chain then runs
// zero or more full-screen shader passes over the resolved frame through a
// ping-pong texture pair before the final blit.
//
// # Architecture
//
//	scene/        primitives, draw order, batch iterator, packed GPU record
//	gpu/          backend capability interface (opaque resource handles)
//	backend/wgpu  gpu.Backend implemented on gogpu/wgpu
//	render/       per-type pipelines, instance rings, atlas caches,
//	              frame renderer, post-process chain
//	text/         glyph atlas provider bridging shaped text into the scene
//
// Layout, text shaping, windowing, input, and presentation are external
// collaborators: glaze consumes their outputs at narrow interfaces and owns
// only the path from primitive lists to submitted GPU commands.
//
// # Usage
//
//	be := gpu.NewNoopBackend() // or wgpu.New(...)
//	r, err := render.New(be, render.Config{Width: 800, Height: 600})
//	if err != nil {
//		log.Fatal(err)
//	}
//	var stats render.FrameStats
//	r.RenderFrame(sc, &stats)
package glaze
