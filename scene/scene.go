// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

// Scene is the per-frame container of drawable primitives.
//
// The layout/text pass appends primitives in ascending DrawOrder per list;
// Scene trusts that guarantee and never re-sorts. A Scene is built fresh
// each frame (or Reset and refilled) on the render thread, consumed by the
// renderer, and then discarded or reused. It is not safe for concurrent use.
//
// Example:
//
//	sc := scene.New()
//	sc.AddQuad(scene.Quad{Order: 1, Bounds: bounds, Color: bg})
//	sc.AddGlyph(scene.GlyphInstance{Order: 2, Bounds: gb, UV: uv, Color: fg})
//	it := sc.Batches()
//	for b, ok := it.Next(); ok; b, ok = it.Next() {
//	    // submit batch b
//	}
type Scene struct {
	shadows []Shadow
	quads   []Quad
	glyphs  []GlyphInstance
	svgs    []SvgInstance
	images  []ImageInstance
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Reset clears all primitive lists for reuse without deallocating memory.
func (s *Scene) Reset() {
	s.shadows = s.shadows[:0]
	s.quads = s.quads[:0]
	s.glyphs = s.glyphs[:0]
	s.svgs = s.svgs[:0]
	s.images = s.images[:0]
}

// AddShadow appends a shadow. The caller must append in ascending Order.
func (s *Scene) AddShadow(p Shadow) { s.shadows = append(s.shadows, p) }

// AddQuad appends a quad. The caller must append in ascending Order.
func (s *Scene) AddQuad(p Quad) { s.quads = append(s.quads, p) }

// AddGlyph appends a glyph instance. The caller must append in ascending Order.
func (s *Scene) AddGlyph(p GlyphInstance) { s.glyphs = append(s.glyphs, p) }

// AddSvg appends an SVG instance. The caller must append in ascending Order.
func (s *Scene) AddSvg(p SvgInstance) { s.svgs = append(s.svgs, p) }

// AddImage appends an image instance. The caller must append in ascending Order.
func (s *Scene) AddImage(p ImageInstance) { s.images = append(s.images, p) }

// Shadows returns the shadow list, sorted ascending by Order.
func (s *Scene) Shadows() []Shadow { return s.shadows }

// Quads returns the quad list, sorted ascending by Order.
func (s *Scene) Quads() []Quad { return s.quads }

// Glyphs returns the glyph list, sorted ascending by Order.
func (s *Scene) Glyphs() []GlyphInstance { return s.glyphs }

// SvgInstances returns the SVG list, sorted ascending by Order.
func (s *Scene) SvgInstances() []SvgInstance { return s.svgs }

// Images returns the image list, sorted ascending by Order.
func (s *Scene) Images() []ImageInstance { return s.images }

// Len returns the total primitive count across all five lists.
func (s *Scene) Len() int {
	return len(s.shadows) + len(s.quads) + len(s.glyphs) + len(s.svgs) + len(s.images)
}

// IsEmpty reports whether the scene holds no primitives at all.
// An empty scene produces zero batches and zero draw calls.
func (s *Scene) IsEmpty() bool { return s.Len() == 0 }

// order returns the DrawOrder of element i in the list for kind k.
// Callers must ensure i is in range for that list.
func (s *Scene) order(k Kind, i int) DrawOrder {
	switch k {
	case KindShadow:
		return s.shadows[i].Order
	case KindQuad:
		return s.quads[i].Order
	case KindGlyph:
		return s.glyphs[i].Order
	case KindSvg:
		return s.svgs[i].Order
	case KindImage:
		return s.images[i].Order
	default:
		panic("scene: invalid kind")
	}
}

// listLen returns the length of the list for kind k.
func (s *Scene) listLen(k Kind) int {
	switch k {
	case KindShadow:
		return len(s.shadows)
	case KindQuad:
		return len(s.quads)
	case KindGlyph:
		return len(s.glyphs)
	case KindSvg:
		return len(s.svgs)
	case KindImage:
		return len(s.images)
	default:
		panic("scene: invalid kind")
	}
}
