// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"github.com/gogpu/glaze/scene"
)

// noClip spans far past any realistic viewport.
var noClip = scene.Rect{X: -1e7, Y: -1e7, Width: 2e7, Height: 2e7}

// LineOptions positions and styles a single laid-out line.
type LineOptions struct {
	// X, Y is the pen origin on the baseline, in pixels.
	X, Y float64

	// Size is the font size in pixels.
	Size float64

	Color scene.RGBA

	// Clip bounds the glyphs; zero means unclipped.
	Clip scene.Rect

	// Order is the draw order shared by every glyph of the line, keeping
	// the whole line in one renderer batch.
	Order scene.DrawOrder
}

// Layout drives shaping and rasterization for one font source and feeds
// glyph instances into scenes.
type Layout struct {
	src    *Source
	shaper *Shaper
	cache  *GlyphCache
}

// NewLayout creates a layout over a font source. atlasSize is the glyph
// atlas dimension; zero uses the default.
func NewLayout(src *Source, atlasSize int) *Layout {
	return &Layout{
		src:    src,
		shaper: NewShaper(),
		cache:  NewGlyphCache(src, atlasSize),
	}
}

// Atlas returns the glyph atlas to hand to the renderer.
func (l *Layout) Atlas() *scene.BitmapAtlas { return l.cache.Atlas() }

// AppendLine shapes one line and appends its glyph instances to the scene.
// Returns the advance width in pixels. Control characters and whitespace
// contribute advance but no instances.
func (l *Layout) AppendLine(sc *scene.Scene, content string, opts LineOptions) float64 {
	if content == "" || opts.Size <= 0 {
		return 0
	}

	clip := opts.Clip
	if clip.Width <= 0 || clip.Height <= 0 {
		clip = noClip
	}

	dir := DetectDirection(content)
	glyphs := l.shaper.Shape(l.src, content, opts.Size, dir)
	runes := []rune(content)

	var advance float64
	for _, g := range glyphs {
		advance += g.XAdvance
		if g.Cluster < 0 || g.Cluster >= len(runes) {
			continue
		}
		mask, ok := l.cache.Get(runes[g.Cluster], opts.Size)
		if !ok {
			continue
		}
		sc.AddGlyph(scene.GlyphInstance{
			Order: opts.Order,
			Bounds: scene.Rect{
				X:      float32(opts.X + g.X + mask.BearingX),
				Y:      float32(opts.Y + g.Y + mask.BearingY),
				Width:  float32(mask.Region.Width),
				Height: float32(mask.Region.Height),
			},
			UV: scene.Rect{
				X:      float32(mask.Region.X),
				Y:      float32(mask.Region.Y),
				Width:  float32(mask.Region.Width),
				Height: float32(mask.Region.Height),
			},
			Color: opts.Color,
			Clip:  clip,
		})
	}
	return advance
}

// Measure returns the advance width of content at the given size without
// touching the atlas.
func (l *Layout) Measure(content string, size float64) float64 {
	if content == "" || size <= 0 {
		return 0
	}
	return l.shaper.Advance(l.src, content, size, DetectDirection(content))
}
