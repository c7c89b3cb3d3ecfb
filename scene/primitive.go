// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene holds the per-frame primitive lists produced by the layout
// and text passes, and turns them into a globally ordered sequence of
// same-type batches ready for GPU submission.
//
// All primitives are plain read-only structs valid for one frame. A Scene
// owns five lists, one per primitive kind, each independently sorted
// ascending by DrawOrder by its producer. The batch iterator merges the
// five lists into painter's-algorithm order while coalescing maximal
// same-kind runs, so the renderer can issue one draw call per batch.
package scene

import "fmt"

// DrawOrder establishes the total paint order across all primitive kinds in
// a frame. It is assigned externally and used strictly as a sort/merge key.
type DrawOrder = uint32

// Kind identifies a primitive variant. The numeric value doubles as the
// tie-break priority when two primitives share a DrawOrder: shadows paint
// below quads, quads below glyphs, and so on.
type Kind uint8

// Primitive kinds in tie-break priority order.
const (
	KindShadow Kind = iota
	KindQuad
	KindGlyph
	KindSvg
	KindImage

	numKinds = 5
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindShadow:
		return "Shadow"
	case KindQuad:
		return "Quad"
	case KindGlyph:
		return "Glyph"
	case KindSvg:
		return "Svg"
	case KindImage:
		return "Image"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// RGBA is a straight-alpha color with float32 components in [0, 1].
// Range enforcement is the color system's responsibility; scene performs
// no validation.
type RGBA struct {
	R, G, B, A float32
}

// Rect is an axis-aligned rectangle given by origin and size in pixels.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Corners holds per-corner radii in clockwise order from top-left.
type Corners struct {
	TopLeft     float32
	TopRight    float32
	BottomRight float32
	BottomLeft  float32
}

// Quad is a filled, optionally bordered, rounded rectangle.
type Quad struct {
	Order DrawOrder

	Bounds Rect
	Color  RGBA
	Radii  Corners

	// Border widths in CSS order: top, right, bottom, left.
	BorderWidths [4]float32
	BorderColor  RGBA

	Clip Rect
}

// Shadow is a blurred, offset, rounded rectangle painted beneath its owner.
type Shadow struct {
	Order DrawOrder

	Bounds Rect
	Color  RGBA
	Radii  Corners

	BlurRadius float32
	OffsetX    float32
	OffsetY    float32

	Clip Rect
}

// GlyphInstance is one rasterized glyph quad sampling the text atlas.
type GlyphInstance struct {
	Order DrawOrder

	// Bounds is the destination rectangle in pixels.
	Bounds Rect

	// UV is the source region in the atlas, in texels.
	UV Rect

	Color RGBA
	Clip  Rect
}

// SvgInstance is one pre-rasterized SVG quad sampling the SVG atlas.
type SvgInstance struct {
	Order DrawOrder

	Bounds Rect
	UV     Rect
	Color  RGBA
	Clip   Rect
}

// ImageInstance is one image quad sampling the image atlas.
type ImageInstance struct {
	Order DrawOrder

	Bounds Rect
	UV     Rect

	// Opacity multiplies the sampled color. 1 draws the image as-is.
	Opacity float32

	Clip Rect
}
