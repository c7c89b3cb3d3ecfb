// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"errors"
	"image"
	"image/draw"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glaze/scene"
)

// sizeKey quantizes a pixel size to 26.6 fixed point for cache keying.
type sizeKey int32

type glyphKey struct {
	r    rune
	size sizeKey
}

// GlyphMask is a cached rasterized glyph: its atlas region and the offset
// from the pen position (on the baseline) to the mask's top-left corner.
type GlyphMask struct {
	Region scene.Region

	// BearingX and BearingY position the mask relative to the pen. BearingY
	// is negative for glyphs extending above the baseline.
	BearingX float64
	BearingY float64
}

// GlyphCache rasterizes glyphs into a shared alpha atlas and memoizes the
// resulting regions per rune and size. When the atlas fills up the cache
// resets it wholesale; the atlas generation bump makes the renderer
// re-upload.
//
// GlyphCache is used from the single render thread.
type GlyphCache struct {
	src   *Source
	atlas *scene.BitmapAtlas

	entries map[glyphKey]GlyphMask
	// misses records runes that produced no mask (whitespace, absent
	// glyphs) so they are not re-rasterized every frame.
	misses map[glyphKey]struct{}

	faces map[sizeKey]xfont.Face
}

// NewGlyphCache creates a cache over a fresh alpha atlas of the given
// square dimension. Zero uses scene.DefaultAtlasSize.
func NewGlyphCache(src *Source, atlasSize int) *GlyphCache {
	return &GlyphCache{
		src:     src,
		atlas:   scene.NewBitmapAtlas(scene.BitmapAtlasConfig{Size: atlasSize, BytesPerPixel: 1}),
		entries: make(map[glyphKey]GlyphMask),
		misses:  make(map[glyphKey]struct{}),
		faces:   make(map[sizeKey]xfont.Face),
	}
}

// Atlas returns the backing atlas for renderer consumption.
func (c *GlyphCache) Atlas() *scene.BitmapAtlas { return c.atlas }

// Get returns the cached mask for a rune at a pixel size, rasterizing on
// first use. ok is false for runes without a visible mask.
func (c *GlyphCache) Get(r rune, size float64) (GlyphMask, bool) {
	key := glyphKey{r: r, size: sizeKey(size * 64)}
	if m, ok := c.entries[key]; ok {
		return m, true
	}
	if _, miss := c.misses[key]; miss {
		return GlyphMask{}, false
	}

	m, err := c.rasterize(key, r, size)
	if errors.Is(err, scene.ErrAtlasFull) {
		// Start over with an empty atlas and retry once.
		c.reset()
		m, err = c.rasterize(key, r, size)
	}
	if err != nil {
		c.misses[key] = struct{}{}
		return GlyphMask{}, false
	}
	c.entries[key] = m
	return m, true
}

// reset clears the atlas and all cached regions.
func (c *GlyphCache) reset() {
	c.atlas.Reset()
	clear(c.entries)
	clear(c.misses)
}

var errNoMask = errors.New("text: glyph has no visible mask")

func (c *GlyphCache) rasterize(key glyphKey, r rune, size float64) (GlyphMask, error) {
	face, err := c.face(key.size, size)
	if err != nil {
		return GlyphMask{}, err
	}

	bounds, _, ok := face.GlyphBounds(r)
	if !ok {
		return GlyphMask{}, errNoMask
	}
	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	width := maxX - minX
	height := maxY - minY
	if width <= 0 || height <= 0 {
		return GlyphMask{}, errNoMask
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	dot := fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y}
	dr, maskImg, maskPt, _, ok := face.Glyph(dot, r)
	if !ok {
		return GlyphMask{}, errNoMask
	}
	draw.DrawMask(mask, dr, image.White, image.Point{}, maskImg, maskPt, draw.Over)

	region, err := c.atlas.Allocate(width, height)
	if err != nil {
		return GlyphMask{}, err
	}
	if err := c.atlas.Write(region, alphaPixels(mask)); err != nil {
		return GlyphMask{}, err
	}

	return GlyphMask{
		Region:   region,
		BearingX: float64(minX),
		BearingY: float64(minY),
	}, nil
}

// face returns a memoized rasterization face for the size.
func (c *GlyphCache) face(key sizeKey, size float64) (xfont.Face, error) {
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.src.raster, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}

// alphaPixels returns the tightly packed pixel rows of an alpha image.
func alphaPixels(m *image.Alpha) []byte {
	w := m.Rect.Dx()
	h := m.Rect.Dy()
	if m.Stride == w {
		return m.Pix[:w*h]
	}
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], m.Pix[y*m.Stride:y*m.Stride+w])
	}
	return out
}
