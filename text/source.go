// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package text turns strings into renderer inputs: shaped glyph positions
// via go-text/typesetting and rasterized alpha masks packed into a
// scene.BitmapAtlas. It is the in-tree producer for the renderer's glyph
// atlas contract; applications with their own text stack can bypass it and
// feed scene.GlyphInstance lists directly.
package text

import (
	"bytes"
	"fmt"

	tsfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
)

// Source is a parsed font usable by both the shaper and the rasterizer.
// The underlying parsed forms are read-only and safe for concurrent use;
// per-call faces are created on demand.
type Source struct {
	shaping *tsfont.Font
	raster  *opentype.Font
}

// NewSource parses TTF or OTF font data.
func NewSource(data []byte) (*Source, error) {
	face, err := tsfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}
	raster, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font for rasterization: %w", err)
	}
	return &Source{shaping: face.Font, raster: raster}, nil
}
