// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Direction is the horizontal progression of a text run.
type Direction uint8

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

// ShapedGlyph is one positioned glyph produced by shaping. Positions are
// pen-relative pixels; Cluster indexes the rune in the input that produced
// the glyph.
type ShapedGlyph struct {
	Cluster  int
	X, Y     float64
	XAdvance float64
}

// Shaper shapes text with HarfBuzz-level OpenType support: kerning,
// ligatures and complex scripts.
//
// Shaper is safe for concurrent use. HarfbuzzShaper instances carry mutable
// buffers and are pooled; per-call font faces are created from the
// thread-safe parsed font.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper backed by go-text/typesetting.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// Shape converts a single-direction run into positioned glyphs at the given
// pixel size. Use DetectDirection to split or classify mixed text first.
func (s *Shaper) Shape(src *Source, content string, size float64, dir Direction) []ShapedGlyph {
	if content == "" || src == nil {
		return nil
	}

	runes := []rune(content)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: mapDirection(dir),
		Face:      tsfont.NewFace(src.shaping),
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	if len(output.Glyphs) == 0 {
		return nil
	}
	result := make([]ShapedGlyph, len(output.Glyphs))
	var x float64
	for i, g := range output.Glyphs {
		adv := fixedToFloat(g.Advance)
		result[i] = ShapedGlyph{
			Cluster:  g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return result
}

// Advance returns the shaped width of the run in pixels.
func (s *Shaper) Advance(src *Source, content string, size float64, dir Direction) float64 {
	var w float64
	for _, g := range s.Shape(src, content, size, dir) {
		w += g.XAdvance
	}
	return w
}

// DetectDirection resolves the paragraph direction of mixed text using the
// Unicode bidirectional algorithm.
func DetectDirection(content string) Direction {
	p := bidi.Paragraph{}
	if _, err := p.SetString(content); err != nil {
		return DirectionLTR
	}
	if p.Direction() == bidi.RightToLeft {
		return DirectionRTL
	}
	return DirectionLTR
}

func mapDirection(d Direction) di.Direction {
	if d == DirectionRTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64.0 }
