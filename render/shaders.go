// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import _ "embed"

// Embedded WGSL shader sources, compiled into pipelines at renderer
// construction time.

//go:embed shaders/unified.wgsl
var unifiedShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/textured.wgsl
var texturedShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

//go:embed shaders/grayscale.wgsl
var grayscaleShaderSource string

// BlitShaderSource returns the fullscreen blit shader, usable as a template
// for custom post-process effects.
func BlitShaderSource() string { return blitShaderSource }

// GrayscaleEffect returns a ready-made grayscale post-process effect.
func GrayscaleEffect() PostEffect {
	return PostEffect{Name: "grayscale", ShaderSource: grayscaleShaderSource}
}
