// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/glaze/internal/cache"
)

// shaderCacheLimit bounds the number of memoized compilations. Pipelines
// are few; this mostly guards against pathological dynamic effect churn.
const shaderCacheLimit = 64

// shaderCache memoizes WGSL to SPIR-V compilation keyed by source text.
type shaderCache struct {
	compiled *cache.Cache[string, []uint32]
}

func newShaderCache() *shaderCache {
	return &shaderCache{compiled: cache.New[string, []uint32](shaderCacheLimit)}
}

func (s *shaderCache) compile(source string) ([]uint32, error) {
	return s.compiled.GetOrCreate(source, func() ([]uint32, error) {
		return compileWGSL(source)
	})
}

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
