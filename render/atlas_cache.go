// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/scene"
)

// AtlasCache mirrors a CPU-side atlas bitmap into a GPU texture, re-uploading
// only when the atlas generation changes. One cache serves one atlas consumer
// (glyph, svg or image pipeline).
type AtlasCache struct {
	backend gpu.Backend
	format  gpu.TextureFormat
	label   string

	texture    gpu.TextureID
	size       uint32
	generation uint32
}

// NewAtlasCache creates a cache that uploads atlas bitmaps in the given
// format. No GPU resources are allocated until the first Sync.
func NewAtlasCache(backend gpu.Backend, format gpu.TextureFormat, label string) *AtlasCache {
	return &AtlasCache{
		backend: backend,
		format:  format,
		label:   label,
	}
}

// Texture returns the current GPU texture, or the invalid ID before the
// first successful Sync.
func (c *AtlasCache) Texture() gpu.TextureID { return c.texture }

// Sync brings the GPU texture up to date with the atlas.
//
// When a texture exists at the right size and the generation matches, Sync
// is a no-op. A size change recreates the texture; any generation change
// re-uploads the full bitmap. At most one create and one upload happen per
// atlas generation.
//
// On failure the previous texture (possibly stale, possibly invalid) stays
// in place and is returned alongside the error; the stale content keeps
// rendering until a later Sync succeeds.
func (c *AtlasCache) Sync(atlas scene.Atlas, stats *FrameStats) (gpu.TextureID, error) {
	size := atlas.Size()
	gen := atlas.Generation()

	if c.texture != gpu.InvalidID && c.size == size && c.generation == gen {
		return c.texture, nil
	}

	if c.texture == gpu.InvalidID || c.size != size {
		tex, err := c.backend.CreateTexture(size, size, c.format,
			gpu.TextureUsageCopyDst|gpu.TextureUsageBinding, c.label)
		if err != nil {
			return c.texture, fmt.Errorf("create %q texture %dx%d: %w", c.label, size, size, err)
		}
		if c.texture != gpu.InvalidID {
			c.backend.DestroyTexture(c.texture)
		}
		c.texture = tex
		c.size = size
		stats.AtlasCreates++
	}

	err := c.backend.UploadTextureRegion(c.texture,
		gpu.Region{Width: size, Height: size}, atlas.Data())
	if err != nil {
		// Leave the generation behind so the next Sync retries the upload.
		return c.texture, fmt.Errorf("upload %q atlas generation %d: %w", c.label, gen, err)
	}

	c.generation = gen
	stats.AtlasUploads++
	return c.texture, nil
}

// Destroy releases the texture.
func (c *AtlasCache) Destroy() {
	if c.texture != gpu.InvalidID {
		c.backend.DestroyTexture(c.texture)
		c.texture = gpu.InvalidID
		c.size = 0
		c.generation = 0
	}
}
