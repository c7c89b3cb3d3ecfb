// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"errors"
	"fmt"
)

// Atlas errors.
var (
	// ErrAtlasFull is returned when the atlas cannot fit the requested region.
	ErrAtlasFull = errors.New("scene: atlas is full")

	// ErrRegionOutOfBounds is returned when a write falls outside the atlas.
	ErrRegionOutOfBounds = errors.New("scene: region is outside atlas bounds")

	// ErrRegionSizeMismatch is returned when pixel data does not match the
	// region dimensions.
	ErrRegionSizeMismatch = errors.New("scene: pixel data does not match region size")
)

// Default atlas settings.
const (
	// DefaultAtlasSize is the default atlas dimension (1024x1024).
	DefaultAtlasSize = 1024

	// MinAtlasSize is the minimum atlas dimension (256x256).
	MinAtlasSize = 256

	// DefaultShelfPadding is the padding between packed regions.
	DefaultShelfPadding = 1
)

// Atlas is the bitmap cache contract consumed by the renderer's atlas
// texture caches. Implementations are external collaborators (text, SVG and
// image caches); BitmapAtlas is the in-tree implementation.
//
// Generation is a monotonic counter bumped on every content mutation; the
// renderer re-uploads the bitmap to the GPU at most once per generation.
type Atlas interface {
	// Size returns the square dimension in pixels.
	Size() uint32

	// Generation returns the current content generation.
	Generation() uint32

	// Data returns the row-major bitmap. The slice is owned by the atlas
	// and valid until the next mutation.
	Data() []byte
}

// Region is a rectangular area inside an atlas, in texels.
type Region struct {
	X, Y          int
	Width, Height int
}

// IsValid reports whether the region has positive dimensions.
func (r Region) IsValid() bool { return r.Width > 0 && r.Height > 0 }

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is a horizontal strip in the shelf-packing allocator.
type shelf struct {
	y      int // top Y coordinate
	height int // height of the tallest item so far
	nextX  int // next free X position
}

// BitmapAtlasConfig configures a BitmapAtlas.
type BitmapAtlasConfig struct {
	// Size is the square dimension in pixels. Defaults to DefaultAtlasSize,
	// clamped up to MinAtlasSize.
	Size int

	// BytesPerPixel is the pixel stride: 1 for alpha masks (text), 4 for
	// RGBA (svg/image). Defaults to 1.
	BytesPerPixel int

	// Padding is the spacing between packed regions. Defaults to
	// DefaultShelfPadding.
	Padding int
}

// BitmapAtlas is a CPU-side bitmap cache with shelf-packed region
// allocation and a generation counter. It implements Atlas.
//
// The shelf-packing algorithm divides the bitmap into horizontal shelves;
// each new rectangle is placed on the current shelf if it fits, or opens a
// new shelf below. Regions are never freed individually; callers Reset the
// whole atlas when it fills up.
//
// BitmapAtlas is used from the single render thread and performs no
// internal locking.
type BitmapAtlas struct {
	size          int
	bytesPerPixel int
	padding       int

	data       []byte
	generation uint32

	shelves []shelf
}

// NewBitmapAtlas creates an atlas with the given configuration.
func NewBitmapAtlas(config BitmapAtlasConfig) *BitmapAtlas {
	size := config.Size
	if size <= 0 {
		size = DefaultAtlasSize
	}
	if size < MinAtlasSize {
		size = MinAtlasSize
	}

	bpp := config.BytesPerPixel
	if bpp <= 0 {
		bpp = 1
	}

	padding := config.Padding
	if padding < 0 {
		padding = DefaultShelfPadding
	}

	return &BitmapAtlas{
		size:          size,
		bytesPerPixel: bpp,
		padding:       padding,
		data:          make([]byte, size*size*bpp),
		generation:    1,
		shelves:       make([]shelf, 0, 16),
	}
}

// Size returns the square dimension in pixels.
func (a *BitmapAtlas) Size() uint32 { return uint32(a.size) }

// Generation returns the current content generation.
func (a *BitmapAtlas) Generation() uint32 { return a.generation }

// Data returns the row-major bitmap.
func (a *BitmapAtlas) Data() []byte { return a.data }

// BytesPerPixel returns the pixel stride of the bitmap.
func (a *BitmapAtlas) BytesPerPixel() int { return a.bytesPerPixel }

// Allocate finds space for a width x height region.
// Returns ErrAtlasFull when no shelf can accommodate it.
func (a *BitmapAtlas) Allocate(width, height int) (Region, error) {
	if width <= 0 || height <= 0 || width > a.size || height > a.size {
		return Region{}, ErrAtlasFull
	}

	// Try the existing shelves first.
	for i := range a.shelves {
		s := &a.shelves[i]
		if height <= s.height && s.nextX+width <= a.size {
			r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
			s.nextX += width + a.padding
			return r, nil
		}
	}

	// Open a new shelf below the last one.
	y := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height + a.padding
	}
	if y+height > a.size {
		return Region{}, ErrAtlasFull
	}

	a.shelves = append(a.shelves, shelf{y: y, height: height, nextX: width + a.padding})
	return Region{X: 0, Y: y, Width: width, Height: height}, nil
}

// Write copies pixel data into a previously allocated region and bumps the
// generation. pixels must hold exactly Width*Height*BytesPerPixel bytes in
// row-major order.
func (a *BitmapAtlas) Write(r Region, pixels []byte) error {
	if r.X < 0 || r.Y < 0 || r.X+r.Width > a.size || r.Y+r.Height > a.size {
		return ErrRegionOutOfBounds
	}
	if len(pixels) != r.Width*r.Height*a.bytesPerPixel {
		return fmt.Errorf("%w: region %dx%d needs %d bytes, got %d",
			ErrRegionSizeMismatch, r.Width, r.Height,
			r.Width*r.Height*a.bytesPerPixel, len(pixels))
	}

	rowBytes := r.Width * a.bytesPerPixel
	stride := a.size * a.bytesPerPixel
	for row := 0; row < r.Height; row++ {
		dst := (r.Y+row)*stride + r.X*a.bytesPerPixel
		copy(a.data[dst:dst+rowBytes], pixels[row*rowBytes:(row+1)*rowBytes])
	}

	a.generation++
	return nil
}

// Reset clears all allocations and zeroes the bitmap, bumping the
// generation so consumers re-upload.
func (a *BitmapAtlas) Reset() {
	clear(a.data)
	a.shelves = a.shelves[:0]
	a.generation++
}

var _ Atlas = (*BitmapAtlas)(nil)
