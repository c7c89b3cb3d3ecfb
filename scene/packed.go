// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Discriminant values stored in UnifiedPrimitive.Kind.
// Must match the WGSL unified shader.
const (
	UnifiedKindQuad   uint32 = 0
	UnifiedKindShadow uint32 = 1
)

// UnifiedSize is the byte size of one UnifiedPrimitive instance.
const UnifiedSize = 128

// UnifiedPrimitive is the fixed 128-byte GPU instance record shared by the
// quad and shadow pipelines. Field offsets must match the instance layout
// declared in the unified WGSL shader exactly; do not reorder fields.
//
// Some fields are dual-purposed by discriminant: BorderColor/BorderWidths
// are meaningful only for quads, BlurRadius/Offset only for shadows. The
// packers zero whichever group does not apply.
type UnifiedPrimitive struct {
	Pos    [2]float32 // offset 0: origin in pixels
	Size   [2]float32 // offset 8: extent in pixels
	Color  [4]float32 // offset 16: primary RGBA
	Radii  [4]float32 // offset 32: corner radii, clockwise from top-left
	Clip   [4]float32 // offset 48: clip rect (x, y, w, h)
	Border [4]float32 // offset 64: border RGBA (quad only)
	Widths [4]float32 // offset 80: border widths t/r/b/l (quad only)
	Blur   float32    // offset 96: blur radius (shadow only)
	Offset [2]float32 // offset 100: shadow x/y offset (shadow only)
	Kind   uint32     // offset 108: UnifiedKindQuad or UnifiedKindShadow
	Order  uint32     // offset 112: draw order, for capture/debug tooling

	_ [3]uint32 // offset 116: pad to 128 bytes
}

// Compile-time guarantee that the record is exactly 128 bytes in every
// build configuration. Both declarations fail to compile if the size drifts
// in either direction.
var (
	_ [UnifiedSize - unsafe.Sizeof(UnifiedPrimitive{})]byte
	_ [unsafe.Sizeof(UnifiedPrimitive{}) - UnifiedSize]byte
)

// PackQuad converts a quad into the unified GPU record. Pure and total:
// shared fields map 1:1, shadow-only fields are zero, and no validation is
// performed; negative sizes or out-of-range colors are upstream invariants.
func PackQuad(q *Quad) UnifiedPrimitive {
	return UnifiedPrimitive{
		Pos:    [2]float32{q.Bounds.X, q.Bounds.Y},
		Size:   [2]float32{q.Bounds.Width, q.Bounds.Height},
		Color:  [4]float32{q.Color.R, q.Color.G, q.Color.B, q.Color.A},
		Radii:  [4]float32{q.Radii.TopLeft, q.Radii.TopRight, q.Radii.BottomRight, q.Radii.BottomLeft},
		Clip:   [4]float32{q.Clip.X, q.Clip.Y, q.Clip.Width, q.Clip.Height},
		Border: [4]float32{q.BorderColor.R, q.BorderColor.G, q.BorderColor.B, q.BorderColor.A},
		Widths: q.BorderWidths,
		Kind:   UnifiedKindQuad,
		Order:  q.Order,
	}
}

// PackShadow converts a shadow into the unified GPU record. Pure and total:
// shared fields map 1:1 and quad-only fields are zero.
func PackShadow(s *Shadow) UnifiedPrimitive {
	return UnifiedPrimitive{
		Pos:    [2]float32{s.Bounds.X, s.Bounds.Y},
		Size:   [2]float32{s.Bounds.Width, s.Bounds.Height},
		Color:  [4]float32{s.Color.R, s.Color.G, s.Color.B, s.Color.A},
		Radii:  [4]float32{s.Radii.TopLeft, s.Radii.TopRight, s.Radii.BottomRight, s.Radii.BottomLeft},
		Clip:   [4]float32{s.Clip.X, s.Clip.Y, s.Clip.Width, s.Clip.Height},
		Blur:   s.BlurRadius,
		Offset: [2]float32{s.OffsetX, s.OffsetY},
		Kind:   UnifiedKindShadow,
		Order:  s.Order,
	}
}

// EncodeTo serializes the record into buf as little-endian 32-bit words,
// the byte layout the GPU reads. buf must be at least UnifiedSize bytes.
func (u *UnifiedPrimitive) EncodeTo(buf []byte) {
	off := 0
	putF32 := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], v)
		off += 4
	}

	putF32(u.Pos[0])
	putF32(u.Pos[1])
	putF32(u.Size[0])
	putF32(u.Size[1])
	for _, v := range u.Color {
		putF32(v)
	}
	for _, v := range u.Radii {
		putF32(v)
	}
	for _, v := range u.Clip {
		putF32(v)
	}
	for _, v := range u.Border {
		putF32(v)
	}
	for _, v := range u.Widths {
		putF32(v)
	}
	putF32(u.Blur)
	putF32(u.Offset[0])
	putF32(u.Offset[1])
	putU32(u.Kind)
	putU32(u.Order)
	putU32(0)
	putU32(0)
	putU32(0)
}

// EncodeUnified serializes prims into a contiguous little-endian byte
// stream, UnifiedSize bytes per record, ready for buffer upload.
func EncodeUnified(prims []UnifiedPrimitive) []byte {
	buf := make([]byte, len(prims)*UnifiedSize)
	for i := range prims {
		prims[i].EncodeTo(buf[i*UnifiedSize:])
	}
	return buf
}
