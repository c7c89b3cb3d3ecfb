// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "fmt"

// FrameStats accumulates per-frame rendering counters. The renderer threads
// a single accumulator by reference through the frame; callers read it after
// RenderFrame and may reuse it across frames (it is reset on entry).
type FrameStats struct {
	// Batches is the number of batches produced by the scene merge.
	Batches int

	// DrawCalls is the number of instanced draws issued.
	DrawCalls int

	// Instances is the total primitive instance count across all draws.
	Instances int

	// RingUploads counts payloads written into ring buffer slots.
	RingUploads int

	// EphemeralUploads counts payloads staged through transient memory.
	EphemeralUploads int

	// BytesUploaded is the total instance payload size in bytes.
	BytesUploaded int

	// AtlasCreates counts atlas texture (re)creations.
	AtlasCreates int

	// AtlasUploads counts full atlas bitmap uploads.
	AtlasUploads int

	// PostPasses counts post-process passes executed.
	PostPasses int

	// SkippedBatches counts batches dropped after an upload failure.
	SkippedBatches int

	// SkippedPasses counts post-process passes skipped for missing targets.
	SkippedPasses int
}

// Reset zeroes all counters.
func (s *FrameStats) Reset() { *s = FrameStats{} }

// String returns a compact single-line summary for logging.
func (s *FrameStats) String() string {
	return fmt.Sprintf("batches=%d draws=%d instances=%d uploads=%d/%d bytes=%d atlas=%d/%d post=%d skipped=%d/%d",
		s.Batches, s.DrawCalls, s.Instances,
		s.RingUploads, s.EphemeralUploads, s.BytesUploaded,
		s.AtlasCreates, s.AtlasUploads,
		s.PostPasses, s.SkippedBatches, s.SkippedPasses)
}
