// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/glaze/gpu"
)

const (
	// ringDepth is the number of per-frame buffer slots. Three slots exceed
	// the maximum frames-in-flight of the supported backends (double or
	// triple buffered swapchains), so by the time a slot comes around again
	// the GPU has finished reading it. This coupling is an assumption, not
	// a synchronized guarantee: there is no fence per slot.
	ringDepth = 3

	// ephemeralThreshold is the payload size below which Upload stages data
	// through transient memory instead of a ring slot. Small payloads churn
	// write offsets without amortizing the persistent allocation.
	ephemeralThreshold = 4096

	// defaultInstanceCapacity is the initial byte capacity of each ring slot.
	defaultInstanceCapacity = 64 * 1024
)

// InstanceStore manages a ring of GPU vertex buffers holding per-instance
// records. Each frame writes into one slot, selected by a modulo frame
// counter; within a frame, uploads occupy disjoint byte ranges of that slot.
//
// Slots grow by doubling from the initial capacity, so a slot's capacity is
// always initial*2^k for some k. Growth allocates a fresh buffer; the retired
// buffer stays alive until its slot's next PrepareFrame, because draws
// recorded earlier in the frame still reference it.
type InstanceStore struct {
	backend gpu.Backend
	label   string

	initialCapacity uint64
	buffers         [ringDepth]gpu.BufferID
	capacities      [ringDepth]uint64

	frameIndex  int
	writeOffset uint64

	// retired holds buffers replaced by growth, per slot. They are destroyed
	// when the slot is reused, ringDepth frames later.
	retired [ringDepth][]gpu.BufferID
}

// NewInstanceStore creates a store with lazily allocated slots.
// initialCapacity of zero selects the default.
func NewInstanceStore(backend gpu.Backend, initialCapacity uint64, label string) *InstanceStore {
	if initialCapacity == 0 {
		initialCapacity = defaultInstanceCapacity
	}
	return &InstanceStore{
		backend:         backend,
		label:           label,
		initialCapacity: initialCapacity,
	}
}

// PrepareFrame advances the ring to the next slot and resets the write
// offset. Buffers retired from the new slot in an earlier cycle are
// destroyed here, after the ring has wrapped once.
func (s *InstanceStore) PrepareFrame() {
	s.frameIndex = (s.frameIndex + 1) % ringDepth
	s.writeOffset = 0

	for _, buf := range s.retired[s.frameIndex] {
		s.backend.DestroyBuffer(buf)
	}
	s.retired[s.frameIndex] = s.retired[s.frameIndex][:0]
}

// FrameIndex returns the active ring slot.
func (s *InstanceStore) FrameIndex() int { return s.frameIndex }

// WriteOffset returns the next free byte offset in the active slot.
func (s *InstanceStore) WriteOffset() uint64 { return s.writeOffset }

// Capacity returns the byte capacity of the active slot.
func (s *InstanceStore) Capacity() uint64 { return s.capacities[s.frameIndex] }

// Upload places data on the GPU and returns the buffer and byte offset to
// bind for drawing.
//
// Payloads under the ephemeral threshold go through the backend's transient
// staging path and do not consume ring capacity. Larger payloads are written
// at the current offset of the active slot, growing the slot first if
// needed. A growth or write failure leaves the store unchanged; the caller
// drops the batch for this frame.
func (s *InstanceStore) Upload(data []byte) (gpu.BufferID, uint64, error) {
	n := uint64(len(data))
	if n == 0 {
		return gpu.InvalidID, 0, nil
	}

	if n < ephemeralThreshold {
		buf, err := s.backend.UploadEphemeral(data)
		if err != nil {
			return gpu.InvalidID, 0, fmt.Errorf("ephemeral upload of %d bytes: %w", n, err)
		}
		return buf, 0, nil
	}

	return s.uploadRing(data)
}

// uploadRing writes data into the active ring slot at the current offset,
// growing the slot first if needed.
func (s *InstanceStore) uploadRing(data []byte) (gpu.BufferID, uint64, error) {
	n := uint64(len(data))
	if err := s.ensureCapacity(s.writeOffset + n); err != nil {
		return gpu.InvalidID, 0, err
	}

	slot := s.frameIndex
	offset := s.writeOffset
	if err := s.backend.WriteBuffer(s.buffers[slot], offset, data); err != nil {
		return gpu.InvalidID, 0, fmt.Errorf("write %d bytes at offset %d: %w", n, offset, err)
	}
	s.writeOffset += n
	return s.buffers[slot], offset, nil
}

// ensureCapacity grows the active slot to hold at least needed bytes.
// The new capacity is the smallest initial*2^k that suffices.
func (s *InstanceStore) ensureCapacity(needed uint64) error {
	slot := s.frameIndex
	if s.buffers[slot] != gpu.InvalidID && s.capacities[slot] >= needed {
		return nil
	}

	capacity := s.initialCapacity
	for capacity < needed {
		capacity *= 2
	}

	buf, err := s.backend.CreateBuffer(capacity,
		gpu.BufferUsageVertex|gpu.BufferUsageCopyDst, s.label)
	if err != nil {
		return fmt.Errorf("grow %q to %d bytes: %w", s.label, capacity, err)
	}

	if old := s.buffers[slot]; old != gpu.InvalidID {
		s.retired[slot] = append(s.retired[slot], old)
	}
	s.buffers[slot] = buf
	s.capacities[slot] = capacity
	return nil
}

// Destroy releases all live and retired buffers.
func (s *InstanceStore) Destroy() {
	for i := 0; i < ringDepth; i++ {
		if s.buffers[i] != gpu.InvalidID {
			s.backend.DestroyBuffer(s.buffers[i])
			s.buffers[i] = gpu.InvalidID
			s.capacities[i] = 0
		}
		for _, buf := range s.retired[i] {
			s.backend.DestroyBuffer(buf)
		}
		s.retired[i] = nil
	}
}
