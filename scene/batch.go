// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import "fmt"

// Batch is a maximal contiguous run of same-kind primitives in merged draw
// order. It references a range of the owning Scene's list for Kind; the
// primitives themselves are never copied until packing.
type Batch struct {
	// Kind is the primitive type shared by every element of the batch.
	Kind Kind

	// Start is the index of the first element in the Scene list for Kind.
	Start int

	// Count is the number of elements in the run. Always >= 1.
	Count int
}

// String returns a compact description, e.g. "Quad[3:7)".
func (b Batch) String() string {
	return fmt.Sprintf("%s[%d:%d)", b.Kind, b.Start, b.Start+b.Count)
}

// BatchIterator lazily merges the five per-kind primitive lists of a Scene
// into a single sequence of batches whose concatenation is sorted ascending
// by DrawOrder, with ties broken by Kind (shadow < quad < glyph < svg <
// image) and then by original list position.
//
// The iterator is finite and non-restartable: create a new one per frame.
// Consecutive batches never share a kind: a run is closed only when an
// element from another list must interleave to preserve global order.
type BatchIterator struct {
	scene *Scene

	// cursor holds the next unconsumed index per kind.
	cursor [numKinds]int
}

// Batches returns a fresh batch iterator over the scene.
// The scene must not be mutated while the iterator is in use.
func (s *Scene) Batches() *BatchIterator {
	return &BatchIterator{scene: s}
}

// minHead returns the kind whose current head is the global minimum under
// the (order, kind-priority) comparator, or -1 when every list is exhausted.
func (it *BatchIterator) minHead() int {
	best := -1
	var bestOrder DrawOrder
	for k := 0; k < numKinds; k++ {
		if it.cursor[k] >= it.scene.listLen(Kind(k)) {
			continue
		}
		o := it.scene.order(Kind(k), it.cursor[k])
		// Strict less-than keeps the lowest kind on ties because kinds are
		// scanned in priority order.
		if best < 0 || o < bestOrder {
			best = k
			bestOrder = o
		}
	}
	return best
}

// Next returns the next batch in merged order. The second result is false
// once the iterator is exhausted.
//
// The batch is extended greedily: after consuming the head of the selected
// list, further elements are taken from the same list as long as each is
// still the global minimum, i.e. as long as skipping it could not hide a
// smaller (or equal-order, higher-priority) element in another list.
func (it *BatchIterator) Next() (Batch, bool) {
	k := it.minHead()
	if k < 0 {
		return Batch{}, false
	}

	kind := Kind(k)
	start := it.cursor[k]
	it.cursor[k]++

	for it.cursor[k] < it.scene.listLen(kind) && it.headIsMin(k) {
		it.cursor[k]++
	}

	return Batch{Kind: kind, Start: start, Count: it.cursor[k] - start}, true
}

// headIsMin reports whether the current head of list k precedes every other
// list's head under the (order, kind-priority) comparator.
func (it *BatchIterator) headIsMin(k int) bool {
	o := it.scene.order(Kind(k), it.cursor[k])
	for j := 0; j < numKinds; j++ {
		if j == k || it.cursor[j] >= it.scene.listLen(Kind(j)) {
			continue
		}
		oj := it.scene.order(Kind(j), it.cursor[j])
		if oj < o || (oj == o && j < k) {
			return false
		}
	}
	return true
}
