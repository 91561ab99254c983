package allocator

import "unsafe"

const minBlockBytes = minBlockWords * wordSize

// findFit locates the bucket for asize and walks its forward links for the
// first block whose size is at least asize; on a miss it advances to the
// next higher bucket. This is first-fit within the smallest feasible size
// class, then best-available-class-first across classes. On success the
// chosen block is detached (the bucket index is passed as hint) and its
// payload returned.
func (h *Heap) findFit(asize uintptr) (uintptr, bool) {
	for idx := bucketOf(asize); idx < numClasses; idx++ {
		for cur := h.free.heads[idx]; cur != 0; cur = getNext(cur) {
			if blockSize(cur) >= asize {
				h.free.detach(cur, idx)

				return cur, true
			}
		}
	}

	return 0, false
}

// place carves asize bytes out of block, which is assumed already
// detached. If the remainder is at least the minimum block size it is
// split off as a fresh free block and attached; otherwise the whole block
// is consumed at its original (larger) size.
func (h *Heap) place(block, asize uintptr) {
	total := blockSize(block)
	remain := total - asize

	if remain >= minBlockBytes {
		writeHeaderFooter(block, asize, true)

		remainder := block + asize
		writeHeaderFooter(remainder, remain, false)
		h.free.attach(remainder, unknownHint)

		return
	}

	writeHeaderFooter(block, total, true)
}

// Alloc allocates at least size bytes and returns a pointer-pair-aligned
// payload, or nil if size is zero or the heap cannot grow far enough.
func (h *Heap) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	asize := adjustRequest(size)

	if block, ok := h.findFit(asize); ok {
		h.place(block, asize)

		return unsafe.Pointer(block)
	}

	growBy := asize
	if growBy < h.config.InitialChunk {
		growBy = h.config.InitialChunk
	}

	// Deliberately does not coalesce with any free tail block before
	// growing (§9 open question): the reference behavior grows the heap
	// unconditionally on a miss rather than absorbing a free epilogue
	// neighbour first.
	block := h.extend(growBy / wordSize)
	if block == 0 {
		return nil
	}

	h.place(block, asize)

	return unsafe.Pointer(block)
}

// Free releases a block previously returned by Alloc or Resize. A nil
// payload is a no-op.
func (h *Heap) Free(payload unsafe.Pointer) {
	if payload == nil {
		return
	}

	p := uintptr(payload)

	writeHeaderFooter(p, blockSize(p), false)
	h.coalesce(p)
}

// Resize changes the size of an existing allocation, in priority order:
// shrink in place, merge with a free next block, extend the epilogue,
// merge with a free previous block, or fall back to allocate-copy-free.
// The first satisfying case wins.
func (h *Heap) Resize(payload unsafe.Pointer, size uintptr) unsafe.Pointer {
	if size == 0 {
		h.Free(payload)

		return nil
	}

	if payload == nil {
		return h.Alloc(size)
	}

	p := uintptr(payload)
	asize := adjustRequest(size)
	current := blockSize(p)

	if asize < current {
		return unsafe.Pointer(h.resizeShrink(p, asize))
	}

	if asize == current {
		return payload
	}

	next := nextBlock(p)
	if !blockAllocated(next) && current+blockSize(next) >= asize {
		return unsafe.Pointer(h.resizeMergeNext(p, next, asize))
	}

	if blockSize(next) == 0 {
		if r := h.resizeExtendEpilogue(p, current, asize); r != 0 {
			return unsafe.Pointer(r)
		}

		return nil
	}

	prev := prevBlock(p)
	if !blockAllocated(prev) && current+blockSize(prev) >= asize {
		return unsafe.Pointer(h.resizeMergePrev(p, prev, current, asize))
	}

	return h.resizeFallback(p, size, current)
}

// resizeShrink carves asize out of the front of p, splitting off the
// remainder as free if it's large enough; otherwise leaves p unchanged.
func (h *Heap) resizeShrink(p, asize uintptr) uintptr {
	current := blockSize(p)
	remain := current - asize

	if remain >= minBlockBytes {
		writeHeaderFooter(p, asize, true)

		remainder := p + asize
		writeHeaderFooter(remainder, remain, false)
		h.free.attach(remainder, unknownHint)
	}

	return p
}

// resizeMergeNext absorbs the free block physically following p.
func (h *Heap) resizeMergeNext(p, next, asize uintptr) uintptr {
	combined := blockSize(p) + blockSize(next)

	h.free.detach(next, unknownHint)
	// Stamp the combined size onto p so place (which re-reads blockSize)
	// sees the merged block; place immediately overwrites these tags.
	writeHeaderFooter(p, combined, true)
	h.place(p, asize)

	return p
}

// resizeExtendEpilogue grows the heap by exactly the shortfall and rewrites
// p's boundary tags at the new size. Returns 0 if the provider refuses.
func (h *Heap) resizeExtendEpilogue(p, current, asize uintptr) uintptr {
	shortfall := asize - current

	grown := h.extend(shortfall / wordSize)
	if grown == 0 {
		return 0
	}

	writeHeaderFooter(p, current+blockSize(grown), true)

	return p
}

// resizeMergePrev absorbs the free block physically preceding p, moving
// the live payload backward with an overlap-safe copy. The leftover is not
// split out, matching the reference behavior.
func (h *Heap) resizeMergePrev(p, prev, current, asize uintptr) uintptr {
	h.free.detach(prev, unknownHint)

	combined := blockSize(prev) + current
	copyBytes := current - 2*wordSize // live user bytes only, not the tags

	copyOverlapping(prev, p, copyBytes)
	writeHeaderFooter(prev, combined, true)

	return prev
}

// resizeFallback allocates a fresh block, copies what fits, and frees the
// original. Returns nil without touching the original block if the fresh
// allocation fails.
func (h *Heap) resizeFallback(p uintptr, size, current uintptr) unsafe.Pointer {
	liveBytes := current - 2*wordSize

	newPtr := h.Alloc(size)
	if newPtr == nil {
		return nil
	}

	copyBytes := liveBytes
	if size < copyBytes {
		copyBytes = size
	}

	copyOverlapping(uintptr(newPtr), p, copyBytes)
	h.Free(unsafe.Pointer(p))

	return newPtr
}

// copyOverlapping copies n bytes from src to dst, safe even when the
// regions overlap (the merge-with-previous case moves a payload backward
// into space it may partially occupy).
func copyOverlapping(dst, src uintptr, n uintptr) {
	d := (*[1 << 30]byte)(unsafe.Pointer(dst))[:n:n]
	s := (*[1 << 30]byte)(unsafe.Pointer(src))[:n:n]
	copy(d, s)
}
