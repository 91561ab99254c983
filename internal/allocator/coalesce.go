package allocator

// coalesce consults the allocated flags of block's immediate physical
// neighbours and merges with whichever are free, attaching the result to
// its free list. Returns the payload pointer of the resulting (possibly
// relocated) free block.
func (h *Heap) coalesce(block uintptr) uintptr {
	// The prologue is permanently marked allocated, so a block with no
	// real predecessor still reads prevAlloc == true without needing a
	// special case for the heap origin.
	prevAlloc := blockAllocated(prevBlock(block))
	next := nextBlock(block)
	nextAlloc := blockAllocated(next)

	switch {
	case prevAlloc && nextAlloc:
		// Case 1: both neighbours allocated.
		h.free.attach(block, unknownHint)

		return block

	case prevAlloc && !nextAlloc:
		// Case 2: next is free — absorb it.
		h.free.detach(next, unknownHint)

		size := blockSize(block) + blockSize(next)
		writeHeaderFooter(block, size, false)
		h.free.attach(block, unknownHint)

		return block

	case !prevAlloc && nextAlloc:
		// Case 3: previous is free — absorb block into it.
		prev := prevBlock(block)
		h.free.detach(prev, unknownHint)

		size := blockSize(prev) + blockSize(block)
		writeHeaderFooter(prev, size, false)
		h.free.attach(prev, unknownHint)

		return prev

	default:
		// Case 4: both neighbours free — absorb both into previous.
		prev := prevBlock(block)
		h.free.detach(prev, unknownHint)
		h.free.detach(next, unknownHint)

		size := blockSize(prev) + blockSize(block) + blockSize(next)
		writeHeaderFooter(prev, size, false)
		h.free.attach(prev, unknownHint)

		return prev
	}
}
