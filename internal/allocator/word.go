// Package allocator implements a single-threaded, single-heap dynamic memory
// allocator: in-band header/footer block layout, a segregated free-list
// index, boundary-tag coalescing, and first-fit placement with splitting.
//
// There is no garbage collection, no thread safety, and no metadata stored
// outside the heap region itself — every field an allocated block needs is
// packed into the header/footer words that surround it, and every free
// block carries its own list linkage inside its own payload.
package allocator

import "unsafe"

// wordSize is the width of one allocator word: a native pointer. Two words
// is the block-size granularity and the minimum useful block size.
const wordSize = unsafe.Sizeof(uintptr(0))

// pairSize is the pointer-pair granularity: the unit every block size is a
// multiple of, and the minimum alignment guaranteed to callers.
const pairSize = 2 * wordSize

// minBlockWords is the smallest block that can hold a header, two link
// words, and a footer.
const minBlockWords = 4

// allocBit is the low-bit allocated flag packed into header/footer words.
const allocBit uintptr = 0x1

// loadWord/storeWord read/write one allocator word at an arbitrary in-heap address.
// The caller is responsible for the address being valid; these are pure
// address-arithmetic primitives and behavior is undefined otherwise (§4.1).
func loadWord(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func storeWord(addr uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = v
}

// pack ORs the allocated flag into size. Callers must ensure size is a
// multiple of two words so the low bit is free.
func pack(size uintptr, alloc bool) uintptr {
	if alloc {
		return size | allocBit
	}

	return size
}

func sizeOf(w uintptr) uintptr {
	return w &^ allocBit
}

func allocOf(w uintptr) bool {
	return w&allocBit != 0
}

// header returns the address of payload's header word.
func header(payload uintptr) uintptr {
	return payload - wordSize
}

// footer returns the address of payload's footer word, given the block's
// total size (header + payload + footer).
func footer(payload uintptr, size uintptr) uintptr {
	return payload + size - 2*wordSize
}

// nextBlock returns the payload address of the block physically following
// payload.
func nextBlock(payload uintptr) uintptr {
	return payload + sizeOf(loadWord(header(payload)))
}

// prevBlock returns the payload address of the block physically preceding
// payload, using that block's footer (the boundary tag) two words back.
func prevBlock(payload uintptr) uintptr {
	prevFooter := payload - 2*wordSize

	return payload - sizeOf(loadWord(prevFooter))
}

// linkNextAddr and linkPrevAddr address the two in-payload link words of a free
// block: word 0 is the forward link, word 1 is the backward link.
func linkNextAddr(freePayload uintptr) uintptr {
	return freePayload
}

func linkPrevAddr(freePayload uintptr) uintptr {
	return freePayload + wordSize
}

func getNext(freePayload uintptr) uintptr {
	return loadWord(linkNextAddr(freePayload))
}

func setNext(freePayload, next uintptr) {
	storeWord(linkNextAddr(freePayload), next)
}

func getPrev(freePayload uintptr) uintptr {
	return loadWord(linkPrevAddr(freePayload))
}

func setPrev(freePayload, prev uintptr) {
	storeWord(linkPrevAddr(freePayload), prev)
}

// writeHeaderFooter packs size/alloc into both boundary tags of payload.
func writeHeaderFooter(payload, size uintptr, alloc bool) {
	w := pack(size, alloc)
	storeWord(header(payload), w)
	storeWord(footer(payload, size), w)
}

// blockSize reads a block's size off its header.
func blockSize(payload uintptr) uintptr {
	return sizeOf(loadWord(header(payload)))
}

// blockAllocated reports whether a block's header marks it allocated.
func blockAllocated(payload uintptr) bool {
	return allocOf(loadWord(header(payload)))
}
