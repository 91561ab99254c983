package allocator

import "github.com/orizon-lang/uallocbench/internal/provider"

// initialChunk is the small power-of-two extension requested on a miss
// when the caller's own request would ask for less (the reference value).
const initialChunk = 128

// Heap is one allocator instance: a provider-backed heap plus its
// segregated free-list index. It is not internally synchronized —
// concurrent callers must serialize access themselves (§5).
type Heap struct {
	provider     provider.Provider
	free         freeLists
	firstPayload uintptr
	config       *Config
}

// Config customizes a Heap's behavior at construction time.
type Config struct {
	// InitialChunk overrides the minimum extension size requested when a
	// miss forces the heap to grow.
	InitialChunk uintptr
}

// Option configures a Heap via NewHeap.
type Option func(*Config)

// WithInitialChunk overrides the default 128-byte minimum growth chunk.
func WithInitialChunk(bytes uintptr) Option {
	return func(c *Config) { c.InitialChunk = bytes }
}

func defaultConfig() *Config {
	return &Config{InitialChunk: initialChunk}
}

// NewHeap constructs an uninitialized Heap. Call Init before any other
// operation.
func NewHeap(opts ...Option) *Heap {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Heap{config: cfg}
}

// Init installs the prologue, the epilogue, and empty free lists on top of
// p. Must be called exactly once before any other operation.
func (h *Heap) Init(p provider.Provider) error {
	// Four words: alignment padding, prologue header, prologue footer,
	// epilogue header.
	base, err := p.Sbrk(4 * wordSize)
	if err != nil {
		return err
	}

	h.provider = p
	h.free = freeLists{}

	prologueHeader := base + wordSize
	prologuePayload := prologueHeader + wordSize

	writeHeaderFooter(prologuePayload, pairSize, true)

	// The epilogue is a single sentinel header word, one word past the
	// prologue's footer — not a full header/footer block of its own.
	epilogueHeader := prologuePayload + wordSize
	storeWord(epilogueHeader, pack(0, true))

	h.firstPayload = prologuePayload

	return nil
}

// extend rounds words up to an even count, requests that many words from
// the provider, and lays out a fresh free block ending in a new epilogue.
// It does not coalesce or attach the new block; callers decide. Returns 0
// if the provider refuses.
func (h *Heap) extend(words uintptr) uintptr {
	if words%2 != 0 {
		words++
	}

	size := words * wordSize

	base, err := h.provider.Sbrk(size)
	if err != nil {
		return 0
	}

	// Sbrk's returned address is the old break, which sits exactly one word
	// past the old epilogue header — i.e. it is already the new block's
	// payload pointer, and writeHeaderFooter's header() call lands back on
	// that old epilogue word, overwriting it as this block's header.
	newPayload := base

	writeHeaderFooter(newPayload, size, false)

	newEpilogue := newPayload + size - wordSize
	storeWord(newEpilogue, pack(0, true))

	return newPayload
}

// HeapBytes reports the current extent of the backing memory provider, from
// its low to its high watermark. Callers use this alongside bytes actually
// requested to compute utilization; it is not consulted by any allocator
// operation itself.
func (h *Heap) HeapBytes() uintptr {
	if h.provider.Hi() < h.provider.Lo() {
		return 0
	}

	return h.provider.Hi() - h.provider.Lo() + 1
}

// adjustRequest rounds a user byte count up to a multiple of the
// pointer-pair granularity and adds one pointer-pair of header/footer
// overhead, with a floor of two pointer-pairs (the minimum block size).
func adjustRequest(size uintptr) uintptr {
	if size <= pairSize {
		return 2 * pairSize
	}

	return pairSize * ((size + pairSize + (pairSize - 1)) / pairSize)
}
