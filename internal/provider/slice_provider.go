package provider

import (
	"unsafe"

	alloerrors "github.com/orizon-lang/uallocbench/internal/errors"
)

// SliceProvider is a portable, syscall-free Provider backed by one
// pre-sized Go byte slice. The slice is allocated once at its maximum
// capacity and only its logical length — the break — ever advances, so the
// base address the allocator has already seen never moves. It is the
// non-unix fallback and the provider used by the allocator package's own
// tests.
type SliceProvider struct {
	backing []byte
	base    uintptr
	brk     uintptr // bytes committed so far, relative to base
	max     uintptr
}

// NewSliceProvider reserves maxBytes of backing storage up front.
func NewSliceProvider(maxBytes uintptr) *SliceProvider {
	backing := make([]byte, maxBytes)

	var base uintptr
	if maxBytes > 0 {
		base = uintptr(unsafe.Pointer(&backing[0]))
	}

	return &SliceProvider{backing: backing, base: base, max: maxBytes}
}

func (sp *SliceProvider) Sbrk(n uintptr) (uintptr, error) {
	if sp.brk+n > sp.max {
		return 0, alloerrors.ProviderExhausted(sp.brk + n)
	}

	addr := sp.base + sp.brk
	sp.brk += n

	return addr, nil
}

func (sp *SliceProvider) Lo() uintptr { return sp.base }

func (sp *SliceProvider) Hi() uintptr {
	if sp.brk == 0 {
		return sp.base
	}

	return sp.base + sp.brk - 1
}
