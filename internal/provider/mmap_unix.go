//go:build unix

package provider

import (
	"unsafe"

	"golang.org/x/sys/unix"

	alloerrors "github.com/orizon-lang/uallocbench/internal/errors"
)

// MmapProvider is the production Provider: it reserves a large anonymous
// mapping once via mmap(2) and tracks a program-break offset within it, so
// the base address handed to the allocator never changes no matter how far
// Sbrk advances the break. Pages beyond the break are simply unused and
// untouched — the kernel only backs them with physical memory once
// written, so reserving generously costs address space, not RAM.
type MmapProvider struct {
	data []byte
	base uintptr
	brk  uintptr
	max  uintptr
}

// NewMmapProvider reserves a maxBytes anonymous mapping. maxBytes bounds
// how far the heap can ever grow for the lifetime of this provider.
func NewMmapProvider(maxBytes uintptr) (*MmapProvider, error) {
	data, err := unix.Mmap(-1, 0, int(maxBytes), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, alloerrors.MmapFailed("mmap", err)
	}

	var base uintptr
	if len(data) > 0 {
		base = uintptr(unsafe.Pointer(&data[0]))
	}

	return &MmapProvider{data: data, base: base, max: maxBytes}, nil
}

func (mp *MmapProvider) Sbrk(n uintptr) (uintptr, error) {
	if mp.brk+n > mp.max {
		return 0, alloerrors.ProviderExhausted(mp.brk + n)
	}

	addr := mp.base + mp.brk
	mp.brk += n

	return addr, nil
}

func (mp *MmapProvider) Lo() uintptr { return mp.base }

func (mp *MmapProvider) Hi() uintptr {
	if mp.brk == 0 {
		return mp.base
	}

	return mp.base + mp.brk - 1
}

// Close releases the reservation. Callers are not required to call it; the
// heap is meant to live for the process lifetime (§6), but tests that
// create many providers should release them to avoid exhausting address
// space.
func (mp *MmapProvider) Close() error {
	if len(mp.data) == 0 {
		return nil
	}

	err := unix.Munmap(mp.data)
	mp.data = nil

	if err != nil {
		return alloerrors.MmapFailed("munmap", err)
	}

	return nil
}
