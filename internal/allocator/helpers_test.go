package allocator

import (
	"testing"
	"unsafe"

	"github.com/orizon-lang/uallocbench/internal/provider"
)

// unsafePointerOf converts a raw address back into an unsafe.Pointer for
// tests that stash addresses as uintptr between operations.
func unsafePointerOf(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

// newTestHeap builds a Heap over a fresh SliceProvider of the given size,
// already Init'd.
func newTestHeap(t *testing.T, size uintptr) *Heap {
	t.Helper()

	h := NewHeap()

	if err := h.Init(provider.NewSliceProvider(size)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	return h
}
