package trace

import (
	"testing"

	"github.com/orizon-lang/uallocbench/internal/allocator"
	"github.com/orizon-lang/uallocbench/internal/provider"
)

func newTestRunHeap(t *testing.T) *allocator.Heap {
	t.Helper()

	h := allocator.NewHeap()
	if err := h.Init(provider.NewSliceProvider(1 << 20)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	return h
}

func TestRunBasicAllocFreeResize(t *testing.T) {
	h := newTestRunHeap(t)

	script := &Script{Ops: []Op{
		{Kind: OpAlloc, ID: 1, Bytes: 64},
		{Kind: OpAlloc, ID: 2, Bytes: 128},
		{Kind: OpResize, ID: 1, Bytes: 256},
		{Kind: OpFree, ID: 2},
		{Kind: OpFree, ID: 1},
	}}

	stats, err := Run(h, script)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.AllocOps != 2 || stats.FreeOps != 2 || stats.ResizeOps != 1 {
		t.Fatalf("op counts = %+v, want alloc=2 free=2 resize=1", stats)
	}

	if stats.PeakBytesInUse < 256+128 {
		t.Fatalf("PeakBytesInUse = %d, want at least %d", stats.PeakBytesInUse, 256+128)
	}

	if stats.Utilization <= 0 {
		t.Fatalf("Utilization = %f, want > 0", stats.Utilization)
	}
}

func TestRunFreeUnknownIDFails(t *testing.T) {
	h := newTestRunHeap(t)

	script := &Script{Ops: []Op{{Kind: OpFree, ID: 99}}}

	if _, err := Run(h, script); err == nil {
		t.Fatal("Run() should fail freeing an unknown trace id")
	}
}

func TestRunResizeToZeroDropsAllocation(t *testing.T) {
	h := newTestRunHeap(t)

	script := &Script{Ops: []Op{
		{Kind: OpAlloc, ID: 1, Bytes: 64},
		{Kind: OpResize, ID: 1, Bytes: 0},
		{Kind: OpFree, ID: 1},
	}}

	if _, err := Run(h, script); err == nil {
		t.Fatal("freeing an id dropped by a zero-size resize should fail")
	}
}
