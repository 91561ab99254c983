package trace

import (
	"time"
	"unsafe"

	"github.com/orizon-lang/uallocbench/internal/allocator"
	alloerrors "github.com/orizon-lang/uallocbench/internal/errors"
)

// Stats summarizes one replayed trace.
type Stats struct {
	AllocOps       int
	FreeOps        int
	ResizeOps      int
	PeakBytesInUse int
	HeapBytes      uintptr
	Utilization    float64
	Elapsed        time.Duration
}

// Run replays script against h, mapping each trace id to the payload pointer
// the allocator handed back for it. It stops at the first operation that
// fails against the allocator (a null return, or a free/resize against an
// id with no live allocation).
func Run(h *allocator.Heap, script *Script) (Stats, error) {
	live := make(map[int]unsafe.Pointer, len(script.Ops))
	sizes := make(map[int]int, len(script.Ops))

	var stats Stats

	bytesInUse := 0
	start := time.Now()

	for _, op := range script.Ops {
		switch op.Kind {
		case OpAlloc:
			p := h.Alloc(uintptr(op.Bytes))
			if p == nil {
				return stats, alloerrors.ProviderExhausted(uintptr(op.Bytes))
			}

			live[op.ID] = p
			sizes[op.ID] = op.Bytes
			bytesInUse += op.Bytes
			stats.AllocOps++
		case OpFree:
			p, ok := live[op.ID]
			if !ok {
				return stats, alloerrors.UnknownTraceID(op.ID)
			}

			h.Free(p)
			bytesInUse -= sizes[op.ID]
			delete(live, op.ID)
			delete(sizes, op.ID)
			stats.FreeOps++
		case OpResize:
			p, ok := live[op.ID]
			if !ok {
				return stats, alloerrors.UnknownTraceID(op.ID)
			}

			np := h.Resize(p, uintptr(op.Bytes))
			if np == nil && op.Bytes != 0 {
				return stats, alloerrors.ProviderExhausted(uintptr(op.Bytes))
			}

			bytesInUse += op.Bytes - sizes[op.ID]

			if op.Bytes == 0 {
				delete(live, op.ID)
				delete(sizes, op.ID)
			} else {
				live[op.ID] = np
				sizes[op.ID] = op.Bytes
			}

			stats.ResizeOps++
		}

		if bytesInUse > stats.PeakBytesInUse {
			stats.PeakBytesInUse = bytesInUse
		}
	}

	stats.Elapsed = time.Since(start)
	stats.HeapBytes = h.HeapBytes()

	if stats.HeapBytes > 0 {
		stats.Utilization = float64(stats.PeakBytesInUse) / float64(stats.HeapBytes)
	}

	return stats, nil
}
