// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"unsafe"

	"github.com/xmem-go/xmem/internal/simd"
)

// DelayedReadKernel builds the forward stride-1 sequential read kernel and
// its dummy twin used by the loaded-latency driver's background load
// threads, restoring the original's DelayInjectedLoadedLatencyBenchmark:
// each access is followed by delayOps cheap, compiler-visible integer
// mixes that widen the gap between one load and the next without touching
// memory, modeling a configurable amount of non-memory work interleaved
// with the background traffic. ok is false for unsupported chunk widths,
// matching ResolveSequential's unsupported-combination contract.
func DelayedReadKernel(chunk Chunk, delayOps int) (real, dummy SeqFunc, ok bool) {
	switch chunk {
	case Chunk32:
		return buildDelayedReal[uint32](delayOps), buildDelayedDummy[uint32](delayOps), true
	case Chunk64:
		return buildDelayedReal[uint64](delayOps), buildDelayedDummy[uint64](delayOps), true
	case Chunk128:
		if !simd.Supports128() {
			return nil, nil, false
		}
		return buildDelayedReal[Word128](delayOps), buildDelayedDummy[Word128](delayOps), true
	case Chunk256:
		if !simd.Supports256() {
			return nil, nil, false
		}
		return buildDelayedReal[Word256](delayOps), buildDelayedDummy[Word256](delayOps), true
	default:
		return nil, nil, false
	}
}

// delayMix is a cheap, branch-free integer mix with no loop-carried memory
// dependency, standing in for the original's no-op instruction padding
// between consecutive background-load accesses.
func delayMix(v uint64) uint64 {
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	return v
}

func buildDelayedReal[T word](delayOps int) SeqFunc {
	var zero T
	chunkBytes := unsafe.Sizeof(zero)

	return func(start, end unsafe.Pointer) int32 {
		s, e := uintptr(start), uintptr(end)
		if e <= s {
			return 0
		}
		n := (e - s) / chunkBytes

		cursor := s
		var spin uint64 = 1
		for i := uintptr(0); i < n; i++ {
			v := *(*T)(unsafe.Pointer(cursor))
			observe(loWord64(v))
			for d := 0; d < delayOps; d++ {
				spin = delayMix(spin)
			}
			cursor += chunkBytes
		}
		if delayOps > 0 {
			observe(spin)
		}
		return int32(n)
	}
}

// buildDelayedDummy mirrors buildDelayedReal's loop bounds, cursor step,
// and delay padding but never dereferences the cursor, so the worker can
// subtract pure loop-and-delay overhead from the timed real measurement.
func buildDelayedDummy[T word](delayOps int) SeqFunc {
	var zero T
	chunkBytes := unsafe.Sizeof(zero)

	return func(start, end unsafe.Pointer) int32 {
		s, e := uintptr(start), uintptr(end)
		if e <= s {
			return 0
		}
		n := (e - s) / chunkBytes

		cursor := s
		var spin uint64 = 1
		for i := uintptr(0); i < n; i++ {
			cursor += chunkBytes
			for d := 0; d < delayOps; d++ {
				spin = delayMix(spin)
			}
		}
		observe(spin + uint64(cursor))
		return int32(n)
	}
}
