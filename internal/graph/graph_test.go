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

package graph

import (
	"testing"
	"unsafe"

	"github.com/xmem-go/xmem/internal/kernel"
)

func alignedBuf(n int) []byte {
	buf := make([]uint64, n/8+2)
	p := unsafe.Pointer(&buf[0])
	return unsafe.Slice((*byte)(p), len(buf)*8)[:n]
}

func TestPermutationCoversEveryChunkOnce(t *testing.T) {
	slice := alignedBuf(8 * 64)
	BuildRandomPermutation(slice, kernel.Chunk64, 42)

	n := len(slice) / 8
	base := uintptr(unsafe.Pointer(&slice[0]))

	visited := make([]bool, n)
	addr := base
	for i := 0; i < n; i++ {
		slot := int((addr - base) / 8)
		if slot < 0 || slot >= n {
			t.Fatalf("hop %d left the slice: slot=%d", i, slot)
		}
		if visited[slot] {
			t.Fatalf("slot %d visited twice before completing a full cycle (hop %d)", slot, i)
		}
		visited[slot] = true
		addr = *(*uintptr)(unsafe.Pointer(&slice[slot*8]))
	}
	// Having walked exactly n hops without repetition, the next hop must
	// return to the starting slot, confirming a closed cycle covering all n.
	if addr != base {
		t.Fatalf("after %d hops did not return to start: got slot %d", n, int((addr-base)/8))
	}
	for i, v := range visited {
		if !v {
			t.Fatalf("chunk %d never visited", i)
		}
	}
}

func TestPermutationSentinelForWideChunks(t *testing.T) {
	slice := alignedBuf(32 * 4)
	BuildRandomPermutation(slice, kernel.Chunk256, 7)

	for slot := 0; slot < 4; slot++ {
		base := slot * 32
		for off := 8; off < 32; off++ {
			if slice[base+off] != 0xFF {
				t.Fatalf("slot %d byte %d = %#x, want sentinel 0xFF", slot, off, slice[base+off])
			}
		}
	}
}

func TestPermutationDeterministicWithSeed(t *testing.T) {
	a := alignedBuf(8 * 32)
	b := alignedBuf(8 * 32)
	BuildRandomPermutation(a, kernel.Chunk64, 123)
	BuildRandomPermutation(b, kernel.Chunk64, 123)

	base := func(s []byte) uintptr { return uintptr(unsafe.Pointer(&s[0])) }
	for slot := 0; slot < 32; slot++ {
		pa := *(*uintptr)(unsafe.Pointer(&a[slot*8])) - base(a)
		pb := *(*uintptr)(unsafe.Pointer(&b[slot*8])) - base(b)
		if pa != pb {
			t.Fatalf("slot %d diverged between identically seeded runs: %d vs %d", slot, pa, pb)
		}
	}
}

func TestPermutationEmptySliceIsNoop(t *testing.T) {
	BuildRandomPermutation(nil, kernel.Chunk64, 1)
}
