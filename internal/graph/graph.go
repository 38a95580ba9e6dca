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

// Package graph builds the pointer-chase permutation that random-access
// kernels follow: every chunk in a slice holds, in its first 64 bits, the
// address of the next chunk to visit, and the links form a single closed
// cycle that visits every chunk exactly once.
package graph

import (
	"math/rand"
	"time"
	"unsafe"

	"github.com/xmem-go/xmem/internal/kernel"
)

// BuildRandomPermutation computes n = len(slice)/chunkBytes, starts from the
// identity visiting order 0..n-1, applies a uniform Fisher-Yates shuffle to
// that order, and then writes into each chunk's first word the address of
// the chunk that follows it in the shuffled order, the last pointing back
// to the first, so the links form one closed cycle over all n chunks. For chunks
// wider than 64 bits, every non-address byte is set to the all-ones
// sentinel. The shuffle is seeded from wall-clock time unless seedOverride
// carries an explicit deterministic seed.
func BuildRandomPermutation(slice []byte, chunk kernel.Chunk, seedOverride ...int64) {
	chunkBytes := chunk.Bytes()
	n := len(slice) / chunkBytes
	if n == 0 {
		return
	}

	var src rand.Source
	if len(seedOverride) > 0 {
		src = rand.NewSource(seedOverride[0])
	} else {
		src = rand.NewSource(timeSeed())
	}
	rng := rand.New(src)

	addrOf := func(slot int) uintptr {
		return uintptr(unsafe.Pointer(&slice[slot*chunkBytes]))
	}

	// Identity order: slot i is visited i-th before shuffling.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	// Fisher-Yates: uniformly permute slot visitation order.
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	// Chain slot order[i] -> order[i+1], closing the cycle back to
	// order[0]. This realizes "follow the permutation" as a walkable
	// linked structure rather than leaving the permutation only as data.
	for i := 0; i < n; i++ {
		from := order[i]
		to := order[(i+1)%n]
		writeChunk(slice, chunkBytes, from, addrOf(to))
	}
}

func writeChunk(slice []byte, chunkBytes, slot int, next uintptr) {
	base := slot * chunkBytes
	*(*uintptr)(unsafe.Pointer(&slice[base])) = next
	for off := 8; off < chunkBytes; off++ {
		slice[base+off] = 0xFF
	}
}

// timeSeed is split out so tests never need to observe wall-clock
// nondeterminism directly; production callers always go through it when no
// explicit seed is supplied.
func timeSeed() int64 {
	return time.Now().UnixNano()
}
