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

import "unsafe"

// RandomFunc is a pointer-chase kernel. It follows the chain starting at
// first for randomUnroll hops, writes the last address it touched to
// *lastTouchedOut, and returns the number of hops performed.
type RandomFunc func(first unsafe.Pointer, lastTouchedOut *unsafe.Pointer) int32

// randomUnroll mirrors LATENCY_BENCHMARK_UNROLL_LENGTH: the number of
// dependent loads chased per kernel invocation. 512 repetitions are too
// many to lay out as literal statements, so this engine uses a for loop
// instead - the spec's design notes explicitly sanction generating large
// unroll bodies programmatically rather than hand-duplicating them.
const randomUnroll = 512

// RandomUnroll is the number of dependent loads chased per pointer-chase
// kernel invocation, exported so benchmark drivers can convert passes into
// accesses for the ns/access metric (LATENCY_BENCHMARK_UNROLL_LENGTH).
const RandomUnroll = randomUnroll

// buildRandomReal constructs the real pointer-chase kernel for one
// (rw, chunk) combination. Each hop loads the word at the current address,
// extracts its low 64 bits as the next address, and - for writes - stores
// the value back before advancing, matching the graph builder's contract
// that every chunk's first word already holds a valid next-address pointer.
func buildRandomReal[T word](rw RW) RandomFunc {
	return func(first unsafe.Pointer, lastTouchedOut *unsafe.Pointer) int32 {
		addr := first
		for i := 0; i < randomUnroll; i++ {
			v := *(*T)(addr)
			next := loWord64(v)
			if rw == Write {
				*(*T)(addr) = v
			}
			observe(next)
			addr = unsafe.Pointer(uintptr(next))
		}
		*lastTouchedOut = addr
		return randomUnroll
	}
}

// buildRandomDummy mirrors buildRandomReal's hop count but never
// dereferences memory. Lacking a real load, it has no next address to
// chase, so each hop instead derives the next address with a fixed-cost
// integer mix of the current one, preserving the loop's per-hop overhead
// without touching the backing arena.
func buildRandomDummy[T word](rw RW) RandomFunc {
	return func(first unsafe.Pointer, lastTouchedOut *unsafe.Pointer) int32 {
		addr := uintptr(first)
		for i := 0; i < randomUnroll; i++ {
			addr = mixAddress(addr)
		}
		*lastTouchedOut = unsafe.Pointer(addr)
		observe(uint64(addr))
		return randomUnroll
	}
}

// mixAddress performs an allocation-free, branch-free integer mix of
// comparable cost to the address-extraction arithmetic the real kernel does
// per hop (a load plus a 64-bit truncation), without following any pointer.
func mixAddress(v uintptr) uintptr {
	x := uint64(v)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return uintptr(x)
}
