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

// SequentialSpec identifies one sequential kernel combination.
type SequentialSpec struct {
	RW     RW
	Chunk  Chunk
	Stride Stride
}

// SequentialPair is the real/dummy kernel pair for one SequentialSpec.
type SequentialPair struct {
	Real  SeqFunc
	Dummy SeqFunc
}

// RandomSpec identifies one random pointer-chase kernel combination.
type RandomSpec struct {
	RW    RW
	Chunk Chunk
}

// RandomPair is the real/dummy kernel pair for one RandomSpec.
type RandomPair struct {
	Real  RandomFunc
	Dummy RandomFunc
}

var sequentialTable = map[SequentialSpec]SequentialPair{}
var randomTable = map[RandomSpec]RandomPair{}

func registerSequential[T word](chunk Chunk) {
	for _, rw := range []RW{Read, Write} {
		for _, stride := range []Stride{
			StrideNeg16, StrideNeg8, StrideNeg4, StrideNeg2, StrideNeg1,
			Stride1, Stride2, Stride4, Stride8, Stride16,
		} {
			dir := stride.Direction()
			spec := SequentialSpec{RW: rw, Chunk: chunk, Stride: stride}
			sequentialTable[spec] = SequentialPair{
				Real:  buildSequentialReal[T](rw, dir, stride.Abs()),
				Dummy: buildSequentialDummy[T](rw, dir, stride.Abs()),
			}
		}
	}
}

func registerRandom[T word](chunk Chunk) {
	for _, rw := range []RW{Read, Write} {
		spec := RandomSpec{RW: rw, Chunk: chunk}
		randomTable[spec] = RandomPair{
			Real:  buildRandomReal[T](rw),
			Dummy: buildRandomDummy[T](rw),
		}
	}
}

func init() {
	// Every build always supports 32/64-bit sequential chunks; 128/256-bit
	// chunks are gated on the host's detected SIMD level, mirroring the
	// original's compile-time AVX/SSE feature checks around its wide-chunk
	// kernels. A pointer-chase chunk must hold a whole address, so 32-bit
	// random kernels exist only where pointers are 32 bits wide.
	registerSequential[uint32](Chunk32)
	registerSequential[uint64](Chunk64)
	if unsafe.Sizeof(uintptr(0)) == 4 {
		registerRandom[uint32](Chunk32)
	}
	registerRandom[uint64](Chunk64)

	if simd.Supports128() {
		registerSequential[Word128](Chunk128)
		registerRandom[Word128](Chunk128)
	}
	if simd.Supports256() {
		registerSequential[Word256](Chunk256)
		registerRandom[Word256](Chunk256)
	}
}

// ResolveSequential maps a configuration to its real/dummy kernel pair. ok
// is false when the combination is unsupported by this build (e.g. 256-bit
// chunks on a CPU without AVX2/AVX-512); callers must skip such
// combinations rather than treat the zero value as usable.
func ResolveSequential(spec SequentialSpec) (SequentialPair, bool) {
	pair, ok := sequentialTable[spec]
	return pair, ok
}

// ResolveRandom maps a configuration to its real/dummy pointer-chase kernel
// pair, with the same unsupported-combination semantics as
// ResolveSequential.
func ResolveRandom(spec RandomSpec) (RandomPair, bool) {
	pair, ok := randomTable[spec]
	return pair, ok
}

// SupportedChunks reports which chunk widths this build's resolver can
// serve at all (independent of rw/stride), for CLI validation and CSV
// "skipped" reporting.
func SupportedChunks() []Chunk {
	var out []Chunk
	for _, c := range []Chunk{Chunk32, Chunk64, Chunk128, Chunk256} {
		if _, ok := ResolveSequential(SequentialSpec{RW: Read, Chunk: c, Stride: Stride1}); ok {
			out = append(out, c)
		}
	}
	return out
}
