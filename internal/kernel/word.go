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

// Word128 and Word256 stand in for SIMD register-width chunks that have no
// native Go integer type. The first 8 bytes (Lo) are the pointer-chase
// address word for random-access kernels; the remaining bytes are sentinel
// payload per the graph builder's contract.
type Word128 struct {
	Lo uint64
	Hi uint64
}

type Word256 struct {
	Lo  uint64
	Hi1 uint64
	Hi2 uint64
	Hi3 uint64
}

// word is the set of chunk-sized types the generic kernel engine is
// instantiated over. A single engine parameterized by word covers every
// Chunk width instead of one hand-written function per width.
type word interface {
	~uint32 | ~uint64 | Word128 | Word256
}

// allOnes returns the all-bits-set value of T, matching the sentinel the
// pointer-graph builder writes into non-address words of wide chunks.
func allOnes[T word]() T {
	var z T
	switch v := any(z).(type) {
	case uint32:
		_ = v
		return any(^uint32(0)).(T)
	case uint64:
		return any(^uint64(0)).(T)
	case Word128:
		return any(Word128{Lo: ^uint64(0), Hi: ^uint64(0)}).(T)
	case Word256:
		return any(Word256{Lo: ^uint64(0), Hi1: ^uint64(0), Hi2: ^uint64(0), Hi3: ^uint64(0)}).(T)
	default:
		return z
	}
}

// loWord64 extracts the low 64 bits used to advance a pointer-chase chain,
// regardless of the chunk's total width.
func loWord64[T word](v T) uint64 {
	switch x := any(v).(type) {
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case Word128:
		return x.Lo
	case Word256:
		return x.Lo
	default:
		return 0
	}
}

// withLoWord64 returns a copy of v with its low 64 bits replaced by next,
// preserving any sentinel payload in the remaining bytes.
func withLoWord64[T word](v T, next uint64) T {
	switch x := any(v).(type) {
	case uint32:
		return any(uint32(next)).(T)
	case uint64:
		return any(next).(T)
	case Word128:
		x.Lo = next
		return any(x).(T)
	case Word256:
		x.Lo = next
		return any(x).(T)
	default:
		return v
	}
}
