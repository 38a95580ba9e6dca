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

import "sync/atomic"

// sink is the compiler-opaque destination every "real" kernel folds its
// loaded values into. Go has no volatile qualifier and the toolchain
// forbids inline assembly outside of low-level runtime packages, so an
// atomic store to a package-level variable stands in for it: the
// sync/atomic memory model guarantees the store cannot be proven dead by
// the optimizer, which is the same property the original gets from marking
// its accumulator volatile.
var sink uint64

// observe folds a loaded value into sink, keeping every read kernel's loads
// live. Called once per access inside the unrolled loop body.
func observe(v uint64) {
	atomic.StoreUint64(&sink, v)
}

// Sink returns the last value folded into sink by any kernel; real kernels
// and their dummy twins both call observe.
func Sink() uint64 {
	return atomic.LoadUint64(&sink)
}
