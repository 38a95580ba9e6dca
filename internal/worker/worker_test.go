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

package worker

import (
	"testing"
	"unsafe"

	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/xtimer"
)

func alignedBuf(n int) []byte {
	buf := make([]uint64, n/8+2)
	p := unsafe.Pointer(&buf[0])
	return unsafe.Slice((*byte)(p), len(buf)*8)[:n]
}

func TestRunSizeBasedPublishesRecord(t *testing.T) {
	slice := alignedBuf(4096)
	pair, ok := kernel.ResolveSequential(kernel.SequentialSpec{RW: kernel.Read, Chunk: kernel.Chunk64, Stride: kernel.Stride1})
	if !ok {
		t.Fatalf("ResolveSequential not ok")
	}
	w := NewSequential(0, slice, SequentialConfig{Pair: pair}, SizeBased, 0, 10)

	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()
	<-done

	if w.State() != Done {
		t.Fatalf("State() = %v, want Done", w.State())
	}
	rec := w.Record()
	if rec.Passes != 10 {
		t.Fatalf("Passes = %d, want 10", rec.Passes)
	}
}

func TestRunTimeBasedRunsUntilTarget(t *testing.T) {
	slice := alignedBuf(4096)
	pair, ok := kernel.ResolveSequential(kernel.SequentialSpec{RW: kernel.Write, Chunk: kernel.Chunk32, Stride: kernel.Stride1})
	if !ok {
		t.Fatalf("ResolveSequential not ok")
	}
	target := xtimer.Tick(xtimer.TicksPerMs()) // ~1ms worth of ticks
	w := NewSequential(0, slice, SequentialConfig{Pair: pair}, TimeBased, target, 0)

	w.Run()

	rec := w.Record()
	if rec.Passes < 1 {
		t.Fatalf("Passes = %d, want >= 1", rec.Passes)
	}
	if rec.ElapsedTicks < target {
		t.Fatalf("ElapsedTicks = %d, want >= target %d", rec.ElapsedTicks, target)
	}
}

func TestRunRandomWorker(t *testing.T) {
	buf := make([]uint64, 64)
	for i := range buf {
		buf[i] = uint64(uintptr(unsafe.Pointer(&buf[(i+1)%len(buf)])))
	}
	slice := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*8)

	pair, ok := kernel.ResolveRandom(kernel.RandomSpec{RW: kernel.Read, Chunk: kernel.Chunk64})
	if !ok {
		t.Fatalf("ResolveRandom not ok")
	}
	w := NewRandom(0, slice, RandomConfig{Pair: pair}, SizeBased, 0, 3)
	w.Run()

	rec := w.Record()
	if rec.Passes != 3 {
		t.Fatalf("Passes = %d, want 3", rec.Passes)
	}
}

func TestWarningFlagOnBelowMinElapsed(t *testing.T) {
	slice := alignedBuf(64)
	pair, ok := kernel.ResolveSequential(kernel.SequentialSpec{RW: kernel.Read, Chunk: kernel.Chunk64, Stride: kernel.Stride1})
	if !ok {
		t.Fatalf("ResolveSequential not ok")
	}
	// A single, tiny pass will finish in far fewer than MinElapsedTicks.
	w := NewSequential(0, slice, SequentialConfig{Pair: pair}, SizeBased, 0, 1)
	w.Run()

	rec := w.Record()
	if !rec.Warning {
		t.Fatalf("expected Warning=true for a sub-MinElapsedTicks measurement")
	}
}
