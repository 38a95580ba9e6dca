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

// Package worker runs one timed measurement on its own goroutine, pinned
// (best-effort) to a single logical CPU, following the Created -> Primed ->
// TimingReal -> TimingDummy -> Done protocol every benchmark driver drives
// its workers through.
package worker

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/xmem-go/xmem/internal/affinity"
	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/xtimer"
)

// MinElapsedTicks is the floor below which a measurement is considered too
// short to trust, mirroring MIN_ELAPSED_TICKS.
const MinElapsedTicks = 10000

// State is the worker's lifecycle stage, advanced only by its own Run call.
type State int

const (
	Created State = iota
	Primed
	TimingReal
	TimingDummy
	Done
)

// Mode selects whether Run measures for a fixed duration or a fixed pass
// count.
type Mode int

const (
	TimeBased Mode = iota
	SizeBased
)

// Record holds everything a driver reads back from a worker after join.
type Record struct {
	Passes          int64
	ElapsedTicks    xtimer.Tick
	ElapsedDummy    xtimer.Tick
	AdjustedTicks   xtimer.Tick
	Warning         bool
	AffinityWarning string
	PriorityWarning string
}

// SequentialConfig configures a worker that runs sequential kernels over
// its assigned slice.
type SequentialConfig struct {
	Pair kernel.SequentialPair
}

// RandomConfig configures a worker that runs the pointer-chase kernel.
type RandomConfig struct {
	Pair kernel.RandomPair
}

// Worker times one kernel (sequential or random) over one memory slice.
// A Worker must not be reused after Run returns.
type Worker struct {
	mu    sync.Mutex
	state State

	cpuID int
	slice []byte

	sequential *SequentialConfig
	random     *RandomConfig

	mode         Mode
	targetTicks  xtimer.Tick
	targetPasses int64

	record Record
}

// NewSequential builds a worker that drives a sequential kernel pair over
// slice, assigned to cpuID.
func NewSequential(cpuID int, slice []byte, cfg SequentialConfig, mode Mode, targetTicks xtimer.Tick, targetPasses int64) *Worker {
	return &Worker{
		cpuID:        cpuID,
		slice:        slice,
		sequential:   &cfg,
		mode:         mode,
		targetTicks:  targetTicks,
		targetPasses: targetPasses,
	}
}

// NewRandom builds a worker that drives the pointer-chase kernel pair over
// slice, assigned to cpuID.
func NewRandom(cpuID int, slice []byte, cfg RandomConfig, mode Mode, targetTicks xtimer.Tick, targetPasses int64) *Worker {
	return &Worker{
		cpuID:        cpuID,
		slice:        slice,
		random:       &cfg,
		mode:         mode,
		targetTicks:  targetTicks,
		targetPasses: targetPasses,
	}
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// State reports the worker's current lifecycle stage. Safe to call from any
// goroutine.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Record returns a copy of the worker's published result. Callers must
// only call this after the goroutine running Run has been joined (e.g. via
// a WaitGroup), matching the single-writer-at-end, single-reader-after-join
// discipline.
func (w *Worker) Record() Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

// Run executes the worker's full protocol: pin, boost priority, prime,
// time the real kernel, time the dummy kernel, restore, and publish. It is
// meant to be launched on its own goroutine and joined via sync.WaitGroup.
func (w *Worker) Run() {
	var affinityWarn, priorityWarn string

	// affinity.Pin sets the OS thread's CPU mask; without locking the
	// goroutine to its current OS thread first, the Go scheduler remains
	// free to migrate it to an unpinned thread mid-kernel.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := affinity.Pin(w.cpuID); err != nil {
		affinityWarn = err.Error()
	} else {
		defer func() { _ = affinity.Unpin() }()
	}
	if err := affinity.BoostPriority(); err != nil {
		priorityWarn = err.Error()
	} else {
		defer func() { _ = affinity.RestorePriority() }()
	}

	w.setState(Primed)
	w.prime()

	w.setState(TimingReal)
	passes, elapsed := w.timeReal()

	w.setState(TimingDummy)
	elapsedDummy := w.timeDummy(passes)

	adjusted := elapsed - elapsedDummy
	warn := elapsedDummy >= elapsed || elapsed < MinElapsedTicks || adjusted < elapsed/2

	w.mu.Lock()
	w.record = Record{
		Passes:          passes,
		ElapsedTicks:    elapsed,
		ElapsedDummy:    elapsedDummy,
		AdjustedTicks:   adjusted,
		Warning:         warn,
		AffinityWarning: affinityWarn,
		PriorityWarning: priorityWarn,
	}
	w.state = Done
	w.mu.Unlock()
}

// prime runs a forward-sequential read pass over the whole slice at least
// four times, warming caches and faulting in every page before any timed
// access.
func (w *Worker) prime() {
	if len(w.slice) == 0 {
		return
	}
	primePair, ok := kernel.ResolveSequential(kernel.SequentialSpec{RW: kernel.Read, Chunk: kernel.Chunk64, Stride: kernel.Stride1})
	if !ok {
		return
	}
	start := unsafe.Pointer(&w.slice[0])
	end := unsafe.Pointer(uintptr(start) + uintptr(len(w.slice)))
	for i := 0; i < 4; i++ {
		primePair.Real(start, end)
	}
}

func (w *Worker) timeReal() (passes int64, elapsed xtimer.Tick) {
	return w.timeKernel(func() int32 { return w.runOnePass(true) })
}

// timeDummy always runs the dummy kernel for exactly as many passes as the
// real kernel completed, timed as a single start/stop pair around the
// whole loop, regardless of whether the real measurement was time-based or
// size-based.
func (w *Worker) timeDummy(realPasses int64) xtimer.Tick {
	_, elapsed := w.timeFixedPasses(realPasses, func() int32 { return w.runOnePass(false) })
	return elapsed
}

// runOnePass executes one pass using either the real or dummy kernel,
// returning the number of chunks touched. A sequential pass is one full
// traversal of the worker's slice; a pointer-chase pass is one kernel call
// of kernel.RandomUnroll hops starting at the slice's first chunk.
func (w *Worker) runOnePass(real bool) int32 {
	if len(w.slice) == 0 {
		return 0
	}
	if w.sequential != nil {
		start := unsafe.Pointer(&w.slice[0])
		end := unsafe.Pointer(uintptr(start) + uintptr(len(w.slice)))
		if real {
			return w.sequential.Pair.Real(start, end)
		}
		return w.sequential.Pair.Dummy(start, end)
	}
	first := unsafe.Pointer(&w.slice[0])
	var last unsafe.Pointer
	if real {
		return w.random.Pair.Real(first, &last)
	}
	return w.random.Pair.Dummy(first, &last)
}

// timeKernel runs passes until the mode-appropriate stop condition is met,
// returning how many passes were executed and the accumulated ticks.
func (w *Worker) timeKernel(pass func() int32) (int64, xtimer.Tick) {
	if w.mode == SizeBased {
		return w.timeFixedPasses(w.targetPasses, pass)
	}
	var passes int64
	var elapsed xtimer.Tick
	for elapsed < w.targetTicks {
		start := xtimer.Start()
		pass()
		elapsed += xtimer.Stop() - start
		passes++
	}
	return passes, elapsed
}

func (w *Worker) timeFixedPasses(n int64, pass func() int32) (int64, xtimer.Tick) {
	start := xtimer.Start()
	for i := int64(0); i < n; i++ {
		pass()
	}
	elapsed := xtimer.Stop() - start
	return n, elapsed
}
