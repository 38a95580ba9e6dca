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

package xmem

import (
	"sync"
	"time"

	"github.com/xmem-go/xmem/internal/arena"
	"github.com/xmem-go/xmem/internal/graph"
	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/powerpool"
	"github.com/xmem-go/xmem/internal/topology"
	"github.com/xmem-go/xmem/internal/worker"
	"github.com/xmem-go/xmem/internal/xtimer"
)

const bytesPerMB = 1024 * 1024

// ThroughputSpec configures one throughput benchmark: a fixed
// (chunk, pattern, stride, rw) kernel combination run by NumThreads workers,
// each pinned to a logical CPU in CPUNode (reusing the node's CPUs in turn
// when NumThreads exceeds their count), over disjoint slices of Arena.
type ThroughputSpec struct {
	Arena      *arena.Arena
	Topo       *topology.Info
	Chunk      kernel.Chunk
	Pattern    kernel.Pattern
	Stride     kernel.Stride // ignored when Pattern == kernel.Random
	RW         kernel.RW
	NumThreads int
	CPUNode    int
	Iterations int
	Power      *powerpool.Pool

	// Duration overrides how long each worker times its real/dummy passes
	// for. Zero selects BenchmarkDurationSec, the production default; tests
	// set this to a few milliseconds so a run completes quickly.
	Duration time.Duration
}

// RunThroughput resolves the configured kernel pair, partitions the arena
// into NumThreads disjoint worker slices (building an independent pointer
// permutation per slice up front when Pattern is Random, so no two workers
// ever chase into each other's region), then runs Iterations back-to-back
// iterations, aggregating each iteration's MB/s per spec.md §4.7. ok is
// false when the (rw, chunk, pattern, stride) combination is unsupported by
// this build; the orchestrator skips the benchmark entirely in that case.
func RunThroughput(spec ThroughputSpec) (rec *Record, ok bool) {
	var seqPair kernel.SequentialPair
	var randPair kernel.RandomPair
	isRandom := spec.Pattern == kernel.Random

	if isRandom {
		p, resolved := kernel.ResolveRandom(kernel.RandomSpec{RW: spec.RW, Chunk: spec.Chunk})
		if !resolved {
			return nil, false
		}
		randPair = p
	} else {
		p, resolved := kernel.ResolveSequential(kernel.SequentialSpec{RW: spec.RW, Chunk: spec.Chunk, Stride: spec.Stride})
		if !resolved {
			return nil, false
		}
		seqPair = p
	}

	total := spec.Arena.Data
	numThreads := spec.NumThreads
	if numThreads < 1 {
		numThreads = 1
	}
	chunkBytes := spec.Chunk.Bytes()
	sliceLen := len(total) / numThreads
	sliceLen -= sliceLen % chunkBytes
	if sliceLen == 0 {
		return nil, false
	}
	// A sequential pass traverses the whole slice; a pointer-chase pass is
	// one kernel call of kernel.RandomUnroll hops, one chunk each.
	bytesPerPass := sliceLen
	if isRandom {
		bytesPerPass = kernel.RandomUnroll * chunkBytes
	}

	slices := make([][]byte, numThreads)
	for i := 0; i < numThreads; i++ {
		s := total[i*sliceLen : (i+1)*sliceLen]
		slices[i] = s
		if isRandom {
			graph.BuildRandomPermutation(s, spec.Chunk)
		}
	}

	cpuIDs := make([]int, numThreads)
	nodeCPUs := spec.Topo.CPUsInNode(spec.CPUNode)
	for i := 0; i < numThreads; i++ {
		id, found := spec.Topo.CPUInNode(spec.CPUNode, i%max(len(nodeCPUs), 1))
		if !found {
			id = -1
		}
		cpuIDs[i] = id
	}

	targetTicks := targetTicksFor(spec.Duration)

	rec = &Record{Units: "MB/s"}
	var pwrAcc socketPowerAccumulator
	for iter := 0; iter < spec.Iterations; iter++ {
		if spec.Power != nil {
			spec.Power.StartAll()
		}

		workers := make([]*worker.Worker, numThreads)
		var wg sync.WaitGroup
		wg.Add(numThreads)
		for i := 0; i < numThreads; i++ {
			var w *worker.Worker
			if isRandom {
				w = worker.NewRandom(cpuIDs[i], slices[i], worker.RandomConfig{Pair: randPair}, worker.TimeBased, targetTicks, 0)
			} else {
				w = worker.NewSequential(cpuIDs[i], slices[i], worker.SequentialConfig{Pair: seqPair}, worker.TimeBased, targetTicks, 0)
			}
			workers[i] = w
			go func(w *worker.Worker) {
				defer wg.Done()
				w.Run()
			}(w)
		}
		wg.Wait()

		var powerWarn bool
		if spec.Power != nil {
			powerWarn = !spec.Power.StopAll()
			pwrAcc.add(spec.Power.Snapshots())
		}

		var totalPasses int64
		var sumAdjusted xtimer.Tick
		iterWarn := false
		for _, w := range workers {
			r := w.Record()
			totalPasses += r.Passes
			sumAdjusted += r.AdjustedTicks
			if r.Warning || r.AffinityWarning != "" {
				iterWarn = true
			}
		}

		avgAdjusted := sumAdjusted / xtimer.Tick(numThreads)
		var metric float64
		if avgAdjusted > 0 {
			seconds := xtimer.ToNanos(avgAdjusted) / 1e9
			metric = (float64(totalPasses) * float64(bytesPerPass) / bytesPerMB) / seconds
		}
		rec.PerIterMetric = append(rec.PerIterMetric, metric)
		rec.Warning = rec.Warning || iterWarn || powerWarn
	}

	rec.HasRun = true
	rec.AvgMetric = mean(rec.PerIterMetric)
	if spec.Power != nil {
		rec.SocketPower = pwrAcc.finalize()
	}
	return rec, true
}
