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
	"testing"
	"time"

	"github.com/xmem-go/xmem/internal/arena"
	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/topology"
)

func testTopology(t *testing.T) *topology.Info {
	t.Helper()
	topo, err := topology.Probe()
	if err != nil {
		t.Fatalf("topology.Probe() error: %v", err)
	}
	return topo
}

func testArena(t *testing.T, topo *topology.Info, bytes int) *arena.Arena {
	t.Helper()
	a, _, err := arena.Allocate(0, bytes, false, topo)
	if err != nil {
		t.Fatalf("arena.Allocate() error: %v", err)
	}
	t.Cleanup(func() { _ = a.Free() })
	return a
}

func TestRunThroughputSequentialProducesPositiveMetric(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<20)

	rec, ok := RunThroughput(ThroughputSpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, Pattern: kernel.Sequential,
		Stride: kernel.Stride1, RW: kernel.Read, NumThreads: 2, CPUNode: 0,
		Iterations: 1, Duration: 2 * time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunThroughput() ok = false, want true for a 64-bit sequential read kernel")
	}
	if rec.Units != "MB/s" {
		t.Fatalf("Units = %q, want MB/s", rec.Units)
	}
	if !rec.HasRun {
		t.Fatalf("HasRun = false after a completed run")
	}
	if len(rec.PerIterMetric) != 1 {
		t.Fatalf("PerIterMetric has %d entries, want 1", len(rec.PerIterMetric))
	}
	if rec.AvgMetric <= 0 {
		t.Fatalf("AvgMetric = %v, want > 0", rec.AvgMetric)
	}
}

func TestRunThroughputRandomPatternBuildsPermutationPerSlice(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<20)

	rec, ok := RunThroughput(ThroughputSpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, Pattern: kernel.Random,
		RW: kernel.Write, NumThreads: 2, CPUNode: 0,
		Iterations: 2, Duration: 2 * time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunThroughput() ok = false, want true for a 64-bit random write kernel")
	}
	if len(rec.PerIterMetric) != 2 {
		t.Fatalf("PerIterMetric has %d entries, want 2 (one per iteration)", len(rec.PerIterMetric))
	}
}

func TestRunThroughputRejectsEmptyWorkerSlices(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 4096)

	// An arena far too small to give even one thread a non-empty,
	// chunk-aligned slice must be rejected rather than run a zero-length
	// kernel.
	_, ok := RunThroughput(ThroughputSpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, Pattern: kernel.Sequential,
		Stride: kernel.Stride1, RW: kernel.Read, NumThreads: 10000, CPUNode: 0,
		Iterations: 1, Duration: time.Millisecond,
	})
	if ok {
		t.Fatalf("RunThroughput() ok = true, want false when no thread gets a non-empty slice")
	}
}

func TestRunThroughputSingleThreadDefaultsToOne(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<16)

	rec, ok := RunThroughput(ThroughputSpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk32, Pattern: kernel.Sequential,
		Stride: kernel.Stride1, RW: kernel.Read, NumThreads: 0, CPUNode: 0,
		Iterations: 1, Duration: time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunThroughput() ok = false with NumThreads=0, want it treated as 1")
	}
	if rec.AvgMetric <= 0 {
		t.Fatalf("AvgMetric = %v, want > 0", rec.AvgMetric)
	}
}
