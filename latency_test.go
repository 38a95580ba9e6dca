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

	"github.com/xmem-go/xmem/internal/kernel"
)

func TestRunUnloadedLatencyProducesPositiveNsPerAccess(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<16)

	rec, ok := RunUnloadedLatency(LatencySpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, RW: kernel.Read, CPUNode: 0,
		Iterations: 1, Duration: 2 * time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunUnloadedLatency() ok = false, want true for a 64-bit read kernel")
	}
	if rec.Units != "ns/access" {
		t.Fatalf("Units = %q, want ns/access", rec.Units)
	}
	if rec.AvgMetric <= 0 {
		t.Fatalf("AvgMetric = %v, want > 0", rec.AvgMetric)
	}
}

func TestAccessLatencyNsZeroPassesIsZero(t *testing.T) {
	if got := accessLatencyNs(1000, 0); got != 0 {
		t.Fatalf("accessLatencyNs(1000, 0) = %v, want 0", got)
	}
}

func TestRunLoadedLatencySplitsArenaBetweenLatencyAndLoad(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<20)

	result, ok := RunLoadedLatency(LoadedLatencySpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, RW: kernel.Read,
		NumLoadThreads: 2, DelayOps: 4, CPUNode: 0,
		Iterations: 1, Duration: 2 * time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunLoadedLatency() ok = false, want true")
	}
	if result.Latency == nil || result.Background == nil {
		t.Fatalf("RunLoadedLatency() result missing Latency or Background record")
	}
	if result.Latency.Units != "ns/access" {
		t.Fatalf("Latency.Units = %q, want ns/access", result.Latency.Units)
	}
	if result.Background.Units != "MB/s" {
		t.Fatalf("Background.Units = %q, want MB/s", result.Background.Units)
	}
	if result.Latency.AvgMetric <= 0 {
		t.Fatalf("Latency.AvgMetric = %v, want > 0", result.Latency.AvgMetric)
	}
	if result.DelayOps != 4 {
		t.Fatalf("DelayOps = %d, want 4", result.DelayOps)
	}
}

func TestRunLoadedLatencyZeroLoadThreadsStillRunsLatencyWorker(t *testing.T) {
	topo := testTopology(t)
	a := testArena(t, topo, 1<<16)

	result, ok := RunLoadedLatency(LoadedLatencySpec{
		Arena: a, Topo: topo, Chunk: kernel.Chunk64, RW: kernel.Read,
		NumLoadThreads: 0, DelayOps: 0, CPUNode: 0,
		Iterations: 1, Duration: time.Millisecond,
	})
	if !ok {
		t.Fatalf("RunLoadedLatency() ok = false, want true")
	}
	if result.Background.AvgMetric != 0 {
		t.Fatalf("Background.AvgMetric = %v, want 0 with no load threads", result.Background.AvgMetric)
	}
	if result.Latency.AvgMetric <= 0 {
		t.Fatalf("Latency.AvgMetric = %v, want > 0", result.Latency.AvgMetric)
	}
}

func TestMax1(t *testing.T) {
	if got := max1(0); got != 1 {
		t.Fatalf("max1(0) = %d, want 1", got)
	}
	if got := max1(5); got != 5 {
		t.Fatalf("max1(5) = %d, want 5", got)
	}
}
