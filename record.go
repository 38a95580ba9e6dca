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
	"time"

	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/powerpool"
	"github.com/xmem-go/xmem/internal/xtimer"
)

// SocketPower is one socket's average/peak power draw over a benchmark's
// full run: Average is the mean of every iteration's average watt reading
// and Peak is the highest peak watt reading seen across all iterations,
// the same "fold every iteration into one summary" treatment AvgMetric
// gives PerIterMetric.
type SocketPower struct {
	Name    string
	Average float64
	Peak    float64
}

// socketPowerAccumulator folds one Snapshot slice per iteration into a
// per-run SocketPower summary. A Pool's readers are cleared and restarted
// at the top of every iteration (Pool.StartAll), so a Record must collect
// Snapshots() once per iteration rather than once after the whole loop -
// reading it only at the end would silently report just the last
// iteration's samples.
type socketPowerAccumulator struct {
	name   []string
	sumAvg []float64
	n      []int
	peak   []float64
}

func (a *socketPowerAccumulator) add(snaps []powerpool.Snapshot) {
	if a.name == nil {
		a.name = make([]string, len(snaps))
		a.sumAvg = make([]float64, len(snaps))
		a.n = make([]int, len(snaps))
		a.peak = make([]float64, len(snaps))
	}
	for i, s := range snaps {
		a.name[i] = s.Name
		if !s.Available {
			continue
		}
		a.sumAvg[i] += s.AverageWatt
		a.n[i]++
		if s.PeakWatt > a.peak[i] {
			a.peak[i] = s.PeakWatt
		}
	}
}

func (a *socketPowerAccumulator) finalize() []SocketPower {
	out := make([]SocketPower, len(a.name))
	for i := range out {
		var avg float64
		if a.n[i] > 0 {
			avg = a.sumAvg[i] / float64(a.n[i])
		}
		out[i] = SocketPower{Name: a.name[i], Average: avg, Peak: a.peak[i]}
	}
	return out
}

// Record is one benchmark's full result: its configuration, every
// iteration's metric, the averaged metric, and per-socket power, read by
// the orchestrator after the driver returns and written out as one CSV row.
type Record struct {
	Name  string
	Units string // "MB/s" or "ns/access"

	Iterations        int
	WorkingSetSizeKiB int
	MemoryNode        int
	CPUNode           int
	Pattern           kernel.Pattern
	RW                kernel.RW
	Chunk             kernel.Chunk

	// Stride is nil for random-pattern benchmarks; the CSV renders "N/A"
	// in that case per spec.md §6.
	Stride *kernel.Stride

	PerIterMetric []float64
	AvgMetric     float64
	Warning       bool
	HasRun        bool

	SocketPower []SocketPower
}

// targetTicksFor converts a benchmark duration into the tick count every
// driver hands its workers as their TimeBased stop condition. Zero selects
// BenchmarkDurationSec, the production default; drivers accept a Duration
// override so tests can run in milliseconds instead of BenchmarkDurationSec
// seconds per iteration.
func targetTicksFor(d time.Duration) xtimer.Tick {
	if d <= 0 {
		d = BenchmarkDurationSec * time.Second
	}
	return xtimer.Tick(d.Seconds() * float64(xtimer.TicksPerSec()))
}

// mean returns the arithmetic mean of xs, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
