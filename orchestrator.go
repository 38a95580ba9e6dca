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
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/xmem-go/xmem/internal/arena"
	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/powerpool"
	"github.com/xmem-go/xmem/internal/topology"
)

// Orchestrator enumerates the Cartesian product of enabled
// {memory node} x {cpu node} x {rw mode} x {chunk size} x {stride|random}
// and runs one benchmark per combination, assigning each a monotonically
// increasing test index starting at Config.BaseTestIndex, matching
// spec.md §4.9.
type Orchestrator struct {
	cfg  Config
	topo *topology.Info

	nextIndex int
}

// NewOrchestrator builds an Orchestrator for cfg against the given
// (already-probed) topology.
func NewOrchestrator(cfg Config, topo *topology.Info) *Orchestrator {
	return &Orchestrator{cfg: cfg, topo: topo, nextIndex: cfg.BaseTestIndex}
}

// Result is everything one orchestrator Run produced: every benchmark
// record in the order they ran, and any warnings (allocation fallbacks,
// skipped unsupported kernels) worth surfacing to the operator even when
// they didn't abort the run.
type Result struct {
	Records  []*Record
	Warnings []string
}

// Run drives every enabled benchmark combination in turn. csvDst receives
// one CSV row per completed benchmark when non-nil (the caller is
// responsible for deciding whether -f was given); progressDst receives a
// one-line-per-benchmark progress table when the caller wants verbose
// output (typically os.Stdout gated on Config.Verbose, but Run itself does
// not consult Config.Verbose so it stays usable as a library call).
func (o *Orchestrator) Run(csvDst io.Writer, progressDst io.Writer) (*Result, error) {
	result := &Result{}

	memNodes := o.cfg.MemoryNodes
	if len(memNodes) == 0 {
		memNodes = allNodes(o.topo.NumNodes)
	}
	cpuNodes := o.cfg.CPUNodes
	if len(cpuNodes) == 0 {
		cpuNodes = allNodes(o.topo.NumNodes)
	}

	numThreads := o.cfg.NumWorkerThreads
	if numThreads < 1 {
		numThreads = 1
	}
	arenaBytes := o.cfg.WorkingSetSizeBytes() * numThreads

	var csv *CSVWriter
	if csvDst != nil {
		csv = NewCSVWriter(csvDst, o.topo.NumPackages)
	}
	var tw *tabwriter.Writer
	if progressDst != nil {
		tw = tabwriter.NewWriter(progressDst, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "IDX\tNAME\tAVG\tUNITS\tWARNING")
		tw.Flush()
	}

	power := powerpool.New(o.topo.NumPackages, PowerSamplingPeriodSec*time.Second)

	for _, memNode := range memNodes {
		ar, warnings, err := arena.Allocate(memNode, arenaBytes, o.cfg.UseLargePages, o.topo)
		if err != nil {
			return result, fmt.Errorf("xmem: fatal allocation failure on NUMA node %d: %w", memNode, err)
		}
		result.Warnings = append(result.Warnings, warnings...)

		for _, cpuNode := range cpuNodes {
			if o.cfg.Throughput {
				o.runThroughputCombos(ar, memNode, cpuNode, numThreads, power, csv, tw, result)
			}
			if o.cfg.Latency {
				o.runLatencyCombos(ar, memNode, cpuNode, numThreads, power, csv, tw, result)
			}
		}

		if err := ar.Free(); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to free arena for NUMA node %d: %v", memNode, err))
		}
	}

	return result, nil
}

func (o *Orchestrator) runThroughputCombos(ar *arena.Arena, memNode, cpuNode, numThreads int, power *powerpool.Pool, csv *CSVWriter, tw *tabwriter.Writer, result *Result) {
	for _, rw := range o.enabledRWs() {
		for _, chunk := range o.cfg.ChunkSizes {
			if o.cfg.UseSequentialPattern {
				for _, stride := range o.cfg.StrideSizes {
					stride := stride
					spec := ThroughputSpec{
						Arena: ar, Topo: o.topo, Chunk: chunk, Pattern: kernel.Sequential,
						Stride: stride, RW: rw, NumThreads: numThreads, CPUNode: cpuNode,
						Iterations: o.cfg.Iterations, Power: power, Duration: o.cfg.BenchmarkDuration,
					}
					rec, ok := RunThroughput(spec)
					if !ok {
						result.Warnings = append(result.Warnings, fmt.Sprintf("skipped unsupported throughput kernel: chunk=%s rw=%s stride=%d", chunk, rw, stride))
						continue
					}
					o.finish(rec, memNode, cpuNode, kernel.Sequential, rw, chunk, &stride, csv, tw, result)
				}
			}
			if o.cfg.UseRandomPattern {
				spec := ThroughputSpec{
					Arena: ar, Topo: o.topo, Chunk: chunk, Pattern: kernel.Random,
					RW: rw, NumThreads: numThreads, CPUNode: cpuNode,
					Iterations: o.cfg.Iterations, Power: power, Duration: o.cfg.BenchmarkDuration,
				}
				rec, ok := RunThroughput(spec)
				if !ok {
					result.Warnings = append(result.Warnings, fmt.Sprintf("skipped unsupported throughput kernel: chunk=%s rw=%s pattern=random", chunk, rw))
					continue
				}
				o.finish(rec, memNode, cpuNode, kernel.Random, rw, chunk, nil, csv, tw, result)
			}
		}
	}
}

func (o *Orchestrator) runLatencyCombos(ar *arena.Arena, memNode, cpuNode, numThreads int, power *powerpool.Pool, csv *CSVWriter, tw *tabwriter.Writer, result *Result) {
	for _, rw := range o.enabledRWs() {
		for _, chunk := range o.cfg.ChunkSizes {
			if numThreads <= 1 {
				spec := LatencySpec{
					Arena: ar, Topo: o.topo, Chunk: chunk, RW: rw, CPUNode: cpuNode,
					Iterations: o.cfg.Iterations, Power: power, Duration: o.cfg.BenchmarkDuration,
				}
				rec, ok := RunUnloadedLatency(spec)
				if !ok {
					result.Warnings = append(result.Warnings, fmt.Sprintf("skipped unsupported latency kernel: chunk=%s rw=%s", chunk, rw))
					continue
				}
				o.finish(rec, memNode, cpuNode, kernel.Random, rw, chunk, nil, csv, tw, result)
				continue
			}

			delays := o.cfg.LoadedLatencyDelays
			if len(delays) == 0 {
				delays = DefaultLoadedLatencyDelays
			}
			for _, delay := range delays {
				spec := LoadedLatencySpec{
					Arena: ar, Topo: o.topo, Chunk: chunk, RW: rw,
					NumLoadThreads: numThreads - 1, DelayOps: delay, CPUNode: cpuNode,
					Iterations: o.cfg.Iterations, Power: power, Duration: o.cfg.BenchmarkDuration,
				}
				res, ok := RunLoadedLatency(spec)
				if !ok {
					result.Warnings = append(result.Warnings, fmt.Sprintf("skipped unsupported loaded-latency kernel: chunk=%s rw=%s delay=%d", chunk, rw, delay))
					continue
				}
				suffix := fmt.Sprintf("_delay%d", delay)
				o.finishNamed(res.Latency, latencyName(o.nextIndex, rw, chunk, suffix), memNode, cpuNode, rw, chunk, csv, tw, result)
				o.nextIndex++
				o.finishNamed(res.Background, throughputLoadName(o.nextIndex-1, rw, chunk, suffix), memNode, cpuNode, kernel.Read, chunk, csv, tw, result)
			}
		}
	}
}

// enabledRWs returns the read/write mixes this run should exercise, in a
// stable order (Read before Write) so CSV row ordering is deterministic
// across identical-flag runs per spec.md §8 scenario 6.
func (o *Orchestrator) enabledRWs() []kernel.RW {
	var out []kernel.RW
	if o.cfg.UseReads {
		out = append(out, kernel.Read)
	}
	if o.cfg.UseWrites {
		out = append(out, kernel.Write)
	}
	return out
}

func (o *Orchestrator) finish(rec *Record, memNode, cpuNode int, pattern kernel.Pattern, rw kernel.RW, chunk kernel.Chunk, stride *kernel.Stride, csv *CSVWriter, tw *tabwriter.Writer, result *Result) {
	idx := o.nextIndex
	o.nextIndex++
	rec.Name = benchmarkName(idx, pattern, rw, chunk, stride, "")
	rec.Iterations = o.cfg.Iterations
	rec.WorkingSetSizeKiB = o.cfg.WorkingSetSizeKiB
	rec.MemoryNode = memNode
	rec.CPUNode = cpuNode
	rec.Pattern = pattern
	rec.RW = rw
	rec.Chunk = chunk
	rec.Stride = stride

	o.emit(rec, csv, tw, result)
}

func (o *Orchestrator) finishNamed(rec *Record, name string, memNode, cpuNode int, rw kernel.RW, chunk kernel.Chunk, csv *CSVWriter, tw *tabwriter.Writer, result *Result) {
	rec.Name = name
	rec.Iterations = o.cfg.Iterations
	rec.WorkingSetSizeKiB = o.cfg.WorkingSetSizeKiB
	rec.MemoryNode = memNode
	rec.CPUNode = cpuNode
	rec.Pattern = kernel.Random
	rec.RW = rw
	rec.Chunk = chunk

	o.emit(rec, csv, tw, result)
}

func (o *Orchestrator) emit(rec *Record, csv *CSVWriter, tw *tabwriter.Writer, result *Result) {
	result.Records = append(result.Records, rec)
	if csv != nil {
		if err := csv.WriteRecord(rec); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("csv write failed for %q: %v", rec.Name, err))
		}
	}
	if tw != nil {
		idx, _, _ := strings.Cut(rec.Name, "_") // names start with "<idx>_"
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%v\n", idx, rec.Name, rec.AvgMetric, rec.Units, rec.Warning)
		tw.Flush()
	}
}

func allNodes(n int) []int {
	if n < 1 {
		n = 1
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// benchmarkName matches the original's <idx>_<pattern>_<rw>_<chunk>_<stride>
// Test Name convention (BenchmarkManager.cpp).
func benchmarkName(idx int, pattern kernel.Pattern, rw kernel.RW, chunk kernel.Chunk, stride *kernel.Stride, suffix string) string {
	name := fmt.Sprintf("%d_%s_%s_%s", idx, patternTag(pattern), rw, chunk)
	if stride != nil {
		name += fmt.Sprintf("_stride%d", int(*stride))
	}
	return name + suffix
}

func latencyName(idx int, rw kernel.RW, chunk kernel.Chunk, suffix string) string {
	return benchmarkName(idx, kernel.Random, rw, chunk, nil, suffix) + "_latency"
}

func throughputLoadName(idx int, rw kernel.RW, chunk kernel.Chunk, suffix string) string {
	return benchmarkName(idx, kernel.Random, rw, chunk, nil, suffix) + "_background"
}

func patternTag(p kernel.Pattern) string {
	if p == kernel.Random {
		return "RANDOM"
	}
	return "SEQUENTIAL"
}
