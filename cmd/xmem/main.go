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

// Command xmem drives the X-Mem memory hierarchy microbenchmark harness:
// it parses flags, probes the host topology, runs the configured
// throughput and/or latency benchmarks, and optionally writes a CSV
// results file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xmem-go/xmem"
	"github.com/xmem-go/xmem/internal/kernel"
	"github.com/xmem-go/xmem/internal/topology"
	"github.com/xmem-go/xmem/internal/xtimer"
)

const usage = `xmem [flags]

Measures the latency and throughput of this machine's memory hierarchy
under controlled access patterns, granularities, concurrency levels, NUMA
placements, and read/write mixes.

Flags:
  -h, --help                  print this message and exit
  -t, --throughput            enable throughput benchmarks
  -l, --latency                enable (possibly loaded) latency benchmarks
  -w, --working_set_size KiB  per-thread arena size in KiB, multiple of 4
  -j, --num_worker_threads N  worker threads per benchmark
  -c, --chunk_size BITS       chunk width in {32,64,128,256}, repeatable
  -s, --stride_size N         signed stride in {-16,...,-1,1,...,16}, repeatable
  -r                          enable the random access pattern
  -S                          enable the sequential access pattern
  -R                          enable the read mix
  -W                          enable the write mix
  -u                          disable NUMA placement
  -L                          use large pages
  -n, --iterations N          iterations per benchmark
  -i, --base_test_index N     starting test index
  -f, --output_file PATH      write CSV results to PATH
  -v, --verbose                print progress and diagnostics
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run implements the CLI's full behavior against injectable stdout/stderr,
// so tests can exercise flag handling without touching the real streams.
func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("xmem", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	var help bool
	fs.BoolVar(&help, "h", false, "print usage and exit")
	fs.BoolVar(&help, "help", false, "print usage and exit")

	var throughput, latency bool
	fs.BoolVar(&throughput, "t", false, "enable throughput benchmarks")
	fs.BoolVar(&throughput, "throughput", false, "enable throughput benchmarks")
	fs.BoolVar(&latency, "l", false, "enable latency benchmarks")
	fs.BoolVar(&latency, "latency", false, "enable latency benchmarks")

	var wssKiB int
	fs.IntVar(&wssKiB, "w", 0, "per-thread working set size in KiB")
	fs.IntVar(&wssKiB, "working_set_size", 0, "per-thread working set size in KiB")

	var numThreads int
	fs.IntVar(&numThreads, "j", 0, "worker threads per benchmark")
	fs.IntVar(&numThreads, "num_worker_threads", 0, "worker threads per benchmark")

	var chunks []kernel.Chunk
	fs.Var(chunkListFlag{&chunks}, "c", "chunk size in bits, repeatable")
	fs.Var(chunkListFlag{&chunks}, "chunk_size", "chunk size in bits, repeatable")

	var strides []kernel.Stride
	fs.Var(strideListFlag{&strides}, "s", "signed stride in chunks, repeatable")
	fs.Var(strideListFlag{&strides}, "stride_size", "signed stride in chunks, repeatable")

	var useRandom, useSequential, useReads, useWrites bool
	fs.BoolVar(&useRandom, "r", false, "enable the random access pattern")
	fs.BoolVar(&useSequential, "S", false, "enable the sequential access pattern")
	fs.BoolVar(&useReads, "R", false, "enable the read mix")
	fs.BoolVar(&useWrites, "W", false, "enable the write mix")

	var disableNUMA, useLargePages bool
	fs.BoolVar(&disableNUMA, "u", false, "disable NUMA placement")
	fs.BoolVar(&useLargePages, "L", false, "use large pages")

	var iterations int
	fs.IntVar(&iterations, "n", 0, "iterations per benchmark")
	fs.IntVar(&iterations, "iterations", 0, "iterations per benchmark")

	var baseTestIndex int
	fs.IntVar(&baseTestIndex, "i", 0, "starting test index")
	fs.IntVar(&baseTestIndex, "base_test_index", 0, "starting test index")

	var outputFile string
	fs.StringVar(&outputFile, "f", "", "CSV output path")
	fs.StringVar(&outputFile, "output_file", "", "CSV output path")

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "verbose progress output")
	fs.BoolVar(&verbose, "verbose", false, "verbose progress output")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if help {
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := buildConfig(cliFlags{
		throughput: throughput, latency: latency,
		wssKiB: wssKiB, numThreads: numThreads,
		chunks: chunks, strides: strides,
		useRandom: useRandom, useSequential: useSequential,
		useReads: useReads, useWrites: useWrites,
		disableNUMA: disableNUMA, useLargePages: useLargePages,
		iterations: iterations, baseTestIndex: baseTestIndex,
		outputFile: outputFile, verbose: verbose,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	topo, err := topology.Probe()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to probe topology: %v\n", err)
		return 1
	}
	if cfg.DisableNUMA {
		topo.NUMABindable = false
	}
	if cfg.NumWorkerThreads > topo.NumLogicalCPUs {
		cfg.NumWorkerThreads = topo.NumLogicalCPUs
	}

	if cfg.Verbose {
		printWelcome(stdout, topo, cfg)
	}

	// csvDst and progress are left as nil io.Writer (not a typed nil
	// *os.File) when unused: a typed-nil *os.File stored in an io.Writer
	// interface would compare != nil and Run would try to write through it.
	var csvDst io.Writer
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not open output file %q (%v); continuing without CSV output\n", cfg.OutputFile, err)
		} else {
			csvDst = f
			defer f.Close()
		}
	}

	var progress io.Writer
	if cfg.Verbose {
		progress = stdout
	}

	orch := xmem.NewOrchestrator(cfg, topo)
	result, err := orch.Run(csvDst, progress)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}

	if cfg.Verbose {
		fmt.Fprintf(stdout, "\nxmem: ran %d benchmark(s)\n", len(result.Records))
	}
	return 0
}

// printWelcome restores the original's print_welcome_message/
// print_compile_time_options startup banner under -v.
func printWelcome(stdout *os.File, topo *topology.Info, cfg xmem.Config) {
	fmt.Fprintln(stdout, "xmem - memory hierarchy microbenchmark harness")
	fmt.Fprintf(stdout, "topology: %s\n", topo)
	fmt.Fprintln(stdout, xtimer.SelfTest().String())
	affinityReport := topo.SelfTestAffinity()
	fmt.Fprintln(stdout, affinityReport.String())
	fmt.Fprintf(stdout, "tunables: BENCHMARK_DURATION_SEC=%d THROUGHPUT_BENCHMARK_BYTES_PER_PASS=%d POWER_SAMPLING_PERIOD_SEC=%d LATENCY_BENCHMARK_UNROLL_LENGTH=%d\n",
		xmem.BenchmarkDurationSec, xmem.ThroughputBytesPerPassHint, xmem.PowerSamplingPeriodSec, kernel.RandomUnroll)
	fmt.Fprintf(stdout, "config: working_set=%dKiB threads=%d chunks=%v strides=%v iterations=%d base_index=%d\n\n",
		cfg.WorkingSetSizeKiB, cfg.NumWorkerThreads, cfg.ChunkSizes, cfg.StrideSizes, cfg.Iterations, cfg.BaseTestIndex)
}
