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

package main

import (
	"fmt"

	"github.com/xmem-go/xmem"
	"github.com/xmem-go/xmem/internal/kernel"
)

// cliFlags holds every raw value parsed from argv, before defaulting and
// validation turn it into an xmem.Config. Kept as its own type so
// buildConfig's defaulting logic is testable independent of flag.FlagSet.
type cliFlags struct {
	throughput, latency bool

	wssKiB     int
	numThreads int

	chunks  []kernel.Chunk
	strides []kernel.Stride

	useRandom, useSequential bool
	useReads, useWrites      bool

	disableNUMA, useLargePages bool

	iterations    int
	baseTestIndex int

	outputFile string
	verbose    bool
}

// buildConfig applies the CLI's defaulting rules (spec.md §6: "Flags are
// all optional; absence selects defaults") and validates the combination,
// returning a config error for anything nonsensical per spec.md §7.
func buildConfig(f cliFlags) (xmem.Config, error) {
	cfg := xmem.DefaultConfig()

	if f.throughput || f.latency {
		cfg.Throughput = f.throughput
		cfg.Latency = f.latency
	} // else: keep DefaultConfig's "both enabled" default

	if f.wssKiB != 0 {
		if f.wssKiB < 0 || f.wssKiB%4 != 0 {
			return cfg, fmt.Errorf("-w/--working_set_size must be a positive multiple of 4, got %d", f.wssKiB)
		}
		cfg.WorkingSetSizeKiB = f.wssKiB
	}

	if f.numThreads != 0 {
		if f.numThreads < 0 {
			return cfg, fmt.Errorf("-j/--num_worker_threads must be positive, got %d", f.numThreads)
		}
		cfg.NumWorkerThreads = f.numThreads
	}

	if len(f.chunks) > 0 {
		cfg.ChunkSizes = f.chunks
	}
	if len(f.strides) > 0 {
		cfg.StrideSizes = f.strides
	}

	if f.useRandom || f.useSequential {
		cfg.UseRandomPattern = f.useRandom
		cfg.UseSequentialPattern = f.useSequential
	}
	if f.useReads || f.useWrites {
		cfg.UseReads = f.useReads
		cfg.UseWrites = f.useWrites
	}

	cfg.DisableNUMA = f.disableNUMA
	cfg.UseLargePages = f.useLargePages

	if f.iterations != 0 {
		if f.iterations < 0 {
			return cfg, fmt.Errorf("-n/--iterations must be > 0, got %d", f.iterations)
		}
		cfg.Iterations = f.iterations
	}

	if f.baseTestIndex < 0 {
		return cfg, fmt.Errorf("-i/--base_test_index must be >= 0, got %d", f.baseTestIndex)
	}
	cfg.BaseTestIndex = f.baseTestIndex

	cfg.OutputFile = f.outputFile
	cfg.Verbose = f.verbose

	return cfg, nil
}
