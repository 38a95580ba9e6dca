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

import "testing"

func TestDefaultConfigEnablesBothFamilies(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Throughput || !cfg.Latency {
		t.Fatalf("DefaultConfig() = %+v, want both Throughput and Latency enabled", cfg)
	}
	if !cfg.UseRandomPattern || !cfg.UseSequentialPattern {
		t.Fatalf("DefaultConfig() must enable both access patterns by default")
	}
	if !cfg.UseReads || !cfg.UseWrites {
		t.Fatalf("DefaultConfig() must enable both rw mixes by default")
	}
	if cfg.NumWorkerThreads != 1 {
		t.Fatalf("NumWorkerThreads = %d, want 1", cfg.NumWorkerThreads)
	}
}

func TestDefaultConfigLoadedLatencyDelaysIsIndependentCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoadedLatencyDelays[0] = 999
	if DefaultLoadedLatencyDelays[0] == 999 {
		t.Fatalf("DefaultConfig() must copy DefaultLoadedLatencyDelays, not alias it")
	}
}

func TestWorkingSetSizeBytes(t *testing.T) {
	cfg := Config{WorkingSetSizeKiB: 64}
	if got, want := cfg.WorkingSetSizeBytes(), 64*1024; got != want {
		t.Fatalf("WorkingSetSizeBytes() = %d, want %d", got, want)
	}
}

func TestTargetTicksForDefaultsToBenchmarkDurationSec(t *testing.T) {
	zero := targetTicksFor(0)
	if zero == 0 {
		t.Fatalf("targetTicksFor(0) = 0, want a positive tick count derived from BenchmarkDurationSec")
	}
}
