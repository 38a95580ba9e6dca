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

	"github.com/xmem-go/xmem/internal/powerpool"
)

func TestMeanEmpty(t *testing.T) {
	if got := mean(nil); got != 0 {
		t.Fatalf("mean(nil) = %v, want 0", got)
	}
}

func TestMeanAverages(t *testing.T) {
	got := mean([]float64{1, 2, 3, 4})
	if got != 2.5 {
		t.Fatalf("mean([1,2,3,4]) = %v, want 2.5", got)
	}
}

// TestSocketPowerAccumulatorAveragesAcrossIterations pins down the fix for
// the aggregation bug the power pool's per-iteration ClearAndReset exposed:
// a Record's SocketPower must fold in every iteration's Snapshot, not just
// the last one.
func TestSocketPowerAccumulatorAveragesAcrossIterations(t *testing.T) {
	var acc socketPowerAccumulator
	acc.add([]powerpool.Snapshot{
		{Socket: 0, Name: "Socket 0", AverageWatt: 10, PeakWatt: 20, Available: true},
	})
	acc.add([]powerpool.Snapshot{
		{Socket: 0, Name: "Socket 0", AverageWatt: 30, PeakWatt: 50, Available: true},
	})

	got := acc.finalize()
	if len(got) != 1 {
		t.Fatalf("finalize() returned %d sockets, want 1", len(got))
	}
	if got[0].Average != 20 {
		t.Fatalf("Average = %v, want 20 (mean of 10 and 30 across both iterations)", got[0].Average)
	}
	if got[0].Peak != 50 {
		t.Fatalf("Peak = %v, want 50 (max peak seen across both iterations)", got[0].Peak)
	}
}

// TestSocketPowerAccumulatorSkipsUnavailableIterations ensures a socket that
// drops out for one iteration (Available == false) doesn't drag its average
// toward zero or lose its name.
func TestSocketPowerAccumulatorSkipsUnavailableIterations(t *testing.T) {
	var acc socketPowerAccumulator
	acc.add([]powerpool.Snapshot{
		{Socket: 0, Name: "Socket 0", AverageWatt: 40, PeakWatt: 60, Available: true},
	})
	acc.add([]powerpool.Snapshot{
		{Socket: 0, Name: "Socket 0", Available: false},
	})

	got := acc.finalize()
	if got[0].Name != "Socket 0" {
		t.Fatalf("Name = %q, want %q even after an unavailable iteration", got[0].Name, "Socket 0")
	}
	if got[0].Average != 40 {
		t.Fatalf("Average = %v, want 40 (the one available iteration), not diluted by the unavailable one", got[0].Average)
	}
	if got[0].Peak != 60 {
		t.Fatalf("Peak = %v, want 60", got[0].Peak)
	}
}
