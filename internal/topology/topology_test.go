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

package topology

import "testing"

func TestProbeBasicInvariants(t *testing.T) {
	info, err := Probe()
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if info.NumNodes < 1 {
		t.Fatalf("NumNodes = %d, want >= 1", info.NumNodes)
	}
	if info.NumLogicalCPUs < 1 {
		t.Fatalf("NumLogicalCPUs = %d, want >= 1", info.NumLogicalCPUs)
	}
	if info.PageSize <= 0 {
		t.Fatalf("PageSize = %d, want > 0", info.PageSize)
	}
	if info.LargePageSize < info.PageSize {
		t.Fatalf("LargePageSize = %d smaller than PageSize = %d", info.LargePageSize, info.PageSize)
	}
	if info.String() == "" {
		t.Fatalf("Info.String() empty")
	}
}

func TestCPUInNodeRoundTrip(t *testing.T) {
	info, err := Probe()
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	for node := 0; node < info.NumNodes; node++ {
		cpus := info.CPUsInNode(node)
		for rank, want := range cpus {
			got, ok := info.CPUInNode(node, rank)
			if !ok {
				t.Fatalf("CPUInNode(%d, %d) not ok, want cpu %d", node, rank, want)
			}
			if got != want {
				t.Fatalf("CPUInNode(%d, %d) = %d, want %d", node, rank, got, want)
			}
		}
	}
}

func TestCPUInNodeOutOfRange(t *testing.T) {
	info, err := Probe()
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if _, ok := info.CPUInNode(info.NumNodes+100, 0); ok {
		t.Fatalf("CPUInNode with bogus node returned ok=true")
	}
	if _, ok := info.CPUInNode(0, -1); ok {
		t.Fatalf("CPUInNode with negative rank returned ok=true")
	}
}
