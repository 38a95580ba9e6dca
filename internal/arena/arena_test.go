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

package arena

import (
	"testing"

	"github.com/xmem-go/xmem/internal/topology"
)

func testTopology(t *testing.T) *topology.Info {
	t.Helper()
	info, err := topology.Probe()
	if err != nil {
		t.Fatalf("topology.Probe() error: %v", err)
	}
	return info
}

func TestAllocateBasic(t *testing.T) {
	topo := testTopology(t)
	a, warnings, err := Allocate(0, 1<<20, false, topo)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	defer a.Free()

	for _, w := range warnings {
		t.Logf("warning: %s", w)
	}
	if a.Len() != 1<<20 {
		t.Fatalf("Len() = %d, want %d", a.Len(), 1<<20)
	}

	// The arena must be writable end-to-end.
	data := a.Data
	data[0] = 0xAB
	data[len(data)-1] = 0xCD
	if data[0] != 0xAB || data[len(data)-1] != 0xCD {
		t.Fatalf("arena bytes did not round-trip")
	}
}

func TestAllocateZeroLength(t *testing.T) {
	topo := testTopology(t)
	if _, _, err := Allocate(0, 0, false, topo); err != ErrZeroLength {
		t.Fatalf("Allocate(0 bytes) error = %v, want ErrZeroLength", err)
	}
}

func TestSliceBounds(t *testing.T) {
	topo := testTopology(t)
	a, _, err := Allocate(0, 4096, false, topo)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	defer a.Free()

	s := a.Slice(10, 20)
	if len(s) != 20 {
		t.Fatalf("Slice length = %d, want 20", len(s))
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	topo := testTopology(t)
	a, _, err := Allocate(0, 4096, false, topo)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if err := a.Free(); err != nil {
		t.Fatalf("first Free() error: %v", err)
	}
	if err := a.Free(); err != nil {
		t.Fatalf("second Free() error: %v", err)
	}
}
