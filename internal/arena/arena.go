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

// Package arena allocates the large, page-aligned, optionally NUMA-bound
// memory regions that benchmark workers read and write, the way the
// original X-Mem's MemoryWorker/Extensions allocate and bind its per-node
// working sets before any timing begins.
package arena

import (
	"errors"
	"fmt"

	"github.com/xmem-go/xmem/internal/topology"
)

// PageClass records which page size backed an Arena's allocation.
type PageClass int

const (
	PageClassRegular PageClass = iota
	PageClassLarge
)

func (c PageClass) String() string {
	if c == PageClassLarge {
		return "large"
	}
	return "regular"
}

// Arena is a page-aligned memory region, optionally bound to one NUMA node.
type Arena struct {
	Data      []byte
	NUMANode  int
	PageClass PageClass
	Bound     bool // whether NUMA binding actually took effect

	release func() error
}

// Len reports the arena's usable length in bytes.
func (a *Arena) Len() int { return len(a.Data) }

// Slice returns a[offset:offset+length], matching the original's pointer
// arithmetic over a single allocated buffer.
func (a *Arena) Slice(offset, length int) []byte {
	return a.Data[offset : offset+length]
}

// Free releases the underlying allocation. Calls after the first are no-ops.
func (a *Arena) Free() error {
	if a.release == nil {
		return nil
	}
	release := a.release
	a.release = nil
	return release()
}

// ErrZeroLength is returned by Allocate when asked for a non-positive size.
var ErrZeroLength = errors.New("arena: size must be positive")

// Allocate reserves a working set of the given size, bound to numaNode when
// the platform and topology support it. useLargePages requests huge-page
// backing (the original's LARGE_PAGE working-set extension); failures to
// bind or to get huge pages degrade to a warning-worthy best-effort
// allocation rather than an error, matching the spec's policy that a
// platform limitation should never abort a whole benchmark run.
func Allocate(numaNode int, sizeBytes int, useLargePages bool, topo *topology.Info) (*Arena, []string, error) {
	if sizeBytes <= 0 {
		return nil, nil, ErrZeroLength
	}
	return allocate(numaNode, sizeBytes, useLargePages, topo)
}

func warnf(warnings *[]string, format string, args ...any) {
	*warnings = append(*warnings, fmt.Sprintf(format, args...))
}
