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

//go:build !linux

package arena

import (
	"unsafe"

	"github.com/xmem-go/xmem/internal/topology"
)

// allocate is the portable fallback: a page-aligned heap buffer with no
// NUMA binding and no huge-page backing. Every caller-visible warning this
// emits mirrors a capability the Linux implementation has and this one
// doesn't.
func allocate(numaNode int, sizeBytes int, useLargePages bool, topo *topology.Info) (*Arena, []string, error) {
	var warnings []string
	warnf(&warnings, "NUMA binding unavailable on this platform; arena for node %d is unbound", numaNode)
	if useLargePages {
		warnf(&warnings, "huge pages unavailable on this platform; falling back to regular pages for node %d", numaNode)
	}

	align := topo.PageSize
	if align <= 0 {
		align = topology.DefaultPageSize
	}
	padded := make([]byte, sizeBytes+align)
	off := alignOffset(padded, align)
	data := padded[off : off+sizeBytes]

	a := &Arena{
		Data:      data,
		NUMANode:  numaNode,
		PageClass: PageClassRegular,
		Bound:     false,
		release:   func() error { return nil },
	}
	return a, warnings, nil
}

func alignOffset(buf []byte, align int) int {
	if len(buf) == 0 || align <= 1 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))
	rem := addr % uintptr(align)
	if rem == 0 {
		return 0
	}
	return align - int(rem)
}
