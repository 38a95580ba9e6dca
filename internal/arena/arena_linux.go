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

//go:build linux

package arena

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/xmem-go/xmem/internal/topology"
)

// mbind() policy modes, from <linux/mempolicy.h>. golang.org/x/sys/unix does
// not wrap mbind(2) itself, so it is invoked directly via unix.Syscall6 the
// same way the rest of this package already reaches for raw unix.* numbers
// instead of hand-rolled cgo.
const (
	mpolBind     = 2
	mpolMFStrict = 1 << 0
	mpolMFMove   = 1 << 1
	sysMbind     = unix.SYS_MBIND // 237 on linux/amd64, 235 on linux/arm64
)

func allocate(numaNode int, sizeBytes int, useLargePages bool, topo *topology.Info) (*Arena, []string, error) {
	var warnings []string

	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANONYMOUS | unix.MAP_PRIVATE | unix.MAP_POPULATE

	pageClass := PageClassRegular
	allocSize := sizeBytes
	if useLargePages {
		if topo.LargePageSize > 0 {
			allocSize = roundUp(sizeBytes, topo.LargePageSize)
		}
		flags |= unix.MAP_HUGETLB
		pageClass = PageClassLarge
	}

	data, err := unix.Mmap(-1, 0, allocSize, prot, flags)
	if err != nil && useLargePages {
		// Huge pages are frequently unavailable (no hugetlbfs pool
		// configured); degrade to a regular-page allocation rather than
		// failing the whole benchmark.
		warnf(&warnings, "huge pages unavailable on NUMA node %d (%v), falling back to regular pages", numaNode, err)
		pageClass = PageClassRegular
		allocSize = sizeBytes
		flags = unix.MAP_ANONYMOUS | unix.MAP_PRIVATE | unix.MAP_POPULATE
		data, err = unix.Mmap(-1, 0, allocSize, prot, flags)
	}
	if err != nil {
		return nil, warnings, fmt.Errorf("arena: mmap %d bytes failed: %w", allocSize, err)
	}

	bound := false
	if topo.NUMABindable {
		if bindErr := bindToNode(data, numaNode); bindErr != nil {
			warnf(&warnings, "failed to bind arena to NUMA node %d (%v); memory placement is not guaranteed", numaNode, bindErr)
		} else {
			bound = true
		}
	} else {
		warnf(&warnings, "NUMA binding unavailable on this platform; arena for node %d is unbound", numaNode)
	}

	if pageClass == PageClassLarge {
		_ = unix.Madvise(data, unix.MADV_HUGEPAGE)
	}

	// Touch every page forward-sequentially so the mapping is resident
	// before any timed access, matching the original's page-fault priming
	// pass implicit in its first full write-through of a fresh allocation.
	for i := 0; i < len(data); i += topo.PageSize {
		data[i] = 0
	}

	usable := data[:sizeBytes]
	a := &Arena{
		Data:      usable,
		NUMANode:  numaNode,
		PageClass: pageClass,
		Bound:     bound,
		release: func() error {
			return unix.Munmap(data)
		},
	}
	return a, warnings, nil
}

func roundUp(n, multiple int) int {
	if multiple <= 0 {
		return n
	}
	rem := n % multiple
	if rem == 0 {
		return n
	}
	return n + (multiple - rem)
}

// bindToNode applies an mbind(MPOL_BIND) policy restricting data's pages to
// numaNode, moving any pages already faulted in elsewhere.
func bindToNode(data []byte, numaNode int) error {
	if len(data) == 0 {
		return nil
	}
	var nodemask uint64
	if numaNode < 0 || numaNode >= 64 {
		return fmt.Errorf("numa node %d out of supported range", numaNode)
	}
	nodemask = 1 << uint(numaNode)

	_, _, errno := unix.Syscall6(
		sysMbind,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(mpolBind),
		uintptr(unsafe.Pointer(&nodemask)),
		uintptr(65), // maxnode: nodemask bit width + 1, per mbind(2)
		uintptr(mpolMFStrict|mpolMFMove),
	)
	if errno != 0 {
		return syscall.Errno(errno)
	}
	return nil
}
