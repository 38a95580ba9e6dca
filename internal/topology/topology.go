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

// Package topology enumerates the NUMA nodes, logical/physical CPUs, and
// page sizes of the host machine, the way the original X-Mem's
// query_sys_info()/config_page_size() populate its global topology state.
package topology

import "fmt"

// DefaultPageSize and DefaultLargePageSize are the failsafe values used
// when the platform-specific probe cannot determine the real sizes,
// matching common.h's DEFAULT_PAGE_SIZE/DEFAULT_LARGE_PAGE_SIZE.
const (
	DefaultPageSize      = 4 * 1024
	DefaultLargePageSize = 2 * 1024 * 1024
)

// Info describes the machine's NUMA/CPU/page-size topology.
type Info struct {
	NumNodes        int
	NumPackages     int
	NumPhysicalCPUs int
	NumLogicalCPUs  int
	PageSize        int
	LargePageSize   int
	NUMABindable    bool // whether this platform can actually bind memory/threads to a node

	// nodeCPUs maps a NUMA node id to its sorted logical CPU ids.
	nodeCPUs map[int][]int
}

// CPUInNode returns the rank-th logical CPU id within numaNode, matching
// the original's cpu_id_in_numa_node(). ok is false if the node or rank is
// out of range.
func (i *Info) CPUInNode(numaNode, rank int) (cpuID int, ok bool) {
	cpus, present := i.nodeCPUs[numaNode]
	if !present || rank < 0 || rank >= len(cpus) {
		return 0, false
	}
	return cpus[rank], true
}

// CPUsInNode returns a copy of the logical CPU ids belonging to numaNode.
func (i *Info) CPUsInNode(numaNode int) []int {
	cpus := i.nodeCPUs[numaNode]
	out := make([]int, len(cpus))
	copy(out, cpus)
	return out
}

func (i *Info) String() string {
	return fmt.Sprintf("nodes=%d packages=%d physical_cpus=%d logical_cpus=%d page=%dB large_page=%dB numa_bindable=%v",
		i.NumNodes, i.NumPackages, i.NumPhysicalCPUs, i.NumLogicalCPUs, i.PageSize, i.LargePageSize, i.NUMABindable)
}

// Probe enumerates the current machine's topology once. Callers should
// cache the result; this mirrors the original's "probed once at startup"
// contract.
func Probe() (*Info, error) {
	return probe()
}
