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

package topology

import "runtime"

// probe is the portable fallback used on platforms without sysfs/procfs: a
// single NUMA node holding every logical CPU reported by the runtime, with
// NUMA binding unavailable and page sizes left at their failsafe defaults.
func probe() (*Info, error) {
	n := runtime.NumCPU()
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}

	return &Info{
		NumNodes:        1,
		NumPackages:     1,
		NumPhysicalCPUs: n,
		NumLogicalCPUs:  n,
		PageSize:        DefaultPageSize,
		LargePageSize:   DefaultLargePageSize,
		NUMABindable:    false,
		nodeCPUs:        map[int][]int{0: cpus},
	}, nil
}
