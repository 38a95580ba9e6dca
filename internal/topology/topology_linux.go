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

package topology

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// probe reads /sys/devices/system/node and /proc/cpuinfo the way
// ja7ad-consumption's pkg/system/proc readers parse /proc/<pid>/stat:
// line-oriented bufio.Scanner plus strings.Fields/strconv, falling back to
// portable defaults field-by-field whenever a particular file is missing
// (containers and some VMs do not expose /sys/devices/system/node).
func probe() (*Info, error) {
	info := &Info{
		PageSize:      os.Getpagesize(),
		LargePageSize: readHugepageSize(),
	}

	nodeCPUs := readNodeCPUs()
	if len(nodeCPUs) == 0 {
		// No NUMA topology exposed: treat the machine as one node holding
		// every logical CPU, with NUMA binding unavailable.
		n := runtime.NumCPU()
		cpus := make([]int, n)
		for i := range cpus {
			cpus[i] = i
		}
		nodeCPUs = map[int][]int{0: cpus}
		info.NUMABindable = false
	} else {
		info.NUMABindable = true
	}
	info.nodeCPUs = nodeCPUs
	info.NumNodes = len(nodeCPUs)

	logical := 0
	for _, cpus := range nodeCPUs {
		logical += len(cpus)
	}
	info.NumLogicalCPUs = logical

	packages, physical := readCPUInfoTopology()
	if packages == 0 {
		packages = 1
	}
	if physical == 0 {
		physical = logical
	}
	info.NumPackages = packages
	info.NumPhysicalCPUs = physical

	return info, nil
}

// readNodeCPUs parses /sys/devices/system/node/node*/cpulist, a comma- and
// dash-separated range list such as "0-3,8" per node directory.
func readNodeCPUs() map[int][]int {
	base := "/sys/devices/system/node"
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	result := make(map[int][]int)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		nodeID, err := strconv.Atoi(strings.TrimPrefix(name, "node"))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(base, name, "cpulist"))
		if err != nil {
			continue
		}
		cpus := parseCPUList(strings.TrimSpace(string(data)))
		if len(cpus) > 0 {
			result[nodeID] = cpus
		}
	}
	return result
}

// parseCPUList parses a Linux-style CPU range list ("0-3,8,10-11").
func parseCPUList(s string) []int {
	var out []int
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lo, errLo := strconv.Atoi(part[:dash])
			hi, errHi := strconv.Atoi(part[dash+1:])
			if errLo != nil || errHi != nil || hi < lo {
				continue
			}
			for c := lo; c <= hi; c++ {
				out = append(out, c)
			}
		} else if v, err := strconv.Atoi(part); err == nil {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// readCPUInfoTopology counts distinct "physical id" values (sockets/packages)
// and "core id" values (physical cores) out of /proc/cpuinfo.
func readCPUInfoTopology() (packages, physicalCPUs int) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	physIDs := make(map[string]bool)
	cores := make(map[string]bool)

	var curPhys string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.SplitN(line, ":", 2)
		if len(fields) != 2 {
			continue
		}
		key := strings.TrimSpace(fields[0])
		val := strings.TrimSpace(fields[1])
		switch key {
		case "physical id":
			curPhys = val
			physIDs[val] = true
		case "core id":
			cores[curPhys+"/"+val] = true
		}
	}
	return len(physIDs), len(cores)
}

// readHugepageSize parses the "Hugepagesize:" line out of /proc/meminfo,
// reported in KB.
func readHugepageSize() int {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return DefaultLargePageSize
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Hugepagesize:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			break
		}
		return kb * 1024
	}
	return DefaultLargePageSize
}
