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

package affinity

import "golang.org/x/sys/unix"

// boostedPriority mirrors nice(-20): the highest scheduling priority a
// process can request without CAP_SYS_NICE privileges being guaranteed, so
// failures here are expected under an unprivileged test runner and are
// reported, not fatal.
const boostedPriority = -20

func pin(cpuID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)
	return unix.SchedSetaffinity(0, &mask)
}

// unpin sets every CPU id a unix.CPUSet can hold (1024); the kernel keeps
// only the CPUs that exist and that the process is allowed to use.
func unpin() error {
	var mask unix.CPUSet
	mask.Zero()
	for cpu := 0; cpu < 1024; cpu++ {
		mask.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &mask)
}

func boostPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, boostedPriority)
}

func restorePriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, 0)
}
