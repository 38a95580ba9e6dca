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

import (
	"fmt"
	"runtime"

	"github.com/xmem-go/xmem/internal/affinity"
)

// AffinitySelfTestReport is the restored "test_thread_affinities()"
// diagnostic from the original implementation: which logical CPUs this
// process could successfully pin the calling thread to.
type AffinitySelfTestReport struct {
	Attempted int
	Failed    []int // logical CPU ids that could not be pinned to
}

func (r AffinitySelfTestReport) String() string {
	if len(r.Failed) == 0 {
		return fmt.Sprintf("affinity: pinned successfully to all %d logical CPUs", r.Attempted)
	}
	return fmt.Sprintf("affinity: %d/%d logical CPUs could not be pinned to: %v", len(r.Failed), r.Attempted, r.Failed)
}

// SelfTestAffinity attempts to pin the calling goroutine to every logical
// CPU the topology reports, in turn, restoring every pin before returning.
// Run once at startup under -v; failures are non-fatal, matching the
// spec's affinity-failure policy (§7).
func (i *Info) SelfTestAffinity() AffinitySelfTestReport {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() { _ = affinity.Unpin() }()

	report := AffinitySelfTestReport{Attempted: i.NumLogicalCPUs}
	for cpu := 0; cpu < i.NumLogicalCPUs; cpu++ {
		if err := affinity.Pin(cpu); err != nil {
			report.Failed = append(report.Failed, cpu)
		}
	}
	return report
}
