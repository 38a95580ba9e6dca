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

package xtimer

import "testing"

func TestStartStopMonotonic(t *testing.T) {
	a := Start()
	b := Stop()
	if b < a {
		t.Fatalf("tick went backwards: start=%d stop=%d", a, b)
	}
}

func TestCalibrationIsPositive(t *testing.T) {
	if TicksPerSec() == 0 {
		t.Fatalf("TicksPerSec() = 0, want > 0")
	}
	if NsPerTick() <= 0 {
		t.Fatalf("NsPerTick() = %v, want > 0", NsPerTick())
	}
}

func TestToNanosScalesLinearly(t *testing.T) {
	one := ToNanos(1)
	ten := ToNanos(10)
	if ten != one*10 {
		t.Fatalf("ToNanos not linear: ToNanos(1)=%v ToNanos(10)=%v", one, ten)
	}
}

func TestSelfTestReportString(t *testing.T) {
	r := SelfTest()
	if r.TicksPerSec == 0 {
		t.Fatalf("SelfTest().TicksPerSec = 0")
	}
	if r.String() == "" {
		t.Fatalf("SelfTestReport.String() empty")
	}
}
