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

// Package affinity pins the calling goroutine's underlying OS thread to a
// specific logical CPU and raises its scheduling priority, the way the
// original X-Mem worker threads call lock_thread_to_core()/
// set_thread_priority() before timing anything.
package affinity

import "errors"

// ErrUnsupported is returned by Pin/Boost/Restore on platforms where the
// operation has no meaningful implementation. Callers must treat it as a
// warning, never a fatal error: an unpinned worker still produces a valid
// (if noisier) measurement.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// Pin locks the calling goroutine's OS thread to cpuID for the remainder of
// the goroutine's life, or until Unpin is called. Callers must have already
// called runtime.LockOSThread(); Pin does not do so itself because the
// caller typically wants to control the lock/unlock lifetime directly.
func Pin(cpuID int) error {
	return pin(cpuID)
}

// Unpin clears any CPU affinity mask previously set by Pin, restoring the
// thread to the default "may run anywhere" scheduling.
func Unpin() error {
	return unpin()
}

// BoostPriority raises the calling thread's scheduling priority, matching
// the original's best-effort SetThreadPriority(THREAD_PRIORITY_TIME_CRITICAL)
// / setpriority(PRIO_PROCESS, ..., -20) call made immediately before timing.
func BoostPriority() error {
	return boostPriority()
}

// RestorePriority undoes BoostPriority.
func RestorePriority() error {
	return restorePriority()
}
