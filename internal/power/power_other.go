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

package power

import "time"

// New builds an always-unavailable Reader: this platform has no supported
// power-counter source wired up, matching the spec's "missing sampler
// emits zeros, never fails the benchmark" policy.
func New(name string, socket int, samplingPeriod time.Duration) Reader {
	return newUnavailableReader(name)
}
