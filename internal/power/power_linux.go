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

package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// raplPackagePath returns the powercap sysfs directory for socket's package
// zone, e.g. "intel-rapl:0" for socket 0, skipping subzones (core/uncore)
// which carry a second colon-separated component.
func raplPackagePath(socket int) (string, error) {
	base := "/sys/class/powercap"
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", err
	}
	want := fmt.Sprintf("intel-rapl:%d", socket)
	for _, e := range entries {
		if e.Name() == want {
			return filepath.Join(base, e.Name()), nil
		}
	}
	return "", fmt.Errorf("power: no RAPL zone for socket %d", socket)
}

func readEnergyUJ(zoneDir string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(zoneDir, "energy_uj"))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func readMaxEnergyRangeUJ(zoneDir string) uint64 {
	data, err := os.ReadFile(filepath.Join(zoneDir, "max_energy_range_uj"))
	if err != nil {
		return 0
	}
	v, _ := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	return v
}

// raplSampler turns the monotonically increasing (and occasionally
// wrapping) energy_uj counter into an instantaneous watts reading by
// dividing the energy delta between calls by the elapsed wall time.
type raplSampler struct {
	zoneDir  string
	maxRange uint64

	mu       sync.Mutex
	lastUJ   uint64
	lastTime time.Time
	primed   bool
}

func (s *raplSampler) sample() (float64, bool) {
	uj, err := readEnergyUJ(s.zoneDir)
	if err != nil {
		return 0, false
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.primed {
		s.lastUJ = uj
		s.lastTime = now
		s.primed = true
		return 0, false
	}

	deltaUJ := uj - s.lastUJ
	if uj < s.lastUJ && s.maxRange > 0 {
		deltaUJ = (s.maxRange - s.lastUJ) + uj
	}
	deltaT := now.Sub(s.lastTime).Seconds()
	s.lastUJ = uj
	s.lastTime = now
	if deltaT <= 0 {
		return 0, false
	}
	watts := (float64(deltaUJ) / 1e6) / deltaT
	return watts, true
}

// New builds a Reader for socket's RAPL package-power zone, falling back to
// an always-unavailable reader when no such zone exists (containers and
// non-Intel hosts commonly lack /sys/class/powercap/intel-rapl entirely).
func New(name string, socket int, samplingPeriod time.Duration) Reader {
	zoneDir, err := raplPackagePath(socket)
	if err != nil {
		return newUnavailableReader(name)
	}
	s := &raplSampler{zoneDir: zoneDir, maxRange: readMaxEnergyRangeUJ(zoneDir)}
	return newReader(name, samplingPeriod, 1.0, s.sample)
}
