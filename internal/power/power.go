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

// Package power samples per-socket power draw while a benchmark is
// running, the way the original's PowerReader subclasses sample a platform
// power counter on a fixed period between start() and stop().
package power

import (
	"sync"
	"time"
)

// DefaultSamplingPeriod mirrors POWER_SAMPLING_PERIOD_SEC.
const DefaultSamplingPeriod = time.Second

// Reader measures power for one socket. Start begins a background sampling
// goroutine; Stop signals it to end and waits (with a timeout) for it to
// finish. AveragePower/PeakPower/PowerUnits are safe to call at any time.
type Reader interface {
	Start()
	Stop() bool
	ClearAndReset()
	AveragePower() float64
	PeakPower() float64
	PowerUnits() float64
	Name() string
	Available() bool
}

// Sample reads the socket's instantaneous power in watts. Implementations
// unable to read a real counter return (0, false); the caller treats that
// as "emit zeros for that socket, continue" per the spec's error policy.
type Sample func() (watts float64, ok bool)

// reader is the common sampling loop shared by every platform's Reader,
// mirroring PowerReader's run()/stop()/average_power() family with the
// concrete sample source injected.
type reader struct {
	name           string
	samplingPeriod time.Duration
	powerUnits     float64
	sample         Sample

	mu        sync.Mutex
	samples   []float64
	available bool

	stopCh chan struct{}
	doneCh chan struct{}
}

func newReader(name string, samplingPeriod time.Duration, powerUnits float64, sample Sample) *reader {
	return &reader{
		name:           name,
		samplingPeriod: samplingPeriod,
		powerUnits:     powerUnits,
		sample:         sample,
	}
}

func (r *reader) Name() string { return r.name }

func (r *reader) Start() {
	r.mu.Lock()
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stop, done := r.stopCh, r.doneCh
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.samplingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				watts, ok := r.sample()
				r.mu.Lock()
				if ok {
					r.available = true
					r.samples = append(r.samples, watts)
				}
				r.mu.Unlock()
			}
		}
	}()
}

// stopTimeout bounds how long Stop waits for the sampling goroutine to
// notice the stop signal, matching the original's "join with a fixed
// timeout, cancel on failure" contract.
const stopTimeout = 5 * time.Second

func (r *reader) Stop() bool {
	r.mu.Lock()
	stop, done := r.stopCh, r.doneCh
	r.mu.Unlock()
	if stop == nil {
		return false
	}
	close(stop)
	select {
	case <-done:
		return true
	case <-time.After(stopTimeout):
		return false
	}
}

func (r *reader) ClearAndReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
	r.available = false
}

func (r *reader) AveragePower() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.samples {
		sum += s
	}
	return sum / float64(len(r.samples))
}

func (r *reader) PeakPower() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var peak float64
	for _, s := range r.samples {
		if s > peak {
			peak = s
		}
	}
	return peak
}

func (r *reader) PowerUnits() float64 { return r.powerUnits }

func (r *reader) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available
}

// newUnavailableReader builds a Reader whose Sample always reports
// unavailable, so AveragePower/PeakPower stay at zero and Available stays
// false for the lifetime of the benchmark, per the "missing sampler emits
// zeros" error policy.
func newUnavailableReader(name string) Reader {
	return newReader(name, DefaultSamplingPeriod, 0, func() (float64, bool) { return 0, false })
}
