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

// Package powerpool holds one power.Reader per socket for the lifetime of
// an orchestrator run and drives their start/stop cycles in lockstep
// around every benchmark iteration, instead of spawning and tearing down
// sampler goroutines per iteration.
//
// This adapts the persistent-pool shape used elsewhere in this codebase
// for parallel compute (spawn once, reuse across many operations) to a
// different kind of persistent resource: background samplers instead of
// worker goroutines.
package powerpool

import (
	"strconv"
	"sync"
	"time"

	"github.com/xmem-go/xmem/internal/power"
)

// Pool holds one reader per socket, created once and reused across every
// iteration of every benchmark in a run.
type Pool struct {
	readers []power.Reader
}

// New creates a Pool with one reader per socket in [0, numSockets), using
// samplingPeriod as each reader's sample interval.
func New(numSockets int, samplingPeriod time.Duration) *Pool {
	readers := make([]power.Reader, numSockets)
	for socket := 0; socket < numSockets; socket++ {
		readers[socket] = power.New(socketName(socket), socket, samplingPeriod)
	}
	return &Pool{readers: readers}
}

func socketName(socket int) string {
	return "Socket " + strconv.Itoa(socket)
}

// NumSockets reports how many readers this pool manages.
func (p *Pool) NumSockets() int { return len(p.readers) }

// StartAll clears every reader's prior samples and begins sampling on all
// of them concurrently, ready for one benchmark iteration.
func (p *Pool) StartAll() {
	var wg sync.WaitGroup
	wg.Add(len(p.readers))
	for _, r := range p.readers {
		r := r
		go func() {
			defer wg.Done()
			r.ClearAndReset()
			r.Start()
		}()
	}
	wg.Wait()
}

// StopAll signals every reader to stop and waits for all of them,
// returning false if any individual stop timed out (the caller should
// treat that socket's results as unavailable for this iteration, not fail
// the benchmark).
func (p *Pool) StopAll() bool {
	var wg sync.WaitGroup
	results := make([]bool, len(p.readers))
	wg.Add(len(p.readers))
	for i, r := range p.readers {
		i, r := i, r
		go func() {
			defer wg.Done()
			results[i] = r.Stop()
		}()
	}
	wg.Wait()
	ok := true
	for _, r := range results {
		ok = ok && r
	}
	return ok
}

// Snapshot reads average/peak power for every socket right after StopAll.
type Snapshot struct {
	Socket      int
	Name        string
	AverageWatt float64
	PeakWatt    float64
	Available   bool
}

// Snapshots returns one Snapshot per socket in the pool.
func (p *Pool) Snapshots() []Snapshot {
	out := make([]Snapshot, len(p.readers))
	for i, r := range p.readers {
		out[i] = Snapshot{
			Socket:      i,
			Name:        r.Name(),
			AverageWatt: r.AveragePower(),
			PeakWatt:    r.PeakPower(),
			Available:   r.Available(),
		}
	}
	return out
}
