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

package xmem

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xmem-go/xmem/internal/kernel"
)

// CSVWriter appends one row per benchmark to an underlying encoding/csv
// writer, matching spec.md §6's schema: a fixed set of configuration
// columns, the average metric and its units, then one Average/Peak power
// column pair per socket, ordered by ascending socket index.
type CSVWriter struct {
	w          *csv.Writer
	numSockets int
	wroteHdr   bool
}

// NewCSVWriter wraps dst, ready to emit the header on the first WriteRecord
// call. numSockets fixes how many socket power column pairs every row
// (including the header) carries, matching the original's
// "for (socket = 0; socket < num_sockets; socket++)" column loop.
func NewCSVWriter(dst io.Writer, numSockets int) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(dst), numSockets: numSockets}
}

func (c *CSVWriter) header() []string {
	hdr := []string{
		"Test Name", "Iterations", "Working Set Size Per Thread (KB)",
		"NUMA Memory Node", "NUMA CPU Node", "Access Pattern",
		"Read/Write Mix", "Chunk Size (bits)", "Stride Size (chunks)",
		"Average Test Result", "Test Result Units",
	}
	for s := 0; s < c.numSockets; s++ {
		hdr = append(hdr, fmt.Sprintf("Socket %d Average Power (W)", s), fmt.Sprintf("Socket %d Peak Power (W)", s))
	}
	return hdr
}

// WriteRecord appends one benchmark's row, writing the header first if this
// is the first call. Stride renders "N/A" for random-pattern benchmarks.
func (c *CSVWriter) WriteRecord(rec *Record) error {
	if !c.wroteHdr {
		if err := c.w.Write(c.header()); err != nil {
			return fmt.Errorf("xmem: csv header: %w", err)
		}
		c.wroteHdr = true
	}

	stride := "N/A"
	if rec.Stride != nil {
		stride = strconv.Itoa(int(*rec.Stride))
	}

	row := []string{
		rec.Name,
		strconv.Itoa(rec.Iterations),
		strconv.Itoa(rec.WorkingSetSizeKiB),
		strconv.Itoa(rec.MemoryNode),
		strconv.Itoa(rec.CPUNode),
		patternString(rec.Pattern),
		rwString(rec.RW),
		chunkString(rec.Chunk),
		stride,
		strconv.FormatFloat(rec.AvgMetric, 'f', 4, 64),
		rec.Units,
	}
	for s := 0; s < c.numSockets; s++ {
		var avg, peak float64
		if s < len(rec.SocketPower) {
			avg = rec.SocketPower[s].Average
			peak = rec.SocketPower[s].Peak
		}
		row = append(row, strconv.FormatFloat(avg, 'f', 3, 64), strconv.FormatFloat(peak, 'f', 3, 64))
	}

	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("xmem: csv row: %w", err)
	}
	c.w.Flush()
	return c.w.Error()
}

// patternString/rwString/chunkString render enum values for the CSV,
// falling back to "UNKNOWN" for any value outside the recognized set.
// kernel.Pattern, kernel.RW, and kernel.Chunk render such values as
// "UNKNOWN(<n>)"; csvEnum reduces that to the bare "UNKNOWN".
func patternString(p kernel.Pattern) string { return csvEnum(p.String()) }
func rwString(rw kernel.RW) string          { return csvEnum(rw.String()) }
func chunkString(c kernel.Chunk) string     { return csvEnum(c.String()) }

func csvEnum(s string) string {
	if strings.HasPrefix(s, "UNKNOWN") {
		return "UNKNOWN"
	}
	return s
}
