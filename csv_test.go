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
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xmem-go/xmem/internal/kernel"
)

func TestCSVWriterHeaderHasOneColumnPairPerSocket(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, 2)
	rec := &Record{Name: "0_SEQUENTIAL_READ_64_stride1", Chunk: kernel.Chunk64, RW: kernel.Read, Pattern: kernel.Sequential, Units: "MB/s"}
	stride := kernel.Stride1
	rec.Stride = &stride
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord() error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing written CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (header + 1 record)", len(rows))
	}
	header := rows[0]
	wantCols := 11 + 2*2 // fixed columns + 2 sockets x (avg, peak)
	if len(header) != wantCols {
		t.Fatalf("header has %d columns, want %d: %v", len(header), wantCols, header)
	}
}

func TestCSVWriterHeaderWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, 0)
	rec := &Record{Name: "r", Chunk: kernel.Chunk32, Units: "MB/s"}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord() error: %v", err)
	}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord() error: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing written CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (one header + two records)", len(rows))
	}
}

func TestCSVWriterRandomPatternStrideIsNA(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, 0)
	rec := &Record{Name: "r", Chunk: kernel.Chunk64, Pattern: kernel.Random, Units: "ns/access"}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord() error: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing written CSV: %v", err)
	}
	strideCol := 8
	if rows[1][strideCol] != "N/A" {
		t.Fatalf("stride column = %q, want N/A for a random-pattern record", rows[1][strideCol])
	}
}

func TestCSVWriterMissingSocketPowerDefaultsToZero(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, 1)
	rec := &Record{Name: "r", Chunk: kernel.Chunk32, Units: "MB/s"} // no SocketPower entries
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord() error: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing written CSV: %v", err)
	}
	avgCol := 11
	if rows[1][avgCol] != "0.000" {
		t.Fatalf("socket 0 average power = %q, want 0.000 when no power data was recorded", rows[1][avgCol])
	}
}
