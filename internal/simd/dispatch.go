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

// Package simd reports which SIMD instruction set, if any, is available on
// the current machine and derives from it which chunk sizes the kernel
// catalog may legally exercise.
//
// This mirrors the dispatch philosophy of the go-highway project (detect
// once at process start, expose the result through small accessor
// functions) but repurposes the detected level from "widest arithmetic
// vector" to "widest memory chunk that can be loaded/stored as one unit
// without relying on unavailable hardware."
package simd

import (
	"os"
	"strconv"
)

// Level identifies the SIMD instruction set detected for this process.
type Level int

const (
	// LevelScalar means no SIMD acceleration was detected (or was disabled).
	LevelScalar Level = iota

	// LevelSSE2 is the x86-64 baseline 128-bit vector extension.
	LevelSSE2

	// LevelAVX2 is the 256-bit x86-64 vector extension.
	LevelAVX2

	// LevelAVX512 is the 512-bit x86-64 vector extension.
	LevelAVX512

	// LevelNEON is the ARM64 128-bit vector extension (mandatory on ARMv8-A).
	LevelNEON
)

func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelSSE2:
		return "sse2"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel and currentWidth are set once by the platform-specific
// init() in dispatch_amd64.go / dispatch_arm64.go / dispatch_other.go.
var currentLevel Level
var currentWidth int // vector register width, in bytes, of the detected level

// CurrentLevel returns the SIMD level detected for this process.
func CurrentLevel() Level { return currentLevel }

// CurrentWidth returns the vector register width in bytes associated with
// the detected level: 64 for AVX-512, 32 for AVX2, and 16 otherwise
// (scalar included). Which wide chunk kernels may run is reported by
// Supports128 and Supports256, not by this value.
func CurrentWidth() int { return currentWidth }

// HasSIMD reports whether any hardware SIMD acceleration was detected.
func HasSIMD() bool { return currentLevel != LevelScalar }

// NoSimdEnv reports whether XMEM_NO_SIMD requests scalar-only operation,
// forcing 128/256-bit chunk kernels to be treated as unsupported regardless
// of detected hardware. Useful for reproducing results on machines that
// lack wide vector units, and for testing the "unsupported kernel" path.
func NoSimdEnv() bool {
	v := os.Getenv("XMEM_NO_SIMD")
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

// Supports32 and Supports64 are unconditionally true: every architecture
// Go targets has native 32- and 64-bit load/store.
func Supports32() bool { return true }
func Supports64() bool { return true }

// Supports128 reports whether 128-bit (16-byte) chunk kernels may run on
// this build. Requires some SIMD level beyond scalar, matching the spec's
// "128/256 require matching SIMD support" rule.
func Supports128() bool {
	return currentLevel != LevelScalar
}

// Supports256 reports whether 256-bit (32-byte) chunk kernels may run on
// this build. Requires AVX2 or wider on x86-64; NEON alone (128-bit) does
// not qualify.
func Supports256() bool {
	return currentLevel == LevelAVX2 || currentLevel == LevelAVX512
}
