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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xmem-go/xmem/internal/kernel"
)

// chunkListFlag implements flag.Value for the repeatable -c/--chunk_size
// flag, accumulating every valid occurrence instead of keeping only the
// last one, the way a repeatable CLI flag must behave.
type chunkListFlag struct {
	values *[]kernel.Chunk
}

func (f chunkListFlag) String() string {
	if f.values == nil {
		return ""
	}
	parts := make([]string, len(*f.values))
	for i, c := range *f.values {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func (f chunkListFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid chunk size %q: %w", s, err)
	}
	switch n {
	case 32:
		*f.values = append(*f.values, kernel.Chunk32)
	case 64:
		*f.values = append(*f.values, kernel.Chunk64)
	case 128:
		*f.values = append(*f.values, kernel.Chunk128)
	case 256:
		*f.values = append(*f.values, kernel.Chunk256)
	default:
		return fmt.Errorf("chunk size must be one of 32,64,128,256, got %d", n)
	}
	return nil
}

// strideListFlag implements flag.Value for the repeatable -s/--stride_size
// flag.
type strideListFlag struct {
	values *[]kernel.Stride
}

func (f strideListFlag) String() string {
	if f.values == nil {
		return ""
	}
	parts := make([]string, len(*f.values))
	for i, s := range *f.values {
		parts[i] = strconv.Itoa(int(s))
	}
	return strings.Join(parts, ",")
}

var validStrides = map[int]kernel.Stride{
	-16: kernel.StrideNeg16, -8: kernel.StrideNeg8, -4: kernel.StrideNeg4, -2: kernel.StrideNeg2, -1: kernel.StrideNeg1,
	1: kernel.Stride1, 2: kernel.Stride2, 4: kernel.Stride4, 8: kernel.Stride8, 16: kernel.Stride16,
}

func (f strideListFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid stride %q: %w", s, err)
	}
	stride, ok := validStrides[n]
	if !ok {
		return fmt.Errorf("stride must be one of +-1,2,4,8,16, got %d", n)
	}
	*f.values = append(*f.values, stride)
	return nil
}
