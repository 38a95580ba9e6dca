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

//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		currentLevel = LevelScalar
		currentWidth = 16
		return
	}

	switch {
	case cpu.X86.HasAVX512F:
		currentLevel = LevelAVX512
		currentWidth = 64
	case cpu.X86.HasAVX2:
		currentLevel = LevelAVX2
		currentWidth = 32
	case cpu.X86.HasSSE2:
		currentLevel = LevelSSE2
		currentWidth = 16
	default:
		// SSE2 is mandatory on amd64, so this branch is not expected to
		// run; it keeps the level defined if the feature probe reports none.
		currentLevel = LevelScalar
		currentWidth = 16
	}
}
