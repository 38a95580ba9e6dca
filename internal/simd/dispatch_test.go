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

package simd

import "testing"

func TestSupportsMonotonic(t *testing.T) {
	// 256-bit support implies 128-bit support implies scalar support.
	if Supports256() && !Supports128() {
		t.Fatalf("Supports256()=true but Supports128()=false")
	}
	if !Supports32() || !Supports64() {
		t.Fatalf("32/64-bit chunks must always be supported")
	}
}

func TestHasSIMDMatchesLevel(t *testing.T) {
	if HasSIMD() == (CurrentLevel() == LevelScalar) {
		t.Fatalf("HasSIMD() inconsistent with CurrentLevel()=%v", CurrentLevel())
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelScalar: "scalar",
		LevelSSE2:   "sse2",
		LevelAVX2:   "avx2",
		LevelAVX512: "avx512",
		LevelNEON:   "neon",
		Level(99):   "unknown",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
