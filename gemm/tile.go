// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gemm

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

const pageBytes = 4 << 10

// Tiles is the number of rows (M), inner elements (K) and columns (N) in one tile.
type Tiles struct {
	M int
	K int
	N int
}

// TileSizes picks tile sizes for an M×K left operand. A tile of A, B and C fits
// together in a 256 KiB L2 cache, and a tile row of B or C fills one memory page.
func TileSizes[T constraints.Float](m, k int) Tiles {
	var zero T
	tiles := Tiles{M: 24, K: 30, N: pageBytes / int(unsafe.Sizeof(zero))}
	if k > 0 && m/k >= 10 {
		tiles.M, tiles.K = 256, 24
	}
	return tiles
}
