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
	"math"

	"github.com/gorse-io/gemm/common/parallel"
	"github.com/samber/lo"
)

// Range is the half-open interval [Begin, End).
type Range struct {
	Begin int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Begin
}

// Region is a rectangle of the output owned by one task.
type Region struct {
	Rows Range
	Cols Range
}

// ComputeTaskGrid splits a rowTiles × colTiles grid of tiles into about cores
// contiguous rectangles. The number of row chunks and column chunks follows the
// aspect ratio of the grid. Every tile belongs to exactly one region.
func ComputeTaskGrid(rowTiles, colTiles, cores int) []Region {
	if rowTiles <= 0 || colTiles <= 0 {
		return nil
	}
	cores = max(cores, 1)
	ratio := float64(rowTiles) / float64(colTiles)
	mChunks := int(math.Round(math.Sqrt(float64(cores) * ratio)))
	mChunks = clamp(mChunks, 1, min(rowTiles, cores))
	nChunks := clamp(cores/mChunks, 1, colTiles)
	if mChunks*nChunks < cores {
		// columns ran out, give the remaining cores to rows
		mChunks = clamp(cores/nChunks, 1, rowTiles)
	}
	rows := chunks(rowTiles, mChunks)
	cols := chunks(colTiles, nChunks)
	regions := make([]Region, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			regions = append(regions, Region{Rows: r, Cols: c})
		}
	}
	return regions
}

// RowRanges splits rows into contiguous ranges of ceil(rows / cores) rows.
func RowRanges(rows, cores int) []Range {
	if rows <= 0 {
		return nil
	}
	size := max(1, (rows+max(cores, 1)-1)/max(cores, 1))
	var ranges []Range
	for begin := 0; begin < rows; begin += size {
		ranges = append(ranges, Range{Begin: begin, End: min(begin+size, rows)})
	}
	return ranges
}

// chunks splits [0, n) into k contiguous ranges whose lengths differ by at most one.
func chunks(n, k int) []Range {
	return lo.Map(parallel.Split(lo.Range(n), k), func(chunk []int, _ int) Range {
		return Range{Begin: chunk[0], End: chunk[len(chunk)-1] + 1}
	})
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}
