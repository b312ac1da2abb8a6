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
	"github.com/gorse-io/gemm/common/blocks"
	"github.com/gorse-io/gemm/common/parallel"
	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

// Parallel kernels split the output into regions written by exactly one task
// each. A and B are only read, so tasks share them without locks. Every kernel
// returns after all of its tasks have finished. A non-positive jobs uses
// GOMAXPROCS workers.

// ColumnPartitioned runs the resize-tiled algorithm with one task per column
// tile. There may be more tasks than workers.
func ColumnPartitioned[T constraints.Float](jobs int) Kernel[T] {
	return func(a, b, c blocks.Layout[T]) error {
		r, err := newResized(a, b, c)
		if err != nil {
			return errors.Trace(err)
		}
		if r.empty() {
			return nil
		}
		parallel.For(r.bBlocks, parallel.Workers(jobs), func(jb int) {
			r.compute(0, r.m, jb, jb+1)
		})
		return errors.Trace(r.flush())
	}
}

// BalancedChunkPartitioned runs the resize-tiled algorithm on a grid of about
// one task per worker. Each task owns a rectangle of several row tiles and
// several column tiles.
func BalancedChunkPartitioned[T constraints.Float](jobs int) Kernel[T] {
	return func(a, b, c blocks.Layout[T]) error {
		r, err := newResized(a, b, c)
		if err != nil {
			return errors.Trace(err)
		}
		if r.empty() {
			return nil
		}
		workers := parallel.Workers(jobs)
		regions := ComputeTaskGrid(r.rowTiles(), r.bBlocks, workers)
		parallel.ForEach(regions, workers, func(_ int, region Region) {
			r.compute(
				region.Rows.Begin*r.tiles.M, min(region.Rows.End*r.tiles.M, r.m),
				region.Cols.Begin, region.Cols.End)
		})
		return errors.Trace(r.flush())
	}
}

// BaselineColumnPartitioned runs the untiled algorithm with one task per block
// column of C.
func BaselineColumnPartitioned[T constraints.Float](jobs int) Kernel[T] {
	return func(a, b, c blocks.Layout[T]) error {
		u, err := newUntiled(a, b, c)
		if err != nil {
			return errors.Trace(err)
		}
		if u.empty() {
			return nil
		}
		parallel.For(u.cBlocks, parallel.Workers(jobs), func(jb int) {
			u.compute(0, u.m, jb, jb+1)
		})
		return nil
	}
}

// RowRangePartitioned runs the untiled algorithm over contiguous ranges of
// output rows, one range per worker.
func RowRangePartitioned[T constraints.Float](jobs int) Kernel[T] {
	return func(a, b, c blocks.Layout[T]) error {
		u, err := newUntiled(a, b, c)
		if err != nil {
			return errors.Trace(err)
		}
		if u.empty() {
			return nil
		}
		if u.m == 1 {
			u.compute(0, 1, 0, u.cBlocks)
			return nil
		}
		workers := parallel.Workers(jobs)
		parallel.ForEach(RowRanges(u.m, workers), workers, func(_ int, rows Range) {
			u.compute(rows.Begin, rows.End, 0, u.cBlocks)
		})
		return nil
	}
}
