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
	"github.com/gorse-io/gemm/common/floats"
	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

// DirectTiled tiles the original block storage without converting it. Tile
// boundaries rarely coincide with block boundaries, so every tile translates
// its coordinates into (block, offset) pairs. This is slower than the copying
// variants in practice.
func DirectTiled[T constraints.Float](a, b, c blocks.Layout[T]) error {
	u, err := newUntiled(a, b, c)
	if err != nil {
		return errors.Trace(err)
	}
	if u.empty() {
		return nil
	}
	m, k, n := u.m, u.k, u.n
	tiles := TileSizes[T](m, k)
	aw, cw := u.aWidth, width(u.c)
	for it := 0; it < m; it += tiles.M {
		ie := min(it+tiles.M, m)
		for kt := 0; kt < k; kt += tiles.K {
			ke := min(kt+tiles.K, k)
			for jt := 0; jt < n; jt += tiles.N {
				je := min(jt+tiles.N, n)
				for i := it; i < ie; i++ {
					kb, kk := kt/aw, kt%aw
					for l := kt; l < ke; kb, kk = kb+1, 0 {
						left := u.a.Block(i, kb)
						for ; kk < len(left) && l < ke; kk, l = kk+1, l+1 {
							aik := left[kk]
							jb, jj := jt/cw, jt%cw
							for j := jt; j < je; jb, jj = jb+1, 0 {
								dst := u.c.Block(i, jb)
								size := min(len(dst)-jj, je-j)
								floats.MulConstAdd(u.b.Block(l, jb)[jj:jj+size], aik, dst[jj:jj+size])
								j += size
							}
						}
					}
				}
			}
		}
	}
	return nil
}

// DenseCopyTiled copies every operand into one block per row, runs the tiled loop
// over flat rows and copies the result back. The inner loop is the simplest of
// all variants, but the copies scale with the size of the operands.
func DenseCopyTiled[T constraints.Float](a, b, c blocks.Layout[T]) error {
	op, err := prepare(a, b, c)
	if err != nil {
		return errors.Trace(err)
	}
	if op.empty() {
		return nil
	}
	m, k, n := op.m, op.k, op.n
	tiles := TileSizes[T](m, k)
	dense, err := resize(op.a, k)
	if err != nil {
		return errors.Trace(err)
	}
	rhs, err := resize(op.b, n)
	if err != nil {
		return errors.Trace(err)
	}
	dst, err := newWorkspace(op.c, n)
	if err != nil {
		return errors.Trace(err)
	}
	for it := 0; it < m; it += tiles.M {
		ie := min(it+tiles.M, m)
		for kt := 0; kt < k; kt += tiles.K {
			ke := min(kt+tiles.K, k)
			for jt := 0; jt < n; jt += tiles.N {
				je := min(jt+tiles.N, n)
				for i := it; i < ie; i++ {
					ci := dst.layout.Block(i, 0)[jt:je]
					ai := dense.Block(i, 0)
					for l := kt; l < ke; l++ {
						floats.MulConstAdd(rhs.Block(l, 0)[jt:je], ai[l], ci)
					}
				}
			}
		}
	}
	return errors.Trace(dst.flush())
}

// resized holds operands converted to tile-wide blocks, so that one block of B
// or C is one column tile and one block of A is one inner tile.
type resized[T constraints.Float] struct {
	*operands[T]
	tiles   Tiles
	dst     *workspace[T]
	aWidth  int
	aBlocks int
	bBlocks int
}

func newResized[T constraints.Float](a, b, c blocks.Layout[T]) (*resized[T], error) {
	op, err := prepare(a, b, c)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r := &resized[T]{operands: op, tiles: TileSizes[T](op.m, op.k)}
	if op.empty() {
		return r, nil
	}
	// operands narrower than a tile are used as they are
	if width(op.a) > r.tiles.K {
		if op.a, err = resize(op.a, r.tiles.K); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if width(op.b) > r.tiles.N {
		if op.b, err = resize(op.b, r.tiles.N); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if r.dst, err = newWorkspace(op.c, width(op.b)); err != nil {
		return nil, errors.Trace(err)
	}
	op.c = r.dst.layout
	r.aWidth = width(op.a)
	r.aBlocks = blocks.BlocksInRow(op.a)
	r.bBlocks = blocks.BlocksInRow(op.b)
	return r, nil
}

// rowTiles returns the number of row tiles.
func (r *resized[T]) rowTiles() int {
	return (r.m + r.tiles.M - 1) / r.tiles.M
}

// compute accumulates rows [rowBegin, rowEnd) of column tiles [colBegin, colEnd).
func (r *resized[T]) compute(rowBegin, rowEnd, colBegin, colEnd int) {
	for it := rowBegin; it < rowEnd; it += r.tiles.M {
		ie := min(it+r.tiles.M, rowEnd)
		for kb := 0; kb < r.aBlocks; kb++ {
			offset := kb * r.aWidth
			for jb := colBegin; jb < colEnd; jb++ {
				for i := it; i < ie; i++ {
					ci := r.c.Block(i, jb)
					for kk, aik := range r.a.Block(i, kb) {
						floats.MulConstAdd(r.b.Block(offset+kk, jb), aik, ci)
					}
				}
			}
		}
	}
}

func (r *resized[T]) flush() error {
	if r.empty() {
		return nil
	}
	return errors.Trace(r.dst.flush())
}

// ResizeTiled converts operands wider than a tile into tile-wide blocks and runs
// the tiled loop block by block. Conversion is skipped for operands that are
// already narrow enough.
func ResizeTiled[T constraints.Float](a, b, c blocks.Layout[T]) error {
	r, err := newResized(a, b, c)
	if err != nil {
		return errors.Trace(err)
	}
	if r.empty() {
		return nil
	}
	r.compute(0, r.m, 0, r.bBlocks)
	return errors.Trace(r.flush())
}
