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

// untiled walks C block by block without cache blocking. B is stored with the
// block width of C so that block j of a row of B lines up with block j of C.
type untiled[T constraints.Float] struct {
	*operands[T]
	aWidth  int
	aBlocks int
	cBlocks int
}

func newUntiled[T constraints.Float](a, b, c blocks.Layout[T]) (*untiled[T], error) {
	op, err := prepare(a, b, c)
	if err != nil {
		return nil, errors.Trace(err)
	}
	u := &untiled[T]{operands: op}
	if op.empty() {
		return u, nil
	}
	if op.b, err = resize(op.b, width(op.c)); err != nil {
		return nil, errors.Trace(err)
	}
	u.aWidth = width(op.a)
	u.aBlocks = blocks.BlocksInRow(op.a)
	u.cBlocks = blocks.BlocksInRow(op.c)
	return u, nil
}

// compute accumulates rows [rowBegin, rowEnd) of column blocks [colBegin, colEnd).
func (u *untiled[T]) compute(rowBegin, rowEnd, colBegin, colEnd int) {
	for jb := colBegin; jb < colEnd; jb++ {
		for i := rowBegin; i < rowEnd; i++ {
			dst := u.c.Block(i, jb)
			for kb := 0; kb < u.aBlocks; kb++ {
				left := u.a.Block(i, kb)
				offset := kb * u.aWidth
				for kk, aik := range left {
					floats.MulConstAdd(u.b.Block(offset+kk, jb), aik, dst)
				}
			}
		}
	}
}

// Baseline multiplies without tiling. For each output row the whole of B is
// streamed again, so B gets no reuse across rows.
func Baseline[T constraints.Float](a, b, c blocks.Layout[T]) error {
	u, err := newUntiled(a, b, c)
	if err != nil {
		return errors.Trace(err)
	}
	if u.empty() {
		return nil
	}
	u.compute(0, u.m, 0, u.cBlocks)
	return nil
}
