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

package blocks

import (
	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

// cursor walks the blocks of a layout in row-major order.
type cursor[T constraints.Float] struct {
	layout      Layout[T]
	blocksInRow int
	numBlocks   int
	index       int
	offset      int
}

func newCursor[T constraints.Float](l Layout[T]) *cursor[T] {
	rows, _ := Dims(l)
	n := BlocksInRow(l)
	return &cursor[T]{layout: l, blocksInRow: n, numBlocks: rows * n}
}

func (c *cursor[T]) done() bool {
	return c.index >= c.numBlocks
}

func (c *cursor[T]) block() []T {
	return c.layout.Block(c.index/c.blocksInRow, c.index%c.blocksInRow)
}

func (c *cursor[T]) advance(n, size int) {
	c.offset += n
	if c.offset == size {
		c.offset = 0
		c.index++
	}
}

// Copy copies the elements of src into dst in row-major order. The block sizes of
// src and dst may differ, but both must hold the same number of elements. Copying
// a layout onto the same storage does nothing.
func Copy[T constraints.Float](src, dst Layout[T]) error {
	if err := validate(src); err != nil {
		return errors.Trace(err)
	}
	if err := validate(dst); err != nil {
		return errors.Trace(err)
	}
	if Len(src) != Len(dst) {
		return errors.Annotatef(ErrMalformedLayout, "copy %v to %v", src.Shape(), dst.Shape())
	}
	if Len(src) == 0 || sameStorage(src, dst) {
		return nil
	}
	s, d := newCursor(src), newCursor(dst)
	for !s.done() && !d.done() {
		sb, db := s.block(), d.block()
		n := copy(db[d.offset:], sb[s.offset:])
		s.advance(n, len(sb))
		d.advance(n, len(db))
	}
	return nil
}

// Convert allocates a layout of the given block size and copies l into it.
func Convert[T constraints.Float](l Layout[T], blockSize int) (*Array[T], error) {
	rows, cols := Dims(l)
	a, err := New[T]([]int{rows, cols}, blockSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = Copy[T](l, a); err != nil {
		return nil, errors.Trace(err)
	}
	return a, nil
}

// sameStorage reports whether two non-empty layouts with the same block size
// start at the same element. Layouts are compared by their data, not with ==,
// since a Layout may be an uncomparable value.
func sameStorage[T constraints.Float](src, dst Layout[T]) bool {
	if src.BlockSize() != dst.BlockSize() {
		return false
	}
	sb, db := src.Block(0, 0), dst.Block(0, 0)
	return len(sb) > 0 && len(db) > 0 && &sb[0] == &db[0]
}

func validate[T constraints.Float](l Layout[T]) error {
	if len(l.Shape()) == 0 {
		return errors.Annotate(ErrMalformedLayout, "empty shape")
	}
	if l.BlockSize() <= 0 {
		return errors.Annotatef(ErrMalformedLayout, "block size %d", l.BlockSize())
	}
	return nil
}

// RowView presents a vector as a 1×n matrix sharing its blocks.
type RowView[T constraints.Float] struct {
	vector Layout[T]
}

func NewRowView[T constraints.Float](vector Layout[T]) *RowView[T] {
	return &RowView[T]{vector: vector}
}

func (v *RowView[T]) Shape() []int {
	_, n := Dims(v.vector)
	return []int{1, n}
}

func (v *RowView[T]) BlockSize() int {
	return v.vector.BlockSize()
}

func (v *RowView[T]) Block(_, colBlock int) []T {
	return v.vector.Block(0, colBlock)
}

// ColumnView presents a vector as an n×1 matrix. Each row is a single element
// block aliasing the vector's storage.
type ColumnView[T constraints.Float] struct {
	vector Layout[T]
	width  int
	length int
}

func NewColumnView[T constraints.Float](vector Layout[T]) *ColumnView[T] {
	_, n := Dims(vector)
	return &ColumnView[T]{vector: vector, width: vector.BlockSize(), length: n}
}

func (v *ColumnView[T]) Shape() []int {
	return []int{v.length, 1}
}

func (v *ColumnView[T]) BlockSize() int {
	return 1
}

func (v *ColumnView[T]) Block(row, _ int) []T {
	block := v.vector.Block(0, row/v.width)
	offset := row % v.width
	return block[offset : offset+1 : offset+1]
}
