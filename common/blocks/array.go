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
	"github.com/gorse-io/gemm/common/floats"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

// ErrMalformedLayout is returned for non-positive block sizes, empty shapes and
// element count mismatches between two layouts.
const ErrMalformedLayout = errors.ConstError("malformed layout")

// Layout is a matrix stored as a row-major sequence of fixed-width blocks. Every
// row is split into BlocksInRow blocks: all of them hold BlockSize elements except
// the last one, which holds the remainder.
type Layout[T constraints.Float] interface {
	Shape() []int
	BlockSize() int
	// Block returns the colBlock-th block of a row. The returned slice aliases
	// the storage, so writes are visible to the layout.
	Block(row, colBlock int) []T
}

// Dims returns the number of rows and columns of a layout. Leading dimensions are
// folded into rows, so a vector has a single row.
func Dims[T constraints.Float](l Layout[T]) (rows, cols int) {
	shape := l.Shape()
	if len(shape) == 0 {
		return 0, 0
	}
	rows = 1
	for _, d := range shape[:len(shape)-1] {
		rows *= d
	}
	return rows, shape[len(shape)-1]
}

// BlocksInRow returns ceil(cols / blockSize).
func BlocksInRow[T constraints.Float](l Layout[T]) int {
	_, cols := Dims(l)
	return ceilDiv(cols, l.BlockSize())
}

// Len returns the total number of elements.
func Len[T constraints.Float](l Layout[T]) int {
	rows, cols := Dims(l)
	return rows * cols
}

// Array is the in-memory block storage.
type Array[T constraints.Float] struct {
	shape       []int
	blockSize   int
	blocksInRow int
	blocks      [][]T
}

// New allocates a zero-filled array of the given shape whose rows are split into
// blocks of blockSize elements.
func New[T constraints.Float](shape []int, blockSize int) (*Array[T], error) {
	if len(shape) == 0 {
		return nil, errors.Annotate(ErrMalformedLayout, "empty shape")
	}
	if blockSize <= 0 {
		return nil, errors.Annotatef(ErrMalformedLayout, "block size %d", blockSize)
	}
	for _, d := range shape {
		if d < 0 {
			return nil, errors.Annotatef(ErrMalformedLayout, "negative dimension in %v", shape)
		}
	}
	a := &Array[T]{shape: append([]int(nil), shape...), blockSize: blockSize}
	rows, cols := Dims[T](a)
	a.blocksInRow = ceilDiv(cols, blockSize)
	lastBlockSize := blockSize
	if cols%blockSize != 0 {
		lastBlockSize = cols % blockSize
	}
	// one backing slice per row keeps blocks of a row adjacent in memory
	a.blocks = make([][]T, rows*a.blocksInRow)
	for i := 0; i < rows; i++ {
		row := make([]T, cols)
		for j := 0; j < a.blocksInRow; j++ {
			begin := j * blockSize
			end := begin + blockSize
			if j == a.blocksInRow-1 {
				end = begin + lastBlockSize
			}
			a.blocks[i*a.blocksInRow+j] = row[begin:end:end]
		}
	}
	return a, nil
}

// FromRows copies a dense matrix into a new array.
func FromRows[T constraints.Float](rows [][]T, blockSize int) (*Array[T], error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Annotatef(ErrMalformedLayout, "row %d has %d columns, expected %d", i, len(row), cols)
		}
	}
	a, err := New[T]([]int{len(rows), cols}, blockSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, row := range rows {
		a.copyRow(i, row)
	}
	return a, nil
}

// FromVector copies a vector into a new rank-1 array.
func FromVector[T constraints.Float](v []T, blockSize int) (*Array[T], error) {
	a, err := New[T]([]int{len(v)}, blockSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	a.copyRow(0, v)
	return a, nil
}

func (a *Array[T]) copyRow(i int, row []T) {
	for j := 0; j < a.blocksInRow; j++ {
		copy(a.blocks[i*a.blocksInRow+j], row[j*a.blockSize:])
	}
}

func (a *Array[T]) Shape() []int {
	return a.shape
}

func (a *Array[T]) BlockSize() int {
	return a.blockSize
}

func (a *Array[T]) BlocksInRow() int {
	return a.blocksInRow
}

func (a *Array[T]) Block(row, colBlock int) []T {
	return a.blocks[row*a.blocksInRow+colBlock]
}

// Blocks returns all blocks in row-major order.
func (a *Array[T]) Blocks() [][]T {
	return a.blocks
}

// At returns the element at (row, col).
func (a *Array[T]) At(row, col int) T {
	return a.Block(row, col/a.blockSize)[col%a.blockSize]
}

// Set assigns the element at (row, col).
func (a *Array[T]) Set(row, col int, v T) {
	a.Block(row, col/a.blockSize)[col%a.blockSize] = v
}

// Reshape returns an array sharing the same blocks under a new shape. Only the
// leading dimensions may change, the row width must stay the same.
func (a *Array[T]) Reshape(shape []int) (*Array[T], error) {
	if len(shape) == 0 || shape[len(shape)-1] != a.shape[len(a.shape)-1] {
		return nil, errors.Annotatef(ErrMalformedLayout, "cannot reshape %v to %v", a.shape, shape)
	}
	if lo.Reduce(shape, func(p, d, _ int) int { return p * d }, 1) != Len[T](a) {
		return nil, errors.Annotatef(ErrMalformedLayout, "cannot reshape %v to %v", a.shape, shape)
	}
	return &Array[T]{
		shape:       append([]int(nil), shape...),
		blockSize:   a.blockSize,
		blocksInRow: a.blocksInRow,
		blocks:      a.blocks,
	}, nil
}

// ToRows copies a layout into a dense matrix.
func ToRows[T constraints.Float](l Layout[T]) [][]T {
	rows, cols := Dims(l)
	n := BlocksInRow(l)
	dense := make([][]T, rows)
	for i := range dense {
		dense[i] = make([]T, 0, cols)
		for j := 0; j < n; j++ {
			dense[i] = append(dense[i], l.Block(i, j)...)
		}
	}
	return dense
}

// Zero fills zeros in every block of a layout.
func Zero[T constraints.Float](l Layout[T]) {
	rows, _ := Dims(l)
	n := BlocksInRow(l)
	for i := 0; i < rows; i++ {
		for j := 0; j < n; j++ {
			floats.Zero(l.Block(i, j))
		}
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
