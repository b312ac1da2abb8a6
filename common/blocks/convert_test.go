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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(rows, cols int) [][]float64 {
	dense := make([][]float64, rows)
	for i := range dense {
		dense[i] = make([]float64, cols)
		for j := range dense[i] {
			dense[i][j] = float64(i*cols + j)
		}
	}
	return dense
}

func TestCopy(t *testing.T) {
	src, err := FromRows(sequence(3, 10), 4)
	require.NoError(t, err)
	for _, blockSize := range []int{1, 3, 4, 7, 10, 64} {
		dst, err := New[float64]([]int{3, 10}, blockSize)
		require.NoError(t, err)
		require.NoError(t, Copy[float64](src, dst))
		assert.Equal(t, sequence(3, 10), ToRows[float64](dst), "block size %d", blockSize)
	}
}

func TestCopyRoundTrip(t *testing.T) {
	for _, shape := range [][2]int{{1, 1}, {5, 13}, {17, 3}, {4, 512}, {3, 1025}} {
		original, err := FromRows(sequence(shape[0], shape[1]), 7)
		require.NoError(t, err)
		for _, blockSize := range []int{1, 2, 24, 30, 512, 1024} {
			converted, err := Convert[float64](original, blockSize)
			require.NoError(t, err)
			back, err := New[float64]([]int{shape[0], shape[1]}, 7)
			require.NoError(t, err)
			require.NoError(t, Copy[float64](converted, back))
			assert.Equal(t, original.Blocks(), back.Blocks(), "shape %v, block size %d", shape, blockSize)
		}
	}
}

func TestCopyAcrossShapes(t *testing.T) {
	// only the element order matters
	src, err := FromVector([]float32{1, 2, 3, 4, 5, 6}, 4)
	require.NoError(t, err)
	dst, err := New[float32]([]int{2, 3}, 2)
	require.NoError(t, err)
	require.NoError(t, Copy[float32](src, dst))
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, ToRows[float32](dst))
}

func TestCopySame(t *testing.T) {
	a, err := FromRows(sequence(2, 3), 2)
	require.NoError(t, err)
	assert.NoError(t, Copy[float64](a, a))
	assert.Equal(t, sequence(2, 3), ToRows[float64](a))
}

// denseLayout is an uncomparable value-type layout with one block per row.
type denseLayout struct {
	rows [][]float64
}

func (l denseLayout) Shape() []int { return []int{len(l.rows), len(l.rows[0])} }

func (l denseLayout) BlockSize() int { return len(l.rows[0]) }

func (l denseLayout) Block(row, _ int) []float64 { return l.rows[row] }

func TestCopySameValueLayout(t *testing.T) {
	l := denseLayout{rows: sequence(2, 3)}
	assert.NotPanics(t, func() {
		assert.NoError(t, Copy[float64](l, l))
	})
	assert.Equal(t, sequence(2, 3), ToRows[float64](l))

	// a copy of the value shares storage with the original
	alias := denseLayout{rows: l.rows}
	assert.NoError(t, Copy[float64](l, alias))

	other := denseLayout{rows: [][]float64{{0, 0, 0}, {0, 0, 0}}}
	assert.NoError(t, Copy[float64](l, other))
	assert.Equal(t, sequence(2, 3), other.rows)
}

func TestCopyMismatch(t *testing.T) {
	src, err := FromRows(sequence(2, 3), 2)
	require.NoError(t, err)
	dst, err := New[float64]([]int{2, 4}, 2)
	require.NoError(t, err)
	err = Copy[float64](src, dst)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
	// nothing is copied on failure
	assert.Equal(t, [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}}, ToRows[float64](dst))
}

func TestRowView(t *testing.T) {
	v, err := FromVector([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	row := NewRowView[float64](v)
	assert.Equal(t, []int{1, 5}, row.Shape())
	assert.Equal(t, 2, row.BlockSize())
	assert.Equal(t, [][]float64{{1, 2, 3, 4, 5}}, ToRows[float64](row))
	row.Block(0, 1)[0] = 30
	assert.Equal(t, float64(30), v.At(0, 2))
}

func TestColumnView(t *testing.T) {
	v, err := FromVector([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	col := NewColumnView[float64](v)
	assert.Equal(t, []int{5, 1}, col.Shape())
	assert.Equal(t, 1, col.BlockSize())
	assert.Equal(t, [][]float64{{1}, {2}, {3}, {4}, {5}}, ToRows[float64](col))
	col.Block(3, 0)[0] = 40
	assert.Equal(t, float64(40), v.At(0, 3))
	assert.Len(t, append(col.Block(0, 0), 100), 2)
	assert.Equal(t, float64(2), v.At(0, 1))
}
