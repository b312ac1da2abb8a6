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

func TestNew(t *testing.T) {
	a, err := New[float64]([]int{2, 7}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, a.Shape())
	assert.Equal(t, 3, a.BlockSize())
	assert.Equal(t, 3, a.BlocksInRow())
	assert.Len(t, a.Blocks(), 6)
	for i := 0; i < 2; i++ {
		assert.Equal(t, []float64{0, 0, 0}, a.Block(i, 0))
		assert.Equal(t, []float64{0, 0, 0}, a.Block(i, 1))
		assert.Equal(t, []float64{0}, a.Block(i, 2))
	}

	// block size divides the row width
	a, err = New[float64]([]int{3, 8}, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, a.BlocksInRow())
	assert.Len(t, a.Block(2, 1), 4)

	// block size wider than the row
	b, err := New[float32]([]int{2, 3}, 16)
	require.NoError(t, err)
	assert.Equal(t, 1, b.BlocksInRow())
	assert.Len(t, b.Block(1, 0), 3)

	_, err = New[float32]([]int{2, 3}, 0)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
	_, err = New[float32](nil, 4)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
	_, err = New[float32]([]int{-1, 3}, 4)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
}

func TestBlocksDoNotOverlap(t *testing.T) {
	a, err := New[float64]([]int{2, 5}, 2)
	require.NoError(t, err)
	// appending to a block must not clobber its neighbour
	first := a.Block(0, 0)
	_ = append(first, 100)
	assert.Equal(t, float64(0), a.Block(0, 1)[0])
}

func TestFromRows(t *testing.T) {
	rows := [][]float64{
		{1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10},
	}
	a, err := FromRows(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, a.Block(0, 0))
	assert.Equal(t, []float64{5}, a.Block(0, 2))
	assert.Equal(t, []float64{8, 9}, a.Block(1, 1))
	assert.Equal(t, float64(9), a.At(1, 3))
	a.Set(1, 3, 42)
	assert.Equal(t, float64(42), a.Block(1, 1)[1])
	assert.Equal(t, [][]float64{{1, 2, 3, 4, 5}, {6, 7, 8, 42, 10}}, ToRows[float64](a))

	_, err = FromRows([][]float64{{1, 2}, {3}}, 2)
	assert.True(t, errors.Is(err, ErrMalformedLayout))
}

func TestFromVector(t *testing.T) {
	v, err := FromVector([]float32{1, 2, 3, 4, 5}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, v.Shape())
	rows, cols := Dims[float32](v)
	assert.Equal(t, 1, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, []float32{5}, v.Block(0, 1))
}

func TestDims(t *testing.T) {
	a, err := New[float64]([]int{2, 3, 4}, 2)
	require.NoError(t, err)
	rows, cols := Dims[float64](a)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, 24, Len[float64](a))
	assert.Equal(t, 2, BlocksInRow[float64](a))
}

func TestReshape(t *testing.T) {
	a, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}, 2)
	require.NoError(t, err)
	b, err := a.Reshape([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, b.Shape())
	b.Set(1, 2, 60)
	assert.Equal(t, float64(60), a.At(1, 2))

	_, err = a.Reshape([]int{3, 2})
	assert.True(t, errors.Is(err, ErrMalformedLayout))
	_, err = a.Reshape([]int{3, 3})
	assert.True(t, errors.Is(err, ErrMalformedLayout))
}

func TestZero(t *testing.T) {
	a, err := FromRows([][]float32{{1, 2, 3}, {4, 5, 6}}, 2)
	require.NoError(t, err)
	Zero[float32](a)
	assert.Equal(t, [][]float32{{0, 0, 0}, {0, 0, 0}}, ToRows[float32](a))
}
