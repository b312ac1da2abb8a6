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

// Package gemm multiplies matrices stored as fixed-width row blocks.
//
// Every kernel computes C += A·B. A is M×K, B is K×N and C is M×N. Vectors are
// accepted as operands: a vector A is treated as a 1×K row, a vector B as a K×1
// column, and a vector C as whichever of the two the product requires. C is
// never zeroed by a kernel; use Multiply for a fresh product.
package gemm

import (
	"github.com/gorse-io/gemm/common/blocks"
	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

const (
	ErrShapeMismatch = errors.ConstError("shape mismatch")
	ErrRankViolation = errors.ConstError("rank violation")
)

// Kernel accumulates the product of a and b into c.
type Kernel[T constraints.Float] func(a, b, c blocks.Layout[T]) error

// operands are validated 2-D views of A, B and C.
type operands[T constraints.Float] struct {
	a, b, c blocks.Layout[T]
	m, k, n int
}

// empty reports whether the product has nothing to accumulate.
func (op *operands[T]) empty() bool {
	return op.m == 0 || op.k == 0 || op.n == 0
}

func checkRank[T constraints.Float](name string, l blocks.Layout[T]) error {
	if rank := len(l.Shape()); rank < 1 || rank > 2 {
		return errors.Annotatef(ErrRankViolation, "%s has rank %d", name, rank)
	}
	if l.BlockSize() <= 0 {
		return errors.Annotatef(blocks.ErrMalformedLayout, "%s has block size %d", name, l.BlockSize())
	}
	return nil
}

func prepare[T constraints.Float](a, b, c blocks.Layout[T]) (*operands[T], error) {
	for _, operand := range []struct {
		name   string
		layout blocks.Layout[T]
	}{{"A", a}, {"B", b}, {"C", c}} {
		if err := checkRank(operand.name, operand.layout); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if len(a.Shape()) == 1 {
		a = blocks.NewRowView(a)
	}
	if len(b.Shape()) == 1 {
		b = blocks.NewColumnView(b)
	}
	m, k := blocks.Dims(a)
	t, n := blocks.Dims(b)
	if k != t {
		return nil, errors.Annotatef(ErrShapeMismatch, "A is %v but B is %v", a.Shape(), b.Shape())
	}
	if len(c.Shape()) == 1 {
		switch _, length := blocks.Dims(c); {
		case length != m*n:
			return nil, errors.Annotatef(ErrShapeMismatch, "C is %v but A·B is [%d %d]", c.Shape(), m, n)
		case m == 1:
			c = blocks.NewRowView(c)
		case n == 1:
			c = blocks.NewColumnView(c)
		default:
			return nil, errors.Annotatef(ErrShapeMismatch, "C is %v but A·B is [%d %d]", c.Shape(), m, n)
		}
	}
	if rows, cols := blocks.Dims(c); rows != m || cols != n {
		return nil, errors.Annotatef(ErrShapeMismatch, "C is %v but A·B is [%d %d]", c.Shape(), m, n)
	}
	return &operands[T]{a: a, b: b, c: c, m: m, k: k, n: n}, nil
}

// width is the number of elements in every block of a row but the last.
func width[T constraints.Float](l blocks.Layout[T]) int {
	_, cols := blocks.Dims(l)
	return max(1, min(l.BlockSize(), cols))
}

// resize returns l itself if its blocks are exactly size wide, otherwise a copy of
// l with that block size.
func resize[T constraints.Float](l blocks.Layout[T], size int) (blocks.Layout[T], error) {
	if width(l) == size {
		return l, nil
	}
	converted, err := blocks.Convert(l, size)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return converted, nil
}

// workspace is a destination with the block size a kernel requires. Results are
// computed into layout and copied to the caller's matrix by flush. If c already
// has the required block size, layout is c and flush does nothing.
type workspace[T constraints.Float] struct {
	layout    blocks.Layout[T]
	target    blocks.Layout[T]
	converted bool
}

func newWorkspace[T constraints.Float](c blocks.Layout[T], size int) (*workspace[T], error) {
	if width(c) == size {
		return &workspace[T]{layout: c, target: c}, nil
	}
	layout, err := blocks.Convert(c, size)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &workspace[T]{layout: layout, target: c, converted: true}, nil
}

func (w *workspace[T]) flush() error {
	if !w.converted {
		return nil
	}
	return errors.Trace(blocks.Copy(w.layout, w.target))
}
