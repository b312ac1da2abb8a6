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
	"github.com/juju/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

type Variant int

const (
	BaselineVariant Variant = iota
	DirectTiledVariant
	DenseCopyTiledVariant
	ResizeTiledVariant
	ColumnPartitionedVariant
	BalancedChunkPartitionedVariant
	BaselineColumnPartitionedVariant
	RowRangePartitionedVariant
)

var variantNames = []string{
	"baseline",
	"direct-tiled",
	"dense-copy-tiled",
	"resize-tiled",
	"column-partitioned",
	"balanced-chunk-partitioned",
	"baseline-column-partitioned",
	"row-range-partitioned",
}

func (v Variant) String() string {
	if v >= 0 && int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// Parallel reports whether the variant runs on multiple goroutines.
func (v Variant) Parallel() bool {
	return v >= ColumnPartitionedVariant && v <= RowRangePartitionedVariant
}

// Variants returns all variants.
func Variants() []Variant {
	return lo.Times(len(variantNames), func(i int) Variant { return Variant(i) })
}

// ParseVariant returns the variant with the given name.
func ParseVariant(name string) (Variant, error) {
	index := lo.IndexOf(variantNames, name)
	if index < 0 {
		return 0, errors.NotValidf("variant %q", name)
	}
	return Variant(index), nil
}

// New returns the kernel of a variant. jobs is ignored by sequential variants.
func New[T constraints.Float](v Variant, jobs int) (Kernel[T], error) {
	switch v {
	case BaselineVariant:
		return Baseline[T], nil
	case DirectTiledVariant:
		return DirectTiled[T], nil
	case DenseCopyTiledVariant:
		return DenseCopyTiled[T], nil
	case ResizeTiledVariant:
		return ResizeTiled[T], nil
	case ColumnPartitionedVariant:
		return ColumnPartitioned[T](jobs), nil
	case BalancedChunkPartitionedVariant:
		return BalancedChunkPartitioned[T](jobs), nil
	case BaselineColumnPartitionedVariant:
		return BaselineColumnPartitioned[T](jobs), nil
	case RowRangePartitionedVariant:
		return RowRangePartitioned[T](jobs), nil
	default:
		return nil, errors.NotValidf("variant %d", v)
	}
}

// MultiplyAccumulate computes c += a·b with the resize-tiled kernel.
func MultiplyAccumulate[T constraints.Float](a, b, c blocks.Layout[T]) error {
	return ResizeTiled(a, b, c)
}

// Multiply computes c = a·b with the given kernel. c is zeroed only after the
// operands have been validated, so a rejected call leaves it untouched.
func Multiply[T constraints.Float](kernel Kernel[T], a, b, c blocks.Layout[T]) error {
	if _, err := prepare(a, b, c); err != nil {
		return errors.Trace(err)
	}
	blocks.Zero(c)
	return errors.Trace(kernel(a, b, c))
}
