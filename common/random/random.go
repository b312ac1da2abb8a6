// Copyright 2020 gorse Project Authors
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

package random

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// Generator is the seeded random generator for benchmarks and tests.
type Generator struct {
	*rand.Rand
}

// NewGenerator creates a Generator.
func NewGenerator(seed int64) Generator {
	return Generator{rand.New(rand.NewSource(seed))}
}

// UniformVector makes a vec filled with uniform random floats in [low, high).
func UniformVector[T constraints.Float](rng Generator, size int, low, high T) []T {
	ret := make([]T, size)
	scale := float64(high - low)
	for i := 0; i < len(ret); i++ {
		ret[i] = T(rng.Float64()*scale) + low
	}
	return ret
}

// UniformMatrix makes a matrix filled with uniform random floats in [low, high).
// Rows are drawn one after another, so the result only depends on the seed.
func UniformMatrix[T constraints.Float](rng Generator, row, col int, low, high T) [][]T {
	ret := make([][]T, row)
	for i := range ret {
		ret[i] = UniformVector(rng, col, low, high)
	}
	return ret
}
