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
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

const randomEpsilon = 0.1

func TestUniformMatrix(t *testing.T) {
	rng := NewGenerator(0)
	m := UniformMatrix[float32](rng, 3, 1000, 1, 2)
	assert.Len(t, m, 3)
	for _, row := range m {
		assert.Len(t, row, 1000)
		assert.False(t, lo.Min(row) < 1)
		assert.False(t, lo.Max(row) > 2)
	}
}

func TestUniformMatrixSeed(t *testing.T) {
	a := UniformMatrix[float64](NewGenerator(42), 4, 5, 0, 1)
	b := UniformMatrix[float64](NewGenerator(42), 4, 5, 0, 1)
	c := UniformMatrix[float64](NewGenerator(7), 4, 5, 0, 1)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestUniformMatrixMean(t *testing.T) {
	rng := NewGenerator(0)
	vec := UniformMatrix[float32](rng, 1, 1000, 1, 2)[0]
	assert.False(t, math32.Abs(lo.Mean(vec)-1.5) > randomEpsilon)

	vec64 := UniformMatrix[float64](rng, 1, 1000, -1, 1)[0]
	assert.False(t, math.Abs(lo.Mean(vec64)) > randomEpsilon)
}
