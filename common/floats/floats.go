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

package floats

import (
	"golang.org/x/exp/constraints"
)

func mulConstAdd[T constraints.Float](a []T, c T, dst []T) {
	n := len(a)
	dst = dst[:n]
	i := 0
	for ; i+4 <= n; i += 4 {
		dst[i] += a[i] * c
		dst[i+1] += a[i+1] * c
		dst[i+2] += a[i+2] * c
		dst[i+3] += a[i+3] * c
	}
	for ; i < n; i++ {
		dst[i] += a[i] * c
	}
}

// Zero fills zeros in a slice of floats.
func Zero[T constraints.Float](a []T) {
	for i := range a {
		a[i] = 0
	}
}

// MulConstAdd multiplies a vector and a const, then adds to dst: dst = dst + a * c
func MulConstAdd[T constraints.Float](a []T, c T, dst []T) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	mulConstAdd(a, c, dst)
}

// MaxAbsDiff returns the largest |a[i] - b[i]| scaled by max(1, |b[i]|).
func MaxAbsDiff[T constraints.Float](a, b []T) float64 {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	var ret float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		if diff < 0 {
			diff = -diff
		}
		scale := float64(b[i])
		if scale < 0 {
			scale = -scale
		}
		diff /= max(1, scale)
		if diff > ret || diff != diff {
			ret = diff
		}
	}
	return ret
}
