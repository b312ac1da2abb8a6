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

package bench

import (
	"github.com/klauspost/cpuid/v2"
	"go.uber.org/zap"
)

// minL2CacheSize is the smallest L2 cache the tile sizes are chosen for.
const minL2CacheSize = 256 << 10

type CPUInfo struct {
	BrandName     string
	PhysicalCores int
	LogicalCores  int
	CacheLine     int
	L1D           int
	L2            int
	L3            int
}

func DetectCPU() CPUInfo {
	return CPUInfo{
		BrandName:     cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		CacheLine:     cpuid.CPU.CacheLine,
		L1D:           cpuid.CPU.Cache.L1D,
		L2:            cpuid.CPU.Cache.L2,
		L3:            cpuid.CPU.Cache.L3,
	}
}

// SmallL2 reports whether the L2 cache is known and smaller than the
// working set of one tile.
func (info CPUInfo) SmallL2() bool {
	return info.L2 > 0 && info.L2 < minL2CacheSize
}

func (info CPUInfo) Log(logger *zap.Logger) {
	logger.Info("detected cpu",
		zap.String("brand", info.BrandName),
		zap.Int("physical_cores", info.PhysicalCores),
		zap.Int("logical_cores", info.LogicalCores),
		zap.Int("cache_line", info.CacheLine),
		zap.Int("l1d", info.L1D),
		zap.Int("l2", info.L2),
		zap.Int("l3", info.L3))
	if info.SmallL2() {
		logger.Warn("L2 cache is smaller than expected by tile sizes, tiled kernels may thrash",
			zap.Int("l2", info.L2), zap.Int("expected", minL2CacheSize))
	}
}
