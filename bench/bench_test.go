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
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorse-io/gemm/config"
	"github.com/gorse-io/gemm/gemm"
	"github.com/juju/errors"
	"github.com/klauspost/cpuid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestConfig(t *testing.T, typ string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Bench.Type = typ
	cfg.Bench.Jobs = 3
	cfg.Bench.BlockSize = 16
	cfg.Bench.Warmup = 1
	cfg.Bench.Iterations = 2
	cfg.Bench.Progress = false
	cfg.Bench.MetricsPath = filepath.Join(t.TempDir(), "gemm.prom")
	cfg.Cases = []config.CaseConfig{
		{Name: "odd", M: 17, K: 33, N: 70, Seed: 1},
		{Name: "tall", M: 120, K: 8, N: 3, Seed: 2},
		{Name: "empty", M: 0, K: 5, N: 9, Seed: 3},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun(t *testing.T) {
	for _, typ := range []string{config.TypeFloat32, config.TypeFloat64} {
		t.Run(typ, func(t *testing.T) {
			cfg := newTestConfig(t, typ)
			metrics := NewMetrics()
			results, err := Run(context.Background(), cfg, metrics)
			require.NoError(t, err)
			assert.Len(t, results, len(cfg.Cases)*len(gemm.Variants()))
			for _, r := range results {
				assert.Equal(t, 2, r.Iterations)
				assert.GreaterOrEqual(t, r.RelativeError, 0.0)
				assert.LessOrEqual(t, r.RelativeError, 1e-3)
				assert.LessOrEqual(t, r.Min, r.Mean)
				assert.LessOrEqual(t, r.Mean, r.Max)
			}
			// one series per variant and case
			assert.Equal(t, len(results), testutil.CollectAndCount(metrics.KernelDurationSeconds))
			assert.Equal(t, len(results), testutil.CollectAndCount(metrics.KernelRelativeError))
			data, err := os.ReadFile(cfg.Bench.MetricsPath)
			require.NoError(t, err)
			assert.Contains(t, string(data), "gemm_kernel_duration_seconds_bucket")
			assert.Contains(t, string(data), `variant="row-range-partitioned"`)
		})
	}
}

func TestRunWithoutVerify(t *testing.T) {
	cfg := newTestConfig(t, config.TypeFloat32)
	cfg.Bench.Verify = false
	cfg.Bench.Variants = []string{"resize-tiled"}
	cfg.Bench.MetricsPath = ""
	metrics := NewMetrics()
	results, err := Run(context.Background(), cfg, metrics)
	require.NoError(t, err)
	assert.Len(t, results, len(cfg.Cases))
	for _, r := range results {
		assert.Equal(t, gemm.ResizeTiledVariant, r.Variant)
		assert.Equal(t, -1.0, r.RelativeError)
	}
	assert.Zero(t, testutil.CollectAndCount(metrics.KernelRelativeError))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, newTestConfig(t, config.TypeFloat64), NewMetrics())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunInvalid(t *testing.T) {
	cfg := newTestConfig(t, config.TypeFloat64)
	cfg.Bench.Type = "float16"
	_, err := Run(context.Background(), cfg, NewMetrics())
	assert.True(t, errors.Is(err, errors.NotValid))

	cfg = newTestConfig(t, config.TypeFloat64)
	cfg.Bench.Variants = []string{"strassen"}
	_, err = Run(context.Background(), cfg, NewMetrics())
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestVerify(t *testing.T) {
	p, err := newProblem[float64](config.CaseConfig{Name: "small", M: 5, K: 7, N: 11, Seed: 9}, 4, true)
	require.NoError(t, err)
	require.NoError(t, gemm.Baseline[float64](p.a, p.b, p.c))
	assert.Less(t, p.verify(), 1e-12)

	p.c.Set(2, 3, p.c.At(2, 3)+10)
	assert.Greater(t, p.verify(), 1.0)

	p.c.Set(4, 10, math.NaN())
	assert.True(t, math.IsNaN(p.verify()))
}

func TestReference(t *testing.T) {
	a := [][]float32{{1, 2}, {3, 4}}
	b := [][]float32{{5, 6, 7}, {8, 9, 10}}
	assert.Equal(t, [][]float32{{21, 24, 27}, {47, 54, 61}}, reference(a, b, 2, 2, 3))
}

func TestNewOperand(t *testing.T) {
	a, err := newOperand([][]float64{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}}, 2, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, a.Block(0, 2))
	assert.Equal(t, []float64{8, 9}, a.Block(1, 1))
	empty, err := newOperand[float64](nil, 0, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5}, empty.Shape())
}

func TestWriteReport(t *testing.T) {
	results := []Result{
		{Case: "square", Variant: gemm.BaselineVariant, M: 64, K: 64, N: 64, Iterations: 3, Mean: 4 * time.Millisecond, RelativeError: 0},
		{Case: "square", Variant: gemm.ResizeTiledVariant, M: 64, K: 64, N: 64, Iterations: 3, Mean: time.Millisecond, RelativeError: 1e-7},
		{Case: "wide", Variant: gemm.ColumnPartitionedVariant, M: 8, K: 8, N: 1024, Iterations: 3, Mean: time.Millisecond, RelativeError: -1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, results))
	report := buf.String()
	assert.Contains(t, report, "resize-tiled")
	assert.Contains(t, report, "4.00x")
	assert.Contains(t, report, "64x64x64")
	assert.Contains(t, report, "1.00e-07")
}

func TestGFlops(t *testing.T) {
	r := Result{M: 1000, K: 1000, N: 1000, Mean: time.Second}
	assert.InDelta(t, 2.0, r.GFlops(), 1e-12)
	assert.Zero(t, Result{M: 1}.GFlops())
}

func TestCPUInfo(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	CPUInfo{BrandName: "test", L2: 128 << 10}.Log(logger)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())

	CPUInfo{BrandName: "test", L2: 1 << 20}.Log(logger)
	CPUInfo{BrandName: "test", L2: -1}.Log(logger)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
	assert.Equal(t, 3, logs.FilterMessage("detected cpu").Len())

	info := DetectCPU()
	assert.Equal(t, cpuid.CPU.BrandName, info.BrandName)
	assert.Equal(t, cpuid.CPU.Cache.L2, info.L2)
}
