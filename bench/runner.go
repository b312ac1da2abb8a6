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
	"context"
	"time"

	"github.com/gorse-io/gemm/common/blocks"
	"github.com/gorse-io/gemm/common/floats"
	"github.com/gorse-io/gemm/common/log"
	"github.com/gorse-io/gemm/common/random"
	"github.com/gorse-io/gemm/config"
	"github.com/gorse-io/gemm/gemm"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

const ErrVerification = errors.ConstError("verification failed")

// Result summarizes the timed iterations of one variant on one case.
type Result struct {
	Case       string
	Variant    gemm.Variant
	M, K, N    int
	Iterations int
	Mean       time.Duration
	Min        time.Duration
	Max        time.Duration
	// RelativeError is the largest relative error against the reference
	// product, or -1 when verification is disabled.
	RelativeError float64
}

// GFlops returns the mean throughput.
func (r Result) GFlops() float64 {
	if r.Mean <= 0 {
		return 0
	}
	return 2 * float64(r.M) * float64(r.K) * float64(r.N) / r.Mean.Seconds() / 1e9
}

// Run benchmarks every configured variant on every configured case.
func Run(ctx context.Context, cfg *config.Config, metrics *Metrics) ([]Result, error) {
	switch cfg.Bench.Type {
	case config.TypeFloat32:
		return runCases[float32](ctx, cfg, metrics, 1e-3)
	case config.TypeFloat64:
		return runCases[float64](ctx, cfg, metrics, 1e-6)
	default:
		return nil, errors.NotValidf("type %q", cfg.Bench.Type)
	}
}

type runner[T constraints.Float] struct {
	config.BenchConfig
	metrics *Metrics
	bar     *progressbar.ProgressBar
}

type problem[T constraints.Float] struct {
	config.CaseConfig
	a, b, c  *blocks.Array[T]
	expected [][]T
}

func runCases[T constraints.Float](ctx context.Context, cfg *config.Config, metrics *Metrics, tolerance float64) ([]Result, error) {
	variants, err := cfg.Bench.GetVariants()
	if err != nil {
		return nil, errors.Trace(err)
	}
	kernels := make([]gemm.Kernel[T], len(variants))
	for i, v := range variants {
		if kernels[i], err = gemm.New[T](v, cfg.Bench.Jobs); err != nil {
			return nil, errors.Trace(err)
		}
	}

	total := len(cfg.Cases) * len(variants) * (cfg.Bench.Warmup + cfg.Bench.Iterations)
	var bar *progressbar.ProgressBar
	if cfg.Bench.Progress {
		bar = progressbar.Default(int64(total), "benchmarking")
	} else {
		bar = progressbar.DefaultSilent(int64(total))
	}
	defer func() { _ = bar.Finish() }()
	r := &runner[T]{BenchConfig: cfg.Bench, metrics: metrics, bar: bar}

	results := make([]Result, 0, len(cfg.Cases)*len(variants))
	for _, c := range cfg.Cases {
		start := time.Now()
		p, err := newProblem[T](c, cfg.Bench.BlockSize, cfg.Bench.Verify)
		if err != nil {
			return nil, errors.Annotatef(err, "case %s", c.Name)
		}
		log.Logger().Debug("generated operands",
			zap.String("case", c.Name),
			zap.Int("m", c.M), zap.Int("k", c.K), zap.Int("n", c.N),
			zap.Duration("elapsed", time.Since(start)))
		for i, v := range variants {
			result, err := r.run(ctx, p, v, kernels[i])
			if err != nil {
				return nil, errors.Annotatef(err, "case %s, variant %s", c.Name, v)
			}
			if cfg.Bench.Verify {
				if result.RelativeError = p.verify(); !(result.RelativeError <= tolerance) {
					return nil, errors.Annotatef(ErrVerification, "case %s, variant %s: relative error %g exceeds %g",
						c.Name, v, result.RelativeError, tolerance)
				}
				metrics.KernelRelativeError.WithLabelValues(v.String(), c.Name).Set(result.RelativeError)
			}
			metrics.KernelGFlops.WithLabelValues(v.String(), c.Name).Set(result.GFlops())
			log.Logger().Info("benchmark finished",
				zap.String("case", c.Name),
				zap.String("variant", v.String()),
				zap.Duration("mean", result.Mean),
				zap.Float64("gflops", result.GFlops()))
			results = append(results, result)
		}
	}
	if cfg.Bench.MetricsPath != "" {
		if err := metrics.WriteToTextfile(cfg.Bench.MetricsPath); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return results, nil
}

func newProblem[T constraints.Float](c config.CaseConfig, blockSize int, verify bool) (*problem[T], error) {
	rng := random.NewGenerator(c.Seed)
	a := random.UniformMatrix[T](rng, c.M, c.K, 0, 1)
	b := random.UniformMatrix[T](rng, c.K, c.N, 0, 1)
	p := &problem[T]{CaseConfig: c}
	var err error
	if p.a, err = newOperand(a, c.M, c.K, blockSize); err != nil {
		return nil, errors.Trace(err)
	}
	if p.b, err = newOperand(b, c.K, c.N, blockSize); err != nil {
		return nil, errors.Trace(err)
	}
	if p.c, err = blocks.New[T]([]int{c.M, c.N}, blockSize); err != nil {
		return nil, errors.Trace(err)
	}
	if verify {
		p.expected = reference(a, b, c.M, c.K, c.N)
	}
	return p, nil
}

// newOperand copies rows into a rows × cols array. Unlike blocks.FromRows it
// keeps the column count when there are no rows.
func newOperand[T constraints.Float](dense [][]T, rows, cols, blockSize int) (*blocks.Array[T], error) {
	a, err := blocks.New[T]([]int{rows, cols}, blockSize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, row := range dense {
		for j := 0; j < a.BlocksInRow(); j++ {
			block := a.Block(i, j)
			copy(block, row[j*blockSize:])
		}
	}
	return a, nil
}

// reference computes a·b with float64 accumulation.
func reference[T constraints.Float](a, b [][]T, m, k, n int) [][]T {
	expected := make([][]T, m)
	sum := make([]float64, n)
	for i := 0; i < m; i++ {
		clear(sum)
		for kk := 0; kk < k; kk++ {
			aik := float64(a[i][kk])
			for j, bkj := range b[kk] {
				sum[j] += aik * float64(bkj)
			}
		}
		expected[i] = lo.Map(sum, func(x float64, _ int) T { return T(x) })
	}
	return expected
}

// run times warmup + iterations invocations of a kernel. C is zeroed before
// each invocation and is left holding the last product.
func (r *runner[T]) run(ctx context.Context, p *problem[T], v gemm.Variant, kernel gemm.Kernel[T]) (Result, error) {
	result := Result{
		Case:          p.Name,
		Variant:       v,
		M:             p.M,
		K:             p.K,
		N:             p.N,
		Iterations:    r.Iterations,
		RelativeError: -1,
	}
	var sum time.Duration
	for i := 0; i < r.Warmup+r.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Trace(err)
		}
		blocks.Zero[T](p.c)
		start := time.Now()
		if err := kernel(p.a, p.b, p.c); err != nil {
			return Result{}, errors.Trace(err)
		}
		elapsed := time.Since(start)
		_ = r.bar.Add(1)
		if i < r.Warmup {
			continue
		}
		r.metrics.ObserveDuration(v.String(), p.Name, elapsed)
		sum += elapsed
		if result.Min == 0 || elapsed < result.Min {
			result.Min = elapsed
		}
		result.Max = max(result.Max, elapsed)
	}
	if r.Iterations > 0 {
		result.Mean = sum / time.Duration(r.Iterations)
	}
	return result, nil
}

// verify compares the destination of the last run with the reference product.
func (p *problem[T]) verify() float64 {
	var worst float64
	for i, row := range blocks.ToRows[T](p.c) {
		diff := floats.MaxAbsDiff(row, p.expected[i])
		if diff > worst || diff != diff {
			worst = diff
		}
	}
	return worst
}
