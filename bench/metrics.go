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
	"time"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LabelVariant = "variant"
	LabelCase    = "case"
)

// Metrics holds the collectors of a benchmark run. Collectors are registered
// to a private registry so that concurrent runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	KernelDurationSeconds *prometheus.HistogramVec
	KernelGFlops          *prometheus.GaugeVec
	KernelRelativeError   *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		KernelDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gemm",
			Name:      "kernel_duration_seconds",
			Help:      "Duration of a single kernel invocation.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 14),
		}, []string{LabelVariant, LabelCase}),
		KernelGFlops: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gemm",
			Name:      "kernel_gflops",
			Help:      "Mean throughput of a kernel in GFLOP/s.",
		}, []string{LabelVariant, LabelCase}),
		KernelRelativeError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gemm",
			Name:      "kernel_relative_error",
			Help:      "Largest relative error of a kernel against the reference product.",
		}, []string{LabelVariant, LabelCase}),
	}
	m.registry.MustRegister(m.KernelDurationSeconds, m.KernelGFlops, m.KernelRelativeError)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveDuration(variant, name string, d time.Duration) {
	m.KernelDurationSeconds.WithLabelValues(variant, name).Observe(d.Seconds())
}

// WriteToTextfile writes all metrics in the text exposition format, e.g. for
// the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return errors.Trace(prometheus.WriteToTextfile(path, m.registry))
}
