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
	"fmt"
	"io"

	"github.com/gorse-io/gemm/gemm"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var reportHeader = []string{"Case", "Shape", "Variant", "Iterations", "Mean", "Min", "Max", "GFLOP/s", "Speedup", "Error"}

// WriteReport renders results as a table. Speedup is relative to the
// baseline variant of the same case if it was run.
func WriteReport(w io.Writer, results []Result) error {
	baselines := lo.SliceToMap(
		lo.Filter(results, func(r Result, _ int) bool { return r.Variant == gemm.BaselineVariant }),
		func(r Result) (string, Result) { return r.Case, r })
	rows := lo.Map(results, func(r Result, _ int) []string {
		speedup := "-"
		if baseline, ok := baselines[r.Case]; ok && r.Mean > 0 {
			speedup = fmt.Sprintf("%.2fx", baseline.Mean.Seconds()/r.Mean.Seconds())
		}
		relativeError := "-"
		if r.RelativeError >= 0 {
			relativeError = fmt.Sprintf("%.2e", r.RelativeError)
		}
		return []string{
			r.Case,
			fmt.Sprintf("%dx%dx%d", r.M, r.K, r.N),
			r.Variant.String(),
			fmt.Sprint(r.Iterations),
			r.Mean.String(),
			r.Min.String(),
			r.Max.String(),
			fmt.Sprintf("%.2f", r.GFlops()),
			speedup,
			relativeError,
		}
	})
	table := tablewriter.NewWriter(w)
	table.Header(lo.ToAnySlice(reportHeader)...)
	if err := table.Bulk(rows); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(table.Render())
}
