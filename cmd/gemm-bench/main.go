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
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorse-io/gemm/bench"
	"github.com/gorse-io/gemm/cmd/version"
	"github.com/gorse-io/gemm/common/log"
	"github.com/gorse-io/gemm/config"
	"github.com/gorse-io/gemm/gemm"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "gemm-bench",
	Short: "Block-layout GEMM benchmarking tool",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLogger(cmd.Flags())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run kernels on the configured cases",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		bench.DetectCPU().Log(log.Logger())
		log.Logger().Info("start benchmark",
			zap.String("type", cfg.Bench.Type),
			zap.Strings("variants", cfg.Bench.Variants),
			zap.Int("jobs", cfg.Bench.Jobs),
			zap.Int("block_size", cfg.Bench.BlockSize),
			zap.Int("cases", len(cfg.Cases)))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		results, err := bench.Run(ctx, cfg, bench.NewMetrics())
		if err != nil {
			log.Logger().Fatal("failed to run benchmark", zap.Error(err))
		}
		if err = bench.WriteReport(os.Stdout, results); err != nil {
			log.Logger().Fatal("failed to write report", zap.Error(err))
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List kernel variants",
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range gemm.Variants() {
			if v.Parallel() {
				fmt.Printf("%s\t(parallel)\n", v)
			} else {
				fmt.Println(v)
			}
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.BuildInfo())
	},
}

// loadConfig loads the configuration file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	flags := cmd.Flags()
	if flags.Changed("type") {
		cfg.Bench.Type, _ = flags.GetString("type")
	}
	if flags.Changed("variants") {
		variants, _ := flags.GetStringSlice("variants")
		cfg.Bench.Variants = variants
	}
	if flags.Changed("jobs") {
		cfg.Bench.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("block-size") {
		cfg.Bench.BlockSize, _ = flags.GetInt("block-size")
	}
	if flags.Changed("iterations") {
		cfg.Bench.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("no-verify") {
		noVerify, _ := flags.GetBool("no-verify")
		cfg.Bench.Verify = !noVerify
	}
	if flags.Changed("no-progress") {
		noProgress, _ := flags.GetBool("no-progress")
		cfg.Bench.Progress = !noProgress
	}
	if flags.Changed("metrics-path") {
		cfg.Bench.MetricsPath, _ = flags.GetString("metrics-path")
	}
	if flags.Changed("cases") {
		names, _ := flags.GetStringSlice("cases")
		selected := make([]config.CaseConfig, 0, len(names))
		for _, name := range names {
			c, found := lo.Find(cfg.Cases, func(c config.CaseConfig) bool {
				return c.Name == strings.TrimSpace(name)
			})
			if !found {
				return nil, errors.NotFoundf("case %q", name)
			}
			selected = append(selected, c)
		}
		cfg.Cases = selected
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

func addRunFlags(flagSet *pflag.FlagSet) {
	flagSet.StringP("type", "t", config.TypeFloat32, "element type (float32 or float64)")
	flagSet.StringSlice("variants", nil, "kernel variants to run")
	flagSet.StringSlice("cases", nil, "names of cases to run")
	flagSet.IntP("jobs", "j", 0, "number of workers for parallel variants (0 means GOMAXPROCS)")
	flagSet.Int("block-size", 1024, "block size of generated operands")
	flagSet.IntP("iterations", "n", 5, "number of timed iterations")
	flagSet.Bool("no-verify", false, "skip verification against the reference product")
	flagSet.Bool("no-progress", false, "hide the progress bar")
	flagSet.String("metrics-path", "", "write prometheus metrics to this file")
}

func init() {
	log.AddFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to configuration file")
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd, listCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
