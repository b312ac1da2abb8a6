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

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/gemm/gemm"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	TypeFloat32 = "float32"
	TypeFloat64 = "float64"
)

// Config is the configuration for the benchmark.
type Config struct {
	Bench BenchConfig  `mapstructure:"bench"`
	Cases []CaseConfig `mapstructure:"cases" validate:"dive"`
}

type BenchConfig struct {
	Type        string   `mapstructure:"type" validate:"oneof=float32 float64"`
	Variants    []string `mapstructure:"variants" validate:"min=1,dive,required"`
	Jobs        int      `mapstructure:"jobs" validate:"gte=0"`
	BlockSize   int      `mapstructure:"block_size" validate:"gt=0"`
	Warmup      int      `mapstructure:"warmup" validate:"gte=0"`
	Iterations  int      `mapstructure:"iterations" validate:"gt=0"`
	Verify      bool     `mapstructure:"verify"`
	Progress    bool     `mapstructure:"progress"`
	MetricsPath string   `mapstructure:"metrics_path"`
}

// CaseConfig is a single problem shape: C (m×n) += A (m×k) · B (k×n).
type CaseConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	M    int    `mapstructure:"m" validate:"gte=0"`
	K    int    `mapstructure:"k" validate:"gte=0"`
	N    int    `mapstructure:"n" validate:"gte=0"`
	Seed int64  `mapstructure:"seed"`
}

// GetVariants parses the configured variant names.
func (config *BenchConfig) GetVariants() ([]gemm.Variant, error) {
	variants := make([]gemm.Variant, 0, len(config.Variants))
	for _, name := range config.Variants {
		v, err := gemm.ParseVariant(strings.TrimSpace(name))
		if err != nil {
			return nil, errors.Trace(err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func GetDefaultConfig() *Config {
	return &Config{
		Bench: BenchConfig{
			Type:       TypeFloat32,
			Variants:   defaultVariants(),
			Jobs:       0,
			BlockSize:  1024,
			Warmup:     1,
			Iterations: 5,
			Verify:     true,
			Progress:   true,
		},
		Cases: defaultCases(),
	}
}

func defaultVariants() []string {
	return lo.Map(gemm.Variants(), func(v gemm.Variant, _ int) string {
		return v.String()
	})
}

func defaultCases() []CaseConfig {
	return []CaseConfig{
		{Name: "square", M: 1024, K: 1024, N: 1024, Seed: 42},
		{Name: "wide", M: 1024, K: 64, N: 16384, Seed: 42},
		{Name: "tall", M: 8192, K: 256, N: 16, Seed: 42},
		{Name: "deep", M: 64, K: 16384, N: 64, Seed: 42},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [bench]
	v.SetDefault("bench.type", defaultConfig.Bench.Type)
	v.SetDefault("bench.variants", defaultConfig.Bench.Variants)
	v.SetDefault("bench.jobs", defaultConfig.Bench.Jobs)
	v.SetDefault("bench.block_size", defaultConfig.Bench.BlockSize)
	v.SetDefault("bench.warmup", defaultConfig.Bench.Warmup)
	v.SetDefault("bench.iterations", defaultConfig.Bench.Iterations)
	v.SetDefault("bench.verify", defaultConfig.Bench.Verify)
	v.SetDefault("bench.progress", defaultConfig.Bench.Progress)
	v.SetDefault("bench.metrics_path", defaultConfig.Bench.MetricsPath)
}

type configBinding struct {
	key string
	env string
}

func bindEnv(v *viper.Viper) error {
	bindings := []configBinding{
		{"bench.type", "GEMM_BENCH_TYPE"},
		{"bench.variants", "GEMM_BENCH_VARIANTS"},
		{"bench.jobs", "GEMM_BENCH_JOBS"},
		{"bench.block_size", "GEMM_BENCH_BLOCK_SIZE"},
		{"bench.warmup", "GEMM_BENCH_WARMUP"},
		{"bench.iterations", "GEMM_BENCH_ITERATIONS"},
		{"bench.verify", "GEMM_BENCH_VERIFY"},
		{"bench.progress", "GEMM_BENCH_PROGRESS"},
		{"bench.metrics_path", "GEMM_BENCH_METRICS_PATH"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))); err != nil {
		return nil, errors.Trace(err)
	}
	if len(config.Cases) == 0 {
		config.Cases = defaultCases()
	}
	return &config, nil
}

// LoadConfig loads configuration from a TOML file. Environment variables
// override values in the file. An empty path loads defaults and environment
// variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.Trace(err)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	config, err := unmarshal(v)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}

// Validate checks field constraints, variant names and case name uniqueness.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NotValidf("bench config: %v", err)
	}
	if _, err := config.Bench.GetVariants(); err != nil {
		return errors.Trace(err)
	}
	if duplicates := lo.FindDuplicatesBy(config.Cases, func(c CaseConfig) string { return c.Name }); len(duplicates) > 0 {
		return errors.NotValidf("duplicate case %q", duplicates[0].Name)
	}
	return nil
}
