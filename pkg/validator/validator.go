// Copyright (c) 2026, Aepok Corporation.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/gpu"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/framework"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

// Toolkit check names.
const (
	CheckGPU           = "gpu"
	CheckCUDA          = "cuda"
	CheckDriverVersion = "driver-version"
	CheckCUDAVersion   = "cuda-version"
)

const slowFactor = 2.0

const pythonBinary = "python3"

var reNvccRelease = regexp.MustCompile(`release\s+([0-9][0-9.]*)`)

// Prober runs a command once and returns its output.
type Prober interface {
	Capture(ctx context.Context, cmd runner.Command) (string, bool)
}

// Validator runs validation checks and benchmarks through a Prober.
type Validator struct {
	prober  Prober
	version string
	log     *slog.Logger
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithVersion sets the version stamped into results.
func WithVersion(v string) Option {
	return func(val *Validator) {
		val.version = v
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(val *Validator) {
		val.log = l
	}
}

// New creates a Validator.
func New(p Prober, opts ...Option) *Validator {
	v := &Validator{prober: p, log: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the GPU, the CUDA toolkit, their versions against p, and
// every selected framework. A nil selection validates the frameworks p
// lists; an empty non-nil one validates none. Failing checks are reported in the result, not as an error.
func (v *Validator) Validate(ctx context.Context, p profile.Profile, frameworks []string) (*ValidationResult, error) {
	result := &ValidationResult{
		Header:     header.New(header.KindValidationResult, v.version),
		Profile:    p.Name,
		Toolkit:    []Check{},
		Frameworks: []Check{},
	}

	smiOut, smiOK := v.prober.Capture(ctx, runner.Cmd("nvidia-smi"))
	gpuCheck := Check{Name: CheckGPU, Status: CheckStatusPassed, output: smiOut}
	if !smiOK {
		gpuCheck.Status, gpuCheck.Message, gpuCheck.output = CheckStatusFailed, "nvidia-smi check failed.", "nvidia-smi check failed."
	}

	nvccOut, nvccOK := v.prober.Capture(ctx, runner.Cmd("nvcc", "--version"))
	cudaCheck := Check{Name: CheckCUDA, Status: CheckStatusPassed, output: nvccOut}
	if !nvccOK {
		cudaCheck.Status, cudaCheck.Message, cudaCheck.output = CheckStatusFailed, "CUDA nvcc not found.", "CUDA nvcc not found."
	}
	result.Toolkit = append(result.Toolkit, gpuCheck, cudaCheck)

	driver, _ := gpu.ParseBanner(smiOut)
	result.Toolkit = append(result.Toolkit,
		versionCheck(CheckDriverVersion, driverConstraint(p.DriverVersion), driver, smiOK),
		versionCheck(CheckCUDAVersion, "== "+p.CUDAVersion, firstMatch(reNvccRelease, nvccOut), nvccOK),
	)

	if frameworks == nil {
		frameworks = p.FrameworkNames()
	}
	for _, name := range frameworks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Frameworks = append(result.Frameworks, v.probe(ctx, name))
	}

	result.summarize()
	validationChecks.WithLabelValues(string(result.Summary.Status)).Inc()

	if result.Healthy() {
		v.log.Info("validation successful, GPU and CUDA are properly configured",
			"passed", result.Summary.Passed, "total", result.Summary.Total)
	} else {
		v.log.Error("validation encountered issues",
			"failed", result.Summary.Failed, "total", result.Summary.Total)
	}
	return result, nil
}

func driverConstraint(profileDriver string) string {
	if dv, err := version.ParseVersion(profileDriver); err == nil {
		return ">= " + dv.MajorString()
	}
	return ">= " + profileDriver
}

func versionCheck(name, expr, actual string, toolOK bool) Check {
	c := Check{Name: name, Expected: expr, Actual: actual}
	if !toolOK || actual == "" {
		c.Status, c.Message = CheckStatusSkipped, "version not reported"
		return c
	}

	pc, err := ParseConstraintExpression(expr)
	if err != nil {
		c.Status, c.Message = CheckStatusSkipped, err.Error()
		return c
	}
	ok, err := pc.Evaluate(actual)
	switch {
	case err != nil:
		c.Status, c.Message = CheckStatusSkipped, err.Error()
	case ok:
		c.Status = CheckStatusPassed
	default:
		c.Status, c.Message = CheckStatusFailed, fmt.Sprintf("expected %s, found %s", expr, actual)
	}
	return c
}

func (v *Validator) probe(ctx context.Context, name string) Check {
	spec, ok := framework.Lookup(name)
	if !ok {
		return Check{Name: name, Status: CheckStatusSkipped, Message: "no probe registered"}
	}

	out, ok := v.prober.Capture(ctx, runner.Cmd(pythonBinary, "-c", spec.Probe))
	line := lastLine(out)
	if !ok {
		v.log.Error("framework test failed", "framework", spec.DisplayName, "output", line)
		if line == "" {
			line = "probe failed"
		}
		return Check{Name: name, Status: CheckStatusFailed, Message: "test failed: " + line}
	}
	v.log.Info("framework validation successful", "framework", spec.DisplayName)
	return Check{Name: name, Status: CheckStatusPassed, Message: line}
}

// Benchmark times each selected framework that has a benchmark and compares
// the result with p's expected performance.
func (v *Validator) Benchmark(ctx context.Context, p profile.Profile, frameworks []string) []BenchmarkResult {
	if frameworks == nil {
		frameworks = p.FrameworkNames()
	}

	var results []BenchmarkResult
	for _, name := range frameworks {
		spec, ok := framework.Lookup(name)
		if !ok || spec.Benchmark == nil {
			continue
		}
		b := spec.Benchmark
		r := BenchmarkResult{Label: b.Label, Metric: b.Metric, Unit: b.Unit, Expected: p.ExpectedPerformance[b.Metric]}

		out, ok := v.prober.Capture(ctx, runner.Cmd(pythonBinary, "-c", b.Script))
		value, err := strconv.ParseFloat(lastLine(out), 64)
		switch {
		case !ok || err != nil:
			r.Message = fmt.Sprintf("%s not run (%s missing or no GPU).", b.Label, spec.DisplayName)
		default:
			r.Ran, r.Value = true, value
			benchmarkValue.WithLabelValues(b.Metric).Set(value)
			if r.Slow() {
				v.log.Warn("benchmark slower than expected", "metric", b.Metric, "value", value, "expected", r.Expected)
			}
		}
		results = append(results, r)
	}
	v.log.Info("benchmark completed", "results", len(results))
	return results
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
