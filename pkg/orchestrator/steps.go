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

package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/installer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/snapshotter"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

// Step names, in pipeline order.
const (
	StepDetection  = "Detection"
	StepDrivers    = "Install GPU Drivers"
	StepCUDA       = "Install CUDA & Libraries"
	StepFrameworks = "Install Frameworks"
	StepValidation = "Validation"
	StepBenchmark  = "Benchmark"
)

// Detector measures the host.
type Detector interface {
	Measure(ctx context.Context) (*measurement.Detection, error)
}

// Installer performs the package installs of the pipeline.
type Installer interface {
	Driver(ctx context.Context, driverVersion string) error
	CUDA(ctx context.Context, cudaVersion string, libraries []profile.Library) error
	EnsurePip(ctx context.Context) error
	Frameworks(ctx context.Context, p profile.Profile, selected []string) error
}

// Validator checks and benchmarks the installed stack.
type Validator interface {
	Validate(ctx context.Context, p profile.Profile, frameworks []string) (*validator.ValidationResult, error)
	Benchmark(ctx context.Context, p profile.Profile, frameworks []string) []validator.BenchmarkResult
}

// Config wires the collaborators of the default pipeline.
type Config struct {
	Detector  Detector
	Installer Installer
	Validator Validator

	// SkipFrameworks omits the framework step. It should match
	// RunContext.NoFrameworks.
	SkipFrameworks bool
	// Strict turns a failed GPU or CUDA check into a step failure.
	Strict bool
}

// Pipeline returns the install pipeline: detection, drivers, CUDA,
// frameworks (unless skipped), validation and benchmark.
func Pipeline(cfg Config) []Step {
	steps := []Step{
		&DetectStep{Detector: cfg.Detector},
		&DriverStep{Installer: cfg.Installer},
		&CUDAStep{Installer: cfg.Installer},
	}
	if !cfg.SkipFrameworks {
		steps = append(steps, &FrameworksStep{Installer: cfg.Installer})
	}
	return append(steps,
		&ValidateStep{Validator: cfg.Validator, Strict: cfg.Strict},
		&BenchmarkStep{Validator: cfg.Validator},
	)
}

// noFallback is embedded by steps that have nothing to retry with.
type noFallback struct{}

func (noFallback) Fallback(*RunContext, profile.Profile) (profile.Profile, bool) {
	return profile.Profile{}, false
}

// DetectStep measures the host and selects the profile for the run.
type DetectStep struct {
	noFallback
	Detector Detector
}

func (*DetectStep) Name() string { return StepDetection }

func (s *DetectStep) Run(ctx context.Context, rc *RunContext, _ profile.Profile) error {
	d, err := s.Detector.Measure(ctx)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeStepFailure, "host detection failed", err)
	}
	selectProfile(rc, d)
	for _, tip := range snapshotter.Advice(d) {
		rc.Log.Info("detection advice", "advice", tip)
		rc.Printer.Bullet(tip)
	}
	return nil
}

// Restore reloads the detection document written by an earlier run, along
// with the fallback profile that run switched to.
func (s *DetectStep) Restore(_ context.Context, rc *RunContext) error {
	d, found, err := snapshotter.Load(rc.Path(defaults.DetectionFile))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to read detection document", err)
	}
	if !found {
		rc.Log.Warn("detection document missing, using unknown GPU profile",
			"path", rc.Path(defaults.DetectionFile))
		d = &measurement.Detection{GPUModel: measurement.GPUUnknown}
		d.Normalize()
	}
	selectProfile(rc, d)
	if d.ActiveProfile == "" {
		return nil
	}
	if !rc.Profiles.Has(d.ActiveProfile) {
		rc.Log.Warn("recorded profile no longer exists, using detected profile",
			"recorded", d.ActiveProfile, "profile", rc.Profile.Name)
		return nil
	}
	rc.Profile = rc.Profiles.Lookup(d.ActiveProfile)
	rc.Log.Info("restored fallback profile", "profile", rc.Profile.Name,
		"driver", rc.Profile.DriverVersion, "cuda", rc.Profile.CUDAVersion)
	return nil
}

func selectProfile(rc *RunContext, d *measurement.Detection) {
	rc.Detection = d
	rc.Profile = rc.Profiles.Lookup(d.GPUModel)
	rc.Log.Info("selected compatibility profile", "gpu", d.GPUModel, "profile", rc.Profile.Name,
		"driver", rc.Profile.DriverVersion, "cuda", rc.Profile.CUDAVersion)
}

// DriverStep installs the NVIDIA driver.
type DriverStep struct {
	Installer Installer
}

func (*DriverStep) Name() string { return StepDrivers }

func (s *DriverStep) Run(ctx context.Context, _ *RunContext, p profile.Profile) error {
	return stepFailure("driver install", s.Installer.Driver(ctx, p.DriverVersion))
}

// Fallback differs when it selects another driver series.
func (*DriverStep) Fallback(rc *RunContext, primary profile.Profile) (profile.Profile, bool) {
	fb := rc.Profiles.Fallback()
	return fb, driverSeries(fb.DriverVersion) != driverSeries(primary.DriverVersion)
}

// stepFailure wraps an installer error so the step reports STEP_FAILURE with
// the command failure as its cause.
func stepFailure(what string, err error) error {
	if err == nil {
		return nil
	}
	return cnserrors.Wrap(cnserrors.ErrCodeStepFailure, what+" failed", err)
}

func driverSeries(v string) string {
	if pkg, err := installer.DriverPackage(v); err == nil {
		return pkg
	}
	return v
}

// CUDAStep installs the CUDA toolkit.
type CUDAStep struct {
	Installer Installer
}

func (*CUDAStep) Name() string { return StepCUDA }

func (s *CUDAStep) Run(ctx context.Context, _ *RunContext, p profile.Profile) error {
	return stepFailure("CUDA install", s.Installer.CUDA(ctx, p.CUDAVersion, p.Libraries))
}

// Fallback differs when it selects another CUDA or cuDNN version.
func (*CUDAStep) Fallback(rc *RunContext, primary profile.Profile) (profile.Profile, bool) {
	fb := rc.Profiles.Fallback()
	return fb, fb.CUDAVersion != primary.CUDAVersion || fb.CUDNNVersion != primary.CUDNNVersion
}

// FrameworksStep installs pip and the selected frameworks.
type FrameworksStep struct {
	Installer Installer
}

func (*FrameworksStep) Name() string { return StepFrameworks }

func (s *FrameworksStep) Run(ctx context.Context, rc *RunContext, p profile.Profile) error {
	selected := rc.SelectedFrameworks(p)
	if len(selected) == 0 {
		rc.Log.Info("no frameworks selected")
		return nil
	}
	if err := s.Installer.EnsurePip(ctx); err != nil {
		return stepFailure("pip bootstrap", err)
	}
	return stepFailure("framework install", s.Installer.Frameworks(ctx, p, selected))
}

// Fallback differs when the wheels it would install differ: another CUDA
// build or another version of a selected framework.
func (*FrameworksStep) Fallback(rc *RunContext, primary profile.Profile) (profile.Profile, bool) {
	fb := rc.Profiles.Fallback()
	if fb.CUDAVersion != primary.CUDAVersion {
		return fb, true
	}
	for _, name := range rc.SelectedFrameworks(primary) {
		if fb.FrameworkVersion(name) != primary.FrameworkVersion(name) {
			return fb, true
		}
	}
	return fb, false
}

// ValidateStep checks the GPU, the toolkit and each selected framework and
// writes the validation log.
type ValidateStep struct {
	noFallback
	Validator Validator
	Strict    bool
}

func (*ValidateStep) Name() string { return StepValidation }

func (s *ValidateStep) Run(ctx context.Context, rc *RunContext, p profile.Profile) error {
	res, err := s.Validator.Validate(ctx, p, rc.SelectedFrameworks(p))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeStepFailure, "validation could not run", err)
	}
	rc.Validation = res
	if err := validator.WriteLog(rc.Path(defaults.ValidationFile), res); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write validation log", err)
	}

	for _, group := range [][]validator.Check{res.Toolkit, res.Frameworks} {
		for _, c := range group {
			if c.Status == validator.CheckStatusFailed {
				rc.Printer.Warning(fmt.Sprintf("%s: %s", c.Name, firstLine(c.Message)))
			}
		}
	}
	rc.Log.Info("validation finished", "status", res.Summary.Status,
		"passed", res.Summary.Passed, "failed", res.Summary.Failed, "skipped", res.Summary.Skipped)

	if !res.Healthy() {
		if s.Strict {
			return cnserrors.NewWithContext(cnserrors.ErrCodeStepFailure, "GPU or CUDA validation failed",
				map[string]any{"failed": res.Summary.Failed})
		}
		rc.Printer.Warning("validation found issues, see " + rc.Path(defaults.ValidationFile))
	}
	return nil
}

// BenchmarkStep times the selected frameworks and appends the results to
// the validation log. It does not fail on slow results.
type BenchmarkStep struct {
	noFallback
	Validator Validator
}

func (*BenchmarkStep) Name() string { return StepBenchmark }

func (s *BenchmarkStep) Run(ctx context.Context, rc *RunContext, p profile.Profile) error {
	results := s.Validator.Benchmark(ctx, p, rc.SelectedFrameworks(p))
	rc.Benchmarks = results

	path := rc.Path(defaults.ValidationFile)
	if err := validator.AppendBenchmark(path, results); err != nil {
		rc.Log.Warn("failed to append benchmark results", "path", path, "error", err)
	}
	for _, line := range validator.BenchmarkLines(results) {
		if strings.HasPrefix(line, "Warning:") {
			rc.Printer.Warning(line)
		} else {
			rc.Printer.Bullet(line)
		}
	}

	highlights, err := validator.Highlights(path)
	if err != nil {
		rc.Log.Warn("failed to read validation highlights", "path", path, "error", err)
	}
	rc.Highlights = highlights
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
