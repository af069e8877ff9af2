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
	"log/slog"
	"path/filepath"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/checkpoint"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/rollback"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

// Step is one unit of the pipeline. Its position in the pipeline is its
// identity, so the order must not change between runs.
type Step interface {
	// Name is shown in status lines and the run report.
	Name() string

	// Run executes the step with profile p.
	Run(ctx context.Context, rc *RunContext, p profile.Profile) error

	// Fallback returns the profile to retry with after primary failed. ok is
	// false when the fallback gives this step nothing different to try.
	Fallback(rc *RunContext, primary profile.Profile) (fb profile.Profile, ok bool)
}

// Restorer is implemented by steps whose output later steps depend on. It
// is called instead of Run when the checkpoint says the step already
// completed, and must not execute commands.
type Restorer interface {
	Restore(ctx context.Context, rc *RunContext) error
}

// Rollbacker undoes recorded installs.
type Rollbacker interface {
	Rollback(ctx context.Context, level rollback.Level) rollback.Report
}

// RunContext carries the state shared by the steps of one run.
type RunContext struct {
	Log        *slog.Logger
	Printer    *ux.Printer
	Ledger     *session.Ledger
	Checkpoint *checkpoint.Checkpoint
	Rollback   Rollbacker
	Profiles   *profile.Store

	// StateDir holds the persisted files of the run.
	StateDir string

	// Frameworks is the requested selection; empty means every framework
	// the profile lists.
	Frameworks []string
	// NoFrameworks disables framework install and validation.
	NoFrameworks bool

	// Detection is set by the detection step.
	Detection *measurement.Detection
	// Profile is what install steps use. A successful fallback replaces it
	// for the rest of the run.
	Profile profile.Profile

	Validation *validator.ValidationResult
	Benchmarks []validator.BenchmarkResult
	// Highlights are validation log lines worth repeating in the summary.
	Highlights []string
}

// Path returns name inside the state directory.
func (rc *RunContext) Path(name string) string {
	return filepath.Join(rc.StateDir, name)
}

// persistProfile records the active profile in the detection document so a
// resumed run continues with it.
func (rc *RunContext) persistProfile() error {
	if rc.Detection == nil {
		rc.Detection = &measurement.Detection{GPUModel: measurement.GPUUnknown}
		rc.Detection.Normalize()
	}
	rc.Detection.ActiveProfile = rc.Profile.Name
	return serializer.WriteJSONAtomic(rc.Path(defaults.DetectionFile), rc.Detection)
}

// SelectedFrameworks resolves the framework selection against p. The result
// is never nil; it is empty when frameworks are disabled.
func (rc *RunContext) SelectedFrameworks(p profile.Profile) []string {
	if rc.NoFrameworks {
		return []string{}
	}
	if len(rc.Frameworks) == 0 {
		return p.FrameworkNames()
	}
	return rc.Frameworks
}
