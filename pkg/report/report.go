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

package report

import (
	"time"

	"github.com/google/uuid"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/orchestrator"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Step is a step as it appears in the report.
type Step struct {
	Index    int                `json:"index" yaml:"index"`
	Name     string             `json:"name" yaml:"name"`
	State    orchestrator.State `json:"state" yaml:"state"`
	Skipped  bool               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Fallback bool               `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Profile  string             `json:"profile,omitempty" yaml:"profile,omitempty"`
	Duration string             `json:"duration,omitempty" yaml:"duration,omitempty"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report describes one setup run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID       string             `json:"runId" yaml:"runId"`
	StartedAt   time.Time          `json:"startedAt" yaml:"startedAt"`
	FinishedAt  time.Time          `json:"finishedAt" yaml:"finishedAt"`
	State       orchestrator.State `json:"state" yaml:"state"`
	ExitCode    int                `json:"exitCode" yaml:"exitCode"`
	ResumedFrom int                `json:"resumedFrom" yaml:"resumedFrom"`
	Profile     string             `json:"profile,omitempty" yaml:"profile,omitempty"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`

	Detection  *measurement.Detection       `json:"detection,omitempty" yaml:"detection,omitempty"`
	Steps      []Step                       `json:"steps" yaml:"steps"`
	Validation *validator.ValidationSummary `json:"validation,omitempty" yaml:"validation,omitempty"`
	Benchmarks []validator.BenchmarkResult  `json:"benchmarks,omitempty" yaml:"benchmarks,omitempty"`
	Highlights []string                     `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Build assembles the report of a finished run. out may be nil when the run
// failed before the first step.
func Build(runID, version string, started time.Time, out *orchestrator.Outcome, rc *orchestrator.RunContext, runErr error) *Report {
	r := &Report{
		Header:     header.New(header.KindRunReport, version, header.WithMetadata("runId", runID)),
		RunID:      runID,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		State:      orchestrator.StateAborted,
		ExitCode:   out.ExitCode(),
		Steps:      []Step{},
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	if out != nil {
		r.State = out.State
		r.ResumedFrom = out.ResumedFrom
		r.Profile = out.Profile
		for _, s := range out.Steps {
			step := Step{
				Index:    s.Index,
				Name:     s.Name,
				State:    s.State,
				Skipped:  s.Skipped,
				Fallback: s.Fallback,
				Profile:  s.Profile,
				Error:    s.Error,
			}
			if s.Duration > 0 {
				step.Duration = s.Duration.Round(time.Millisecond).String()
			}
			r.Steps = append(r.Steps, step)
		}
	}

	if rc != nil {
		r.Detection = rc.Detection
		if rc.Validation != nil {
			summary := rc.Validation.Summary
			r.Validation = &summary
		}
		r.Benchmarks = rc.Benchmarks
		r.Highlights = rc.Highlights
	}
	return r
}

// FallbackUsed reports whether any step recovered with the fallback profile.
func (r *Report) FallbackUsed() bool {
	for _, s := range r.Steps {
		if s.Fallback {
			return true
		}
	}
	return false
}

// Write stores the report as JSON at path.
func (r *Report) Write(path string) error {
	if err := serializer.WriteJSONAtomic(path, r); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write run report", err)
	}
	return nil
}

// Load reads a report written by Write. found is false when path does not
// exist.
func Load(path string) (r *Report, found bool, err error) {
	r = &Report{}
	found, err = serializer.ReadJSON(path, r)
	if err != nil || !found {
		return nil, found, err
	}
	return r, true, nil
}
