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
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
)

// ValidationStatus represents the overall validation outcome.
type ValidationStatus string

const (
	// ValidationStatusPass indicates every check passed.
	ValidationStatusPass ValidationStatus = "pass"

	// ValidationStatusFail indicates the GPU or CUDA toolkit is unusable.
	ValidationStatusFail ValidationStatus = "fail"

	// ValidationStatusPartial indicates the toolkit works but a version
	// check or framework probe did not pass.
	ValidationStatusPartial ValidationStatus = "partial"
)

// CheckStatus represents the outcome of a single check.
type CheckStatus string

const (
	CheckStatusPassed  CheckStatus = "passed"
	CheckStatusFailed  CheckStatus = "failed"
	CheckStatusSkipped CheckStatus = "skipped"
)

// Check is the result of one validation check.
type Check struct {
	// Name is "gpu", "cuda", "driver-version", "cuda-version", or a
	// framework key.
	Name     string      `json:"name" yaml:"name"`
	Expected string      `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string      `json:"actual,omitempty" yaml:"actual,omitempty"`
	Status   CheckStatus `json:"status" yaml:"status"`
	Message  string      `json:"message,omitempty" yaml:"message,omitempty"`

	// output is the raw command output written to the validation log.
	output string
}

// ValidationSummary contains aggregate statistics about the validation.
type ValidationSummary struct {
	Passed  int              `json:"passed" yaml:"passed"`
	Failed  int              `json:"failed" yaml:"failed"`
	Skipped int              `json:"skipped" yaml:"skipped"`
	Total   int              `json:"total" yaml:"total"`
	Status  ValidationStatus `json:"status" yaml:"status"`
}

// ValidationResult is the complete validation outcome.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Profile    string            `json:"profile" yaml:"profile"`
	Toolkit    []Check           `json:"toolkit" yaml:"toolkit"`
	Frameworks []Check           `json:"frameworks" yaml:"frameworks"`
	Summary    ValidationSummary `json:"summary" yaml:"summary"`
}

// Healthy reports whether the GPU and CUDA toolkit checks passed.
func (r *ValidationResult) Healthy() bool {
	for _, c := range r.Toolkit {
		if (c.Name == CheckGPU || c.Name == CheckCUDA) && c.Status != CheckStatusPassed {
			return false
		}
	}
	return true
}

func (r *ValidationResult) summarize() {
	s := ValidationSummary{}
	for _, group := range [][]Check{r.Toolkit, r.Frameworks} {
		for _, c := range group {
			s.Total++
			switch c.Status {
			case CheckStatusPassed:
				s.Passed++
			case CheckStatusFailed:
				s.Failed++
			case CheckStatusSkipped:
				s.Skipped++
			}
		}
	}

	switch {
	case !r.Healthy():
		s.Status = ValidationStatusFail
	case s.Failed > 0 || s.Skipped > 0:
		s.Status = ValidationStatusPartial
	default:
		s.Status = ValidationStatusPass
	}
	r.Summary = s
}

// BenchmarkResult is one timing measurement.
type BenchmarkResult struct {
	Label    string  `json:"label" yaml:"label"`
	Metric   string  `json:"metric" yaml:"metric"`
	Unit     string  `json:"unit" yaml:"unit"`
	Value    float64 `json:"value" yaml:"value"`
	Expected float64 `json:"expected,omitempty" yaml:"expected,omitempty"`
	Ran      bool    `json:"ran" yaml:"ran"`
	Message  string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Slow reports whether the result exceeds twice the expected value.
func (b BenchmarkResult) Slow() bool {
	return b.Ran && b.Expected > 0 && b.Value > b.Expected*slowFactor
}
