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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigurationMissing, "profile fallback not defined")

	if err.Code != ErrCodeConfigurationMissing {
		t.Errorf("expected code %s, got %s", ErrCodeConfigurationMissing, err.Code)
	}
	if err.Message != "profile fallback not defined" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("exit status 100")
	ctx := map[string]any{
		"command": "apt-get -y install cuda-11-8",
		"attempt": 3,
	}

	err := WrapWithContext(ErrCodeCommandFailure, "command failed", cause, ctx)

	if err.Code != ErrCodeCommandFailure {
		t.Errorf("expected code %s, got %s", ErrCodeCommandFailure, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be wrapped")
	}
	if err.Context["attempt"] != 3 {
		t.Errorf("expected attempt context, got %v", err.Context)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeStepFailure, "Install CUDA & Libraries failed"),
			expected: "[STEP_FAILURE] Install CUDA & Libraries failed",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeRollbackPartialFailure, "uninstall torch", errors.New("exit status 1")),
			expected: "[ROLLBACK_PARTIAL_FAILURE] uninstall torch: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ErrCodeInternal},
		{"structured", New(ErrCodeTimeout, "slow"), ErrCodeTimeout},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeNotFound, "gone")), ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeConfigurationMissing, "preset not found")
	outer := Wrap(ErrCodeStepFailure, "select frameworks", inner)

	if !IsCode(outer, ErrCodeStepFailure) {
		t.Error("expected outer code to match")
	}
	if !IsCode(outer, ErrCodeConfigurationMissing) {
		t.Error("expected nested code to match")
	}
	if IsCode(outer, ErrCodeTimeout) {
		t.Error("unexpected match for absent code")
	}
	if IsCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}
