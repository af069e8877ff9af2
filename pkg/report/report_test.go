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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/orchestrator"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

func sampleOutcome() *orchestrator.Outcome {
	return &orchestrator.Outcome{
		State:       orchestrator.StateComplete,
		ResumedFrom: 1,
		Profile:     "fallback",
		Steps: []orchestrator.StepRecord{
			{Index: 1, Name: orchestrator.StepDetection, State: orchestrator.StateSucceeded, Skipped: true},
			{Index: 2, Name: orchestrator.StepDrivers, State: orchestrator.StateSucceeded, Profile: "nvidia_a100",
				Duration: 1500 * time.Millisecond},
			{Index: 3, Name: orchestrator.StepCUDA, State: orchestrator.StateSucceeded, Profile: "fallback",
				Fallback: true, Error: "command failed", Duration: 2 * time.Minute},
		},
	}
}

func TestBuild(t *testing.T) {
	rc := &orchestrator.RunContext{
		Detection:  &measurement.Detection{GPUModel: measurement.GPUNvidiaA100},
		Validation: &validator.ValidationResult{Summary: validator.ValidationSummary{Passed: 4, Total: 4}},
		Highlights: []string{"PyTorch GPU test successful"},
	}
	started := time.Now().Add(-time.Minute)

	r := Build("run-1", "v1.2.3", started, sampleOutcome(), rc, nil)

	assert.Equal(t, header.KindRunReport, r.Kind)
	assert.Equal(t, "run-1", r.Metadata["runId"])
	assert.Equal(t, "v1.2.3", r.Metadata["version"])
	assert.Equal(t, orchestrator.StateComplete, r.State)
	assert.Zero(t, r.ExitCode)
	assert.Equal(t, 1, r.ResumedFrom)
	assert.Equal(t, "fallback", r.Profile)
	assert.True(t, r.FallbackUsed())
	assert.Empty(t, r.Error)

	require.Len(t, r.Steps, 3)
	assert.Empty(t, r.Steps[0].Duration)
	assert.Equal(t, "1.5s", r.Steps[1].Duration)
	assert.Equal(t, "2m0s", r.Steps[2].Duration)

	require.NotNil(t, r.Validation)
	assert.Equal(t, 4, r.Validation.Passed)
	assert.Equal(t, measurement.GPUNvidiaA100, r.Detection.GPUModel)
	assert.Equal(t, []string{"PyTorch GPU test successful"}, r.Highlights)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))
}

func TestBuildWithoutOutcome(t *testing.T) {
	r := Build(NewRunID(), "", time.Now(), nil, nil, errors.New("lock held"))
	assert.Equal(t, orchestrator.StateAborted, r.State)
	assert.Equal(t, 1, r.ExitCode)
	assert.Equal(t, "lock held", r.Error)
	assert.NotNil(t, r.Steps)
	assert.Len(t, r.RunID, 36)
}

func TestWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_report.json")

	_, found, err := Load(path)
	require.NoError(t, err)
	assert.False(t, found)

	r := Build("run-2", "test", time.Now(), sampleOutcome(), nil, nil)
	require.NoError(t, r.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "RunReport"`)
	assert.Contains(t, string(data), `"runId": "run-2"`)

	got, found, err := Load(path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r.Steps, got.Steps)
	assert.Equal(t, r.State, got.State)
}

func TestUploadConfig(t *testing.T) {
	assert.False(t, UploadConfig{}.Enabled())
	assert.True(t, UploadConfig{Endpoint: "s3.local:9000", Bucket: "runs"}.Enabled())

	err := UploadConfig{Endpoint: "s3.local:9000"}.Validate()
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeConfigurationMissing))
	assert.Contains(t, err.Error(), "bucket, credentials")

	_, err = NewUploader(UploadConfig{})
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	var (
		mu   sync.Mutex
		puts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			puts = append(puts, r.URL.Path)
			mu.Unlock()
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	reportPath := filepath.Join(dir, "run_report.json")
	logPath := filepath.Join(dir, "validation_log.txt")
	require.NoError(t, os.WriteFile(reportPath, []byte(`{"kind":"RunReport"}`), 0o600))
	require.NoError(t, os.WriteFile(logPath, []byte("GPU Validation:\n"), 0o600))

	u, err := NewUploader(UploadConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    "gpu-runs",
		Prefix:    "/hosts/node-1/",
		Region:    "us-east-1",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	keys, err := u.Upload(context.Background(), "run-3", reportPath, logPath)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"hosts/node-1/run-3/run_report.json",
		"hosts/node-1/run-3/validation_log.txt",
	}, keys)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/gpu-runs/hosts/node-1/run-3/run_report.json",
		"/gpu-runs/hosts/node-1/run-3/validation_log.txt",
	}, puts)
}
