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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/orchestrator"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

type fakeDetector struct {
	path  string
	gpu   string
	calls *int
}

func (f *fakeDetector) Measure(_ context.Context) (*measurement.Detection, error) {
	if f.calls != nil {
		*f.calls++
	}
	d := &measurement.Detection{
		GPUModel:      f.gpu,
		GPUModels:     []string{"NVIDIA A100-SXM4-40GB"},
		OS:            "Ubuntu 22.04.3 LTS",
		CloudProvider: measurement.CloudUnknown,
	}
	if err := serializer.WriteJSONAtomic(f.path, d); err != nil {
		return nil, err
	}
	return d, nil
}

type harness struct {
	exec      *runner.FakeExecutor
	detects   int
	runtime   *fakeRuntime
	detectGPU string
}

// run executes the root command with args and returns what it printed.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prevExec, prevDet, prevRuntime, prevBackoff := newExecutor, newDetector, newRuntime, retryBackoff
	t.Cleanup(func() {
		newExecutor, newDetector, newRuntime, retryBackoff = prevExec, prevDet, prevRuntime, prevBackoff
	})
	retryBackoff = func() wait.Backoff { return wait.Backoff{} }

	if h.exec == nil {
		h.exec = runner.NewFakeExecutor()
	}
	if h.detectGPU == "" {
		h.detectGPU = "nvidia_a100"
	}
	newExecutor = func() runner.Executor { return h.exec }
	newDetector = func(_ *runner.Runner, path string) orchestrator.Detector {
		return &fakeDetector{path: path, gpu: h.detectGPU, calls: &h.detects}
	}
	newRuntime = func(context.Context) (imageRuntime, error) {
		if h.runtime == nil {
			h.runtime = &fakeRuntime{}
		}
		return h.runtime, nil
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.Writer = &out
	root.ErrWriter = &out
	err := root.Run(context.Background(), append([]string{name, "--log-level", "error"}, args...))
	return out.String(), err
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestFrameworkSelection(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantNil bool
		wantErr bool
	}{
		{name: "default", args: nil, wantNil: true},
		{name: "explicit", args: []string{"--frameworks", "PyTorch,jax,pytorch"}, want: []string{"pytorch", "jax"}},
		{name: "preset and explicit", args: []string{"--preset", "quantum", "--frameworks", "jax"}, want: []string{"qiskit", "cirq", "jax"}},
		{name: "no frameworks", args: []string{"--no-frameworks", "--frameworks", "jax"}, want: []string{}},
		{name: "unknown preset", args: []string{"--preset", "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: frameworkFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					got, err := frameworkSelection(ctx, c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					if tt.wantNil {
						assert.Nil(t, got)
						return nil
					}
					assert.Equal(t, tt.want, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
		})
	}
}

func TestRootCommandStructure(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Usage, "command %s has no usage", c.Name)
	}
	assert.Equal(t, []string{"setup", "status", "rollback", "detect", "validate", "container"}, names)

	var container *cli.Command
	for _, c := range root.Commands {
		if c.Name == "container" {
			container = c
		}
	}
	require.NotNil(t, container)
	var subs []string
	for _, c := range container.Commands {
		subs = append(subs, c.Name)
	}
	assert.Equal(t, []string{"generate", "build", "run", "push"}, subs)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(os.ErrNotExist))
	assert.Equal(t, 3, exitCode(cli.Exit("boom", 3)))
	assert.Equal(t, 1, exitCode(cli.Exit("zero", 0)))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	found, err := serializer.ReadJSON(path, v)
	require.NoError(t, err)
	require.True(t, found, "%s not written", filepath.Base(path))
}
