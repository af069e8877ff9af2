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

package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/wait"
)

func newTestRunner(t *testing.T, ex Executor) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(WithExecutor(ex), WithLogger(logger), WithBackoff(wait.Backoff{})), &buf
}

func TestRunRetries(t *testing.T) {
	tests := []struct {
		name      string
		rule      FakeRule
		retries   int
		want      bool
		wantCalls int
	}{
		{"succeeds first time", FakeRule{Match: "apt-get"}, 2, true, 1},
		{"succeeds on last attempt", FakeRule{Match: "apt-get", Failures: 2}, 2, true, 3},
		{"exhausts attempts", FakeRule{Match: "apt-get", Failures: -1}, 2, false, 3},
		{"no retries", FakeRule{Match: "apt-get", Failures: -1}, 0, false, 1},
		{"negative retries treated as zero", FakeRule{Match: "apt-get", Failures: -1}, -3, false, 1},
		{"not found is terminal", FakeRule{Match: "apt-get", NotFound: true}, 5, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeExecutor(tt.rule)
			r, _ := newTestRunner(t, fake)

			got := r.Run(context.Background(), Sudo("apt-get", "update"), tt.retries, false)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, len(fake.Calls()))
		})
	}
}

func TestRunShowProgressDoesNotChangeResult(t *testing.T) {
	for _, show := range []bool{false, true} {
		fake := NewFakeExecutor(FakeRule{Match: "pip3", Failures: 1, Output: "Collecting torch\nInstalling"})
		r, _ := newTestRunner(t, fake)
		assert.True(t, r.Run(context.Background(), Cmd("pip3", "install", "torch"), 1, show))
		assert.Equal(t, 2, len(fake.Calls()))
	}
}

func TestRunLogsEveryAttempt(t *testing.T) {
	fake := NewFakeExecutor(FakeRule{Match: "nvcc", Failures: -1, ExitCode: 127, Output: "boom"})
	r, logs := newTestRunner(t, fake)

	require.False(t, r.Run(context.Background(), Cmd("nvcc", "--version"), 1, false))

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "msg=\"executing command\""))
	assert.Equal(t, 2, strings.Count(out, "msg=\"command attempt failed\""))
	assert.Contains(t, out, "COMMAND_FAILURE")
	assert.Contains(t, out, "exitCode=127")
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	fake := NewFakeExecutor(FakeRule{Match: "apt-get", Failures: -1})
	r, _ := newTestRunner(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, r.Run(ctx, Sudo("apt-get", "update"), 5, false))
	assert.Equal(t, 1, len(fake.Calls()))
}

func TestRunWaitsBetweenAttempts(t *testing.T) {
	fake := NewFakeExecutor(FakeRule{Match: "wget", Failures: 1})
	r := New(WithExecutor(fake), WithLogger(slog.New(slog.DiscardHandler)),
		WithBackoff(wait.Backoff{Duration: 20 * time.Millisecond, Steps: 1}))

	start := time.Now()
	require.True(t, r.Run(context.Background(), Cmd("wget", "x"), 1, false))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCapture(t *testing.T) {
	fake := NewFakeExecutor(
		FakeRule{Match: "nvidia-smi", Output: "Driver Version: 535.104.05    CUDA Version: 12.2"},
		FakeRule{Match: "nvcc", NotFound: true},
	)
	r, _ := newTestRunner(t, fake)

	out, ok := r.Capture(context.Background(), Cmd("nvidia-smi"))
	assert.True(t, ok)
	assert.Contains(t, out, "CUDA Version: 12.2")

	_, ok = r.Capture(context.Background(), Cmd("nvcc", "--version"))
	assert.False(t, ok)
}

func TestCommandString(t *testing.T) {
	c := Sudo("add-apt-repository", "deb https://example.com/ /")
	assert.Equal(t, "sudo add-apt-repository 'deb https://example.com/ /'", c.String())
	assert.Equal(t, "pip3 install torch==2.1.0", Cmd("pip3", "install", "torch==2.1.0").String())
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd\n", 2))
	assert.Equal(t, "only", tail("only", 5))
	assert.Equal(t, "", tail("", 3))
}

func TestExecExecutor(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()

	var lines []string
	res, err := ExecExecutor{}.Execute(ctx, Cmd("sh", "-c", "echo one; echo two >&2"), func(l string) {
		lines = append(lines, l)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.ElementsMatch(t, []string{"one", "two"}, lines)

	res, err = ExecExecutor{}.Execute(ctx, Cmd("sh", "-c", "exit 3"), nil)
	assert.ErrorIs(t, err, ErrExitStatus)
	assert.Equal(t, 3, res.ExitCode)

	_, err = ExecExecutor{}.Execute(ctx, Cmd("definitely-not-a-real-binary-gpusetup"), nil)
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestExecExecutorTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	r := New(WithLogger(slog.New(slog.DiscardHandler)), WithTimeout(50*time.Millisecond), WithBackoff(wait.Backoff{}))

	start := time.Now()
	assert.False(t, r.Run(context.Background(), Cmd("sleep", "5"), 0, false))
	assert.Less(t, time.Since(start), 4*time.Second)
}
