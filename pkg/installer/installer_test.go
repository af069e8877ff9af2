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

package installer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/wait"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
)

func setup(t *testing.T, rules ...runner.FakeRule) (*Installer, *runner.FakeExecutor, *session.Ledger) {
	t.Helper()
	fake := runner.NewFakeExecutor(rules...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := runner.New(runner.WithExecutor(fake), runner.WithLogger(logger), runner.WithBackoff(wait.Backoff{}))
	ledger, err := session.Open(filepath.Join(t.TempDir(), "install_session.json"))
	require.NoError(t, err)
	return New(r, ledger, WithLogger(logger)), fake, ledger
}

func TestPackageNames(t *testing.T) {
	pkg, err := DriverPackage("535.104.05")
	require.NoError(t, err)
	assert.Equal(t, "nvidia-driver-535", pkg)

	pkg, err = CUDAPackage("11.8")
	require.NoError(t, err)
	assert.Equal(t, "cuda-11-8", pkg)

	_, err = CUDAPackage("")
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}

func TestDriver(t *testing.T) {
	inst, fake, ledger := setup(t)

	require.NoError(t, inst.Driver(context.Background(), "525.147.05"))
	assert.Equal(t, []string{
		"sudo apt-get update",
		"sudo apt-get -y install nvidia-driver-525",
	}, fake.CallLines())
	assert.Equal(t, []string{"nvidia-driver-525"}, ledger.Packages(session.KindApt))
}

func TestDriverFailureRecordsNothing(t *testing.T) {
	inst, fake, ledger := setup(t, runner.FakeRule{Match: "install nvidia-driver", Failures: -1})

	err := inst.Driver(context.Background(), "525")
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeCommandFailure))
	assert.Equal(t, 3, fake.Count("install nvidia-driver"))
	assert.Empty(t, ledger.Packages(session.KindApt))
}

func TestCUDA(t *testing.T) {
	inst, fake, ledger := setup(t)

	libs := []profile.Library{{Name: "cudnn", Version: "8.6.0"}}
	require.NoError(t, inst.CUDA(context.Background(), "11.8", libs))

	lines := fake.CallLines()
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "wget")
	assert.Equal(t, "sudo mv cuda-ubuntu2004.pin /etc/apt/preferences.d/cuda-repository-pin-600", lines[1])
	assert.Equal(t, "sudo apt-get update", lines[4])
	assert.Equal(t, "sudo apt-get -y install cuda-11-8", lines[5])
	assert.Equal(t, []string{"cuda-11-8"}, ledger.Packages(session.KindApt))
}

func TestCUDARepoSetupRetriedOnce(t *testing.T) {
	inst, fake, _ := setup(t, runner.FakeRule{Match: "apt-key", Failures: -1})

	require.Error(t, inst.CUDA(context.Background(), "11.8", nil))
	assert.Equal(t, 2, fake.Count("apt-key"))
	assert.Zero(t, fake.Count("install cuda"))
}

func TestEnsurePip(t *testing.T) {
	inst, _, ledger := setup(t)
	require.NoError(t, inst.EnsurePip(context.Background()))
	assert.Equal(t, []string{"python3-pip"}, ledger.Packages(session.KindApt))
}

func TestFrameworks(t *testing.T) {
	inst, fake, ledger := setup(t)

	p := profile.Profile{
		CUDAVersion: "11.8",
		Frameworks:  map[string]string{"pytorch": "2.0.1", "qiskit": "latest"},
	}
	require.NoError(t, inst.Frameworks(context.Background(), p, []string{"qiskit", "caffe", "pytorch"}))

	assert.Equal(t, []string{
		"pip3 install qiskit qiskit-aer",
		"pip3 install torch==2.0.1 torchvision torchaudio --extra-index-url https://download.pytorch.org/whl/cu118",
	}, fake.CallLines())
	assert.Equal(t, []string{"qiskit", "qiskit-aer", "torch", "torchvision", "torchaudio"},
		ledger.Packages(session.KindPip))
}

func TestFrameworksDefaultsToProfile(t *testing.T) {
	inst, fake, _ := setup(t)

	p := profile.Profile{
		CUDAVersion: "11.8",
		Frameworks:  map[string]string{"tensorflow": "2.13.0", "cirq": "1.2.0"},
	}
	require.NoError(t, inst.Frameworks(context.Background(), p, nil))
	assert.Equal(t, []string{"pip3 install cirq==1.2.0", "pip3 install tensorflow==2.13.0"}, fake.CallLines())
}

func TestFrameworkFailureStopsSequence(t *testing.T) {
	inst, fake, ledger := setup(t, runner.FakeRule{Match: "tensorflow", Failures: -1})

	p := profile.Profile{
		CUDAVersion: "11.8",
		Frameworks:  map[string]string{"tensorflow": "2.13.0", "cirq": "latest"},
	}
	err := inst.Frameworks(context.Background(), p, []string{"tensorflow", "cirq"})
	require.Error(t, err)
	assert.Zero(t, fake.Count("cirq"))
	assert.Empty(t, ledger.Packages(session.KindPip))
}
