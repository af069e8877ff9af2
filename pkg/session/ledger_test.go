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

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

func openTemp(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "install_session.json")
	l, err := Open(path)
	require.NoError(t, err)
	return l, path
}

func readFile(t *testing.T, path string) State {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s State
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestOpenMissingIsEmpty(t *testing.T) {
	l, path := openTemp(t)
	assert.True(t, l.Snapshot().IsEmpty())
	assert.Empty(t, l.Packages(KindApt))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestRecordIsIdempotent(t *testing.T) {
	l, _ := openTemp(t)

	for _, p := range []string{"torch", "torchvision", "torch", "torchaudio", "torchvision"} {
		require.NoError(t, l.Record(KindPip, p))
	}
	assert.Equal(t, []string{"torch", "torchvision", "torchaudio"}, l.Packages(KindPip))

	// Same identifier under a different kind is a different entry.
	require.NoError(t, l.Record(KindApt, "torch"))
	assert.Equal(t, []string{"torch"}, l.Packages(KindApt))
	assert.Len(t, l.Packages(KindPip), 3)
}

func TestRecordPersistsEveryMutation(t *testing.T) {
	l, path := openTemp(t)

	require.NoError(t, l.Record(KindApt, "python3-pip"))
	assert.Equal(t, []string{"python3-pip"}, readFile(t, path).AptPackages)

	require.NoError(t, l.Record(KindApt, "nvidia-driver-535"))
	require.NoError(t, l.CompleteStep(2))
	got := readFile(t, path)
	assert.Equal(t, []string{"python3-pip", "nvidia-driver-535"}, got.AptPackages)
	assert.Equal(t, []int{2}, got.StepsCompleted)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, l.Snapshot(), reopened.Snapshot())
}

func TestPersistedShape(t *testing.T) {
	l, path := openTemp(t)
	require.NoError(t, l.CompleteStep(1))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{}, raw["apt_packages"])
	assert.Equal(t, []any{}, raw["pip_packages"])
	assert.Equal(t, []any{float64(1)}, raw["steps_completed"])
}

func TestCompleteStepIsASet(t *testing.T) {
	l, _ := openTemp(t)
	require.NoError(t, l.CompleteStep(1))
	require.NoError(t, l.CompleteStep(2))
	require.NoError(t, l.CompleteStep(1))
	assert.Equal(t, []int{1, 2}, l.StepsCompleted())
}

func TestReset(t *testing.T) {
	l, path := openTemp(t)
	require.NoError(t, l.Record(KindApt, "cuda-11-8"))
	require.NoError(t, l.Record(KindPip, "tensorflow"))
	require.NoError(t, l.CompleteStep(3))

	require.NoError(t, l.Reset())
	assert.True(t, l.Snapshot().IsEmpty())
	assert.True(t, readFile(t, path).IsEmpty())
}

func TestRecordValidation(t *testing.T) {
	l, _ := openTemp(t)

	err := l.Record(Kind("conda"), "numpy")
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))

	err = l.Record(KindApt, "")
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
	assert.Nil(t, l.Packages(Kind("conda")))
}

func TestOpenToleratesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install_session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"apt_packages":["nvidia-driver-535"]}`), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"nvidia-driver-535"}, l.Packages(KindApt))
	assert.NotNil(t, l.Snapshot().PipPackages)
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install_session.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestFailedPersistKeepsMemoryState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	l, err := Open(filepath.Join(dir, "install_session.json"))
	require.NoError(t, err)

	// Replace the state directory with a regular file so every write fails.
	require.NoError(t, os.WriteFile(dir, nil, 0o644))

	assert.Error(t, l.Record(KindApt, "cuda-11-8"))
	assert.Empty(t, l.Packages(KindApt))
}
