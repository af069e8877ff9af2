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

//go:build unix

package lock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "run-1")
	require.NoError(t, err)

	_, err = Acquire(dir, "run-2")
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeUnavailable))
	assert.True(t, errors.Is(err, ErrLocked))

	var se *cnserrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "run-1", se.Context["runID"])

	require.NoError(t, first.Release())

	second, err := Acquire(dir, "run-3")
	require.NoError(t, err)
	assert.NoError(t, second.Release())
}

func TestReleaseIsIdempotent(t *testing.T) {
	l, err := Acquire(t.TempDir(), "run")
	require.NoError(t, err)
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}
