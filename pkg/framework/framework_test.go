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

package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		kind    Kind
		version string
		cuda    string
		want    []string
	}{
		{PyTorch, "2.0.1", "11.8", []string{"install", "torch==2.0.1", "torchvision", "torchaudio",
			"--extra-index-url", "https://download.pytorch.org/whl/cu118"}},
		{PyTorch, "latest", "12.1", []string{"install", "torch", "torchvision", "torchaudio",
			"--extra-index-url", "https://download.pytorch.org/whl/cu121"}},
		{TensorFlow, "2.13.0", "11.8", []string{"install", "tensorflow==2.13.0"}},
		{Qiskit, "latest", "11.8", []string{"install", "qiskit", "qiskit-aer"}},
		{Cirq, "", "11.8", []string{"install", "cirq"}},
		{JAX, "0.4.20", "12.1", []string{"install", "jax[cuda12_pip]==0.4.20", "-f", jaxReleasesURL}},
		{ONNX, "1.16.3", "12.1", []string{"install", "onnxruntime-gpu==1.16.3"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"-"+tt.version, func(t *testing.T) {
			spec, ok := Lookup(string(tt.kind))
			require.True(t, ok)
			got, err := spec.InstallArgs(tt.version, tt.cuda)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallArgsInvalidCUDA(t *testing.T) {
	spec, _ := Lookup("pytorch")
	_, err := spec.InstallArgs("2.0.1", "eleven")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup(" PyTorch ")
	require.True(t, ok)
	assert.Equal(t, PyTorch, s.Kind)
	assert.Equal(t, []string{"torch", "torchvision", "torchaudio"}, s.Packages)

	_, ok = Lookup("caffe")
	assert.False(t, ok)
}

func TestRegistryComplete(t *testing.T) {
	assert.Equal(t, []Kind{Cirq, JAX, ONNX, PyTorch, Qiskit, TensorFlow}, Kinds())
	for _, k := range Kinds() {
		s, _ := Lookup(string(k))
		assert.NotEmpty(t, s.Packages, k)
		assert.NotEmpty(t, s.Probe, k)
		assert.NotNil(t, s.Requirements, k)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "ONNX Runtime", DisplayName("onnx"))
	assert.Equal(t, "Mx Net", DisplayName("mx_net"))
}
