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
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

// Kind names a framework.
type Kind string

const (
	PyTorch    Kind = "pytorch"
	TensorFlow Kind = "tensorflow"
	JAX        Kind = "jax"
	ONNX       Kind = "onnx"
	Qiskit     Kind = "qiskit"
	Cirq       Kind = "cirq"
)

// LatestVersion leaves the requirement unpinned.
const LatestVersion = "latest"

const pytorchIndexURL = "https://download.pytorch.org/whl/cu%s"

const jaxReleasesURL = "https://storage.googleapis.com/jax-releases/jax_cuda_releases.html"

// Benchmark is a timing probe. Script prints a single number in Unit.
type Benchmark struct {
	Label  string
	Metric string
	Unit   string
	Script string
}

// Spec describes how one framework is installed, validated, and benchmarked.
type Spec struct {
	Kind        Kind
	DisplayName string

	// Requirements returns the pip3 install arguments for version built
	// against cuda.
	Requirements func(version string, cuda version.Version) []string

	// Packages are the pip distributions a successful install leaves behind.
	Packages []string

	// Probe is a Python snippet printing one result line. A non-zero exit
	// means the framework is unusable.
	Probe string

	Benchmark *Benchmark
}

var registry = map[Kind]Spec{
	PyTorch: {
		Kind:        PyTorch,
		DisplayName: "PyTorch",
		Requirements: func(v string, cuda version.Version) []string {
			return []string{pin("torch", v), "torchvision", "torchaudio",
				"--extra-index-url", fmt.Sprintf(pytorchIndexURL, cuda.Compact())}
		},
		Packages: []string{"torch", "torchvision", "torchaudio"},
		Probe: `import torch
assert torch.cuda.is_available(), "GPU not available"
m = torch.nn.Sequential(torch.nn.Linear(1024, 512), torch.nn.ReLU(), torch.nn.Linear(512, 10)).cuda()
y = m(torch.randn(64, 1024, device="cuda"))
print(f"MLP forward pass on GPU successful. Output shape: {tuple(y.shape)}")`,
		Benchmark: &Benchmark{
			Label:  "PyTorch matmul",
			Metric: "pytorch_matmul_ms",
			Unit:   "ms",
			Script: `import time, torch
a = torch.randn((1000, 1000), device="cuda"); b = torch.randn((1000, 1000), device="cuda")
torch.cuda.synchronize(); s = time.time(); a @ b; torch.cuda.synchronize()
print(f"{(time.time() - s) * 1000:.2f}")`,
		},
	},
	TensorFlow: {
		Kind:        TensorFlow,
		DisplayName: "TensorFlow",
		Requirements: func(v string, _ version.Version) []string {
			return []string{pin("tensorflow", v)}
		},
		Packages: []string{"tensorflow"},
		Probe: `import tensorflow as tf
from tensorflow.keras.applications import resnet50
m = resnet50.ResNet50(weights=None)
with tf.device("/GPU:0"):
    p = m(tf.random.normal([1, 224, 224, 3]))
print(f"ResNet inference on GPU successful. Output shape: {tuple(p.shape)}")`,
		Benchmark: &Benchmark{
			Label:  "TensorFlow ResNet inference",
			Metric: "tf_resnet_inference_s",
			Unit:   "s",
			Script: `import time, tensorflow as tf
from tensorflow.keras.applications import resnet50
m = resnet50.ResNet50(weights=None)
with tf.device("/GPU:0"):
    x = tf.random.normal([1, 224, 224, 3]); s = time.time(); m(x)
print(f"{time.time() - s:.4f}")`,
		},
	},
	JAX: {
		Kind:        JAX,
		DisplayName: "JAX",
		Requirements: func(v string, cuda version.Version) []string {
			return []string{pin(fmt.Sprintf("jax[cuda%d_pip]", cuda.Major), v), "-f", jaxReleasesURL}
		},
		Packages: []string{"jax", "jaxlib"},
		Probe: `import jax, jax.numpy as jnp
x = jax.device_put(jax.random.normal(jax.random.PRNGKey(0), (500, 500)))
y = jnp.dot(x, x.T)
print(f"GPU matrix multiplication successful. Output shape: {y.shape}")`,
	},
	ONNX: {
		Kind:        ONNX,
		DisplayName: "ONNX Runtime",
		Requirements: func(v string, _ version.Version) []string {
			return []string{pin("onnxruntime-gpu", v)}
		},
		Packages: []string{"onnxruntime-gpu"},
		Probe: `import onnxruntime as ort
p = ort.get_available_providers()
assert "CUDAExecutionProvider" in p, "CUDAExecutionProvider not available"
print(f"CUDAExecutionProvider available. Providers: {p}")`,
	},
	Qiskit: {
		Kind:        Qiskit,
		DisplayName: "Qiskit",
		Requirements: func(v string, _ version.Version) []string {
			return []string{pin("qiskit", v), "qiskit-aer"}
		},
		Packages: []string{"qiskit", "qiskit-aer"},
		Probe: `from qiskit import QuantumCircuit, transpile
from qiskit_aer import AerSimulator
qc = QuantumCircuit(2); qc.h(0); qc.cx(0, 1); qc.measure_all()
sim = AerSimulator()
print(f"Bell circuit successful, counts: {sim.run(transpile(qc, sim), shots=1024).result().get_counts()}")`,
	},
	Cirq: {
		Kind:        Cirq,
		DisplayName: "Cirq",
		Requirements: func(v string, _ version.Version) []string {
			return []string{pin("cirq", v)}
		},
		Packages: []string{"cirq"},
		Probe: `import cirq
q0, q1 = cirq.LineQubit.range(2)
c = cirq.Circuit(cirq.H(q0), cirq.CNOT(q0, q1), cirq.measure(q0, q1))
print(f"Bell circuit successful, results: {cirq.Simulator().run(c, repetitions=10)}")`,
	},
}

func pin(pkg, v string) string {
	if v == "" || v == LatestVersion {
		return pkg
	}
	return pkg + "==" + v
}

// Lookup returns the Spec registered for name (case-insensitive).
func Lookup(name string) (Spec, bool) {
	s, ok := registry[Kind(strings.ToLower(strings.TrimSpace(name)))]
	return s, ok
}

// Kinds returns every registered framework, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// DisplayName returns the human name for name, title-casing unregistered keys.
func DisplayName(name string) string {
	if s, ok := Lookup(name); ok {
		return s.DisplayName
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// InstallArgs returns the full pip3 argument list for installing the
// framework at version against the CUDA release cudaVersion.
func (s Spec) InstallArgs(v, cudaVersion string) ([]string, error) {
	cuda, err := version.ParseVersion(cudaVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid CUDA version %q for %s: %w", cudaVersion, s.DisplayName, err)
	}
	return append([]string{"install"}, s.Requirements(v, cuda)...), nil
}
