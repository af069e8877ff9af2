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

// Package profile loads compatibility profiles and framework presets.
//
// A compatibility document maps a detected hardware identifier to the
// driver, CUDA, cuDNN, and framework versions known to work on it, plus the
// performance the benchmark step should expect. Two entries are mandatory:
// unknown_gpu, used for any identifier without its own entry, and
// fallback, the conservative configuration a failed step retries with once.
//
//	store, err := profile.Load(ctx, "")   // embedded defaults
//	p := store.Lookup(detection.GPUModel) // unknown_gpu when not listed
//	fb := store.Fallback()
//
// A presets document names framework selections:
//
//	presets:
//	  quantum:
//	    frameworks: [qiskit, cirq]
//
// Both documents are YAML and may be given as a local path or http(s) URL.
package profile
