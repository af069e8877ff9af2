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

// Package validator checks an installed environment against its
// compatibility profile.
//
// Validation runs nvidia-smi and nvcc, compares the reported driver and CUDA
// releases with the profile using version constraints, and executes each
// selected framework's probe. Results go to validation_log.txt:
//
//	GPU Validation:
//	<nvidia-smi output>
//
//	CUDA Validation:
//	<nvcc --version output>
//
//	Version Checks:
//	driver: >= 535 (actual 535.104.05) passed
//
//	Framework Validation:
//	PyTorch: MLP forward pass on GPU successful. Output shape: (64, 10)
//
// Benchmark appends timing results, with a warning line for any metric more
// than twice as slow as the profile's expected_performance.
//
// # Constraints
//
// Version constraints use an optional operator followed by a version:
//   - ">=", "<=", ">", "<" compare numerically
//   - "==" or no operator require equality
//
// Comparisons only consider the components both versions carry, so
// "== 11.8" accepts 11.8.89.
package validator
