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

// Package cli implements the gpusetup command-line interface.
//
// # Commands
//
// setup - Detect the host and install drivers, CUDA and frameworks:
//
//	gpusetup setup [--frameworks pytorch,jax] [--preset ml] [--no-frameworks]
//
// Runs the install pipeline under an advisory lock on the state directory.
// An interrupted or failed run resumes from the last checkpoint on the next
// invocation. --docker and --singularity generate container definitions
// instead of installing.
//
// status - Print the checkpoint, session ledger and last run report:
//
//	gpusetup status [--format yaml|json|table]
//
// rollback - Uninstall what the session ledger recorded:
//
//	gpusetup rollback --level all|apt|pip
//
// detect - Run host detection and write detection_log.json:
//
//	gpusetup detect [--output FILE]
//
// validate - Run the validation checks and optional benchmarks:
//
//	gpusetup validate [--gpu nvidia_a100] [--benchmark] [--strict]
//
// container - Generate, build, run and push container definitions:
//
//	gpusetup container generate --docker --output-dir container
//	gpusetup container build --dir container --image gpu-setup-tool --run
//	gpusetup container push --dir container --ref oci://ghcr.io/acme/gpu-setup:v1
//
// # Environment
//
// Every flag that selects a path or a timeout can also be set through a
// GPUSETUP_* environment variable, for example GPUSETUP_STATE_DIR.
// Report upload credentials also read AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY.
//
// # Exit codes
//
// 0 on a complete run, including one that recovered through a fallback
// profile; 1 on any unrecoverable failure.
package cli
