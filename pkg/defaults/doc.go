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

// Package defaults provides centralized configuration constants for gpusetup.
//
// This package defines timeout values, retry parameters, and the layout of the
// persisted state directory. Centralizing these values keeps the command
// runner, the collectors, and the CLI consistent.
//
// # Categories
//
//   - Collector timeouts: for hardware, OS, and cloud detection probes
//   - Runner parameters: retry counts and backoff for external commands
//   - HTTP client timeouts: for cloud metadata and remote profile documents
//   - State layout: file names inside the state directory
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
//	defer cancel()
//
// Step and command timeouts are deliberately absent: both are opt-in through
// CLI flags and default to no limit.
package defaults
