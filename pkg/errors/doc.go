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

// Package errors defines the structured error type shared by the installer.
//
// Every failure that crosses a package boundary carries an ErrorCode so that
// callers can decide what to do without string matching. The orchestrator
// relies on the codes to choose between a fallback retry and an abort:
//
//   - ErrCodeCommandFailure: an external command exited non-zero or was not
//     found. Swallowed by the command runner and reported as a boolean.
//   - ErrCodeConfigurationMissing: a required profile or preset key is absent.
//     Aborts the run immediately, no fallback is attempted.
//   - ErrCodeStepFailure: a pipeline step failed. Only the orchestrator acts
//     on it.
//   - ErrCodeRollbackPartialFailure: an individual uninstall failed during
//     rollback. Logged only.
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeStepFailure, "install CUDA", cause)
//	if errors.IsCode(err, errors.ErrCodeConfigurationMissing) {
//	    // abort without fallback
//	}
package errors
