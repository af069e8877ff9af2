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

// Package runner executes external commands on behalf of the installer.
//
// Run is the single place where retries happen. It executes a command up to
// retries+1 times, waits between attempts according to a wait.Backoff
// policy, and reports success as a boolean. Failures never propagate as
// errors: every attempt and its outcome is written to the diagnostic log
// instead. A command that cannot be found is not retried.
//
//	r := runner.New(
//	    runner.WithLogger(diag.Logger()),
//	    runner.WithBackoff(wait.Backoff{Duration: 2 * time.Second, Factor: 2, Steps: 4}),
//	)
//	if !r.Run(ctx, runner.Sudo("apt-get", "-y", "install", "nvidia-driver-535"), 2, true) {
//	    return errors.New(errors.ErrCodeStepFailure, "driver install failed")
//	}
//
// showProgress only changes what the user sees; it never changes control
// flow or the result. Capture runs a probe once and returns its output for
// the validation log.
//
// Execution is delegated to an Executor. ExecExecutor runs real processes in
// their own process group; FakeExecutor scripts outcomes for tests.
package runner
