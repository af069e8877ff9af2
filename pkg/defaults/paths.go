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

package defaults

// State directory layout. All paths are relative to the state directory.
const (
	// StateDir is the default state directory, relative to the working directory.
	StateDir = "logs"

	// CheckpointFile holds the last successful step index.
	CheckpointFile = "progress.json"

	// SessionFile holds the ledger of installed packages and completed steps.
	SessionFile = "install_session.json"

	// DetectionFile holds the detection result.
	DetectionFile = "detection_log.json"

	// ValidationFile holds validation and benchmark result lines.
	ValidationFile = "validation_log.txt"

	// InstallLogFile receives every diagnostic record.
	InstallLogFile = "install_log.txt"

	// ErrorLogFile receives diagnostic records at error level.
	ErrorLogFile = "error_log.txt"

	// ReportFile holds the run report of the most recent run.
	ReportFile = "run_report.json"

	// LockFile is the advisory lock guarding the state directory.
	LockFile = ".lock"
)
