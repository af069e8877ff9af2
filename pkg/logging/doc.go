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

// Package logging provides structured logging utilities for gpusetup.
//
// It configures log/slog with a JSON handler on stderr that carries the
// module name and version on every record, and it opens the append-only
// diagnostic log kept in the state directory.
//
// # Log Levels
//
// Supported log levels (case-insensitive): debug, info (default),
// warn/warning, error. Debug records include source location.
//
// # Usage
//
// Setting the default logger:
//
//	logging.SetDefaultStructuredLoggerWithLevel("gpusetup", version, "debug")
//	slog.Info("starting setup", "stateDir", dir)
//
// Opening the diagnostic log for a run:
//
//	diag, err := logging.OpenDiagnosticLog("logs", slog.Default().Handler())
//	if err != nil {
//	    return err
//	}
//	defer diag.Close()
//	diag.Logger().Info("executing command", "command", "nvidia-smi")
//
// Every record goes to install_log.txt; records at error level are also
// appended to error_log.txt. Files are opened in append mode and never
// truncated, so the history of earlier runs is preserved.
//
// # Environment Configuration
//
// When no explicit level is given, the LOG_LEVEL environment variable
// controls verbosity:
//
//	LOG_LEVEL=debug gpusetup setup
package logging
