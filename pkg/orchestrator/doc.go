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

// Package orchestrator runs the install pipeline as a small state machine.
//
// Steps run in a fixed order. Each success advances the persisted
// checkpoint, so a later run resumes after the last completed step. When a
// step fails the orchestrator rolls back every recorded package, retries the
// step once with the fallback profile and aborts if that also fails or if
// the fallback offers nothing different.
//
// Basic usage:
//
//	o := orchestrator.New(orchestrator.Pipeline(cfg), orchestrator.WithStepTimeout(30*time.Minute))
//	out, err := o.Run(ctx, rc)
//	os.Exit(out.ExitCode())
package orchestrator
