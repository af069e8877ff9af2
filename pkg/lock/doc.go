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

// Package lock guards a state directory against concurrent runs.
//
// The checkpoint and session ledger assume a single writer. Acquire takes an
// advisory, non-blocking flock on <dir>/.lock and records the owner (pid and
// run id) in the file so a refused caller can say who holds it. The kernel
// releases the lock when the process exits, so a crashed run never leaves the
// directory wedged.
//
//	l, err := lock.Acquire(stateDir, runID)
//	if err != nil {
//	    return err // SERVICE_UNAVAILABLE when another run holds it
//	}
//	defer l.Release()
package lock
