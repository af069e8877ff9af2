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

package orchestrator

import "testing"

func TestValidateTransitionValidMatrix(t *testing.T) {
	valid := [][2]State{
		{StatePending, StateRunning},
		{StatePending, StateSucceeded},
		{StateRunning, StateSucceeded},
		{StateRunning, StateFailed},
		{StateFailed, StateRunning},
		{StateFailed, StateAborted},
	}
	for _, pair := range valid {
		if err := ValidateTransition(pair[0], pair[1]); err != nil {
			t.Fatalf("expected valid transition %s->%s, got %v", pair[0], pair[1], err)
		}
	}
}

func TestValidateTransitionInvalid(t *testing.T) {
	invalid := [][2]State{
		{StatePending, StateFailed},
		{StateSucceeded, StateRunning},
		{StateRunning, StateAborted},
		{StateAborted, StateRunning},
		{StateComplete, StatePending},
		{State("bogus"), StateRunning},
	}
	for _, pair := range invalid {
		if err := ValidateTransition(pair[0], pair[1]); err == nil {
			t.Fatalf("expected invalid transition %s->%s", pair[0], pair[1])
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []State{StateComplete, StateAborted} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StatePending, StateRunning, StateSucceeded, StateFailed} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
