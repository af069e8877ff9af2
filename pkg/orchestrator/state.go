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

import (
	"fmt"
)

// State is the state of a step or of a whole run.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"

	// StateComplete and StateAborted are terminal run states.
	StateComplete State = "complete"
	StateAborted  State = "aborted"
)

var allowedTransitions = map[State]map[State]struct{}{
	StatePending: {
		StateRunning: {},
		// resumed from the checkpoint
		StateSucceeded: {},
	},
	StateRunning: {
		StateSucceeded: {},
		StateFailed:    {},
	},
	StateFailed: {
		// fallback attempt
		StateRunning: {},
		StateAborted: {},
	},
	StateSucceeded: {},
	StateComplete:  {},
	StateAborted:   {},
}

// ValidateState returns an error for an unknown state.
func ValidateState(s State) error {
	if _, ok := allowedTransitions[s]; !ok {
		return fmt.Errorf("invalid step state: %q", s)
	}
	return nil
}

// ValidateTransition returns an error unless a step may move from one state
// to the other.
func ValidateTransition(from, to State) error {
	if err := ValidateState(from); err != nil {
		return err
	}
	if err := ValidateState(to); err != nil {
		return err
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid step transition: %s -> %s", from, to)
	}
	return nil
}

// IsTerminal reports whether s ends a run.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateAborted
}
