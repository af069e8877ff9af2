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

package session

import (
	"fmt"
	"slices"
	"sync"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// Kind identifies the package manager a package was installed with.
type Kind string

const (
	// KindApt is a Debian package installed with apt-get.
	KindApt Kind = "apt"
	// KindPip is a Python package installed with pip3.
	KindPip Kind = "pip"
)

// Kinds returns the supported package kinds.
func Kinds() []Kind {
	return []Kind{KindApt, KindPip}
}

// State is the persisted ledger document.
type State struct {
	AptPackages    []string `json:"apt_packages" yaml:"apt_packages"`
	PipPackages    []string `json:"pip_packages" yaml:"pip_packages"`
	StepsCompleted []int    `json:"steps_completed" yaml:"steps_completed"`
}

func emptyState() State {
	return State{
		AptPackages:    []string{},
		PipPackages:    []string{},
		StepsCompleted: []int{},
	}
}

func (s State) clone() State {
	return State{
		AptPackages:    append([]string{}, s.AptPackages...),
		PipPackages:    append([]string{}, s.PipPackages...),
		StepsCompleted: append([]int{}, s.StepsCompleted...),
	}
}

// IsEmpty reports whether the ledger records nothing.
func (s State) IsEmpty() bool {
	return len(s.AptPackages) == 0 && len(s.PipPackages) == 0 && len(s.StepsCompleted) == 0
}

func (s *State) list(kind Kind) (*[]string, error) {
	switch kind {
	case KindApt:
		return &s.AptPackages, nil
	case KindPip:
		return &s.PipPackages, nil
	default:
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown package kind %q", kind))
	}
}

// Ledger is the persisted session record. It is safe for concurrent use
// within one process; across processes the state directory lock applies.
type Ledger struct {
	mu    sync.Mutex
	path  string
	state State
}

// Open loads the ledger at path. A missing file yields an empty ledger.
func Open(path string) (*Ledger, error) {
	state := emptyState()
	if _, err := serializer.ReadJSON(path, &state); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to load session ledger", err)
	}
	// A document written by hand or by an older run may omit fields.
	if state.AptPackages == nil {
		state.AptPackages = []string{}
	}
	if state.PipPackages == nil {
		state.PipPackages = []string{}
	}
	if state.StepsCompleted == nil {
		state.StepsCompleted = []int{}
	}
	return &Ledger{path: path, state: state}, nil
}

// Path returns the file backing the ledger.
func (l *Ledger) Path() string {
	return l.path
}

// Record appends pkg under kind unless it is already recorded, then persists.
func (l *Ledger) Record(kind Kind, pkg string) error {
	if pkg == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "package identifier is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.clone()
	list, err := next.list(kind)
	if err != nil {
		return err
	}
	if slices.Contains(*list, pkg) {
		return nil
	}
	*list = append(*list, pkg)
	return l.commit(next)
}

// Packages returns the packages recorded under kind in install order.
func (l *Ledger) Packages(kind Kind) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state
	list, err := s.list(kind)
	if err != nil {
		return nil
	}
	return append([]string{}, (*list)...)
}

// CompleteStep marks a step index as completed, then persists.
func (l *Ledger) CompleteStep(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if slices.Contains(l.state.StepsCompleted, index) {
		return nil
	}
	next := l.state.clone()
	next.StepsCompleted = append(next.StepsCompleted, index)
	return l.commit(next)
}

// StepsCompleted returns the completed step indices in completion order.
func (l *Ledger) StepsCompleted() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int{}, l.state.StepsCompleted...)
}

// Snapshot returns a copy of the whole ledger.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Reset empties the ledger with a single overwrite of the persisted document.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(emptyState())
}

// commit persists next and adopts it only when the write succeeded.
func (l *Ledger) commit(next State) error {
	if err := serializer.WriteJSONAtomic(l.path, next); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to persist session ledger", err)
	}
	l.state = next
	return nil
}
