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

package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeRule scripts the outcome of commands whose command line contains Match.
type FakeRule struct {
	// Match is a substring of Command.String().
	Match string
	// Failures is how many matching attempts fail before the command succeeds.
	// A negative value fails every attempt.
	Failures int
	// NotFound reports the program as missing.
	NotFound bool
	// ExitCode used for failing attempts; defaults to 1.
	ExitCode int
	// Output returned by every matching attempt.
	Output string
}

// FakeExecutor is a scripted Executor for tests. Commands that match no rule
// succeed with empty output. The first matching rule wins.
type FakeExecutor struct {
	mu    sync.Mutex
	Rules []FakeRule
	calls []Command
	hits  map[int]int
}

// NewFakeExecutor returns a FakeExecutor with the given rules.
func NewFakeExecutor(rules ...FakeRule) *FakeExecutor {
	return &FakeExecutor{Rules: rules}
}

// Execute implements Executor.
func (f *FakeExecutor) Execute(ctx context.Context, cmd Command, onLine func(string)) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmd)
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	if f.hits == nil {
		f.hits = make(map[int]int)
	}

	line := cmd.String()
	for i, rule := range f.Rules {
		if !strings.Contains(line, rule.Match) {
			continue
		}
		f.hits[i]++
		if onLine != nil && rule.Output != "" {
			for _, l := range strings.Split(rule.Output, "\n") {
				onLine(l)
			}
		}
		if rule.NotFound {
			return Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrCommandNotFound, cmd.Name)
		}
		if rule.Failures < 0 || f.hits[i] <= rule.Failures {
			code := rule.ExitCode
			if code == 0 {
				code = 1
			}
			return Result{ExitCode: code, Output: rule.Output}, fmt.Errorf("%w: %d", ErrExitStatus, code)
		}
		return Result{Output: rule.Output}, nil
	}
	return Result{}, nil
}

// Calls returns every command executed so far.
func (f *FakeExecutor) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// CallLines returns the command lines executed so far.
func (f *FakeExecutor) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many executed command lines contain match.
func (f *FakeExecutor) Count(match string) int {
	n := 0
	for _, l := range f.CallLines() {
		if strings.Contains(l, match) {
			n++
		}
	}
	return n
}
