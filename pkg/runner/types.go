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
	"errors"
	"strings"
	"time"
)

var (
	// ErrCommandNotFound is returned by an Executor when the program does not exist.
	ErrCommandNotFound = errors.New("command not found")

	// ErrExitStatus is returned by an Executor when the program exits non-zero.
	ErrExitStatus = errors.New("non-zero exit status")
)

// Command is an external program invocation.
type Command struct {
	Name string
	Args []string
	Env  []string
	Dir  string
}

// Cmd builds a Command.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Sudo builds a Command run through sudo.
func Sudo(name string, args ...string) Command {
	return Command{Name: "sudo", Args: append([]string{name}, args...)}
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of one attempt.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Executor runs a single attempt of a command. onLine, when non-nil, receives
// each line of combined output as it is produced. A non-nil error means the
// attempt failed; ErrCommandNotFound and ErrExitStatus are the expected causes.
type Executor interface {
	Execute(ctx context.Context, cmd Command, onLine func(string)) (Result, error)
}
