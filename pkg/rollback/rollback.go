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

package rollback

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/checkpoint"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
)

// Level selects which package kinds are uninstalled.
type Level string

const (
	// LevelAll uninstalls pip packages, then apt packages.
	LevelAll Level = "all"
	// LevelApt uninstalls apt packages only.
	LevelApt Level = "apt"
	// LevelPip uninstalls pip packages only.
	LevelPip Level = "pip"
)

// ParseLevel converts user input into a Level. "apt-only" and "pip-only"
// are accepted as aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return LevelAll, nil
	case "apt", "apt-only":
		return LevelApt, nil
	case "pip", "pip-only":
		return LevelPip, nil
	default:
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown rollback level %q (want all, apt, or pip)", s))
	}
}

// GetLevels returns the supported level names.
func GetLevels() []string {
	return []string{string(LevelAll), string(LevelApt), string(LevelPip)}
}

func (l Level) kinds() []session.Kind {
	switch l {
	case LevelApt:
		return []session.Kind{session.KindApt}
	case LevelPip:
		return []session.Kind{session.KindPip}
	default:
		return []session.Kind{session.KindPip, session.KindApt}
	}
}

// CommandRunner is the part of runner.Runner rollback needs.
type CommandRunner interface {
	Run(ctx context.Context, cmd runner.Command, retries int, showProgress bool) bool
}

// UninstallCommand returns the command removing pkg of the given kind.
func UninstallCommand(kind session.Kind, pkg string) runner.Command {
	if kind == session.KindPip {
		return runner.Cmd("pip3", "uninstall", "-y", pkg)
	}
	return runner.Sudo("apt-get", "remove", "--purge", "-y", pkg)
}

// Report summarizes a rollback.
type Report struct {
	Level     Level    `json:"level" yaml:"level"`
	Attempted []string `json:"attempted" yaml:"attempted"`
	Failed    []string `json:"failed,omitempty" yaml:"failed,omitempty"`
	// Clean is false when the ledger or checkpoint could not be cleared.
	Clean bool `json:"clean" yaml:"clean"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// Engine reverses recorded installs.
type Engine struct {
	runner     CommandRunner
	ledger     *session.Ledger
	checkpoint *checkpoint.Checkpoint
	log        *slog.Logger
}

// New creates an Engine.
func New(r CommandRunner, ledger *session.Ledger, cp *checkpoint.Checkpoint, opts ...Option) *Engine {
	e := &Engine{
		runner:     r,
		ledger:     ledger,
		checkpoint: cp,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rollback uninstalls recorded packages for level in reverse install order,
// then resets the ledger and clears the checkpoint.
func (e *Engine) Rollback(ctx context.Context, level Level) Report {
	parsed, err := ParseLevel(string(level))
	if err != nil {
		e.log.Warn("unknown rollback level, rolling back everything", "level", level)
		parsed = LevelAll
	}
	level = parsed

	report := Report{Level: level, Attempted: []string{}, Clean: true}
	e.log.Info("starting rollback", "level", level)
	rollbacksTotal.WithLabelValues(string(level)).Inc()

	for _, kind := range level.kinds() {
		pkgs := e.ledger.Packages(kind)
		slices.Reverse(pkgs)
		for _, pkg := range pkgs {
			id := fmt.Sprintf("%s:%s", kind, pkg)
			report.Attempted = append(report.Attempted, id)

			e.log.Info("uninstalling package", "kind", kind, "package", pkg)
			if e.runner.Run(ctx, UninstallCommand(kind, pkg), defaults.CommandRetries, false) {
				continue
			}
			report.Failed = append(report.Failed, id)
			uninstallFailures.WithLabelValues(string(kind)).Inc()
			e.log.Warn("uninstall failed, continuing rollback",
				"error", cnserrors.NewWithContext(cnserrors.ErrCodeRollbackPartialFailure,
					"uninstall failed", map[string]any{"kind": kind, "package": pkg}))
		}
	}

	if err := e.ledger.Reset(); err != nil {
		report.Clean = false
		e.log.Error("failed to reset session ledger", "error", err)
	}
	if err := e.checkpoint.Clear(); err != nil {
		report.Clean = false
		e.log.Error("failed to clear checkpoint", "error", err)
	}

	e.log.Info("rollback finished", "level", level,
		"attempted", len(report.Attempted), "failed", len(report.Failed))
	return report
}
