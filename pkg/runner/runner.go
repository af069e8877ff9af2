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
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

// outputTailLines is how much of a failed attempt's output goes to the log.
const outputTailLines = 20

// DefaultBackoff is the delay policy between attempts.
func DefaultBackoff() wait.Backoff {
	return wait.Backoff{
		Duration: defaults.RetryBackoff,
		Factor:   defaults.RetryBackoffFactor,
		Jitter:   0.1,
		Steps:    10,
		Cap:      defaults.RetryBackoffCap,
	}
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the process executor.
func WithExecutor(e Executor) Option {
	return func(r *Runner) {
		r.executor = e
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithBackoff sets the delay policy between attempts. The zero value retries
// immediately.
func WithBackoff(b wait.Backoff) Option {
	return func(r *Runner) {
		r.backoff = b
	}
}

// WithTimeout bounds each attempt. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithPrinter sets where progress is drawn when showProgress is requested.
func WithPrinter(p *ux.Printer) Option {
	return func(r *Runner) {
		r.printer = p
	}
}

// Runner executes commands with bounded retries.
type Runner struct {
	executor Executor
	log      *slog.Logger
	backoff  wait.Backoff
	timeout  time.Duration
	printer  *ux.Printer
}

// New creates a Runner. Without options it runs real processes, logs to the
// default logger, and waits DefaultBackoff between attempts.
func New(opts ...Option) *Runner {
	r := &Runner{
		executor: ExecExecutor{},
		log:      slog.Default(),
		backoff:  DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd up to retries+1 times and reports whether an attempt
// succeeded. It never returns an error: failures are logged. A missing
// program fails immediately.
func (r *Runner) Run(ctx context.Context, cmd Command, retries int, showProgress bool) bool {
	attempts := max(retries, 0) + 1
	backoff := r.backoff
	line := cmd.String()

	var progress *ux.Progress
	if showProgress && r.printer != nil {
		progress = r.printer.NewProgress(line, defaults.ProgressRefreshInterval)
		defer progress.Done()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		r.log.Info("executing command", "command", line, "attempt", attempt, "attempts", attempts)

		res, err := r.execute(ctx, cmd, progress)
		commandAttempts.WithLabelValues(cmd.Name, outcome(err)).Inc()
		commandDuration.WithLabelValues(cmd.Name).Observe(res.Duration.Seconds())

		if err == nil {
			r.log.Info("command succeeded", "command", line, "attempt", attempt,
				"duration", res.Duration.String())
			return true
		}
		lastErr = err

		r.log.Warn("command attempt failed", "command", line, "attempt", attempt,
			"attempts", attempts, "exitCode", res.ExitCode, "error", err,
			"output", tail(res.Output, outputTailLines))

		if errors.Is(err, ErrCommandNotFound) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			if !sleep(ctx, backoff.Step()) {
				break
			}
		}
	}

	r.log.Error("command failed", "error", cnserrors.WrapWithContext(
		cnserrors.ErrCodeCommandFailure, "command failed", lastErr,
		map[string]any{"command": line, "attempts": attempts}))
	return false
}

// Capture executes cmd once and returns its combined output. ok is false when
// the command failed or could not be found; output is still returned.
func (r *Runner) Capture(ctx context.Context, cmd Command) (output string, ok bool) {
	line := cmd.String()
	r.log.Debug("capturing command output", "command", line)

	res, err := r.execute(ctx, cmd, nil)
	commandAttempts.WithLabelValues(cmd.Name, outcome(err)).Inc()
	if err != nil {
		r.log.Warn("probe failed", "command", line, "exitCode", res.ExitCode, "error", err)
		return res.Output, false
	}
	return res.Output, true
}

func (r *Runner) execute(ctx context.Context, cmd Command, progress *ux.Progress) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var onLine func(string)
	if progress != nil {
		onLine = progress.Update
	}

	res, err := r.executor.Execute(ctx, cmd, onLine)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = cnserrors.Wrap(cnserrors.ErrCodeTimeout, "command timed out after "+r.timeout.String(), err)
	}
	return res, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCommandNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "failure"
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func tail(s string, n int) string {
	end := len(s)
	for end > 0 && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	count := 0
	for i := end - 1; i >= 0; i-- {
		if s[i] == '\n' {
			count++
			if count == n {
				return s[i+1 : end]
			}
		}
	}
	return s[:end]
}
