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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/rollback"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

// StepRecord is what happened to one step during a run.
type StepRecord struct {
	Index    int    `json:"index" yaml:"index"`
	Name     string `json:"name" yaml:"name"`
	State    State  `json:"state" yaml:"state"`
	Skipped  bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Fallback bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	// Profile is the profile the step last ran with.
	Profile  string           `json:"profile,omitempty" yaml:"profile,omitempty"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Rollback *rollback.Report `json:"rollback,omitempty" yaml:"rollback,omitempty"`
}

func (r *StepRecord) moveTo(s State) error {
	if err := ValidateTransition(r.State, s); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "step "+r.Name, err)
	}
	r.State = s
	return nil
}

// Outcome summarizes a run.
type Outcome struct {
	State State `json:"state" yaml:"state"`
	// ResumedFrom is the checkpoint the run started from.
	ResumedFrom int          `json:"resumed_from" yaml:"resumed_from"`
	Profile     string       `json:"profile,omitempty" yaml:"profile,omitempty"`
	Steps       []StepRecord `json:"steps" yaml:"steps"`
}

// ExitCode is 0 for a complete run and 1 otherwise.
func (o *Outcome) ExitCode() int {
	if o != nil && o.State == StateComplete {
		return 0
	}
	return 1
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStepTimeout bounds each step attempt. Zero means no limit.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.stepTimeout = d
	}
}

// Orchestrator runs a fixed sequence of steps.
type Orchestrator struct {
	steps       []Step
	stepTimeout time.Duration
}

// New returns an Orchestrator over steps. Step i (0-based) has index i+1.
func New(steps []Step, opts ...Option) *Orchestrator {
	o := &Orchestrator{steps: steps}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Steps returns the pipeline.
func (o *Orchestrator) Steps() []Step {
	return o.steps
}

// Run executes every step after the checkpoint. The returned Outcome is
// non-nil once the checkpoint has been read, even when err is set; err
// carries STEP_FAILURE, CONFIGURATION_MISSING or TIMEOUT when the run aborts.
func (o *Orchestrator) Run(ctx context.Context, rc *RunContext) (*Outcome, error) {
	if rc == nil || rc.Ledger == nil || rc.Checkpoint == nil || rc.Rollback == nil || rc.Profiles == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			"run context requires ledger, checkpoint, rollback and profiles")
	}
	if rc.Log == nil {
		rc.Log = slog.Default()
	}
	if rc.Printer == nil {
		rc.Printer = ux.NewPrinter(io.Discard)
	}
	if rc.Profile.Name == "" {
		rc.Profile = rc.Profiles.Lookup("")
	}

	resume, err := rc.Checkpoint.Get()
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to read checkpoint", err)
	}
	checkpointStep.Set(float64(resume))

	out := &Outcome{State: StateRunning, ResumedFrom: resume, Steps: make([]StepRecord, len(o.steps))}
	for i, s := range o.steps {
		out.Steps[i] = StepRecord{Index: i + 1, Name: s.Name(), State: StatePending}
	}
	if resume > 0 {
		rc.Log.Info("resuming from checkpoint", "step", resume, "steps", len(o.steps))
	}

	for i, s := range o.steps {
		rec := &out.Steps[i]
		if rec.Index <= resume {
			err = o.skip(ctx, rc, s, rec)
		} else {
			err = o.execute(ctx, rc, s, rec)
		}
		if err != nil {
			out.State = StateAborted
			out.Profile = rc.Profile.Name
			runOutcomes.WithLabelValues(string(StateAborted)).Inc()
			rc.Log.Error("run aborted", "step", rec.Name, "index", rec.Index, "error", err)
			return out, err
		}
	}

	out.State = StateComplete
	out.Profile = rc.Profile.Name
	runOutcomes.WithLabelValues(string(StateComplete)).Inc()
	rc.Log.Info("run complete", "profile", out.Profile, "steps", len(o.steps))
	return out, nil
}

func (o *Orchestrator) label(rec *StepRecord) string {
	return fmt.Sprintf("[%d/%d] %s", rec.Index, len(o.steps), rec.Name)
}

func (o *Orchestrator) skip(ctx context.Context, rc *RunContext, s Step, rec *StepRecord) error {
	if r, ok := s.(Restorer); ok {
		if err := r.Restore(ctx, rc); err != nil {
			return cnserrors.Wrap(cnserrors.CodeOf(err), "failed to restore output of "+rec.Name, err)
		}
	}
	if err := rec.moveTo(StateSucceeded); err != nil {
		return err
	}
	rec.Skipped = true
	rec.Profile = rc.Profile.Name
	stepOutcomes.WithLabelValues(rec.Name, "skipped").Inc()
	rc.Log.Info("skipping completed step", "step", rec.Name, "index", rec.Index)
	rc.Printer.Skipped(o.label(rec) + " (already completed)")
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, rc *RunContext, s Step, rec *StepRecord) error {
	start := time.Now()
	defer func() {
		rec.Duration = time.Since(start)
		stepDuration.WithLabelValues(rec.Name).Observe(rec.Duration.Seconds())
	}()

	if err := rec.moveTo(StateRunning); err != nil {
		return err
	}
	rec.Profile = rc.Profile.Name
	rc.Printer.Running(o.label(rec))
	rc.Log.Info("running step", "step", rec.Name, "index", rec.Index, "profile", rec.Profile)

	err := o.attempt(ctx, rc, s, rc.Profile)
	if err == nil {
		return o.succeed(rc, rec, "succeeded")
	}
	return o.retryWithFallback(ctx, rc, s, rec, err)
}

// retryWithFallback handles a failed step: rollback, then one fallback attempt.
func (o *Orchestrator) retryWithFallback(ctx context.Context, rc *RunContext, s Step, rec *StepRecord, cause error) error {
	rec.Error = cause.Error()
	if err := rec.moveTo(StateFailed); err != nil {
		return err
	}
	rc.Log.Error("step failed", "step", rec.Name, "index", rec.Index, "error", cause)

	if ctx.Err() != nil {
		return o.abort(rc, rec, cnserrors.Wrap(cnserrors.ErrCodeStepFailure, "run interrupted during "+rec.Name, ctx.Err()))
	}
	if cnserrors.IsCode(cause, cnserrors.ErrCodeConfigurationMissing) {
		return o.abort(rc, rec, cause)
	}

	rc.Printer.Warning(o.label(rec) + " failed, rolling back installed packages")
	report := rc.Rollback.Rollback(ctx, rollback.LevelAll)
	stepRollbacks.WithLabelValues(rec.Name).Inc()
	rec.Rollback = &report

	fb, ok := s.Fallback(rc, rc.Profile)
	if !ok {
		rc.Log.Error("no distinct fallback for step", "step", rec.Name, "profile", rc.Profile.Name)
		return o.abort(rc, rec, cnserrors.WrapWithContext(cnserrors.ErrCodeStepFailure,
			fmt.Sprintf("step %q failed and the fallback profile offers nothing different", rec.Name),
			cause, map[string]any{"step": rec.Index, "profile": rc.Profile.Name}))
	}

	if err := rec.moveTo(StateRunning); err != nil {
		return err
	}
	rc.Log.Warn("retrying step with fallback profile", "step", rec.Name, "from", rc.Profile.Name, "to", fb.Name)
	rc.Profile = fb
	rec.Fallback = true
	rec.Profile = fb.Name
	rc.Printer.Running(o.label(rec) + " with fallback profile")

	if err := o.attempt(ctx, rc, s, fb); err != nil {
		rec.Error = err.Error()
		if mErr := rec.moveTo(StateFailed); mErr != nil {
			return mErr
		}
		rc.Log.Error("fallback attempt failed", "step", rec.Name, "index", rec.Index, "error", err)
		return o.abort(rc, rec, cnserrors.WrapWithContext(cnserrors.ErrCodeStepFailure,
			fmt.Sprintf("step %q failed with the fallback profile", rec.Name),
			err, map[string]any{"step": rec.Index, "profile": fb.Name}))
	}
	if err := rc.persistProfile(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to record fallback profile", err)
	}
	return o.succeed(rc, rec, "fallback")
}

func (o *Orchestrator) abort(rc *RunContext, rec *StepRecord, err error) error {
	if mErr := rec.moveTo(StateAborted); mErr != nil {
		return mErr
	}
	stepOutcomes.WithLabelValues(rec.Name, "aborted").Inc()
	rc.Printer.Error(o.label(rec) + ": " + err.Error())
	return err
}

func (o *Orchestrator) succeed(rc *RunContext, rec *StepRecord, outcome string) error {
	if err := rec.moveTo(StateSucceeded); err != nil {
		return err
	}
	if err := rc.Ledger.CompleteStep(rec.Index); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to record completed step", err)
	}
	if err := rc.Checkpoint.Advance(rec.Index); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to advance checkpoint", err)
	}
	checkpointStep.Set(float64(rec.Index))
	stepOutcomes.WithLabelValues(rec.Name, outcome).Inc()
	rc.Log.Info("step succeeded", "step", rec.Name, "index", rec.Index, "outcome", outcome)
	rc.Printer.Success(o.label(rec))
	return nil
}

func (o *Orchestrator) attempt(ctx context.Context, rc *RunContext, s Step, p profile.Profile) error {
	if o.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stepTimeout)
		defer cancel()
	}
	err := s.Run(ctx, rc, p)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return cnserrors.Wrap(cnserrors.ErrCodeTimeout,
			fmt.Sprintf("step exceeded its %s timeout", o.stepTimeout), err)
	}
	return err
}
