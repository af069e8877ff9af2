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

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/checkpoint"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/report"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/snapshotter"
)

// Status is the persisted state of the state directory.
type Status struct {
	header.Header `json:",inline" yaml:",inline"`

	StateDir           string                 `json:"stateDir" yaml:"stateDir"`
	LastSuccessfulStep int                    `json:"lastSuccessfulStep" yaml:"lastSuccessfulStep"`
	Session            session.State          `json:"session" yaml:"session"`
	Detection          *measurement.Detection `json:"detection,omitempty" yaml:"detection,omitempty"`
	LastRun            *report.Report         `json:"lastRun,omitempty" yaml:"lastRun,omitempty"`
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:                  "status",
		EnableShellCompletion: true,
		Usage:                 "Show the checkpoint, session ledger and last run",
		Description: `Print the persisted state of the state directory: the last successful step,
the apt and pip packages recorded for rollback, the last detection and the
last run report. Nothing is modified.`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := loadStatus(cmd)
			if err != nil {
				return err
			}
			return serialize(ctx, cmd, st)
		},
	}
}

func loadStatus(cmd *cli.Command) (*Status, error) {
	step, err := checkpoint.New(statePath(cmd, defaults.CheckpointFile)).Get()
	if err != nil {
		return nil, err
	}
	ledger, err := session.Open(statePath(cmd, defaults.SessionFile))
	if err != nil {
		return nil, err
	}

	st := &Status{
		Header:             header.New(header.KindSessionStatus, version),
		StateDir:           cmd.String("state-dir"),
		LastSuccessfulStep: step,
		Session:            ledger.Snapshot(),
	}

	d, found, err := snapshotter.Load(statePath(cmd, defaults.DetectionFile))
	if err != nil {
		return nil, err
	}
	if found {
		st.Detection = d
	}

	rep, found, err := report.Load(statePath(cmd, defaults.ReportFile))
	if err != nil {
		return nil, err
	}
	if found {
		st.LastRun = rep
	}
	return st, nil
}
