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
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/checkpoint"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/lock"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/logging"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/report"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/rollback"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:                  "rollback",
		EnableShellCompletion: true,
		Usage:                 "Uninstall the packages recorded in the session ledger",
		Description: `Uninstall what earlier setup runs recorded, newest first, then clear the
session ledger and the checkpoint so the next setup starts from the
beginning. A failed uninstall is reported and the rollback continues.

Levels:
  all  pip packages, then apt packages
  apt  apt packages only
  pip  pip packages only`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "level",
				Usage: fmt.Sprintf("What to uninstall (%s)", strings.Join(rollback.GetLevels(), ", ")),
				Value: string(rollback.LevelAll),
			},
			commandTimeoutFlag(),
			metricsFileFlag(),
		},
		Action: runRollback,
	}
}

func runRollback(ctx context.Context, cmd *cli.Command) error {
	level, err := rollback.ParseLevel(cmd.String("level"))
	if err != nil {
		return err
	}

	stateDir := cmd.String("state-dir")
	printer := ux.NewPrinter(cmd.Root().Writer)

	lk, err := lock.Acquire(stateDir, report.NewRunID())
	if err != nil {
		return err
	}
	defer func() {
		if err := lk.Release(); err != nil {
			slog.Warn("failed to release state lock", "path", lk.Path(), "error", err)
		}
	}()

	diag, err := logging.OpenDiagnosticLog(stateDir, slog.Default().Handler())
	if err != nil {
		return err
	}
	defer func() { _ = diag.Close() }()
	log := diag.Logger()

	ledger, err := session.Open(statePath(cmd, defaults.SessionFile))
	if err != nil {
		return err
	}
	cp := checkpoint.New(statePath(cmd, defaults.CheckpointFile))
	engine := rollback.New(newRunner(cmd, log, printer), ledger, cp, rollback.WithLogger(log))

	printer.Title(fmt.Sprintf("Rollback (%s)", level))
	rep := engine.Rollback(ctx, level)
	writeMetrics(cmd)

	if len(rep.Attempted) == 0 {
		printer.Skipped("Nothing recorded to roll back")
	}
	for _, pkg := range rep.Attempted {
		if slices.Contains(rep.Failed, pkg) {
			printer.Error("Failed to remove " + pkg)
			continue
		}
		printer.Success("Removed " + pkg)
	}

	if len(rep.Failed) > 0 || !rep.Clean {
		err := cnserrors.NewWithContext(cnserrors.ErrCodeRollbackPartialFailure,
			"rollback incomplete", map[string]any{"failed": rep.Failed, "clean": rep.Clean})
		return cli.Exit(err.Error(), 1)
	}
	printer.Success("Rollback complete")
	return nil
}
