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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

func validateCmd() *cli.Command {
	flags := []cli.Flag{
		gpuFlag(),
		&cli.BoolFlag{
			Name:  "benchmark",
			Usage: "Also run the framework benchmarks",
		},
		&cli.BoolFlag{
			Name:    "strict",
			Usage:   "Exit non-zero when a GPU or CUDA check fails",
			Sources: cli.EnvVars("GPUSETUP_STRICT"),
		},
		commandTimeoutFlag(),
		outputFlag(),
		formatFlag(),
	}
	flags = append(flags, frameworkFlags()...)

	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate the installed driver, CUDA and frameworks",
		Description: `Check nvidia-smi and nvcc, compare the reported driver and CUDA versions with
the profile, and run a small GPU workload for each selected framework.

The profile is the one named by --gpu, else the one of the last detection.
Results are written to <state-dir>/validation_log.txt and printed in the
selected format.

# Examples

Validate the detected profile and benchmark it:
  gpusetup validate --benchmark

Fail a CI job when the toolkit is broken:
  gpusetup validate --strict --format json`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			store, err := profile.Load(ctx, cmd.String("profiles"))
			if err != nil {
				return err
			}
			p, err := resolveProfile(cmd, store)
			if err != nil {
				return err
			}
			frameworks, err := frameworkSelection(ctx, cmd)
			if err != nil {
				return err
			}

			printer := ux.NewPrinter(cmd.Root().ErrWriter)
			r := newRunner(cmd, slog.Default(), printer)
			v := validator.New(r, validator.WithVersion(version))

			res, err := v.Validate(ctx, p, frameworks)
			if err != nil {
				return err
			}
			logPath := statePath(cmd, defaults.ValidationFile)
			if err := validator.WriteLog(logPath, res); err != nil {
				return err
			}

			if cmd.Bool("benchmark") {
				results := v.Benchmark(ctx, p, frameworks)
				if err := validator.AppendBenchmark(logPath, results); err != nil {
					return err
				}
				for _, line := range validator.BenchmarkLines(results) {
					printer.Bullet(line)
				}
			}

			if err := serialize(ctx, cmd, res); err != nil {
				return err
			}
			if !res.Healthy() {
				printer.Warning("validation found issues, see " + logPath)
				if cmd.Bool("strict") {
					return cli.Exit("validation failed", 1)
				}
			}
			return nil
		},
	}
}
