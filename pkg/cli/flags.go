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
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/orchestrator"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/snapshotter"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

const stateDirDefault = defaults.StateDir

// Replaced in tests so that no command touches the host.
var (
	newExecutor  = func() runner.Executor { return runner.ExecExecutor{} }
	retryBackoff = runner.DefaultBackoff
	newDetector  = func(r *runner.Runner, path string) orchestrator.Detector {
		return &snapshotter.HostSnapshotter{Factory: collector.NewDefaultFactory(r), Path: path}
	}
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Value:   string(serializer.FormatYAML),
	}
}

func profilesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "profiles",
		Usage:   "Path or URL of the compatibility profiles document (default: built-in)",
		Sources: cli.EnvVars("GPUSETUP_PROFILES"),
	}
}

func frameworkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "frameworks",
			Aliases: []string{"f"},
			Usage:   "Frameworks to install, comma separated (default: every framework in the profile)",
			Sources: cli.EnvVars("GPUSETUP_FRAMEWORKS"),
		},
		&cli.BoolFlag{
			Name:  "no-frameworks",
			Usage: "Skip framework installation and validation",
		},
		&cli.StringFlag{
			Name:    "preset",
			Usage:   "Named framework preset, combined with --frameworks",
			Sources: cli.EnvVars("GPUSETUP_PRESET"),
		},
		&cli.StringFlag{
			Name:    "presets",
			Usage:   "Path or URL of the presets document (default: built-in)",
			Sources: cli.EnvVars("GPUSETUP_PRESETS"),
		},
		profilesFlag(),
	}
}

func commandTimeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    "command-timeout",
		Usage:   "Timeout for each attempt of an external command (0 = none)",
		Sources: cli.EnvVars("GPUSETUP_COMMAND_TIMEOUT"),
	}
}

func metricsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "metrics-file",
		Usage:   "Write Prometheus metrics to this file in textfile collector format",
		Sources: cli.EnvVars("GPUSETUP_METRICS_FILE"),
	}
}

func gpuFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "gpu",
		Usage: "Hardware identifier of the profile to use (default: detected GPU)",
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown output format: %q", f))
	}
	return f, nil
}

func statePath(cmd *cli.Command, file string) string {
	return filepath.Join(cmd.String("state-dir"), file)
}

// frameworkSelection merges the preset and explicit framework lists. nil
// means every framework of the profile; empty means none.
func frameworkSelection(ctx context.Context, cmd *cli.Command) ([]string, error) {
	if cmd.Bool("no-frameworks") {
		return []string{}, nil
	}

	var lists [][]string
	if preset := cmd.String("preset"); preset != "" {
		presets, err := profile.LoadPresets(ctx, cmd.String("presets"))
		if err != nil {
			return nil, err
		}
		names, err := presets.Frameworks(preset)
		if err != nil {
			return nil, err
		}
		lists = append(lists, names)
	}
	lists = append(lists, cmd.StringSlice("frameworks"))
	return profile.SelectFrameworks(lists...), nil
}

// resolveProfile picks the profile named by --gpu, else the one of the last
// detection, preferring a fallback profile recorded by setup. Without either
// it returns the unknown_gpu profile.
func resolveProfile(cmd *cli.Command, store *profile.Store) (profile.Profile, error) {
	if id := cmd.String("gpu"); id != "" {
		if !store.Has(id) {
			return profile.Profile{}, cnserrors.New(cnserrors.ErrCodeConfigurationMissing,
				fmt.Sprintf("no profile for %q, available: %s", id, strings.Join(store.Names(), ", ")))
		}
		return store.Lookup(id), nil
	}

	d, found, err := snapshotter.Load(statePath(cmd, defaults.DetectionFile))
	if err != nil {
		return profile.Profile{}, err
	}
	if !found {
		slog.Warn("no detection found, using unknown_gpu profile; run detect or pass --gpu")
		return store.Lookup(""), nil
	}
	if d.ActiveProfile != "" && store.Has(d.ActiveProfile) {
		return store.Lookup(d.ActiveProfile), nil
	}
	return store.Lookup(d.GPUModel), nil
}

func newRunner(cmd *cli.Command, log *slog.Logger, printer *ux.Printer) *runner.Runner {
	return runner.New(
		runner.WithExecutor(newExecutor()),
		runner.WithBackoff(retryBackoff()),
		runner.WithLogger(log),
		runner.WithTimeout(cmd.Duration("command-timeout")),
		runner.WithPrinter(printer),
	)
}

func writeMetrics(cmd *cli.Command) {
	path := cmd.String("metrics-file")
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		slog.Warn("failed to write metrics", "path", path, "error", err)
		return
	}
	slog.Debug("metrics written", "path", path)
}

func serialize(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}
	w, err := serializer.NewFileWriter(format, cmd.String("output"), cmd.Root().Writer)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "cannot write output", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close output", "error", err)
		}
	}()
	return w.Serialize(ctx, v)
}
