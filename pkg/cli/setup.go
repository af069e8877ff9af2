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
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/checkpoint"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/installer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/lock"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/logging"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/orchestrator"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/report"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/rollback"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/validator"
)

func setupCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:    "step-timeout",
			Usage:   "Timeout for each pipeline step (0 = none)",
			Sources: cli.EnvVars("GPUSETUP_STEP_TIMEOUT"),
		},
		commandTimeoutFlag(),
		&cli.BoolFlag{
			Name:    "strict",
			Usage:   "Treat a failed GPU or CUDA validation as a step failure",
			Sources: cli.EnvVars("GPUSETUP_STRICT"),
		},
		metricsFileFlag(),
	}
	flags = append(flags, frameworkFlags()...)
	flags = append(flags, containerModeFlags()...)
	flags = append(flags, uploadFlags()...)

	return &cli.Command{
		Name:                  "setup",
		EnableShellCompletion: true,
		Usage:                 "Detect the host and install drivers, CUDA and frameworks",
		Description: `Run the install pipeline:

  1. Detection                 GPU, OS, cloud provider and services
  2. Install GPU Drivers       nvidia-driver-<major> from the selected profile
  3. Install CUDA & Libraries  CUDA repository and cuda-<x-y>
  4. Install Frameworks        pip installs for the selected frameworks
  5. Validation                nvidia-smi, nvcc and framework probes
  6. Benchmark                 framework benchmarks against expectations

Each completed step is checkpointed in <state-dir>/progress.json and every
installed package is recorded in <state-dir>/install_session.json. A rerun
resumes after the last completed step. When a step fails, everything
recorded is uninstalled and the step is retried once with the fallback
profile; the run aborts when that fails too.

# Examples

Install everything the detected profile lists:
  gpusetup setup

Install only PyTorch and JAX:
  gpusetup setup --frameworks pytorch,jax

Drivers and CUDA only:
  gpusetup setup --no-frameworks

Generate a Dockerfile instead of installing:
  gpusetup setup --docker --output-dir container`,
		Flags:  flags,
		Action: runSetup,
	}
}

func runSetup(ctx context.Context, cmd *cli.Command) error {
	store, err := profile.Load(ctx, cmd.String("profiles"))
	if err != nil {
		return err
	}
	frameworks, err := frameworkSelection(ctx, cmd)
	if err != nil {
		return err
	}

	if formats := containerFormats(cmd, false); len(formats) > 0 {
		return generateContainer(ctx, cmd, store, frameworks, formats)
	}

	stateDir := cmd.String("state-dir")
	printer := ux.NewPrinter(cmd.Root().Writer)
	runID := report.NewRunID()
	started := time.Now()

	lk, err := lock.Acquire(stateDir, runID)
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
	log := diag.Logger().With("run", runID)

	ledger, err := session.Open(filepath.Join(stateDir, defaults.SessionFile))
	if err != nil {
		return err
	}
	cp := checkpoint.New(filepath.Join(stateDir, defaults.CheckpointFile))
	r := newRunner(cmd, log, printer)

	noFrameworks := cmd.Bool("no-frameworks")
	steps := orchestrator.Pipeline(orchestrator.Config{
		Detector:       newDetector(r, filepath.Join(stateDir, defaults.DetectionFile)),
		Installer:      installer.New(r, ledger, installer.WithLogger(log)),
		Validator:      validator.New(r, validator.WithVersion(version), validator.WithLogger(log)),
		SkipFrameworks: noFrameworks,
		Strict:         cmd.Bool("strict"),
	})
	rc := &orchestrator.RunContext{
		Log:          log,
		Printer:      printer,
		Ledger:       ledger,
		Checkpoint:   cp,
		Rollback:     rollback.New(r, ledger, cp, rollback.WithLogger(log)),
		Profiles:     store,
		StateDir:     stateDir,
		Frameworks:   frameworks,
		NoFrameworks: noFrameworks,
	}

	printer.Title(fmt.Sprintf("%s %s", name, version))
	log.Info("setup started", "state_dir", stateDir, "frameworks", frameworks, "no_frameworks", noFrameworks)

	o := orchestrator.New(steps, orchestrator.WithStepTimeout(cmd.Duration("step-timeout")))
	out, runErr := o.Run(ctx, rc)

	rep := report.Build(runID, version, started, out, rc, runErr)
	reportPath := filepath.Join(stateDir, defaults.ReportFile)
	if err := rep.Write(reportPath); err != nil {
		log.Error("failed to write run report", "path", reportPath, "error", err)
	}
	printSummary(printer, rep)

	publishReport(ctx, cmd, log, printer, runID, reportPath, filepath.Join(stateDir, defaults.ValidationFile))
	writeMetrics(cmd)

	if runErr != nil {
		log.Error("setup aborted", "state", rep.State, "error", runErr)
		return cli.Exit(runErr.Error(), rep.ExitCode)
	}
	if rep.ExitCode != 0 {
		return cli.Exit(fmt.Sprintf("setup finished in state %s", rep.State), rep.ExitCode)
	}
	return nil
}

func printSummary(p *ux.Printer, rep *report.Report) {
	if len(rep.Highlights) > 0 {
		p.Title("Validation highlights")
		for _, h := range rep.Highlights {
			p.Bullet(h)
		}
	}

	switch {
	case rep.ExitCode == 0 && rep.FallbackUsed():
		p.Warning(fmt.Sprintf("Setup complete using fallback profile %s", rep.Profile))
	case rep.ExitCode == 0:
		p.Success(fmt.Sprintf("Setup complete with profile %s", rep.Profile))
	default:
		p.Error(fmt.Sprintf("Setup %s; rerun to resume or run rollback", rep.State))
	}
}

// publishReport uploads the run report and validation log when an upload
// target is configured. Upload failures do not change the run outcome.
func publishReport(ctx context.Context, cmd *cli.Command, log *slog.Logger, p *ux.Printer, runID string, files ...string) {
	cfg := uploadConfig(cmd)
	if !cfg.Enabled() {
		return
	}

	uploader, err := report.NewUploader(cfg)
	if err != nil {
		log.Warn("report upload disabled", "error", err)
		return
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ReportUploadTimeout)
	defer cancel()

	keys, err := uploader.Upload(ctx, runID, present...)
	if err != nil {
		log.Warn("report upload failed", "bucket", cfg.Bucket, "error", err)
		p.Warning("Run report upload failed, see " + defaults.ErrorLogFile)
		return
	}
	for _, k := range keys {
		p.Bullet(fmt.Sprintf("uploaded s3://%s/%s", cfg.Bucket, k))
	}
}

func uploadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "upload-endpoint",
			Usage:   "S3-compatible endpoint (host:port) to upload the run report to",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "upload-bucket",
			Usage:   "Bucket for the run report",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "upload-prefix",
			Usage:   "Object key prefix; the run id is appended",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_PREFIX"),
		},
		&cli.StringFlag{
			Name:    "upload-region",
			Usage:   "Bucket region",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_REGION", "AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "upload-access-key",
			Usage:   "Access key for the upload endpoint",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_ACCESS_KEY", "AWS_ACCESS_KEY_ID"),
		},
		&cli.StringFlag{
			Name:    "upload-secret-key",
			Usage:   "Secret key for the upload endpoint",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"),
		},
		&cli.BoolFlag{
			Name:    "upload-insecure",
			Usage:   "Use plain HTTP for the upload endpoint",
			Sources: cli.EnvVars("GPUSETUP_UPLOAD_INSECURE"),
		},
	}
}

func uploadConfig(cmd *cli.Command) report.UploadConfig {
	return report.UploadConfig{
		Endpoint:  cmd.String("upload-endpoint"),
		Bucket:    cmd.String("upload-bucket"),
		Prefix:    cmd.String("upload-prefix"),
		Region:    cmd.String("upload-region"),
		AccessKey: cmd.String("upload-access-key"),
		SecretKey: cmd.String("upload-secret-key"),
		UseSSL:    !cmd.Bool("upload-insecure"),
	}
}
