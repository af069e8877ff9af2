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

package installer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/framework"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/session"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

const (
	cudaRepoURL  = "https://developer.download.nvidia.com/compute/cuda/repos/ubuntu2004/x86_64"
	cudaPinFile  = "cuda-ubuntu2004.pin"
	cudaPinPath  = "/etc/apt/preferences.d/cuda-repository-pin-600"
	cudaRepoKey  = cudaRepoURL + "/7fa2af80.pub"
	pipAptPkg    = "python3-pip"
	pipCommand   = "pip3"
	aptGetBinary = "apt-get"
)

// CommandRunner runs a command with retries and reports success.
type CommandRunner interface {
	Run(ctx context.Context, cmd runner.Command, retries int, showProgress bool) bool
}

// Recorder is the part of the session ledger installers write to.
type Recorder interface {
	Record(kind session.Kind, pkg string) error
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) {
		i.log = l
	}
}

// WithRetries sets the retry count for install commands.
func WithRetries(n int) Option {
	return func(i *Installer) {
		i.retries = n
	}
}

// Installer runs install commands and records what they installed.
type Installer struct {
	run     CommandRunner
	ledger  Recorder
	log     *slog.Logger
	retries int
}

// New returns an Installer.
func New(r CommandRunner, ledger Recorder, opts ...Option) *Installer {
	i := &Installer{
		run:     r,
		ledger:  ledger,
		log:     slog.Default(),
		retries: defaults.InstallRetries,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// DriverPackage returns the apt package for a driver version ("nvidia-driver-535").
func DriverPackage(driverVersion string) (string, error) {
	v, err := version.ParseVersion(driverVersion)
	if err != nil {
		return "", cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid driver version %q", driverVersion), err)
	}
	return "nvidia-driver-" + v.MajorString(), nil
}

// CUDAPackage returns the apt package for a CUDA release ("cuda-11-8").
func CUDAPackage(cudaVersion string) (string, error) {
	v, err := version.ParseVersion(cudaVersion)
	if err != nil {
		return "", cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid CUDA version %q", cudaVersion), err)
	}
	return "cuda-" + v.Dashed(), nil
}

// EnsurePip installs python3-pip.
func (i *Installer) EnsurePip(ctx context.Context) error {
	if err := i.exec(ctx, runner.Sudo(aptGetBinary, "update"), false); err != nil {
		return err
	}
	return i.installApt(ctx, pipAptPkg)
}

// Driver installs the NVIDIA driver series for driverVersion.
func (i *Installer) Driver(ctx context.Context, driverVersion string) error {
	pkg, err := DriverPackage(driverVersion)
	if err != nil {
		return err
	}
	i.log.Info("installing NVIDIA driver", "version", driverVersion, "package", pkg)

	if err := i.exec(ctx, runner.Sudo(aptGetBinary, "update"), true); err != nil {
		return err
	}
	return i.installApt(ctx, pkg)
}

// CUDA configures the NVIDIA apt repository and installs the toolkit. The
// profile libraries are logged; cuDNN and NCCL ship with the toolkit
// repository and are pulled in by the framework wheels.
func (i *Installer) CUDA(ctx context.Context, cudaVersion string, libraries []profile.Library) error {
	pkg, err := CUDAPackage(cudaVersion)
	if err != nil {
		return err
	}
	i.log.Info("installing CUDA toolkit", "version", cudaVersion, "package", pkg)

	setup := []runner.Command{
		runner.Cmd("wget", "-q", cudaRepoURL+"/"+cudaPinFile),
		runner.Sudo("mv", cudaPinFile, cudaPinPath),
		runner.Sudo("apt-key", "adv", "--fetch-keys", cudaRepoKey),
		runner.Sudo("add-apt-repository", "deb "+cudaRepoURL+"/ /"),
	}
	for _, c := range setup {
		if err := i.execSetup(ctx, c); err != nil {
			return err
		}
	}
	if err := i.exec(ctx, runner.Sudo(aptGetBinary, "update"), true); err != nil {
		return err
	}
	if err := i.installApt(ctx, pkg); err != nil {
		return err
	}

	for _, lib := range libraries {
		i.log.Info("library provided by CUDA repository", "name", lib.Name, "version", lib.Version)
	}
	return nil
}

// Framework installs one framework at version built for cudaVersion. Unknown
// names are logged and skipped.
func (i *Installer) Framework(ctx context.Context, name, v, cudaVersion string) error {
	spec, ok := framework.Lookup(name)
	if !ok {
		i.log.Warn("unknown framework, skipping", "framework", name)
		return nil
	}

	args, err := spec.InstallArgs(v, cudaVersion)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "cannot build install command", err)
	}
	i.log.Info("installing framework", "framework", spec.DisplayName, "version", v, "cuda", cudaVersion)

	if err := i.exec(ctx, runner.Cmd(pipCommand, args...), true); err != nil {
		return err
	}
	for _, pkg := range spec.Packages {
		if err := i.record(session.KindPip, pkg); err != nil {
			return err
		}
	}
	return nil
}

// Frameworks installs each selected framework at the version p pins for it.
// An empty selection installs everything p lists.
func (i *Installer) Frameworks(ctx context.Context, p profile.Profile, selected []string) error {
	if len(selected) == 0 {
		selected = p.FrameworkNames()
	}
	for _, name := range selected {
		if err := i.Framework(ctx, name, p.FrameworkVersion(name), p.CUDAVersion); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) installApt(ctx context.Context, pkg string) error {
	if err := i.exec(ctx, runner.Sudo(aptGetBinary, "-y", "install", pkg), true); err != nil {
		return err
	}
	return i.record(session.KindApt, pkg)
}

func (i *Installer) exec(ctx context.Context, cmd runner.Command, progress bool) error {
	if !i.run.Run(ctx, cmd, i.retries, progress) {
		return cnserrors.NewWithContext(cnserrors.ErrCodeCommandFailure,
			"command failed: "+cmd.String(), map[string]any{"retries": i.retries})
	}
	return nil
}

func (i *Installer) execSetup(ctx context.Context, cmd runner.Command) error {
	if !i.run.Run(ctx, cmd, defaults.CommandRetries, false) {
		return cnserrors.NewWithContext(cnserrors.ErrCodeCommandFailure,
			"command failed: "+cmd.String(), map[string]any{"retries": defaults.CommandRetries})
	}
	return nil
}

func (i *Installer) record(kind session.Kind, pkg string) error {
	if err := i.ledger.Record(kind, pkg); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to record "+pkg, err)
	}
	return nil
}
