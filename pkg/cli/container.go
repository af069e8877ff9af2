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
	"io"
	"log/slog"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/urfave/cli/v3"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/container"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/oci"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/snapshotter"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

const defaultBundleDir = "container"

// imageRuntime builds and runs images from a bundle directory.
type imageRuntime interface {
	Build(ctx context.Context, dir, image string, out io.Writer) error
	Run(ctx context.Context, image string, cmd []string, out io.Writer) (int, error)
	Close() error
}

var newRuntime = func(ctx context.Context) (imageRuntime, error) {
	return container.NewDocker(ctx)
}

func containerModeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "docker",
			Usage: "Generate a Dockerfile instead of installing",
		},
		&cli.BoolFlag{
			Name:  "singularity",
			Usage: "Generate a Singularity definition instead of installing",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Usage:   "Directory for generated container files",
			Value:   defaultBundleDir,
			Sources: cli.EnvVars("GPUSETUP_OUTPUT_DIR"),
		},
		gpuFlag(),
	}
}

// containerFormats returns the formats selected by --docker and
// --singularity. When neither is set it returns every format if all is
// true, else none.
func containerFormats(cmd *cli.Command, all bool) []container.Format {
	var fs []container.Format
	if cmd.Bool("docker") {
		fs = append(fs, container.FormatDocker)
	}
	if cmd.Bool("singularity") {
		fs = append(fs, container.FormatSingularity)
	}
	if len(fs) == 0 && all {
		fs = []container.Format{container.FormatDocker, container.FormatSingularity}
	}
	return fs
}

func generateContainer(ctx context.Context, cmd *cli.Command, store *profile.Store, frameworks []string, formats []container.Format) error {
	printer := ux.NewPrinter(cmd.Root().Writer)

	p, err := containerProfile(ctx, cmd, store)
	if err != nil {
		return err
	}
	spec, err := container.NewSpec(p, frameworks)
	if err != nil {
		return err
	}
	bundle, err := container.Generate(ctx, cmd.String("output-dir"), version, spec, formats...)
	if err != nil {
		return err
	}

	printer.Success(fmt.Sprintf("Container files for %s (%s)", bundle.Profile, bundle.BaseImage))
	for _, f := range bundle.Files {
		printer.Bullet(f)
	}
	printer.Bullet(bundle.Checksums)
	return nil
}

// containerProfile runs detection first when neither --gpu nor an earlier
// detection names the hardware.
func containerProfile(ctx context.Context, cmd *cli.Command, store *profile.Store) (profile.Profile, error) {
	if cmd.String("gpu") == "" {
		path := statePath(cmd, defaults.DetectionFile)
		_, found, err := snapshotter.Load(path)
		if err != nil {
			return profile.Profile{}, err
		}
		if !found {
			printer := ux.NewPrinter(cmd.Root().ErrWriter)
			if _, err := newDetector(newRunner(cmd, slog.Default(), printer), path).Measure(ctx); err != nil {
				return profile.Profile{}, err
			}
		}
	}
	return resolveProfile(cmd, store)
}

func containerCmd() *cli.Command {
	return &cli.Command{
		Name:                  "container",
		EnableShellCompletion: true,
		Usage:                 "Generate, build, run and push container definitions",
		Commands: []*cli.Command{
			containerGenerateCmd(),
			containerBuildCmd(),
			containerRunCmd(),
			containerPushCmd(),
		},
	}
}

func containerGenerateCmd() *cli.Command {
	flags := containerModeFlags()
	flags = append(flags, frameworkFlags()...)

	return &cli.Command{
		Name:  "generate",
		Usage: "Write a Dockerfile and Singularity definition for the profile",
		Description: `Write container definitions that reproduce the profile's stack on top of
nvidia/cuda:<cuda>-base-ubuntu20.04, plus checksums.txt. Without --docker or
--singularity both are written.`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := profile.Load(ctx, cmd.String("profiles"))
			if err != nil {
				return err
			}
			frameworks, err := frameworkSelection(ctx, cmd)
			if err != nil {
				return err
			}
			return generateContainer(ctx, cmd, store, frameworks, containerFormats(cmd, true))
		},
	}
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Usage:   "Directory holding the generated container files",
		Value:   defaultBundleDir,
		Sources: cli.EnvVars("GPUSETUP_OUTPUT_DIR"),
	}
}

func imageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "image",
		Usage: "Image name",
		Value: container.DefaultImage,
	}
}

func containerBuildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build the generated Dockerfile with the Docker Engine",
		Flags: []cli.Flag{
			dirFlag(),
			imageFlag(),
			&cli.BoolFlag{
				Name:  "run",
				Usage: "Run the image with all GPUs after building",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := container.VerifyChecksums(cmd.String("dir")); err != nil {
				return err
			}
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			image := cmd.String("image")
			out := cmd.Root().Writer
			if err := rt.Build(ctx, cmd.String("dir"), image, out); err != nil {
				return err
			}
			ux.NewPrinter(out).Success("Built " + image)

			if !cmd.Bool("run") {
				return nil
			}
			return runImage(ctx, cmd, rt, image, nil)
		},
	}
}

func containerRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run an image with all GPUs attached",
		ArgsUsage: "[command...]",
		Flags: []cli.Flag{
			imageFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()
			return runImage(ctx, cmd, rt, cmd.String("image"), cmd.Args().Slice())
		},
	}
}

func runImage(ctx context.Context, cmd *cli.Command, rt imageRuntime, image string, args []string) error {
	code, err := rt.Run(ctx, image, args, cmd.Root().Writer)
	if err != nil {
		if code > 0 {
			return cli.Exit(err.Error(), code)
		}
		return err
	}
	return nil
}

func containerPushCmd() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Push the generated container files to an OCI registry",
		Description: `Push the bundle directory as a single-layer OCI artifact. The checksums are
verified first. Registry credentials are read from the Docker configuration.

# Examples

  gpusetup container push --ref oci://ghcr.io/acme/gpu-setup:v1
  gpusetup container push --ref localhost:5000/gpu-setup:dev --plain-http`,
		Flags: []cli.Flag{
			dirFlag(),
			&cli.StringFlag{
				Name:     "ref",
				Usage:    "Target reference: oci://registry/repository[:tag] (default tag: latest)",
				Required: true,
				Sources:  cli.EnvVars("GPUSETUP_PUSH_REF"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the registry",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref, err := oci.ParseReference(cmd.String("ref"))
			if err != nil {
				return err
			}
			if ref.Tag == "" {
				ref = ref.WithTag("latest")
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.RegistryPushTimeout)
			defer cancel()

			res, err := oci.Push(ctx, oci.PushOptions{
				SourceDir:   cmd.String("dir"),
				Reference:   ref,
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure-tls"),
				Annotations: map[string]string{
					ociv1.AnnotationTitle:   "gpu-setup container bundle",
					ociv1.AnnotationVersion: version,
				},
			})
			if err != nil {
				return err
			}
			ux.NewPrinter(cmd.Root().Writer).Success(fmt.Sprintf("Pushed %s@%s", res.Reference, res.Digest))
			return nil
		},
	}
}
