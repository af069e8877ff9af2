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
	"github.com/aepokcorporation/gpu-setup-tool/pkg/snapshotter"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/ux"
)

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "detect",
		EnableShellCompletion: true,
		Usage:                 "Detect GPU, OS, cloud provider and services",
		Description: `Run host detection and write <state-dir>/detection_log.json.

The GPU is identified from lspci, then nvidia-smi, then the PCI devices in
sysfs, then lshw. The cloud provider is probed through the AWS, Azure and
GCP metadata endpoints. The detected hardware identifier selects the
compatibility profile used by setup, validate and container generate.`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
			commandTimeoutFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			// advice goes to stderr so stdout stays parseable
			printer := ux.NewPrinter(cmd.Root().ErrWriter)
			r := newRunner(cmd, slog.Default(), printer)

			d, err := newDetector(r, statePath(cmd, defaults.DetectionFile)).Measure(ctx)
			if err != nil {
				return err
			}
			for _, tip := range snapshotter.Advice(d) {
				printer.Bullet(tip)
			}
			return serialize(ctx, cmd, d)
		},
	}
}
