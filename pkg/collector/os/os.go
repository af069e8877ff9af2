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

package os

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
)

// Collector reports the OS pretty name and loaded GPU kernel modules.
type Collector struct{}

// Collect never fails on missing files: the OS name falls back to the Go
// runtime's GOOS and the module list is left empty.
func (c *Collector) Collect(ctx context.Context) (*measurement.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &measurement.Detection{OS: runtime.GOOS}

	release, err := c.collectRelease(ctx)
	if err != nil {
		slog.Debug("os-release unavailable", "error", err)
	} else if name := release["PRETTY_NAME"]; name != "" {
		d.OS = name
	}

	modules, err := c.collectKMod(ctx)
	if err != nil {
		slog.Debug("kernel modules unavailable", "error", err)
	}
	d.KernelModules = modules

	return d, nil
}
