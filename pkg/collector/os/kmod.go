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
	"fmt"
	"slices"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/file"
)

var filePathKMod = "/proc/modules"

// gpuModules are the modules worth reporting. nouveau conflicts with the
// proprietary driver.
var gpuModules = []string{"nvidia", "nvidia_uvm", "nvidia_drm", "nvidia_modeset", "nouveau", "amdgpu", "i915"}

// collectKMod returns the loaded modules from gpuModules, in /proc/modules
// order.
func (c *Collector) collectKMod(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := file.NewParser().GetLines(filePathKMod)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel modules from %s: %w", filePathKMod, err)
	}

	var found []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 0 && slices.Contains(gpuModules, fields[0]) {
			found = append(found, fields[0])
		}
	}
	return found, nil
}
