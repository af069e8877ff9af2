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
	"os"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/file"
)

var (
	filePathReleasePrimary  = "/etc/os-release"
	filePathReleaseFallback = "/usr/lib/os-release"
)

// collectRelease parses os-release, falling back to /usr/lib/os-release
// when /etc/os-release is absent.
//
//	NAME="Ubuntu"
//	VERSION_ID="20.04"
//	PRETTY_NAME="Ubuntu 20.04.6 LTS"
func (c *Collector) collectRelease(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filePathReleasePrimary
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filePathReleaseFallback
	}

	parser := file.NewParser(
		file.WithVTrimChars(`"'`),
		file.WithSkipEmptyValues(true),
	)
	params, err := parser.GetMap(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read os release from %s: %w", path, err)
	}
	return params, nil
}
