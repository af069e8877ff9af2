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

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/file"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
)

const (
	nvidiaVendorID     = "0x10de"
	displayClassPrefix = "0x03"
	defaultSysfsRoot   = "/sys/bus/pci/devices"
)

var (
	reCUDAVersion   = regexp.MustCompile(`CUDA Version:\s*([0-9][0-9.]*)`)
	reDriverVersion = regexp.MustCompile(`Driver Version:\s*([0-9][0-9.]*)`)
)

// Prober runs a command once and returns its output.
type Prober interface {
	Capture(ctx context.Context, cmd runner.Command) (string, bool)
}

// Collector identifies the GPU.
type Collector struct {
	Prober Prober

	// SysfsRoot is the PCI device directory. Defaults to /sys/bus/pci/devices.
	SysfsRoot string
}

// Collect returns the raw hardware identifier, the adapter names seen, and
// the driver/CUDA versions when nvidia-smi works. It only fails when ctx is
// done.
func (c *Collector) Collect(ctx context.Context) (*measurement.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &measurement.Detection{GPUModel: measurement.GPUUnknown}
	sources := []struct {
		name string
		fn   func(context.Context) (string, []string)
	}{
		{"lspci", c.fromLspci},
		{"nvidia-smi", c.fromNvidiaSMI},
		{"sysfs", c.fromSysfs},
		{"lshw", c.fromLshw},
	}
	for _, src := range sources {
		id, names := src.fn(ctx)
		if id == "" {
			continue
		}
		slog.Debug("gpu identified", "source", src.name, "id", id, "names", names)
		d.GPUModel, d.GPUModels = id, names
		break
	}

	if out, ok := c.Prober.Capture(ctx, runner.Cmd("nvidia-smi")); ok {
		d.DriverVersion, d.CUDAVersion = ParseBanner(out)
	}

	return d, ctx.Err()
}

func (c *Collector) fromLspci(ctx context.Context) (string, []string) {
	out, ok := c.Prober.Capture(ctx, runner.Cmd("lspci"))
	if !ok {
		return "", nil
	}

	var display, other []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "NVIDIA") {
			continue
		}
		name := line
		if _, after, found := strings.Cut(line, ": "); found {
			name = strings.TrimSpace(after)
		}
		if isDisplayLine(line) {
			display = append(display, name)
		} else {
			other = append(other, name)
		}
	}

	names := display
	if len(names) == 0 {
		names = other
	}
	if len(names) == 0 {
		return "", nil
	}
	return measurement.ClassifyNvidia(names[0]), names
}

func isDisplayLine(line string) bool {
	for _, class := range []string{"VGA compatible controller", "3D controller", "Display controller"} {
		if strings.Contains(line, class) {
			return true
		}
	}
	return false
}

func (c *Collector) fromNvidiaSMI(ctx context.Context) (string, []string) {
	out, ok := c.Prober.Capture(ctx, runner.Cmd("nvidia-smi", "--query-gpu=name", "--format=csv,noheader"))
	if !ok {
		return "", nil
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	return measurement.ClassifyNvidia(names[0]), names
}

func (c *Collector) fromSysfs(ctx context.Context) (string, []string) {
	if ctx.Err() != nil {
		return "", nil
	}

	root := c.SysfsRoot
	if root == "" {
		root = defaultSysfsRoot
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		slog.Debug("sysfs scan unavailable", "root", root, "error", err)
		return "", nil
	}

	parser := file.NewParser(file.WithMaxSize(64))
	var names []string
	for _, e := range entries {
		dev := filepath.Join(root, e.Name())
		vendor, err := parser.Value(filepath.Join(dev, "vendor"))
		if err != nil || vendor != nvidiaVendorID {
			continue
		}
		class, err := parser.Value(filepath.Join(dev, "class"))
		if err != nil || !strings.HasPrefix(class, displayClassPrefix) {
			continue
		}
		device, _ := parser.Value(filepath.Join(dev, "device"))
		names = append(names, fmt.Sprintf("NVIDIA PCI device %s at %s", device, e.Name()))
	}
	if len(names) == 0 {
		return "", nil
	}
	return measurement.GPUNvidiaGeneric, names
}

func (c *Collector) fromLshw(ctx context.Context) (string, []string) {
	out, ok := c.Prober.Capture(ctx, runner.Cmd("lshw", "-C", "display"))
	if !ok {
		return "", nil
	}

	var vendor string
	for _, line := range strings.Split(out, "\n") {
		if k, v, found := strings.Cut(strings.TrimSpace(line), ":"); found && k == "vendor" {
			vendor = strings.TrimSpace(v)
			break
		}
	}

	upper := strings.ToUpper(out)
	switch {
	case strings.Contains(upper, "AMD"), strings.Contains(upper, "ADVANCED MICRO DEVICES"):
		return measurement.GPUAMDUnsupported, nonEmpty(vendor)
	case strings.Contains(upper, "INTEL"):
		return measurement.GPUIntelUnsupported, nonEmpty(vendor)
	default:
		return "", nil
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// ParseBanner extracts the driver and CUDA versions from nvidia-smi output.
func ParseBanner(out string) (driver, cuda string) {
	return firstMatch(reDriverVersion, out), firstMatch(reCUDAVersion, out)
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
