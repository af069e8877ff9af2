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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/runner"
)

const smiBanner = `+---------------------------------------------------------------------------------------+
| NVIDIA-SMI 535.104.05             Driver Version: 535.104.05   CUDA Version: 12.2     |
|-----------------------------------------+----------------------+----------------------+`

func newCollector(t *testing.T, sysfs string, rules ...runner.FakeRule) (*Collector, *runner.FakeExecutor) {
	t.Helper()
	fake := runner.NewFakeExecutor(rules...)
	r := runner.New(runner.WithExecutor(fake), runner.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if sysfs == "" {
		sysfs = t.TempDir()
	}
	return &Collector{Prober: r, SysfsRoot: sysfs}, fake
}

func TestCollectFromLspci(t *testing.T) {
	c, fake := newCollector(t, "",
		runner.FakeRule{Match: "lspci", Output: "00:02.0 Host bridge: Intel Corporation\n" +
			"17:00.0 3D controller: NVIDIA Corporation GA100 [A100 SXM4 80GB] (rev a1)\n" +
			"17:00.1 Audio device: NVIDIA Corporation Device 1aef (rev a1)"},
		runner.FakeRule{Match: "nvidia-smi", Output: smiBanner},
	)

	d, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.GPUNvidiaA100, d.GPUModel)
	assert.Equal(t, []string{"NVIDIA Corporation GA100 [A100 SXM4 80GB] (rev a1)"}, d.GPUModels)
	assert.Equal(t, "12.2", d.CUDAVersion)
	assert.Equal(t, "535.104.05", d.DriverVersion)
	assert.Zero(t, fake.Count("--query-gpu"))
}

func TestCollectFallsBackToSMIQuery(t *testing.T) {
	c, _ := newCollector(t, "",
		runner.FakeRule{Match: "lspci", NotFound: true},
		runner.FakeRule{Match: "--query-gpu", Output: "NVIDIA GeForce RTX 3090\nNVIDIA GeForce RTX 3090\n"},
		runner.FakeRule{Match: "nvidia-smi", Failures: -1},
	)

	d, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.GPUNvidiaRTX3090, d.GPUModel)
	assert.Len(t, d.GPUModels, 2)
	assert.Empty(t, d.CUDAVersion)
}

func TestCollectFromSysfs(t *testing.T) {
	root := t.TempDir()
	writeDevice(t, root, "0000:00:02.0", "0x8086", "0x030000", "0x9bc8")
	writeDevice(t, root, "0000:65:00.0", "0x10de", "0x030200", "0x20b5")
	writeDevice(t, root, "0000:65:00.1", "0x10de", "0x040300", "0x1aef")

	c, _ := newCollector(t, root,
		runner.FakeRule{Match: "lspci", NotFound: true},
		runner.FakeRule{Match: "nvidia-smi", NotFound: true},
	)

	d, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.GPUNvidiaGeneric, d.GPUModel)
	assert.Equal(t, []string{"NVIDIA PCI device 0x20b5 at 0000:65:00.0"}, d.GPUModels)
}

func TestCollectUnsupportedVendor(t *testing.T) {
	c, _ := newCollector(t, "",
		runner.FakeRule{Match: "lspci", Output: "00:02.0 VGA compatible controller: Advanced Micro Devices"},
		runner.FakeRule{Match: "nvidia-smi", NotFound: true},
		runner.FakeRule{Match: "lshw", Output: "  *-display\n       product: Navi 21\n       vendor: Advanced Micro Devices, Inc. [AMD/ATI]\n"},
	)

	d, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.GPUAMDUnsupported, d.GPUModel)
	assert.Equal(t, []string{"Advanced Micro Devices, Inc. [AMD/ATI]"}, d.GPUModels)
}

func TestCollectNothingFound(t *testing.T) {
	c, _ := newCollector(t, "",
		runner.FakeRule{Match: "lspci", Output: "00:00.0 Host bridge: Intel Corporation"},
		runner.FakeRule{Match: "nvidia-smi", NotFound: true},
		runner.FakeRule{Match: "lshw", NotFound: true},
	)

	d, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurement.GPUUnknown, d.GPUModel)
	assert.Empty(t, d.GPUModels)
}

func writeDevice(t *testing.T, root, name, vendor, class, device string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for attr, v := range map[string]string{"vendor": vendor, "class": class, "device": device} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, attr), []byte(v+"\n"), 0o600))
	}
}
