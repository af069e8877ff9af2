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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func withPaths(t *testing.T, release, modules string) {
	t.Helper()
	dir := t.TempDir()
	origPrimary, origFallback, origKMod := filePathReleasePrimary, filePathReleaseFallback, filePathKMod
	t.Cleanup(func() {
		filePathReleasePrimary, filePathReleaseFallback, filePathKMod = origPrimary, origFallback, origKMod
	})

	filePathReleasePrimary = filepath.Join(dir, "etc-os-release")
	filePathReleaseFallback = filepath.Join(dir, "usr-lib-os-release")
	filePathKMod = filepath.Join(dir, "modules")

	if release != "" {
		if err := os.WriteFile(filePathReleaseFallback, []byte(release), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if modules != "" {
		if err := os.WriteFile(filePathKMod, []byte(modules), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollect(t *testing.T) {
	withPaths(t,
		"NAME=\"Ubuntu\"\nPRETTY_NAME=\"Ubuntu 20.04.6 LTS\"\n",
		"nvidia_uvm 1437696 0 - Live 0x0000000000000000 (POE)\n"+
			"ext4 1036288 1 - Live 0x0000000000000000\n"+
			"nvidia 56807424 1 nvidia_uvm, Live 0x0000000000000000 (POE)\n")

	d, err := (&Collector{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.OS != "Ubuntu 20.04.6 LTS" {
		t.Errorf("OS = %q", d.OS)
	}
	if len(d.KernelModules) != 2 || d.KernelModules[0] != "nvidia_uvm" || d.KernelModules[1] != "nvidia" {
		t.Errorf("KernelModules = %v", d.KernelModules)
	}
}

func TestCollectMissingFiles(t *testing.T) {
	withPaths(t, "", "")

	d, err := (&Collector{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", d.OS, runtime.GOOS)
	}
	if len(d.KernelModules) != 0 {
		t.Errorf("KernelModules = %v", d.KernelModules)
	}
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := (&Collector{}).Collect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if d != nil {
		t.Error("expected nil detection on error")
	}
}
