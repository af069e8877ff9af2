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

package measurement

import (
	"testing"
)

func TestClassifyNvidia(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"NVIDIA A100-SXM4-80GB", GPUNvidiaA100},
		{"01:00.0 VGA compatible controller: NVIDIA Corporation GA102 [GeForce RTX 3090]", GPUNvidiaRTX3090},
		{"nvidia_geforce_rtx_3090", GPUNvidiaRTX3090},
		{"Tesla T4", GPUNvidiaGeneric},
	}
	for _, tt := range tests {
		if got := ClassifyNvidia(tt.name); got != tt.want {
			t.Errorf("ClassifyNvidia(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeGPU(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{GPUNvidiaA100, GPUNvidiaA100},
		{GPUNvidiaGeneric, GPUNvidiaGeneric},
		{GPUAMDUnsupported, GPUUnknown},
		{"", GPUUnknown},
		{"something_else", GPUUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeGPU(tt.in); got != tt.want {
			t.Errorf("NormalizeGPU(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !IsUnsupportedVendor(GPUIntelUnsupported) || IsUnsupportedVendor(GPUNvidiaA100) {
		t.Error("IsUnsupportedVendor misclassified")
	}
}

func TestMerge(t *testing.T) {
	d := &Detection{OS: "linux", Services: map[string]string{"a": "active"}}
	d.Merge(&Detection{GPUModel: GPUNvidiaA100, GPUModels: []string{"A100"}})
	d.Merge(&Detection{OS: "Ubuntu 22.04", Services: map[string]string{"b": "inactive"}})
	d.Merge(nil)

	if d.GPUModel != GPUNvidiaA100 || d.OS != "Ubuntu 22.04" {
		t.Errorf("unexpected merge result: %+v", d)
	}
	if len(d.Services) != 2 {
		t.Errorf("expected 2 services, got %v", d.Services)
	}
}

func TestNormalize(t *testing.T) {
	d := &Detection{GPUModel: GPUAMDUnsupported}
	d.Normalize()
	if d.GPUModel != GPUUnknown || d.DetectedGPU != GPUAMDUnsupported {
		t.Errorf("GPUModel = %q, DetectedGPU = %q", d.GPUModel, d.DetectedGPU)
	}
	if d.CloudProvider != CloudUnknown {
		t.Errorf("CloudProvider = %q", d.CloudProvider)
	}
	if d.GPUModels == nil {
		t.Error("GPUModels should be non-nil")
	}
}
