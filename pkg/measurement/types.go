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
	"maps"
	"slices"
	"strings"
)

// Hardware identifiers.
const (
	GPUNvidiaA100       = "nvidia_a100"
	GPUNvidiaRTX3090    = "nvidia_rtx_3090"
	GPUNvidiaGeneric    = "nvidia_generic"
	GPUAMDUnsupported   = "amd_unsupported"
	GPUIntelUnsupported = "intel_unsupported"
	GPUUnknown          = "unknown_gpu"
)

// CloudUnknown is reported when no metadata endpoint answered.
const CloudUnknown = "Unknown"

// KnownGPUs are the identifiers that have their own compatibility profile.
var KnownGPUs = []string{GPUNvidiaA100, GPUNvidiaRTX3090, GPUNvidiaGeneric}

// NormalizeGPU maps a raw identifier to a known one or unknown_gpu.
func NormalizeGPU(id string) string {
	if slices.Contains(KnownGPUs, id) {
		return id
	}
	return GPUUnknown
}

// IsUnsupportedVendor reports whether id names a non-NVIDIA GPU.
func IsUnsupportedVendor(id string) bool {
	return strings.HasSuffix(id, "_unsupported")
}

// ClassifyNvidia maps an NVIDIA product name to a hardware identifier.
func ClassifyNvidia(name string) string {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "A100"):
		return GPUNvidiaA100
	case strings.Contains(upper, "RTX 3090"), strings.Contains(upper, "RTX_3090"):
		return GPUNvidiaRTX3090
	default:
		return GPUNvidiaGeneric
	}
}

// Detection describes the host the installer is running on.
type Detection struct {
	GPUModel      string            `json:"gpu_model" yaml:"gpu_model"`
	DetectedGPU   string            `json:"detected_gpu,omitempty" yaml:"detected_gpu,omitempty"`
	GPUModels     []string          `json:"gpu_models" yaml:"gpu_models"`
	OS            string            `json:"os" yaml:"os"`
	CloudProvider string            `json:"cloud_provider" yaml:"cloud_provider"`
	CUDAVersion   string            `json:"cuda_version,omitempty" yaml:"cuda_version,omitempty"`
	DriverVersion string            `json:"driver_version,omitempty" yaml:"driver_version,omitempty"`
	KernelModules []string          `json:"kernel_modules,omitempty" yaml:"kernel_modules,omitempty"`
	Services      map[string]string `json:"services,omitempty" yaml:"services,omitempty"`
	// ActiveProfile is set once a fallback replaced the detected profile.
	ActiveProfile string `json:"active_profile,omitempty" yaml:"active_profile,omitempty"`
}

// Merge copies the non-empty fields of other into d.
func (d *Detection) Merge(other *Detection) {
	if other == nil {
		return
	}
	if other.GPUModel != "" {
		d.GPUModel = other.GPUModel
	}
	if len(other.GPUModels) > 0 {
		d.GPUModels = append([]string{}, other.GPUModels...)
	}
	if other.OS != "" {
		d.OS = other.OS
	}
	if other.CloudProvider != "" {
		d.CloudProvider = other.CloudProvider
	}
	if other.CUDAVersion != "" {
		d.CUDAVersion = other.CUDAVersion
	}
	if other.DriverVersion != "" {
		d.DriverVersion = other.DriverVersion
	}
	if len(other.KernelModules) > 0 {
		d.KernelModules = append([]string{}, other.KernelModules...)
	}
	if len(other.Services) > 0 {
		if d.Services == nil {
			d.Services = make(map[string]string, len(other.Services))
		}
		maps.Copy(d.Services, other.Services)
	}
}

// Normalize fills defaults so the document is always complete. An
// identifier without a profile is kept in DetectedGPU.
func (d *Detection) Normalize() {
	raw := d.GPUModel
	d.GPUModel = NormalizeGPU(raw)
	if raw != "" && raw != d.GPUModel && raw != GPUUnknown {
		d.DetectedGPU = raw
	}
	if d.GPUModels == nil {
		d.GPUModels = []string{}
	}
	if d.CloudProvider == "" {
		d.CloudProvider = CloudUnknown
	}
}

// HasModule reports whether a kernel module was seen loaded.
func (d *Detection) HasModule(name string) bool {
	return slices.Contains(d.KernelModules, name)
}
