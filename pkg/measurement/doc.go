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

// Package measurement defines the host detection document.
//
// Collectors each fill the part of a Detection they know about; the
// snapshotter merges the partial results and persists them as
// detection_log.json:
//
//	{
//	  "gpu_model": "nvidia_a100",
//	  "gpu_models": ["NVIDIA A100-SXM4-80GB"],
//	  "os": "Ubuntu 20.04.6 LTS",
//	  "cloud_provider": "AWS",
//	  "cuda_version": "12.2",
//	  "driver_version": "535.104.05",
//	  "kernel_modules": ["nvidia", "nvidia_uvm"],
//	  "services": {"nvidia-persistenced.service": "active"}
//	}
//
// GPUModel always holds one of the identifiers the compatibility document is
// keyed by; anything unrecognized becomes unknown_gpu.
package measurement
