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

// Package gpu identifies the installed GPU.
//
// Sources are tried in order until one yields an answer: lspci, the
// nvidia-smi name query, a sysfs PCI scan for the NVIDIA vendor id, and
// finally lshw, which is only used to name non-NVIDIA adapters. The driver
// and CUDA versions come from the nvidia-smi banner when a driver is
// already present.
package gpu
