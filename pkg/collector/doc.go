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

// Package collector defines the host collectors used for detection.
//
// Each collector returns a partial measurement.Detection; the snapshotter
// runs them concurrently and merges the results.
//
//	type Collector interface {
//	    Collect(ctx context.Context) (*measurement.Detection, error)
//	}
//
// The Factory interface lets tests swap any collector:
//
//	factory := collector.NewDefaultFactory(runner.New())
//	gpu := factory.CreateGPUCollector()
//
// Available collectors:
//   - GPU: hardware identifier, adapter names, driver and CUDA version
//   - OS: os-release pretty name, GPU kernel modules
//   - Cloud: AWS, Azure, or GCP from instance metadata
//   - SystemD: state of GPU-related units
package collector
