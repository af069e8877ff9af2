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

package collector

import (
	"context"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/cloud"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/gpu"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/os"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/systemd"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
)

// Collector produces part of the host detection.
type Collector interface {
	Collect(ctx context.Context) (*measurement.Detection, error)
}

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateGPUCollector() Collector
	CreateOSCollector() Collector
	CreateCloudCollector() Collector
	CreateSystemDCollector() Collector
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	Prober          gpu.Prober
	SystemDServices []string
	CloudEndpoints  []cloud.Endpoint
}

// NewDefaultFactory creates a factory whose GPU collector runs probes
// through prober.
func NewDefaultFactory(prober gpu.Prober) *DefaultFactory {
	return &DefaultFactory{
		Prober:          prober,
		SystemDServices: systemd.DefaultServices,
		CloudEndpoints:  cloud.DefaultEndpoints,
	}
}

// CreateGPUCollector creates a GPU collector.
func (f *DefaultFactory) CreateGPUCollector() Collector {
	return &gpu.Collector{Prober: f.Prober}
}

// CreateOSCollector creates an OS collector.
func (f *DefaultFactory) CreateOSCollector() Collector {
	return &os.Collector{}
}

// CreateCloudCollector creates a cloud metadata collector.
func (f *DefaultFactory) CreateCloudCollector() Collector {
	return &cloud.Collector{Endpoints: f.CloudEndpoints}
}

// CreateSystemDCollector creates a systemd collector.
func (f *DefaultFactory) CreateSystemDCollector() Collector {
	return &systemd.Collector{Services: f.SystemDServices}
}
