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

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/collector/cloud"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// HostSnapshotter collects the host detection.
type HostSnapshotter struct {
	// Factory creates the collectors. Required.
	Factory collector.Factory

	// Path is where the detection document is written. Empty skips writing.
	Path string
}

// Measure runs the collectors in parallel and merges their output in a fixed
// order. If any collector fails the whole detection fails.
func (h *HostSnapshotter) Measure(ctx context.Context) (*measurement.Detection, error) {
	if h.Factory == nil {
		return nil, fmt.Errorf("snapshotter has no collector factory")
	}

	slog.Debug("starting host detection")
	start := time.Now()
	defer func() {
		detectionDuration.Observe(time.Since(start).Seconds())
	}()

	named := []struct {
		name string
		c    collector.Collector
	}{
		{"gpu", h.Factory.CreateGPUCollector()},
		{"os", h.Factory.CreateOSCollector()},
		{"cloud", h.Factory.CreateCloudCollector()},
		{"systemd", h.Factory.CreateSystemDCollector()},
	}
	parts := make([]*measurement.Detection, len(named))

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range named {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				collectorDuration.WithLabelValues(n.name).Observe(time.Since(collectorStart).Seconds())
			}()

			d, err := n.c.Collect(gctx)
			if err != nil {
				slog.Error("collector failed", "collector", n.name, "error", err)
				return fmt.Errorf("failed to collect %s info: %w", n.name, err)
			}
			parts[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		detectionTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	d := &measurement.Detection{}
	for _, p := range parts {
		d.Merge(p)
	}
	d.Normalize()
	detectionTotal.WithLabelValues("success").Inc()

	slog.Info("detection complete", "gpu", d.GPUModel, "os", d.OS, "cloud", d.CloudProvider,
		"cuda", d.CUDAVersion)

	if h.Path != "" {
		if err := serializer.WriteJSONAtomic(h.Path, d); err != nil {
			return nil, fmt.Errorf("failed to write detection: %w", err)
		}
	}
	return d, nil
}

// Load reads a previously written detection document. found is false when
// the file does not exist.
func Load(path string) (d *measurement.Detection, found bool, err error) {
	d = &measurement.Detection{}
	found, err = serializer.ReadJSON(path, d)
	if err != nil || !found {
		return nil, found, err
	}
	d.Normalize()
	return d, true, nil
}

// Advice returns operator hints for a detection.
func Advice(d *measurement.Detection) []string {
	var tips []string
	if d.GPUModel == measurement.GPUUnknown {
		tips = append(tips, "No known NVIDIA GPU detected; using unknown_gpu settings.")
	}
	if measurement.IsUnsupportedVendor(d.DetectedGPU) {
		tips = append(tips, fmt.Sprintf("Detected %s which is not supported; falling back to unknown_gpu settings.", d.DetectedGPU))
	}
	if d.HasModule("nouveau") {
		tips = append(tips, "The nouveau module is loaded and will conflict with the NVIDIA driver; blacklist it and reboot.")
	}
	switch d.CloudProvider {
	case cloud.ProviderAzure:
		tips = append(tips, "Azure detected. NVads (vGPU) sizes may limit performance; NC-series gives full GPU access.")
	case cloud.ProviderAWS:
		tips = append(tips, "AWS detected. NVIDIA Deep Learning AMIs ship preconfigured drivers.")
	case cloud.ProviderGCP:
		tips = append(tips, "GCP detected. Check GPU quota and prefer drivers from the GCP repositories.")
	}
	return tips
}
