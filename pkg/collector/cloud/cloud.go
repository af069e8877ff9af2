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

package cloud

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// Provider names.
const (
	ProviderAWS   = "AWS"
	ProviderAzure = "Azure"
	ProviderGCP   = "GCP"
)

// Endpoint is a metadata URL that only answers on one provider.
type Endpoint struct {
	Provider string
	URL      string
	Headers  map[string]string
}

// DefaultEndpoints lists the providers in priority order.
var DefaultEndpoints = []Endpoint{
	{Provider: ProviderAWS, URL: "http://169.254.169.254/latest/meta-data/instance-id"},
	{
		Provider: ProviderAzure,
		URL:      "http://169.254.169.254/metadata/instance?api-version=2021-02-01",
		Headers:  map[string]string{"Metadata": "true"},
	},
	{
		Provider: ProviderGCP,
		URL:      "http://metadata.google.internal/computeMetadata/v1/instance/id",
		Headers:  map[string]string{"Metadata-Flavor": "Google"},
	},
}

// Collector probes metadata endpoints.
type Collector struct {
	// Endpoints defaults to DefaultEndpoints.
	Endpoints []Endpoint
	// Timeout per probe; defaults to defaults.CloudMetadataTimeout.
	Timeout time.Duration
}

// Collect reports the provider, or "Unknown". Probe failures are expected off
// cloud and are not errors.
func (c *Collector) Collect(ctx context.Context) (*measurement.Detection, error) {
	endpoints := c.Endpoints
	if endpoints == nil {
		endpoints = DefaultEndpoints
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaults.CloudMetadataTimeout
	}

	hits := make([]bool, len(endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		g.Go(func() error {
			hits[i] = probe(gctx, ep, timeout)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &measurement.Detection{CloudProvider: measurement.CloudUnknown}
	for i, hit := range hits {
		if hit {
			d.CloudProvider = endpoints[i].Provider
			break
		}
	}
	return d, nil
}

func probe(ctx context.Context, ep Endpoint, timeout time.Duration) bool {
	opts := []serializer.HttpReaderOption{
		serializer.WithNoProxy(),
		serializer.WithTotalTimeout(timeout),
		serializer.WithConnectTimeout(timeout),
	}
	for k, v := range ep.Headers {
		opts = append(opts, serializer.WithHeader(k, v))
	}

	body, err := serializer.NewHttpReader(opts...).ReadWithContext(ctx, ep.URL)
	if err != nil {
		slog.Debug("metadata endpoint did not answer", "provider", ep.Provider, "error", err)
		return false
	}
	return len(body) > 0
}
