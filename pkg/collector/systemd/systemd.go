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

package systemd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/measurement"
)

// StateNotFound is reported for units systemd does not know.
const StateNotFound = "not-found"

// DefaultServices are the units reported when none are configured.
var DefaultServices = []string{
	"nvidia-persistenced.service",
	"nvidia-fabricmanager.service",
	"docker.service",
}

type unitConn interface {
	GetAllPropertiesContext(ctx context.Context, unit string) (map[string]any, error)
	Close()
}

var newConn = func(ctx context.Context) (unitConn, error) {
	return dbus.NewSystemdConnectionContext(ctx)
}

// Collector reads the ActiveState of systemd units.
type Collector struct {
	Services []string
}

// Collect maps each unit to its ActiveState, or "not-found".
func (s *Collector) Collect(ctx context.Context) (*measurement.Detection, error) {
	services := s.Services
	if len(services) == 0 {
		services = DefaultServices
	}

	conn, err := newConn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("systemd unavailable, skipping unit states", "error", err)
		return &measurement.Detection{}, nil
	}
	defer conn.Close()

	states := make(map[string]string, len(services))
	for _, service := range services {
		props, err := conn.GetAllPropertiesContext(ctx, service)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("failed to get unit properties", "unit", service, "error", err)
			continue
		}
		states[service] = unitState(props)
	}

	return &measurement.Detection{Services: states}, nil
}

func unitState(props map[string]any) string {
	if load := fmt.Sprint(props["LoadState"]); load == StateNotFound {
		return StateNotFound
	}
	if active, ok := props["ActiveState"].(string); ok && active != "" {
		return active
	}
	return "unknown"
}
