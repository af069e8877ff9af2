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

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_command_attempts_total",
			Help: "Total number of external command attempts",
		},
		[]string{"command", "outcome"}, // outcome: success, failure, not_found, timeout
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpusetup_command_duration_seconds",
			Help:    "Duration of individual external command attempts",
			Buckets: []float64{0.1, 1, 5, 30, 60, 300, 900},
		},
		[]string{"command"},
	)
)
