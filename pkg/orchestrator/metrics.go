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

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpusetup_step_duration_seconds",
			Help:    "Duration of pipeline step executions, fallback attempt included",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600},
		},
		[]string{"step"},
	)

	stepOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_step_total",
			Help: "Total number of pipeline steps by outcome",
		},
		[]string{"step", "outcome"}, // outcome: succeeded, skipped, fallback, aborted
	)

	stepRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_step_rollbacks_total",
			Help: "Total number of rollbacks triggered by a failed step",
		},
		[]string{"step"},
	)

	runOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_runs_total",
			Help: "Total number of pipeline runs by final state",
		},
		[]string{"state"},
	)

	checkpointStep = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpusetup_checkpoint_step",
			Help: "Last successful step recorded in the checkpoint",
		},
	)
)
