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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	detectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gpusetup_detection_duration_seconds",
			Help:    "Time taken to detect the host",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
	)

	detectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_detection_total",
			Help: "Total number of host detections",
		},
		[]string{"status"}, // success or error
	)

	collectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gpusetup_detection_collector_duration_seconds",
			Help:    "Time taken by individual collectors",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"collector"}, // gpu, os, cloud, systemd
	)
)
