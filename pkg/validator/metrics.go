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

package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_validations_total",
			Help: "Validation runs by overall status",
		},
		[]string{"status"}, // pass, partial, fail
	)

	benchmarkValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpusetup_benchmark_value",
			Help: "Last benchmark result in the metric's own unit",
		},
		[]string{"metric"},
	)
)
