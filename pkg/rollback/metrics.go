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

package rollback

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_rollbacks_total",
			Help: "Total number of rollbacks started",
		},
		[]string{"level"},
	)

	uninstallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gpusetup_rollback_uninstall_failures_total",
			Help: "Uninstalls that failed during rollback",
		},
		[]string{"kind"},
	)
)
