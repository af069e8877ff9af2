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

// Package snapshotter detects the host by running every collector
// concurrently, merging their partial results, and persisting the merged
// document as detection_log.json.
//
//	s := &snapshotter.HostSnapshotter{
//	    Factory: collector.NewDefaultFactory(runner),
//	    Path:    filepath.Join(stateDir, defaults.DetectionFile),
//	}
//	d, err := s.Measure(ctx)
//	for _, tip := range snapshotter.Advice(d) { ... }
package snapshotter
