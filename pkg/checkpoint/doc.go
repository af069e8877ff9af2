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

// Package checkpoint persists the index of the last pipeline step that
// completed, so an interrupted run can resume where it stopped.
//
// The document is {"last_successful_step": N}. A missing file means nothing
// has completed and Get returns 0. Advance does not enforce monotonicity;
// callers advance with increasing indices in step order.
package checkpoint
