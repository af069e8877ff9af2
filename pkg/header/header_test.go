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

package header

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := New(KindRunReport, "v1.2.3", WithMetadata("run-id", "abc"))

	if h.Kind != KindRunReport || h.APIVersion != APIVersion {
		t.Errorf("unexpected header %+v", h)
	}
	if h.Metadata["version"] != "v1.2.3" || h.Metadata["run-id"] != "abc" {
		t.Errorf("unexpected metadata %v", h.Metadata)
	}
	if _, err := time.Parse(time.RFC3339, h.Metadata["timestamp"]); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}
}

func TestInitWithoutVersion(t *testing.T) {
	var h Header
	h.Init(KindSessionStatus, "")
	if _, ok := h.Metadata["version"]; ok {
		t.Error("version should be omitted when empty")
	}
}

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindRunReport, KindSessionStatus, KindValidationResult, KindContainerBundle} {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("Snapshot").IsValid() {
		t.Error("Snapshot should not be valid")
	}
	if h := New(KindRunReport, "", WithKind(KindContainerBundle)); h.Kind.String() != "ContainerBundle" {
		t.Errorf("WithKind not applied: %s", h.Kind)
	}
}
