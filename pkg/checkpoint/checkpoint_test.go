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

package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func newTemp(t *testing.T) *Checkpoint {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "progress.json"))
}

func TestGetAbsentIsZero(t *testing.T) {
	c := newTemp(t)
	got, err := c.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Get() = %d, want 0", got)
	}
}

func TestAdvanceGetRoundTrip(t *testing.T) {
	c := newTemp(t)
	for _, step := range []int{1, 2, 5} {
		if err := c.Advance(step); err != nil {
			t.Fatalf("Advance(%d) error = %v", step, err)
		}
		got, err := c.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != step {
			t.Errorf("Get() = %d, want %d", got, step)
		}
	}
}

func TestClear(t *testing.T) {
	c := newTemp(t)
	if err := c.Advance(4); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := c.Get(); got != 0 {
		t.Errorf("Get() after Clear() = %d, want 0", got)
	}
	if _, err := os.Stat(c.Path()); !os.IsNotExist(err) {
		t.Errorf("checkpoint file still present: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestPersistedFormat(t *testing.T) {
	c := newTemp(t)
	if err := c.Advance(3); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"last_successful_step\": 3\n}\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestAdvanceDoesNotEnforceMonotonicity(t *testing.T) {
	c := newTemp(t)
	_ = c.Advance(5)
	if err := c.Advance(2); err != nil {
		t.Fatalf("Advance(2) error = %v", err)
	}
	if got, _ := c.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
	if err := c.Advance(-1); err == nil {
		t.Error("expected error for negative step")
	}
}

func TestGetCorrupt(t *testing.T) {
	c := newTemp(t)
	if err := os.WriteFile(c.Path(), []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(); err == nil {
		t.Error("expected error for corrupt checkpoint")
	}
}

func TestGetLegacyDocumentWithoutKey(t *testing.T) {
	c := newTemp(t)
	if err := os.WriteFile(c.Path(), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := c.Get(); err != nil || got != 0 {
		t.Errorf("Get() = %d, %v; want 0, nil", got, err)
	}
}
