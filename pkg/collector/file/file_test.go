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

package file

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetLines(t *testing.T) {
	path := write(t, "# header\n\n  first  \nsecond\n#tail\n")

	lines, err := NewParser().GetLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(lines, "|") != "first|second" {
		t.Errorf("unexpected lines %q", lines)
	}

	lines, err = NewParser(WithSkipComments(false)).GetLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 4 {
		t.Errorf("expected comments kept, got %q", lines)
	}
}

func TestGetLinesErrors(t *testing.T) {
	if _, err := NewParser().GetLines(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewParser().GetLines(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := NewParser(WithMaxSize(4)).GetLines(write(t, "0123456789")); err == nil {
		t.Error("expected size error")
	}
	if _, err := NewParser().GetLines(write(t, "\xff\xfe")); err == nil {
		t.Error("expected UTF-8 error")
	}
}

func TestGetMapOSRelease(t *testing.T) {
	path := write(t, `NAME="Ubuntu"
VERSION_ID="20.04"
PRETTY_NAME='Ubuntu 20.04.6 LTS'
EMPTY=
garbage line
`)
	p := NewParser(WithVTrimChars(`"'`), WithSkipEmptyValues(true))
	m, err := p.GetMap(path)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"NAME":        "Ubuntu",
		"VERSION_ID":  "20.04",
		"PRETTY_NAME": "Ubuntu 20.04.6 LTS",
	}
	if len(m) != len(want) {
		t.Fatalf("got %v, want %v", m, want)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %q, want %q", k, m[k], v)
		}
	}
}

func TestGetMapKeepsEmpty(t *testing.T) {
	m, err := NewParser(WithKVDelimiter(":")).GetMap(write(t, "a: 1\nb:\nc\n"))
	if err != nil {
		t.Fatal(err)
	}
	if m["a"] != "1" || len(m) != 3 {
		t.Errorf("unexpected map %v", m)
	}
}

func TestValue(t *testing.T) {
	v, err := NewParser().Value(write(t, "0x10de\n"))
	if err != nil || v != "0x10de" {
		t.Errorf("Value = %q, %v", v, err)
	}
	v, err = NewParser().Value(write(t, "\n"))
	if err != nil || v != "" {
		t.Errorf("Value of blank file = %q, %v", v, err)
	}
}
