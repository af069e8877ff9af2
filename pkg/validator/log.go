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
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/framework"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// WriteLog replaces the validation log at path with r.
func WriteLog(path string, r *ValidationResult) error {
	var b bytes.Buffer
	for _, c := range r.Toolkit {
		switch c.Name {
		case CheckGPU:
			fmt.Fprintf(&b, "GPU Validation:\n%s\n\n", strings.TrimRight(c.output, "\n"))
		case CheckCUDA:
			fmt.Fprintf(&b, "CUDA Validation:\n%s\n\n", strings.TrimRight(c.output, "\n"))
		}
	}

	b.WriteString("Version Checks:\n")
	for _, c := range r.Toolkit {
		if c.Name != CheckDriverVersion && c.Name != CheckCUDAVersion {
			continue
		}
		fmt.Fprintf(&b, "%s: %s (actual %s) %s", c.Name, c.Expected, orNone(c.Actual), c.Status)
		if c.Message != "" && c.Status != CheckStatusPassed {
			fmt.Fprintf(&b, ": %s", c.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nFramework Validation:\n")
	for _, c := range r.Frameworks {
		fmt.Fprintf(&b, "%s: %s\n", framework.DisplayName(c.Name), c.Message)
	}

	return serializer.WriteFileAtomic(path, b.Bytes(), 0o644)
}

// AppendBenchmark appends benchmark lines to the validation log at path.
func AppendBenchmark(path string, results []BenchmarkResult) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open validation log %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "\nBenchmark Results:")
	for _, line := range BenchmarkLines(results) {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write validation log %s: %w", path, err)
	}
	return nil
}

// BenchmarkLines renders results, with a warning after each slow one.
func BenchmarkLines(results []BenchmarkResult) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if !r.Ran {
			lines = append(lines, r.Message)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s %s", r.Label, formatValue(r.Value, r.Unit), r.Unit))
		if r.Slow() {
			lines = append(lines, fmt.Sprintf("Warning: %s slower than expected (%s%s vs %s%s). Check configuration.",
				r.Label, formatValue(r.Value, r.Unit), r.Unit,
				strconv.FormatFloat(r.Expected, 'f', -1, 64), r.Unit))
		}
	}
	return lines
}

func formatValue(v float64, unit string) string {
	if unit == "s" {
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Highlights returns the log lines reporting a successful probe.
func Highlights(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read validation log %s: %w", path, err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "successful") || strings.Contains(lower, "shape") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
