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

// Package serializer reads and writes the structured documents gpusetup
// deals with: persisted state files, detection results, profile documents,
// and command output.
//
// Supported formats:
//   - JSON: machine-readable, indented
//   - YAML: human-readable configuration
//   - Table: flattened FIELD/VALUE listing (write only)
//
// Writing to a file or stdout:
//
//	w, err := serializer.NewFileWriter(serializer.FormatYAML, path, os.Stdout)
//	defer w.Close()
//	if err := w.Serialize(ctx, status); err != nil {
//	    return err
//	}
//
// Loading a document from a path or http(s) URL:
//
//	doc, err := serializer.FromFile[profile.Document](ctx, "configs/compatibility.yaml")
//
// Persisting state that must never be observed half-written:
//
//	err := serializer.WriteJSONAtomic("logs/progress.json", state)
package serializer
