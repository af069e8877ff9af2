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

// Package file reads small line-oriented system files such as os-release,
// /proc/modules, and sysfs attributes.
//
//	p := file.NewParser(file.WithVTrimChars(`"'`), file.WithSkipEmptyValues(true))
//	release, err := p.GetMap("/etc/os-release")
//
// Files larger than the configured limit or containing invalid UTF-8 are
// rejected.
package file
