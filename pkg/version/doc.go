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

// Package version parses and compares the dotted version strings found in
// compatibility profiles and tool output: driver releases ("535.104.05"),
// CUDA toolkits ("11.8", "12.2.0"), and framework pins ("2.1.0").
//
// Besides ordering, it derives the package-name fragments the installers
// need:
//
//	v := version.MustParseVersion("11.8")
//	v.Dashed()  // "11-8", as in the apt package cuda-11-8
//	v.Compact() // "118", as in the PyTorch wheel index cu118
//
//	d := version.MustParseVersion("535.104.05")
//	d.MajorString() // "535", as in nvidia-driver-535
package version
