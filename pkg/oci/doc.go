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

// Package oci pushes a generated container bundle directory to an OCI
// registry as a single-layer artifact using ORAS.
//
// The directory is packed as a reproducible gzipped tar layer under an OCI
// 1.1 manifest with artifact type ArtifactType, so consumers that do not
// know the type treat it as an opaque blob rather than a runnable image.
//
// Credentials come from the Docker configuration (~/.docker/config.json)
// and its credential helpers.
//
//	ref, err := oci.ParseReference("oci://ghcr.io/acme/gpu-setup:v1")
//	res, err := oci.Push(ctx, oci.PushOptions{SourceDir: "container", Reference: ref})
package oci
