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

// Package container generates container build definitions for a
// compatibility profile and drives the Docker Engine API to build and run
// them.
//
// Generate writes a Dockerfile, a Singularity definition or both into an
// output directory together with checksums.txt. The base image is the
// nvidia/cuda base image matching the profile's CUDA version and each
// selected framework becomes one pip install layer.
//
// Docker builds the generated directory and runs the image with every GPU
// attached, the API equivalent of `docker run --gpus all`.
package container
