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

package defaults

import "time"

// Collector timeouts for detection operations.
const (
	// CollectorTimeout bounds the whole detection pass.
	CollectorTimeout = 30 * time.Second

	// ProbeTimeout bounds a single detection command such as lspci or nvidia-smi.
	ProbeTimeout = 10 * time.Second

	// CloudMetadataTimeout bounds a single cloud metadata request.
	// Metadata endpoints are link-local; anything slower means "not this cloud".
	CloudMetadataTimeout = 2 * time.Second

	// SystemdTimeout bounds the systemd D-Bus queries.
	SystemdTimeout = 5 * time.Second
)

// Runner parameters for external commands.
const (
	// InstallRetries is the retry count used for package installs and index updates.
	InstallRetries = 2

	// CommandRetries is the retry count for commands without their own
	// policy: CUDA repository setup and uninstalls.
	CommandRetries = 1

	// RetryBackoff is the delay before the first retry.
	RetryBackoff = 2 * time.Second

	// RetryBackoffFactor multiplies the delay after each failed attempt.
	RetryBackoffFactor = 2.0

	// RetryBackoffCap caps the delay between attempts.
	RetryBackoffCap = 30 * time.Second

	// ProgressRefreshInterval is the minimum interval between progress redraws.
	ProgressRefreshInterval = 100 * time.Millisecond
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Container operation timeouts.
const (
	// DockerPingTimeout bounds the daemon availability check.
	DockerPingTimeout = 5 * time.Second

	// RegistryPushTimeout bounds an artifact push.
	RegistryPushTimeout = 5 * time.Minute

	// ReportUploadTimeout bounds the run report upload.
	ReportUploadTimeout = 1 * time.Minute
)
