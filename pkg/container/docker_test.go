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

package container

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

type fakeAPI struct {
	buildOutput string
	buildFiles  map[string]string
	buildOpts   build.ImageBuildOptions

	hostConfig *container.HostConfig
	config     *container.Config
	exitCode   int64
	logs       string
	removed    []string
}

func (f *fakeAPI) Ping(context.Context) (types.Ping, error) { return types.Ping{}, nil }

func (f *fakeAPI) ImageBuild(_ context.Context, buildCtx io.Reader, opts build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	f.buildOpts = opts
	f.buildFiles = map[string]string{}
	tr := tar.NewReader(buildCtx)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return build.ImageBuildResponse{}, err
		}
		data, _ := io.ReadAll(tr)
		f.buildFiles[hdr.Name] = string(data)
	}
	return build.ImageBuildResponse{Body: io.NopCloser(strings.NewReader(f.buildOutput))}, nil
}

func (f *fakeAPI) ContainerCreate(_ context.Context, cfg *container.Config, hc *container.HostConfig,
	_ *network.NetworkingConfig, _ *ocispec.Platform, _ string) (container.CreateResponse, error) {
	f.config, f.hostConfig = cfg, hc
	return container.CreateResponse{ID: "c0ffee"}, nil
}

func (f *fakeAPI) ContainerStart(context.Context, string, container.StartOptions) error { return nil }

func (f *fakeAPI) ContainerWait(context.Context, string, container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	waitCh := make(chan container.WaitResponse, 1)
	waitCh <- container.WaitResponse{StatusCode: f.exitCode}
	return waitCh, make(chan error)
}

func (f *fakeAPI) ContainerLogs(context.Context, string, container.LogsOptions) (io.ReadCloser, error) {
	var buf bytes.Buffer
	_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.logs))
	return io.NopCloser(&buf), nil
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) Close() error { return nil }

func buildDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DockerfileName), []byte("FROM scratch\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChecksumFileName), []byte("abc  Dockerfile\n"), 0o644))
	return dir
}

func TestDockerBuild(t *testing.T) {
	api := &fakeAPI{buildOutput: `{"stream":"Step 1/1 : FROM scratch\n"}` + "\n" + `{"stream":"Successfully tagged gpu-setup-tool:latest\n"}`}
	var out bytes.Buffer

	err := NewDockerWithAPI(api).Build(context.Background(), buildDir(t), "gpu-setup-tool:latest", &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"gpu-setup-tool:latest"}, api.buildOpts.Tags)
	assert.Equal(t, DockerfileName, api.buildOpts.Dockerfile)
	assert.Equal(t, "FROM scratch\n", api.buildFiles[DockerfileName])
	assert.Contains(t, api.buildFiles, ChecksumFileName)
	assert.Contains(t, out.String(), "Successfully tagged")
}

func TestDockerBuildError(t *testing.T) {
	api := &fakeAPI{buildOutput: `{"error":"pull access denied","errorDetail":{"message":"pull access denied for nvidia/cuda"}}`}

	err := NewDockerWithAPI(api).Build(context.Background(), buildDir(t), "img", nil)
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeCommandFailure))
	assert.Contains(t, err.Error(), "pull access denied for nvidia/cuda")
}

func TestDockerRunRequestsAllGPUs(t *testing.T) {
	api := &fakeAPI{logs: "NVIDIA-SMI 535.104.05\n"}
	var out bytes.Buffer

	code, err := NewDockerWithAPI(api).Run(context.Background(), "gpu-setup-tool", []string{"nvidia-smi"}, &out)
	require.NoError(t, err)
	assert.Zero(t, code)

	require.NotNil(t, api.hostConfig)
	require.Len(t, api.hostConfig.DeviceRequests, 1)
	req := api.hostConfig.DeviceRequests[0]
	assert.Equal(t, -1, req.Count)
	assert.Equal(t, [][]string{{"gpu"}}, req.Capabilities)
	assert.Equal(t, "gpu-setup-tool", api.config.Image)
	assert.Equal(t, "NVIDIA-SMI 535.104.05\n", out.String())
	assert.Equal(t, []string{"c0ffee"}, api.removed)
}

func TestDockerRunNonZeroExit(t *testing.T) {
	api := &fakeAPI{exitCode: 3}
	code, err := NewDockerWithAPI(api).Run(context.Background(), "img", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{"c0ffee"}, api.removed)
}
