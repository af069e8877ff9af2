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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

// API is the subset of the Docker Engine client used here.
type API interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

var _ API = (*client.Client)(nil)

// Docker builds and runs generated images.
type Docker struct {
	api API
}

// NewDocker connects to the daemon configured by the DOCKER_* environment
// and checks that it answers.
func NewDocker(ctx context.Context) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "failed to create Docker client", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaults.DockerPingTimeout)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		_ = cli.Close()
		return nil, cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "Docker daemon is not accessible", err)
	}
	return &Docker{api: cli}, nil
}

// NewDockerWithAPI wraps an existing client.
func NewDockerWithAPI(api API) *Docker {
	return &Docker{api: api}
}

// Close releases the client.
func (d *Docker) Close() error {
	return d.api.Close()
}

type buildMessage struct {
	Stream      string `json:"stream"`
	Error       string `json:"error"`
	ErrorDetail struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
}

// Build builds dir/Dockerfile as image and streams the build output to out.
func (d *Docker) Build(ctx context.Context, dir, image string, out io.Writer) error {
	buildCtx, err := tarDir(dir)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to create build context", err)
	}

	slog.Info("building Docker image", "image", image, "dir", dir)
	resp, err := d.api.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:        []string{image},
		Dockerfile:  DockerfileName,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to build Docker image", err)
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	for {
		var msg buildMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to read build output", err)
		}
		if msg.Error != "" {
			detail := msg.ErrorDetail.Message
			if detail == "" {
				detail = msg.Error
			}
			return cnserrors.NewWithContext(cnserrors.ErrCodeCommandFailure, "Docker build failed: "+detail,
				map[string]any{"image": image})
		}
		if msg.Stream != "" && out != nil {
			_, _ = io.WriteString(out, msg.Stream)
		}
	}
	slog.Info("Docker image built", "image", image)
	return nil
}

// Run starts image with every GPU attached, copies its output to out and
// returns the exit code. The container is removed afterwards.
func (d *Docker) Run(ctx context.Context, image string, cmd []string, out io.Writer) (int, error) {
	created, err := d.api.ContainerCreate(ctx,
		&container.Config{Image: image, Cmd: cmd},
		&container.HostConfig{
			Resources: container.Resources{
				DeviceRequests: []container.DeviceRequest{{
					Count:        -1,
					Capabilities: [][]string{{"gpu"}},
				}},
			},
		}, nil, nil, "")
	if err != nil {
		return -1, cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to create container", err)
	}
	id := created.ID
	defer func() {
		if rmErr := d.api.ContainerRemove(context.WithoutCancel(ctx), id, container.RemoveOptions{Force: true}); rmErr != nil {
			slog.Warn("failed to remove container", "id", id, "error", rmErr)
		}
	}()

	slog.Info("running Docker container", "image", image, "id", id)
	if err := d.api.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return -1, cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to start container", err)
	}

	var code int64
	waitCh, errCh := d.api.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case res := <-waitCh:
		code = res.StatusCode
	case err := <-errCh:
		return -1, cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed waiting for container", err)
	case <-ctx.Done():
		return -1, ctx.Err()
	}

	logs, err := d.api.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return int(code), cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to read container logs", err)
	}
	defer logs.Close()
	if out == nil {
		out = io.Discard
	}
	if _, err := stdcopy.StdCopy(out, out, logs); err != nil {
		return int(code), cnserrors.Wrap(cnserrors.ErrCodeCommandFailure, "failed to copy container logs", err)
	}

	if code != 0 {
		return int(code), cnserrors.NewWithContext(cnserrors.ErrCodeCommandFailure,
			fmt.Sprintf("container exited with status %d", code), map[string]any{"image": image})
	}
	return 0, nil
}

// tarDir packs the regular files under dir into an uncompressed tar stream.
func tarDir(dir string) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}
