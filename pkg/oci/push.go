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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/container"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

// ArtifactType is the media type of pushed container bundles.
const ArtifactType = "application/vnd.gpusetup.container.bundle.v1"

// PushOptions configures Push.
type PushOptions struct {
	// SourceDir is the bundle directory to push.
	SourceDir string
	// Reference is the target; its Tag is required.
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Annotations are added to the manifest.
	Annotations map[string]string
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string `json:"digest" yaml:"digest"`
	Reference string `json:"reference" yaml:"reference"`
}

// Push verifies the checksums of opts.SourceDir, packs it and pushes it to
// the registry.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil || opts.Reference.Tag == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	if err := container.VerifyChecksums(opts.SourceDir); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "bundle failed verification", err)
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", opts.Reference.Registry, opts.Reference.Repository))
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	slog.Info("pushing container bundle", "reference", opts.Reference.ImageReference(), "dir", opts.SourceDir)
	desc, err := PushTo(ctx, opts.SourceDir, opts.Reference.Tag, repo, opts.Annotations)
	if err != nil {
		return nil, err
	}
	slog.Info("container bundle pushed", "reference", opts.Reference.ImageReference(), "digest", desc.Digest.String())

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: opts.Reference.ImageReference(),
	}, nil
}

// PushTo packs dir as an artifact tagged tag and copies it to dst.
func PushTo(ctx context.Context, dir, tag string, dst oras.Target, annotations map[string]string) (ociv1.Descriptor, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to resolve bundle directory", err)
	}

	fs, err := file.New(absDir)
	if err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absDir)
	if err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to add bundle directory", err)
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := fs.Tag(ctx, manifest, tag); err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to tag manifest", err)
	}

	desc, err := oras.Copy(ctx, fs, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ociv1.Descriptor{}, cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "failed to push artifact", err)
	}
	return desc, nil
}

// createAuthClient returns a registry client using Docker credentials.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credential store unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
