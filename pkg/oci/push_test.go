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
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/oci"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/container"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Dockerfile":    "FROM nvidia/cuda:12.1.0-base-ubuntu20.04\n",
		"gpu-setup.def": "Bootstrap: docker\n",
	}
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		paths = append(paths, p)
	}
	_, err := container.GenerateChecksums(context.Background(), dir, paths)
	require.NoError(t, err)
	return dir
}

func layerEntries(t *testing.T, ctx context.Context, store *oci.Store, desc ociv1.Descriptor) []string {
	t.Helper()
	rc, err := store.Fetch(ctx, desc)
	require.NoError(t, err)
	defer rc.Close()

	gz, err := gzip.NewReader(rc)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeReg {
			names = append(names, filepath.Base(hdr.Name))
		}
	}
	sort.Strings(names)
	return names
}

func TestPushToLayout(t *testing.T) {
	ctx := context.Background()
	dir := writeBundle(t)

	store, err := oci.New(t.TempDir())
	require.NoError(t, err)

	desc, err := PushTo(ctx, dir, "v1", store, map[string]string{
		ociv1.AnnotationTitle: "gpu-setup bundle",
	})
	require.NoError(t, err)
	assert.Equal(t, ociv1.MediaTypeImageManifest, desc.MediaType)

	resolved, err := store.Resolve(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, desc.Digest, resolved.Digest)

	raw, err := content.FetchAll(ctx, store, desc)
	require.NoError(t, err)
	var manifest ociv1.Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))

	assert.Equal(t, ArtifactType, manifest.ArtifactType)
	assert.Equal(t, "gpu-setup bundle", manifest.Annotations[ociv1.AnnotationTitle])
	require.Len(t, manifest.Layers, 1)
	assert.Equal(t, ociv1.MediaTypeImageLayerGzip, manifest.Layers[0].MediaType)

	assert.Equal(t, []string{"Dockerfile", "checksums.txt", "gpu-setup.def"},
		layerEntries(t, ctx, store, manifest.Layers[0]))
}

func TestPushToIsReproducible(t *testing.T) {
	ctx := context.Background()
	dir := writeBundle(t)
	annotations := map[string]string{ociv1.AnnotationCreated: "2024-01-01T00:00:00Z"}

	first, err := oci.New(t.TempDir())
	require.NoError(t, err)
	second, err := oci.New(t.TempDir())
	require.NoError(t, err)

	d1, err := PushTo(ctx, dir, "v1", first, annotations)
	require.NoError(t, err)
	d2, err := PushTo(ctx, dir, "v1", second, annotations)
	require.NoError(t, err)

	assert.Equal(t, d1.Digest, d2.Digest)
}

func TestPushValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing tag", func(t *testing.T) {
		ref, err := ParseReference("localhost:5000/acme/bundle")
		require.NoError(t, err)
		_, err = Push(ctx, PushOptions{SourceDir: writeBundle(t), Reference: ref})
		require.Error(t, err)
		assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
	})

	t.Run("tampered bundle", func(t *testing.T) {
		dir := writeBundle(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\n"), 0o600))

		ref, err := ParseReference("localhost:5000/acme/bundle:v1")
		require.NoError(t, err)
		_, err = Push(ctx, PushOptions{SourceDir: dir, Reference: ref, PlainHTTP: true})
		require.Error(t, err)
		assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
	})
}
