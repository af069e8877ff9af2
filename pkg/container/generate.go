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
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/framework"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/header"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/profile"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

//go:embed templates/Dockerfile.tmpl
var dockerfileTemplate string

//go:embed templates/singularity.def.tmpl
var singularityTemplate string

// Format is a container definition format.
type Format string

const (
	FormatDocker      Format = "docker"
	FormatSingularity Format = "singularity"
)

// File names written by Generate.
const (
	DockerfileName      = "Dockerfile"
	SingularityFileName = "gpu-setup.def"
)

// DefaultImage is the image name used when none is given.
const DefaultImage = "gpu-setup-tool"

var formats = map[Format]struct {
	file     string
	template string
}{
	FormatDocker:      {DockerfileName, dockerfileTemplate},
	FormatSingularity: {SingularityFileName, singularityTemplate},
}

// Spec is the data rendered into the templates.
type Spec struct {
	Profile     string
	CUDAVersion string
	// BaseTag is the nvidia/cuda image version, always major.minor.patch.
	BaseTag string
	// Installs are pip install arguments, one entry per framework.
	Installs []string
}

// NewSpec builds the container spec for p. A nil selection uses every
// framework p lists; unknown framework names are skipped.
func NewSpec(p profile.Profile, frameworks []string) (*Spec, error) {
	cuda, err := version.ParseVersion(p.CUDAVersion)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid CUDA version %q in profile %s", p.CUDAVersion, p.Name), err)
	}
	cuda.Precision = 3

	spec := &Spec{Profile: p.Name, CUDAVersion: p.CUDAVersion, BaseTag: cuda.String()}
	if frameworks == nil {
		frameworks = p.FrameworkNames()
	}
	for _, name := range frameworks {
		fw, ok := framework.Lookup(name)
		if !ok {
			slog.Warn("unknown framework, not added to container", "framework", name)
			continue
		}
		args, err := fw.InstallArgs(p.FrameworkVersion(name), p.CUDAVersion)
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "cannot build install command for "+name, err)
		}
		spec.Installs = append(spec.Installs, strings.Join(args[1:], " "))
	}
	return spec, nil
}

// ParseFormat converts user input into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown container format %q (want docker or singularity)", s))
	}
	return f, nil
}

// Bundle lists the files of a generated container definition.
type Bundle struct {
	header.Header `json:",inline" yaml:",inline"`

	Dir       string   `json:"dir" yaml:"dir"`
	Profile   string   `json:"profile" yaml:"profile"`
	BaseImage string   `json:"baseImage" yaml:"baseImage"`
	Files     []string `json:"files" yaml:"files"`
	Checksums string   `json:"checksums" yaml:"checksums"`
}

// Render returns the definition of spec in format f.
func Render(f Format, spec *Spec) ([]byte, error) {
	def, ok := formats[f]
	if !ok {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown container format %q", f))
	}
	tmpl, err := template.New(def.file).Parse(def.template)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to parse "+def.file+" template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, spec); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to render "+def.file, err)
	}
	return buf.Bytes(), nil
}

// Generate writes the definitions for each format into dir, followed by
// checksums.txt.
func Generate(ctx context.Context, dir, toolVersion string, spec *Spec, fs ...Format) (*Bundle, error) {
	if len(fs) == 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "no container format selected")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to create output directory", err)
	}

	b := &Bundle{
		Header:    header.New(header.KindContainerBundle, toolVersion),
		Dir:       dir,
		Profile:   spec.Profile,
		BaseImage: "nvidia/cuda:" + spec.BaseTag + "-base-ubuntu20.04",
	}
	for _, f := range fs {
		data, err := Render(f, spec)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, formats[f].file)
		if err := serializer.WriteFileAtomic(path, data, 0o644); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write "+path, err)
		}
		slog.Info("container definition generated", "format", f, "path", path)
		b.Files = append(b.Files, path)
	}

	sums, err := GenerateChecksums(ctx, dir, b.Files)
	if err != nil {
		return nil, err
	}
	b.Checksums = sums
	return b, nil
}
