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

package profile

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

const (
	// UnknownGPU is the profile used for unrecognized hardware.
	UnknownGPU = "unknown_gpu"
	// Fallback is the profile a failed step retries with.
	Fallback = "fallback"
	// LatestVersion means "do not pin".
	LatestVersion = "latest"
)

//go:embed data/compatibility.yaml
var defaultCompatibility []byte

var (
	defaultStoreOnce sync.Once
	defaultStore     *Store
	defaultStoreErr  error
)

// Library is an auxiliary library shipped with a profile.
type Library struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Profile is the configuration bundle for one hardware class.
type Profile struct {
	Name                string             `json:"name" yaml:"-"`
	DriverVersion       string             `json:"driver_version" yaml:"driver_version"`
	CUDAVersion         string             `json:"cuda_version" yaml:"cuda_version"`
	CUDNNVersion        string             `json:"cudnn_version,omitempty" yaml:"cudnn_version,omitempty"`
	Frameworks          map[string]string  `json:"frameworks" yaml:"frameworks"`
	ExpectedPerformance map[string]float64 `json:"expected_performance,omitempty" yaml:"expected_performance,omitempty"`
	Libraries           []Library          `json:"libraries,omitempty" yaml:"libraries,omitempty"`
}

// FrameworkVersion returns the pinned version of name, or "latest".
func (p Profile) FrameworkVersion(name string) string {
	if v, ok := p.Frameworks[name]; ok && v != "" {
		return v
	}
	return LatestVersion
}

// FrameworkNames returns the frameworks listed in the profile, sorted.
func (p Profile) FrameworkNames() []string {
	return slices.Sorted(maps.Keys(p.Frameworks))
}

// Store is a validated compatibility document.
type Store struct {
	profiles map[string]Profile
}

// Parse decodes and validates a compatibility document.
func Parse(data []byte) (*Store, error) {
	var doc map[string]Profile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to parse compatibility document", err)
	}
	return newStore(doc)
}

func newStore(doc map[string]Profile) (*Store, error) {
	for _, required := range []string{UnknownGPU, Fallback} {
		if _, ok := doc[required]; !ok {
			return nil, cnserrors.New(cnserrors.ErrCodeConfigurationMissing,
				fmt.Sprintf("compatibility document has no %q profile", required))
		}
	}

	profiles := make(map[string]Profile, len(doc))
	for name, p := range doc {
		if p.DriverVersion == "" || p.CUDAVersion == "" {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeConfigurationMissing,
				fmt.Sprintf("profile %q must define driver_version and cuda_version", name),
				map[string]any{"profile": name})
		}
		p.Name = name
		if p.Frameworks == nil {
			p.Frameworks = map[string]string{}
		}
		profiles[name] = p
	}

	fb := profiles[Fallback]
	for name, p := range profiles {
		if name != Fallback && !sameStack(fb, p) {
			return &Store{profiles: profiles}, nil
		}
	}
	return nil, cnserrors.New(cnserrors.ErrCodeConfigurationMissing,
		"fallback profile must differ from at least one other profile in driver series, CUDA, cuDNN or framework versions")
}

// sameStack reports whether a and b would install the same driver series,
// toolkit and framework versions.
func sameStack(a, b Profile) bool {
	return driverSeries(a.DriverVersion) == driverSeries(b.DriverVersion) &&
		a.CUDAVersion == b.CUDAVersion &&
		a.CUDNNVersion == b.CUDNNVersion &&
		maps.Equal(a.Frameworks, b.Frameworks)
}

func driverSeries(v string) string {
	if parsed, err := version.ParseVersion(v); err == nil {
		return parsed.MajorString()
	}
	return v
}

// Load reads the compatibility document at path. An empty path loads the
// embedded defaults.
func Load(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return Default()
	}
	data, err := serializer.ReadSource(ctx, path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeConfigurationMissing,
			fmt.Sprintf("failed to read compatibility document %s", path), err)
	}
	return Parse(data)
}

// Default returns the embedded compatibility document.
func Default() (*Store, error) {
	defaultStoreOnce.Do(func() {
		defaultStore, defaultStoreErr = Parse(defaultCompatibility)
	})
	return defaultStore, defaultStoreErr
}

// Lookup returns the profile for a hardware identifier, or the unknown_gpu
// profile when the identifier has no entry.
func (s *Store) Lookup(id string) Profile {
	if p, ok := s.profiles[id]; ok {
		return p
	}
	return s.profiles[UnknownGPU]
}

// Has reports whether id has its own entry.
func (s *Store) Has(id string) bool {
	_, ok := s.profiles[id]
	return ok
}

// Fallback returns the fallback profile.
func (s *Store) Fallback() Profile {
	return s.profiles[Fallback]
}

// Names returns the hardware identifiers in the document, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
