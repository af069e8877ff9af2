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
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

//go:embed data/presets.yaml
var defaultPresets []byte

// Preset is a named framework selection.
type Preset struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Frameworks  []string `json:"frameworks" yaml:"frameworks"`
}

// Presets is a parsed presets document.
type Presets struct {
	Presets map[string]Preset `json:"presets" yaml:"presets"`
}

// ParsePresets decodes a presets document.
func ParsePresets(data []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to parse presets document", err)
	}
	if p.Presets == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeConfigurationMissing, "presets document has no \"presets\" key")
	}
	return &p, nil
}

// LoadPresets reads the presets document at path; empty means embedded defaults.
func LoadPresets(ctx context.Context, path string) (*Presets, error) {
	if path == "" {
		return ParsePresets(defaultPresets)
	}
	data, err := serializer.ReadSource(ctx, path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeConfigurationMissing,
			fmt.Sprintf("failed to read presets document %s", path), err)
	}
	return ParsePresets(data)
}

// Frameworks returns the framework list of the named preset.
func (p *Presets) Frameworks(name string) ([]string, error) {
	preset, ok := p.Presets[name]
	if !ok {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeConfigurationMissing,
			fmt.Sprintf("preset %q not found", name),
			map[string]any{"available": p.Names()})
	}
	return append([]string{}, preset.Frameworks...), nil
}

// Names returns the preset names, sorted.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.Presets))
	for name := range p.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SelectFrameworks merges preset and explicit selections into one
// lower-cased list without duplicates, preset entries first. An empty
// result means "everything the profile lists".
func SelectFrameworks(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, name := range list {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || slices.Contains(out, name) {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}
