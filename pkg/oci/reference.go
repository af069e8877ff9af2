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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

// URIScheme is the optional scheme of a registry target.
const URIScheme = "oci://"

// Reference is a parsed registry target.
type Reference struct {
	Registry   string
	Repository string
	// Tag is empty when the target named none; callers apply a default.
	Tag string
}

// ParseReference parses "oci://registry/repository:tag". The scheme is
// optional.
func ParseReference(target string) (*Reference, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(target), URIScheme)
	if trimmed == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "registry target is empty")
	}

	named, err := reference.ParseNormalizedNamed(trimmed)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, ok := named.(reference.Digested); ok {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "OCI reference must not carry a digest")
	}

	ref := &Reference{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	return ref, nil
}

// String returns the reference with the oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns registry/repository[:tag].
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of r with tag.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}
