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

package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// State is the persisted checkpoint document.
type State struct {
	LastSuccessfulStep int `json:"last_successful_step" yaml:"last_successful_step"`
}

// Checkpoint is the file-backed progress marker.
type Checkpoint struct {
	path string
}

// New returns a checkpoint stored at path. Nothing is read or written yet.
func New(path string) *Checkpoint {
	return &Checkpoint{path: path}
}

// Path returns the file backing the checkpoint.
func (c *Checkpoint) Path() string {
	return c.path
}

// Get returns the last successful step index, or 0 when none is recorded.
func (c *Checkpoint) Get() (int, error) {
	var s State
	found, err := serializer.ReadJSON(c.path, &s)
	if err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to read checkpoint", err)
	}
	if !found {
		return 0, nil
	}
	if s.LastSuccessfulStep < 0 {
		return 0, cnserrors.New(cnserrors.ErrCodeInternal,
			fmt.Sprintf("checkpoint %s holds negative step %d", c.path, s.LastSuccessfulStep))
	}
	return s.LastSuccessfulStep, nil
}

// Advance records step as the last successful one.
func (c *Checkpoint) Advance(step int) error {
	if step < 0 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid step index %d", step))
	}
	if err := serializer.WriteJSONAtomic(c.path, State{LastSuccessfulStep: step}); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to persist checkpoint", err)
	}
	return nil
}

// Clear deletes the persisted checkpoint. Clearing an absent checkpoint succeeds.
func (c *Checkpoint) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to clear checkpoint", err)
	}
	return nil
}
