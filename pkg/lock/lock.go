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

package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
)

// ErrLocked is returned by the platform locker when the lock is held elsewhere.
var ErrLocked = errors.New("lock is held by another process")

// Owner describes the process holding the lock.
type Owner struct {
	PID     int       `json:"pid"`
	RunID   string    `json:"run_id"`
	Started time.Time `json:"started"`
}

// Lock is a held advisory lock on a state directory.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the lock for dir without blocking.
func Acquire(dir, runID string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to create state directory", err)
	}

	path := filepath.Join(dir, defaults.LockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to open lock file", err)
	}

	if err := tryLock(f); err != nil {
		owner := readOwner(f)
		_ = f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeUnavailable,
				fmt.Sprintf("state directory %s is in use by another run", dir), err,
				map[string]any{"pid": owner.PID, "runID": owner.RunID})
		}
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to lock state directory", err)
	}

	l := &Lock{file: f, path: path}
	if err := l.writeOwner(Owner{PID: os.Getpid(), RunID: runID, Started: time.Now().UTC()}); err != nil {
		_ = l.Release()
		return nil, err
	}
	return l, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Calling it more than once is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	_ = f.Truncate(0)
	unlockErr := unlock(f)
	closeErr := f.Close()
	return errors.Join(unlockErr, closeErr)
}

func (l *Lock) writeOwner(o Owner) error {
	data, err := json.Marshal(o)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode lock owner", err)
	}
	if err := l.file.Truncate(0); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to truncate lock file", err)
	}
	if _, err := l.file.WriteAt(data, 0); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write lock owner", err)
	}
	return nil
}

func readOwner(f *os.File) Owner {
	var o Owner
	data, err := io.ReadAll(io.NewSectionReader(f, 0, 4096))
	if err != nil || len(data) == 0 {
		return o
	}
	_ = json.Unmarshal(data, &o)
	return o
}
